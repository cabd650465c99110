package simulation

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/library"
)

// Outcome keys of successful operations. Rejections are counted under their error code.
const (
	OutcomeSuccessBorrow = "success_borrow"
	OutcomeSuccessReturn = "success_return"
)

const (
	defaultReturnRatio = 0.4
	powerUserShare     = 0.2

	logMsgCompleted = "simulation: completed"
)

var (
	// ErrInvalidConfig is joined with the reason a Config was refused.
	ErrInvalidConfig = errors.New("invalid simulation config")

	// ErrEmptyLibrary is returned when there are no books or no users to simulate with.
	ErrEmptyLibrary = errors.New("library has no books or no users")

	// ErrSimulationFailed is joined with infrastructure errors and invariant violations.
	ErrSimulationFailed = errors.New("simulation failed")
)

// Config controls one simulation run.
type Config struct {
	Workers    int
	Operations int
	Seed       int64

	// ReturnRatio is the chance that a reader holding books returns one instead of borrowing.
	// Zero selects the default of 0.4.
	ReturnRatio float64

	// Logger receives a summary line. Optional.
	Logger eventstore.Logger

	// ContextualLogger takes precedence over Logger when both are set.
	ContextualLogger eventstore.ContextualLogger
}

func (c Config) validate() error {
	switch {
	case c.Workers < 1:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	case c.Operations < 0:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("operations must not be negative, got %d", c.Operations))
	case c.ReturnRatio < 0 || c.ReturnRatio > 1:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("return ratio must be within [0, 1], got %.2f", c.ReturnRatio))
	}

	return nil
}

// Result summarizes a run.
type Result struct {
	Outcomes map[string]int
	Duration time.Duration
}

// Total is the number of operations performed.
func (r Result) Total() int {
	total := 0
	for _, n := range r.Outcomes {
		total += n
	}

	return total
}

// Keys returns the outcome keys in alphabetical order.
func (r Result) Keys() []string {
	return slices.Sorted(maps.Keys(r.Outcomes))
}

// Run spreads cfg.Operations across cfg.Workers readers and verifies the invariants afterwards.
// Rejected operations are expected and counted. Infrastructure errors abort the run.
func Run(ctx context.Context, lib *library.Library, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	if cfg.ReturnRatio == 0 {
		cfg.ReturnRatio = defaultReturnRatio
	}

	books := isbnsOf(lib.ListBooks(library.BookFilter{}, ""))
	users := userIDsOf(lib.ListUsers(library.UserFilter{}, ""))
	if len(books) == 0 || len(users) == 0 {
		return Result{}, ErrEmptyLibrary
	}

	start := time.Now()
	result := Result{Outcomes: make(map[string]int)}

	var mu sync.Mutex
	merge := func(outcomes map[string]int) {
		mu.Lock()
		defer mu.Unlock()

		for key, n := range outcomes {
			result.Outcomes[key] += n
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for w := range cfg.Workers {
		share := cfg.Operations / cfg.Workers
		if w < cfg.Operations%cfg.Workers {
			share++
		}

		r := &reader{
			lib:         lib,
			books:       books,
			users:       users,
			rnd:         rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(w))), //nolint:gosec // reproducible, not secret
			returnRatio: cfg.ReturnRatio,
		}

		group.Go(func() error {
			outcomes, err := r.run(groupCtx, share)
			merge(outcomes)

			return err
		})
	}

	err := group.Wait()
	result.Duration = time.Since(start)

	if err != nil {
		return result, err
	}

	if err = lib.CheckInvariants(); err != nil {
		return result, errors.Join(ErrSimulationFailed, err)
	}

	args := []any{
		"workers", cfg.Workers,
		"operations", result.Total(),
		"borrows", result.Outcomes[OutcomeSuccessBorrow],
		"returns", result.Outcomes[OutcomeSuccessReturn],
		"duration_ms", float64(result.Duration.Microseconds()) / 1e3,
	}

	switch {
	case cfg.ContextualLogger != nil:
		cfg.ContextualLogger.InfoContext(ctx, logMsgCompleted, args...)
	case cfg.Logger != nil:
		cfg.Logger.Info(logMsgCompleted, args...)
	}

	return result, nil
}

// reader is one worker. Power users keep borrowing until they hit the limit.
type reader struct {
	lib         *library.Library
	books       []core.ISBNString
	users       []core.UserIDString
	rnd         *rand.Rand
	returnRatio float64
}

func (r *reader) run(ctx context.Context, operations int) (map[string]int, error) {
	outcomes := make(map[string]int)

	for range operations {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		key, err := r.step(ctx)
		if err != nil {
			return outcomes, errors.Join(ErrSimulationFailed, err)
		}

		outcomes[key]++
	}

	return outcomes, nil
}

// step performs one borrow or return and returns its outcome key.
func (r *reader) step(ctx context.Context) (string, error) {
	userID := r.users[r.rnd.IntN(len(r.users))]
	powerUser := r.rnd.Float64() < powerUserShare

	user, err := r.lib.GetUser(userID)
	if err != nil {
		return outcomeOf(OutcomeSuccessBorrow, err)
	}

	if len(user.BorrowedBooks) > 0 && !powerUser && r.rnd.Float64() < r.returnRatio {
		isbn := user.BorrowedBooks[r.rnd.IntN(len(user.BorrowedBooks))]
		return outcomeOf(OutcomeSuccessReturn, r.lib.Return(ctx, userID, isbn))
	}

	isbn := r.books[r.rnd.IntN(len(r.books))]

	return outcomeOf(OutcomeSuccessBorrow, r.lib.Borrow(ctx, userID, isbn))
}

// outcomeOf maps domain rejections to their code and passes anything else through.
func outcomeOf(success string, err error) (string, error) {
	if err == nil {
		return success, nil
	}

	if code := core.CodeOf(err); code != "" {
		return string(code), nil
	}

	return "", err
}

func isbnsOf(books []core.Book) []core.ISBNString {
	isbns := make([]core.ISBNString, 0, len(books))
	for _, book := range books {
		isbns = append(isbns, book.ISBN)
	}

	return isbns
}

func userIDsOf(users []core.User) []core.UserIDString {
	ids := make([]core.UserIDString, 0, len(users))
	for _, user := range users {
		ids = append(ids, user.UserID)
	}

	return ids
}
