package registry

import (
	"cmp"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/index"
)

// Registry holds the user records and their indices.
type Registry struct {
	mu      sync.RWMutex
	byID    *index.Tree[core.UserIDString, *Entry]
	byName  *index.Multi[string, core.UserIDString]
	byEmail *index.Multi[string, core.UserIDString]

	maxLoans int
	onCommit func()
}

// Option defines a functional option for configuring a Registry.
type Option func(*Registry)

// WithMaxLoansPerUser sets the loan limit. Values below 1 are ignored.
func WithMaxLoansPerUser(n int) Option {
	return func(r *Registry) {
		if n >= 1 {
			r.maxLoans = n
		}
	}
}

// WithCommitHook sets a function that runs after every successful mutation, while the
// mutated record is still locked.
func WithCommitHook(hook func()) Option {
	return func(r *Registry) {
		r.onCommit = hook
	}
}

// New creates an empty Registry.
func New(options ...Option) *Registry {
	r := &Registry{
		byID:     index.New[core.UserIDString, *Entry](),
		byName:   index.NewMulti[string, core.UserIDString](),
		byEmail:  index.NewMulti[string, core.UserIDString](),
		maxLoans: core.DefaultMaxLoansPerUser,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// MaxLoansPerUser returns the configured loan limit.
func (r *Registry) MaxLoansPerUser() int {
	return r.maxLoans
}

// AddUser validates nu and links a new record into all three indices.
func (r *Registry) AddUser(nu core.NewUser) (core.User, error) {
	nu = nu.Normalized()
	if err := nu.Validate(); err != nil {
		return core.User{}, err
	}

	entry := newEntry(nu, r.maxLoans)

	entry.Lock()
	defer entry.Unlock()

	if err := r.link(entry); err != nil {
		return core.User{}, err
	}

	r.committed()

	return entry.SnapshotLocked(), nil
}

func (r *Registry) link(entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.byID.Insert(entry.userID, entry); err != nil {
		if errors.Is(err, index.ErrDuplicateKey) {
			return core.NewError(core.ErrDuplicateUserID, "user id %s already exists", entry.userID)
		}

		return err
	}

	_ = r.byName.Add(foldKey(entry.name), entry.userID)
	_ = r.byEmail.Add(foldKey(entry.email), entry.userID)

	return nil
}

func (r *Registry) committed() {
	if r.onCommit != nil {
		r.onCommit()
	}
}

// RemoveUser unlinks a user without active loans from all three indices.
func (r *Registry) RemoveUser(userID core.UserIDString) (core.User, error) {
	entry, err := r.LookupForMutation(userID)
	if err != nil {
		return core.User{}, err
	}

	entry.Lock()
	defer entry.Unlock()

	if entry.removed {
		return core.User{}, userNotFound(userID)
	}

	if n := entry.borrowed.Len(); n > 0 {
		return core.User{}, core.NewError(core.ErrActiveLoans, "user %s has %d active loans", userID, n)
	}

	r.mu.Lock()
	_ = r.byID.Remove(entry.userID)
	_ = r.byName.Remove(foldKey(entry.name), entry.userID)
	_ = r.byEmail.Remove(foldKey(entry.email), entry.userID)
	r.mu.Unlock()

	entry.removed = true
	r.committed()

	return entry.SnapshotLocked(), nil
}

// LookupForMutation returns the live entry of userID. The caller locks it and must
// check Removed before touching it.
func (r *Registry) LookupForMutation(userID core.UserIDString) (*Entry, error) {
	r.mu.RLock()
	entry, found := r.byID.Find(strings.TrimSpace(userID))
	r.mu.RUnlock()

	if !found {
		return nil, userNotFound(userID)
	}

	return entry, nil
}

// FindByID returns a snapshot of the user.
func (r *Registry) FindByID(userID core.UserIDString) (core.User, error) {
	entry, err := r.LookupForMutation(userID)
	if err != nil {
		return core.User{}, err
	}

	user, ok := entry.Snapshot()
	if !ok {
		return core.User{}, userNotFound(userID)
	}

	return user, nil
}

// FindByName returns the users whose name starts with prefix, case-insensitive.
func (r *Registry) FindByName(prefix string) []core.User {
	r.mu.RLock()
	entries := r.collect(index.MultiPrefix(r.byName, foldKey(prefix)))
	r.mu.RUnlock()

	return snapshots(entries)
}

// FindByEmail returns the users registered with email, case-insensitive.
// Emails are not unique, so there may be more than one.
func (r *Registry) FindByEmail(email string) []core.User {
	r.mu.RLock()
	ids := r.byEmail.Get(foldKey(email))
	entries := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		if entry, found := r.byID.Find(id); found {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	return snapshots(entries)
}

// Search returns the users whose id, name or email contains query, case-insensitive.
func (r *Registry) Search(query string) []core.User {
	needle := foldKey(query)

	r.mu.RLock()
	entries := make([]*Entry, 0)
	for _, entry := range r.byID.All() {
		if entry.matches(needle) {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	return snapshots(entries)
}

// SortKey selects the order of List results.
type SortKey string

const (
	SortByUserID   SortKey = "user_id"
	SortByName     SortKey = "name"
	SortByActivity SortKey = "activity"
	SortByBorrowed SortKey = "borrowed"
)

// Filter narrows List results. The zero value matches every user.
type Filter struct {
	Query      string
	ActiveOnly bool // at least one book on loan
}

// List returns the users matching filter in the order given by sortKey.
// Activity and borrowed orders are descending with user id as tie breaker.
func (r *Registry) List(filter Filter, sortKey SortKey) []core.User {
	var entries []*Entry

	needle := foldKey(filter.Query)

	r.mu.RLock()
	if sortKey == SortByName {
		entries = r.collect(r.byName.All())
	} else {
		entries = make([]*Entry, 0, r.byID.Len())
		for _, entry := range r.byID.All() {
			entries = append(entries, entry)
		}
	}
	r.mu.RUnlock()

	users := make([]core.User, 0, len(entries))
	for _, entry := range entries {
		if needle != "" && !entry.matches(needle) {
			continue
		}

		user, ok := entry.Snapshot()
		if !ok || (filter.ActiveOnly && user.BorrowedCount == 0) {
			continue
		}

		users = append(users, user)
	}

	switch sortKey {
	case SortByActivity:
		slices.SortStableFunc(users, func(a, b core.User) int {
			return cmp.Or(cmp.Compare(b.ActivityScore, a.ActivityScore), cmp.Compare(a.UserID, b.UserID))
		})
	case SortByBorrowed:
		slices.SortStableFunc(users, func(a, b core.User) int {
			return cmp.Or(cmp.Compare(b.BorrowedCount, a.BorrowedCount), cmp.Compare(a.UserID, b.UserID))
		})
	}

	return users
}

// Entries returns the live entries ordered by user id.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*Entry, 0, r.byID.Len())
	for _, entry := range r.byID.All() {
		entries = append(entries, entry)
	}

	return entries
}

// Users returns snapshots of all users ordered by user id.
func (r *Registry) Users() []core.User {
	return snapshots(r.Entries())
}

// Len returns the number of users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID.Len()
}

func (r *Registry) collect(keys iter.Seq2[string, core.UserIDString]) []*Entry {
	entries := make([]*Entry, 0)
	for _, id := range keys {
		if entry, found := r.byID.Find(id); found {
			entries = append(entries, entry)
		}
	}

	return entries
}

func (e *Entry) matches(needle string) bool {
	return strings.Contains(foldKey(e.userID), needle) ||
		strings.Contains(foldKey(e.name), needle) ||
		strings.Contains(foldKey(e.email), needle)
}

func snapshots(entries []*Entry) []core.User {
	users := make([]core.User, 0, len(entries))
	for _, entry := range entries {
		if user, ok := entry.Snapshot(); ok {
			users = append(users, user)
		}
	}

	return users
}

func foldKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func userNotFound(userID core.UserIDString) error {
	return core.NewError(core.ErrUserNotFound, "user %s not found", userID)
}
