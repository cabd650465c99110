package library

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/shell"
)

// ErrReadingHistoryFailed is joined with journal and mapping errors of the history queries.
var ErrReadingHistoryFailed = errors.New("reading history failed")

// History actions.
const (
	ActionAddBook    = "add_book"
	ActionAddCopies  = "add_copies"
	ActionRemoveBook = "remove_book"
	ActionAddUser    = "add_user"
	ActionRemoveUser = "remove_user"
	ActionBorrow     = "borrow"
	ActionReturn     = "return"
)

// HistoryEntry is one journaled operation. Fields that do not apply to the action are empty.
type HistoryEntry struct {
	SequenceNumber uint      `json:"sequence_number"`
	Action         string    `json:"action"`
	ISBN           string    `json:"isbn,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	Title          string    `json:"title,omitempty"`
	Name           string    `json:"name,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type correlationKey struct{}

// ContextWithCorrelationID makes every event journaled under ctx carry correlationID.
func ContextWithCorrelationID(ctx context.Context, correlationID uuid.UUID) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlationID)
}

func correlationIDFrom(ctx context.Context) uuid.UUID {
	correlationID, _ := ctx.Value(correlationKey{}).(uuid.UUID)
	return correlationID
}

// publish journals event and queues its notification, then passes the journal turn on.
// The caller's mutation took the turn in its commit hook.
func (l *Library) publish(ctx context.Context, o *observation, event core.DomainEvent, action, message string) {
	defer l.journalTurn.Unlock()

	l.record(ctx, o, event)
	l.notify(ctx, action, event.HasOccurredAt(), message)
}

// record journals event for an already committed operation. Failures are observed, not returned.
func (l *Library) record(ctx context.Context, o *observation, event core.DomainEvent) {
	storable, err := shell.StorableEventFrom(event, shell.NewEventMetadata(correlationIDFrom(ctx)))
	if err != nil {
		o.journalFailed(err, 0)
		return
	}

	options := slices.Clone(l.retryOptions)
	if l.observers.metrics != nil {
		options = append(options, shell.WithMetrics(l.observers.metrics, o.operation))
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		return l.journal.Append(ctx, storable)
	}, options...)
	if err != nil {
		o.journalFailed(err, meta.Attempts)
	}
}

// History returns the latest limit journaled operations, newest first.
func (l *Library) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	return l.history(ctx, eventstore.BuildEventFilter().MatchingAnyEvent(), limit, nil)
}

// UserHistory returns the latest limit journaled operations concerning userID, newest first.
func (l *Library) UserHistory(ctx context.Context, userID core.UserIDString, limit int) ([]HistoryEntry, error) {
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P(core.PayloadKeyUserID, userID)).
		Finalize()

	return l.history(ctx, filter, limit, map[string]string{logAttrUserID: userID})
}

// BookHistory returns the latest limit journaled operations concerning isbn, newest first.
func (l *Library) BookHistory(ctx context.Context, isbn core.ISBNString, limit int) ([]HistoryEntry, error) {
	filter := eventstore.BuildEventFilter().
		Matching().
		AnyPredicateOf(eventstore.P(core.PayloadKeyISBN, isbn)).
		Finalize()

	return l.history(ctx, filter, limit, map[string]string{logAttrISBN: isbn})
}

func (l *Library) history(ctx context.Context, filter eventstore.Filter, limit int, attrs map[string]string) ([]HistoryEntry, error) {
	if limit < 1 {
		return []HistoryEntry{}, nil
	}

	o, ctx := l.observe(ctx, OperationHistory, attrs)

	storableEvents, _, err := l.journal.Query(ctx, filter.Latest(limit))
	if err != nil {
		return nil, o.finish(errors.Join(ErrReadingHistoryFailed, err))
	}

	envelopes, err := shell.EventEnvelopesFrom(storableEvents)
	if err != nil {
		return nil, o.finish(errors.Join(ErrReadingHistoryFailed, err))
	}

	entries := make([]HistoryEntry, 0, len(envelopes))
	for _, envelope := range slices.Backward(envelopes) {
		entries = append(entries, historyEntryFrom(envelope))
	}

	return entries, o.finish(nil)
}

func historyEntryFrom(envelope shell.EventEnvelope) HistoryEntry {
	entry := HistoryEntry{
		SequenceNumber: envelope.SequenceNumber,
		OccurredAt:     envelope.DomainEvent.HasOccurredAt(),
	}

	switch event := envelope.DomainEvent.(type) {
	case core.BookAddedToCatalog:
		entry.Action, entry.ISBN, entry.Title = ActionAddBook, event.ISBN, event.Title
	case core.BookCopiesAdded:
		entry.Action, entry.ISBN, entry.Title = ActionAddCopies, event.ISBN, event.Title
	case core.BookRemovedFromCatalog:
		entry.Action, entry.ISBN, entry.Title = ActionRemoveBook, event.ISBN, event.Title
	case core.UserRegistered:
		entry.Action, entry.UserID, entry.Name = ActionAddUser, event.UserID, event.Name
	case core.UserRemoved:
		entry.Action, entry.UserID, entry.Name = ActionRemoveUser, event.UserID, event.Name
	case core.BookCopyLentToUser:
		entry.Action, entry.ISBN, entry.Title, entry.UserID, entry.Name = ActionBorrow, event.ISBN, event.Title, event.UserID, event.UserName
	case core.BookCopyReturnedByUser:
		entry.Action, entry.ISBN, entry.Title, entry.UserID, entry.Name = ActionReturn, event.ISBN, event.Title, event.UserID, event.UserName
	}

	return entry
}
