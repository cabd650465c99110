package library_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/eventstore"
	"github.com/AntonStoeckl/library-lending-engine/eventstore/memengine"
	"github.com/AntonStoeckl/library-lending-engine/library"
	"github.com/AntonStoeckl/library-lending-engine/shell"
)

func Test_Library_History(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := newLibrary(t)
	addBook(t, lib, "978-1", 2)
	addBook(t, lib, "978-2", 1)
	addUser(t, lib, "u1")
	require.NoError(t, lib.Borrow(ctx, "u1", "978-1"))
	require.ErrorIs(t, lib.Borrow(ctx, "u1", "978-1"), core.ErrAlreadyBorrowed)
	require.NoError(t, lib.Return(ctx, "u1", "978-1"))
	_, err := lib.AddCopies(ctx, "978-2", 1)
	require.NoError(t, err)

	// act
	entries, err := lib.History(ctx, 3)

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, library.HistoryEntry{
		SequenceNumber: 6,
		Action:         library.ActionAddCopies,
		ISBN:           "978-2",
		Title:          "Title 978-2",
		OccurredAt:     fixedNow,
	}, entries[0])
	assert.Equal(t, library.HistoryEntry{
		SequenceNumber: 5,
		Action:         library.ActionReturn,
		ISBN:           "978-1",
		UserID:         "u1",
		Title:          "Title 978-1",
		Name:           "Name u1",
		OccurredAt:     fixedNow,
	}, entries[1])
	assert.Equal(t, library.ActionBorrow, entries[2].Action)

	all, err := lib.History(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, library.ActionAddBook, all[5].Action)

	none, err := lib.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func Test_Library_UserAndBookHistory(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := newLibrary(t)
	addBook(t, lib, "978-1", 1)
	addBook(t, lib, "978-2", 1)
	addUser(t, lib, "u1")
	addUser(t, lib, "u2")
	require.NoError(t, lib.Borrow(ctx, "u1", "978-1"))
	require.NoError(t, lib.Borrow(ctx, "u2", "978-2"))
	require.NoError(t, lib.Return(ctx, "u1", "978-1"))

	// act
	userEntries, userErr := lib.UserHistory(ctx, "u1", 10)
	bookEntries, bookErr := lib.BookHistory(ctx, "978-2", 10)

	// assert
	require.NoError(t, userErr)
	require.NoError(t, bookErr)

	actions := func(entries []library.HistoryEntry) []string {
		out := make([]string, 0, len(entries))
		for _, entry := range entries {
			out = append(out, entry.Action)
		}

		return out
	}

	assert.Equal(t, []string{library.ActionReturn, library.ActionBorrow, library.ActionAddUser}, actions(userEntries))
	assert.Equal(t, []string{library.ActionBorrow, library.ActionAddBook}, actions(bookEntries))
}

func Test_Library_ConcurrentLoanCycles_JournalInCommitOrder(t *testing.T) {
	// arrange
	ctx := context.Background()
	lib := newLibrary(t, library.WithNotificationCapacity(10_000))
	addBook(t, lib, "978-1", 1)
	addUser(t, lib, "u1")
	lib.DrainNotifications()

	const workers, cycles = 8, 100
	var borrows, returns atomic.Int64
	var wg sync.WaitGroup

	// act
	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range cycles {
				if lib.Borrow(ctx, "u1", "978-1") == nil {
					borrows.Add(1)
				}

				if lib.Return(ctx, "u1", "978-1") == nil {
					returns.Add(1)
				}
			}
		}()
	}

	wg.Wait()

	// assert
	require.Positive(t, borrows.Load())

	alternates := func(t *testing.T, entries []library.HistoryEntry, first string) {
		t.Helper()

		oldestFirst := slices.Clone(entries)
		slices.Reverse(oldestFirst)
		require.NotEmpty(t, oldestFirst)
		assert.Equal(t, first, oldestFirst[0].Action)

		for i, entry := range oldestFirst[1:] {
			expected := library.ActionBorrow
			if i%2 == 1 {
				expected = library.ActionReturn
			}

			require.Equal(t, expected, entry.Action, "entry %d", i+1)
		}

		for i := 1; i < len(entries); i++ {
			assert.Greater(t, entries[i-1].SequenceNumber, entries[i].SequenceNumber)
		}
	}

	bookEntries, err := lib.BookHistory(ctx, "978-1", 10_000)
	require.NoError(t, err)
	alternates(t, bookEntries, library.ActionAddBook)
	assert.Len(t, bookEntries, int(1+borrows.Load()+returns.Load()))

	userEntries, err := lib.UserHistory(ctx, "u1", 10_000)
	require.NoError(t, err)
	alternates(t, userEntries, library.ActionAddUser)

	book, err := lib.GetBook("978-1")
	require.NoError(t, err)
	latest := bookEntries[0].Action
	assert.Equal(t, book.AvailableCopies == 0, latest == library.ActionBorrow, "the newest entry matches the current state")

	notifications := lib.DrainNotifications()
	require.Len(t, notifications, int(borrows.Load()+returns.Load()))
	for i, n := range notifications {
		expected := library.ActionBorrow
		if i%2 == 1 {
			expected = library.ActionReturn
		}

		require.Equal(t, expected, n.Action, "notification %d", i)
	}

	require.NoError(t, lib.CheckInvariants())
}

func Test_Library_JournalsEventsWithCorrelation(t *testing.T) {
	// arrange
	journal, err := memengine.NewEventStore()
	require.NoError(t, err)
	lib := newLibrary(t, library.WithJournal(journal))
	correlationID := uuid.New()
	ctx := library.ContextWithCorrelationID(context.Background(), correlationID)

	// act
	_, err = lib.AddUser(ctx, core.NewUser{UserID: "u1", Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)
	_, _ = lib.AddUser(ctx, core.NewUser{UserID: "u1", Name: "Ana", Email: "ana@example.com"})

	// assert
	events, maxSeq, err := journal.Query(context.Background(), eventstore.BuildEventFilter().MatchingAnyEvent())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(1), maxSeq)
	assert.Equal(t, core.UserRegisteredEventType, events[0].EventType)
	assert.Equal(t, fixedNow, events[0].OccurredAt)

	metadata, err := shell.EventMetadataFrom(events[0])
	require.NoError(t, err)
	assert.Equal(t, correlationID.String(), metadata.CorrelationID)
	assert.Equal(t, metadata.MessageID, metadata.CausationID)
}
