package library_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-lending-engine/library"
	"github.com/AntonStoeckl/library-lending-engine/testutil/spies"
)

func Test_Library_Notifications(t *testing.T) {
	// arrange
	ctx := context.Background()
	metrics := spies.NewMetricsCollectorSpy(true)
	lib := newLibrary(t, library.WithMetrics(metrics))
	addBook(t, lib, "978-1", 1)
	addUser(t, lib, "u1")
	require.NoError(t, lib.Borrow(ctx, "u1", "978-1"))
	require.NoError(t, lib.Return(ctx, "u1", "978-1"))
	require.Error(t, lib.Return(ctx, "u1", "978-1"))

	// act
	notifications := lib.DrainNotifications()

	// assert
	messages := make([]string, 0, len(notifications))
	for _, n := range notifications {
		messages = append(messages, n.Message)
		assert.Equal(t, fixedNow, n.OccurredAt)
	}

	assert.Equal(t, []string{
		"Book added: Title 978-1 (1 copies)",
		"User registered: Name u1",
		"Loan: Title 978-1 -> Name u1",
		"Return: Title 978-1 <- Name u1",
	}, messages)
	assert.Empty(t, lib.DrainNotifications())
	assert.True(t, metrics.HasValueRecordForMetric(library.PendingNotificationsMetric).Assert())
}

func Test_Library_NotificationsDropTheOldest(t *testing.T) {
	// arrange
	lib := newLibrary(t, library.WithNotificationCapacity(3))

	// act
	for i := range 5 {
		addUser(t, lib, fmt.Sprintf("u%d", i))
	}

	// assert
	notifications := lib.DrainNotifications()
	require.Len(t, notifications, 3)
	assert.Equal(t, "User registered: Name u2", notifications[0].Message)
	assert.Equal(t, "User registered: Name u4", notifications[2].Message)
	assert.Equal(t, 2, lib.DroppedNotifications())

	addUser(t, lib, "u9")
	assert.Len(t, lib.DrainNotifications(), 1)
}
