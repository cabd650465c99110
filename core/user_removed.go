package core

import (
	"time"
)

// UserRemovedEventType is the event type identifier.
const UserRemovedEventType = "UserRemoved"

// UserRemoved represents when a user leaves the library.
type UserRemoved struct {
	EventType  EventTypeString
	UserID     UserIDString
	Name       string
	OccurredAt OccurredAt
}

// BuildUserRemoved creates a new UserRemoved event.
func BuildUserRemoved(user User, occurredAt time.Time) UserRemoved {
	return UserRemoved{
		EventType:  UserRemovedEventType,
		UserID:     user.UserID,
		Name:       user.Name,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e UserRemoved) IsEventType() string {
	return UserRemovedEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserRemoved) HasOccurredAt() time.Time {
	return e.OccurredAt
}
