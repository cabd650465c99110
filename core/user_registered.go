package core

import (
	"time"
)

// UserRegisteredEventType is the event type identifier.
const UserRegisteredEventType = "UserRegistered"

// UserRegistered represents when a user joins the library.
type UserRegistered struct {
	EventType  EventTypeString
	UserID     UserIDString
	Name       string
	Email      string
	OccurredAt OccurredAt
}

// BuildUserRegistered creates a new UserRegistered event.
func BuildUserRegistered(user User, occurredAt time.Time) UserRegistered {
	return UserRegistered{
		EventType:  UserRegisteredEventType,
		UserID:     user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

// IsEventType returns the event type identifier.
func (e UserRegistered) IsEventType() string {
	return UserRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e UserRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}
