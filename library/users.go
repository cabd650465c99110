package library

import (
	"context"
	"fmt"

	"github.com/AntonStoeckl/library-lending-engine/core"
	"github.com/AntonStoeckl/library-lending-engine/registry"
)

type (
	// UserFilter narrows ListUsers results. The zero value matches every user.
	UserFilter = registry.Filter

	// UserSortKey selects the order of ListUsers results.
	UserSortKey = registry.SortKey
)

// AddUser registers a new user.
func (l *Library) AddUser(ctx context.Context, nu core.NewUser) (core.User, error) {
	o, ctx := l.observe(ctx, OperationAddUser, map[string]string{logAttrUserID: nu.UserID})

	user, err := l.registry.AddUser(nu)
	if err != nil {
		return core.User{}, o.finish(err)
	}

	l.publish(ctx, o, core.BuildUserRegistered(user, l.now()),
		ActionAddUser, fmt.Sprintf("User registered: %s", user.Name))

	return user, o.finish(nil)
}

// RemoveUser removes a user without active loans.
func (l *Library) RemoveUser(ctx context.Context, userID core.UserIDString) error {
	o, ctx := l.observe(ctx, OperationRemoveUser, map[string]string{logAttrUserID: userID})

	user, err := l.registry.RemoveUser(userID)
	if err != nil {
		return o.finish(err)
	}

	l.publish(ctx, o, core.BuildUserRemoved(user, l.now()),
		ActionRemoveUser, fmt.Sprintf("User removed: %s", user.Name))

	return o.finish(nil)
}

// GetUser returns the user with userID.
func (l *Library) GetUser(userID core.UserIDString) (core.User, error) {
	return l.registry.FindByID(userID)
}

// FindUsersByName returns the users whose name starts with prefix, case-insensitively.
func (l *Library) FindUsersByName(prefix string) []core.User {
	return l.registry.FindByName(prefix)
}

// FindUsersByEmail returns the users registered with email, compared case-insensitively.
func (l *Library) FindUsersByEmail(email string) []core.User {
	return l.registry.FindByEmail(email)
}

// SearchUsers returns the users whose id, name or email contains query, case-insensitively.
func (l *Library) SearchUsers(query string) []core.User {
	return l.registry.Search(query)
}

// ListUsers returns the users matching filter in the order of sortKey.
func (l *Library) ListUsers(filter UserFilter, sortKey UserSortKey) []core.User {
	return l.registry.List(filter, sortKey)
}
