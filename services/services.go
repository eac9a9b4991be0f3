// Package services holds the lifecycle controllers for users, follows,
// drawings and comments. Every multi-document write runs inside one store
// transaction, and every failure leaving this package is a *core.Error.
package services

import (
	"context"
	"drawshare/core"
	"drawshare/media"
	"errors"
	"strings"
)

type Services struct {
	Users    *Users
	Follows  *Follows
	Drawings *Drawings
	Comments *Comments
}

func New(store core.Store, coordinator *media.Coordinator) *Services {
	return &Services{
		Users:    &Users{store: store, media: coordinator},
		Follows:  &Follows{store: store},
		Drawings: &Drawings{store: store, media: coordinator},
		Comments: &Comments{store: store},
	}
}

// AssertOwner fails with ErrForbidden unless caller owns resource.
func AssertOwner(resource core.Owned, caller *core.User, message string) error {
	if caller == nil || resource == nil || resource.OwnerID() == "" || resource.OwnerID() != caller.ID {
		return core.Forbidden(message)
	}
	return nil
}

// failed keeps typed errors and turns anything else into an upstream
// failure with the given message.
func failed(err error, message string) error {
	var typed *core.Error
	if errors.As(err, &typed) {
		return err
	}
	return core.Upstream(message, err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// userCache resolves user references for populated views.
type userCache struct {
	repo  core.UserRepository
	users map[string]*core.User
}

func newUserCache(repo core.UserRepository) *userCache {
	return &userCache{repo: repo, users: map[string]*core.User{}}
}

// get returns nil for users that no longer exist.
func (c *userCache) get(ctx context.Context, id string) (*core.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	u, err := c.repo.FindUserByID(ctx, id)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}
	c.users[id] = u
	return u, nil
}
