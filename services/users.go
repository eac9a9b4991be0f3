package services

import (
	"context"
	"drawshare/auth"
	"drawshare/core"
	"drawshare/media"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

const minPasswordLength = 6

type Users struct {
	store core.Store
	media *media.Coordinator
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Image    *core.Image
}

// UpdateInput patches a user. Nil fields are left unchanged.
type UpdateInput struct {
	Username *string
	Email    *string
	Password *string
	Image    *core.Image
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", core.Validation("Invalid inputs passed, please provide a valid email.")
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return core.Validation("Invalid inputs passed, the password needs at least 6 characters.")
	}
	return nil
}

func (s *Users) Signup(ctx context.Context, in SignupInput) (*core.User, error) {
	if blank(in.Username) || blank(in.Email) || in.Password == "" {
		return nil, core.Validation("Invalid inputs passed, please check your data.")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	_, err = s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, core.Conflict("User exists already, please login instead.")
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, core.Upstream("Signing up failed, please try again later.", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, core.Upstream("Could not create user, please try again.", err)
	}

	user := &core.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     email,
		Password:  hash,
		Drawings:  []string{},
		Following: []string{},
		Followers: []string{},
	}
	if in.Image != nil {
		url, err := s.media.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		user.Image = url
	}

	if err := s.store.InsertUser(ctx, user); err != nil {
		s.media.DiscardQuietly(ctx, user.Image)
		if errors.Is(err, core.ErrDuplicate) {
			return nil, core.Conflict("User exists already, please login instead.")
		}
		return nil, core.Upstream("Signing up failed, please try again later.", err)
	}

	logrus.WithField("user_id", user.ID).Info("User signed up")
	return user, nil
}

// Login returns the user matching email and password. Unknown emails and
// wrong passwords fail identically.
func (s *Users) Login(ctx context.Context, email, password string) (*core.User, error) {
	invalid := core.Unauthorized("Invalid credentials, could not log you in.")

	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, core.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, core.Upstream("Logging in failed, please try again later.", err)
	}
	if !auth.MatchPassword(password, user.Password) {
		return nil, invalid
	}
	return user, nil
}

func (s *Users) Get(ctx context.Context, id string) (*core.User, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, core.Lookup(err, "Could not find user for the provided user id.", "Fetching user failed, please try again later.")
	}
	return user, nil
}

func (s *Users) List(ctx context.Context) ([]*core.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, core.Upstream("Fetching users failed, please try again later.", err)
	}
	if users == nil {
		users = []*core.User{}
	}
	return users, nil
}

// Update patches the caller's own account. A replaced avatar is removed
// from the blob store after the new document is saved.
func (s *Users) Update(ctx context.Context, caller *core.User, in UpdateInput) (*core.User, error) {
	if caller == nil {
		return nil, core.Unauthorized("Not authorized, please log in.")
	}
	if in.Username != nil && blank(*in.Username) {
		return nil, core.Validation("Invalid inputs passed, username cannot be empty.")
	}
	var email string
	if in.Email != nil {
		var err error
		if email, err = normalizeEmail(*in.Email); err != nil {
			return nil, err
		}
	}
	var hash string
	if in.Password != nil {
		if err := checkPassword(*in.Password); err != nil {
			return nil, err
		}
		var err error
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, core.Upstream("Updating user failed, please try again.", err)
		}
	}

	var newImage string
	if in.Image != nil {
		url, err := s.media.Upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		newImage = url
	}

	var updated *core.User
	var oldImage string
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		user, err := tx.FindUserByID(ctx, caller.ID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided user id.", "Updating user failed, please try again.")
		}
		if in.Email != nil && email != user.Email {
			_, err := tx.FindUserByEmail(ctx, email)
			if err == nil {
				return core.Conflict("Email is already in use.")
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}
			user.Email = email
		}
		if in.Username != nil {
			user.Username = strings.TrimSpace(*in.Username)
		}
		if hash != "" {
			user.Password = hash
		}
		if newImage != "" {
			oldImage = user.Image
			user.Image = newImage
		}

		if err := tx.SaveUser(ctx, user); err != nil {
			if errors.Is(err, core.ErrDuplicate) {
				return core.Conflict("Email is already in use.")
			}
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		s.media.DiscardQuietly(ctx, newImage)
		return nil, failed(err, "Updating user failed, please try again.")
	}

	logrus.WithField("user_id", updated.ID).Info("User updated")
	if oldImage != "" {
		if err := s.media.Discard(ctx, oldImage); err != nil {
			return nil, err
		}
	}
	return updated, nil
}
