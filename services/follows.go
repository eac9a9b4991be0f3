package services

import (
	"context"
	"drawshare/core"

	"github.com/sirupsen/logrus"
)

// Follows maintains the symmetric follow graph: a.Following contains b
// exactly when b.Followers contains a.
type Follows struct {
	store core.Store
}

func checkFollowTarget(caller *core.User, targetID string) error {
	if caller == nil {
		return core.Unauthorized("Not authorized, please log in.")
	}
	if blank(targetID) {
		return core.Validation("Invalid inputs passed, a user id to follow is required.")
	}
	return nil
}

// Follow makes caller follow the target user and returns the updated caller.
func (s *Follows) Follow(ctx context.Context, caller *core.User, targetID string) (*core.User, error) {
	if err := checkFollowTarget(caller, targetID); err != nil {
		return nil, err
	}
	if targetID == caller.ID {
		return nil, core.InvalidOperation("You cannot follow yourself.")
	}

	var updated *core.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		target, err := tx.FindUserByID(ctx, targetID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided user id.", "Following the user failed, please try again.")
		}
		me, err := tx.FindUserByID(ctx, caller.ID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided user id.", "Following the user failed, please try again.")
		}
		if me.IsFollowing(target.ID) {
			return core.Conflict("You are already following this user.")
		}

		target.Followers = core.PushID(target.Followers, me.ID)
		me.Following = core.PushID(me.Following, target.ID)
		if err := tx.SaveUser(ctx, target); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, me); err != nil {
			return err
		}
		updated = me
		return nil
	})
	if err != nil {
		return nil, failed(err, "Following the user failed, please try again.")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   caller.ID,
		"follow_id": targetID,
	}).Info("User followed")
	return updated, nil
}

// Unfollow removes the follow edge in both directions. Unfollowing a user
// that is not followed succeeds without changes.
func (s *Follows) Unfollow(ctx context.Context, caller *core.User, targetID string) (*core.User, error) {
	if err := checkFollowTarget(caller, targetID); err != nil {
		return nil, err
	}
	if targetID == caller.ID {
		return nil, core.InvalidOperation("You cannot unfollow yourself.")
	}

	var updated *core.User
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		target, err := tx.FindUserByID(ctx, targetID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided user id.", "Unfollowing the user failed, please try again.")
		}
		me, err := tx.FindUserByID(ctx, caller.ID)
		if err != nil {
			return core.Lookup(err, "Could not find user for the provided user id.", "Unfollowing the user failed, please try again.")
		}

		target.Followers = core.PullID(target.Followers, me.ID)
		me.Following = core.PullID(me.Following, target.ID)
		if err := tx.SaveUser(ctx, target); err != nil {
			return err
		}
		if err := tx.SaveUser(ctx, me); err != nil {
			return err
		}
		updated = me
		return nil
	})
	if err != nil {
		return nil, failed(err, "Unfollowing the user failed, please try again.")
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   caller.ID,
		"follow_id": targetID,
	}).Info("User unfollowed")
	return updated, nil
}
