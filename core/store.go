package core

import (
	"context"
	"time"
)

type (
	// Owned is implemented by resources that carry an owner reference.
	Owned interface {
		OwnerID() string
	}

	UserRepository interface {
		FindUserByID(ctx context.Context, id string) (*User, error)
		FindUserByEmail(ctx context.Context, email string) (*User, error)
		ListUsers(ctx context.Context) ([]*User, error)
		// InsertUser assigns a new id to user and stores it. It returns
		// ErrDuplicate when the email is already registered.
		InsertUser(ctx context.Context, user *User) error
		SaveUser(ctx context.Context, user *User) error
	}

	DrawingRepository interface {
		FindDrawingByID(ctx context.Context, id string) (*Drawing, error)
		ListDrawings(ctx context.Context, filter DrawingFilter) ([]*Drawing, error)
		InsertDrawing(ctx context.Context, drawing *Drawing) error
		SaveDrawing(ctx context.Context, drawing *Drawing) error
		DeleteDrawing(ctx context.Context, id string) error
		// IncrementLikeCount atomically adds one to the drawing's like count
		// and returns the updated drawing.
		IncrementLikeCount(ctx context.Context, id string) (*Drawing, error)
	}

	CommentRepository interface {
		FindCommentByID(ctx context.Context, id string) (*Comment, error)
		ListComments(ctx context.Context, filter CommentFilter) ([]*Comment, error)
		InsertComment(ctx context.Context, comment *Comment) error
		DeleteComment(ctx context.Context, id string) error
	}

	// Repository is the document capability shared by a store and its
	// transactions. Find and Delete methods return ErrNotFound for unknown
	// ids. Returned documents are copies owned by the caller.
	Repository interface {
		UserRepository
		DrawingRepository
		CommentRepository
	}

	// Store is the persistent document store.
	Store interface {
		Repository

		// WithTransaction runs fn against a transactional repository. Writes
		// made through tx become visible together when fn returns nil and
		// are discarded when it returns an error.
		WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error

		Close() error
	}

	// BlobStore holds binary objects such as drawing images and avatars.
	BlobStore interface {
		Put(ctx context.Context, key string, data []byte, contentType string) error
		// Delete removes the object. Deleting a missing key is not an error.
		Delete(ctx context.Context, key string) error
		// URL returns the public URL of key. Its last path segment is key.
		URL(key string) string
	}

	// TokenDenylist remembers session tokens revoked by logout until they
	// would have expired anyway.
	TokenDenylist interface {
		Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
	}
)
