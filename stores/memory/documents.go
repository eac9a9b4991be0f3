package memory

import (
	"context"
	"drawshare/core"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// documentStore keeps every document in maps guarded by one RWMutex.
// Transactions stage their writes on a copy of the maps and swap it in on
// success, so readers never observe half of a transaction.
type documentStore struct {
	mu sync.RWMutex
	st *state
}

func NewDocumentStore() core.Store {
	return &documentStore{st: newState()}
}

func (s *documentStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	if err := fn(ctx, staged); err != nil {
		logrus.WithError(err).Debug("Transaction rolled back")
		return err
	}
	s.st = staged
	return nil
}

func (s *documentStore) Close() error { return nil }

func (s *documentStore) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindUserByID(ctx, id)
}

func (s *documentStore) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindUserByEmail(ctx, email)
}

func (s *documentStore) ListUsers(ctx context.Context) ([]*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListUsers(ctx)
}

func (s *documentStore) InsertUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.InsertUser(ctx, user)
}

func (s *documentStore) SaveUser(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SaveUser(ctx, user)
}

func (s *documentStore) FindDrawingByID(ctx context.Context, id string) (*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindDrawingByID(ctx, id)
}

func (s *documentStore) ListDrawings(ctx context.Context, filter core.DrawingFilter) ([]*core.Drawing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListDrawings(ctx, filter)
}

func (s *documentStore) InsertDrawing(ctx context.Context, drawing *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.InsertDrawing(ctx, drawing)
}

func (s *documentStore) SaveDrawing(ctx context.Context, drawing *core.Drawing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SaveDrawing(ctx, drawing)
}

func (s *documentStore) DeleteDrawing(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteDrawing(ctx, id)
}

func (s *documentStore) IncrementLikeCount(ctx context.Context, id string) (*core.Drawing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.IncrementLikeCount(ctx, id)
}

func (s *documentStore) FindCommentByID(ctx context.Context, id string) (*core.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.FindCommentByID(ctx, id)
}

func (s *documentStore) ListComments(ctx context.Context, filter core.CommentFilter) ([]*core.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.ListComments(ctx, filter)
}

func (s *documentStore) InsertComment(ctx context.Context, comment *core.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.InsertComment(ctx, comment)
}

func (s *documentStore) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.DeleteComment(ctx, id)
}

// state is the unsynchronized document set. It implements core.Repository
// and is handed to transactions directly.
type state struct {
	users    map[string]*core.User
	drawings map[string]*core.Drawing
	comments map[string]*core.Comment
}

func newState() *state {
	return &state{
		users:    make(map[string]*core.User),
		drawings: make(map[string]*core.Drawing),
		comments: make(map[string]*core.Comment),
	}
}

func (st *state) clone() *state {
	c := &state{
		users:    make(map[string]*core.User, len(st.users)),
		drawings: make(map[string]*core.Drawing, len(st.drawings)),
		comments: make(map[string]*core.Comment, len(st.comments)),
	}
	for id, u := range st.users {
		c.users[id] = u.Clone()
	}
	for id, d := range st.drawings {
		c.drawings[id] = d.Clone()
	}
	for id, cm := range st.comments {
		c.comments[id] = cm.Clone()
	}
	return c
}

func (st *state) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	u, ok := st.users[id]
	if !ok {
		logrus.WithField("user_id", id).Debug("User not found")
		return nil, fmt.Errorf("user with id %s: %w", id, core.ErrNotFound)
	}
	return u.Clone(), nil
}

func (st *state) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, core.ErrNotFound)
}

func (st *state) ListUsers(ctx context.Context) ([]*core.User, error) {
	users := make([]*core.User, 0, len(st.users))
	for _, u := range st.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (st *state) InsertUser(ctx context.Context, user *core.User) error {
	for _, u := range st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, core.ErrDuplicate)
		}
	}
	user.ID = ulid.Make().String()
	st.users[user.ID] = user.Clone()

	logrus.WithField("user_id", user.ID).Info("User created successfully")
	return nil
}

func (st *state) SaveUser(ctx context.Context, user *core.User) error {
	if _, ok := st.users[user.ID]; !ok {
		return fmt.Errorf("user with id %s: %w", user.ID, core.ErrNotFound)
	}
	for id, u := range st.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email %s: %w", user.Email, core.ErrDuplicate)
		}
	}
	st.users[user.ID] = user.Clone()
	return nil
}

func (st *state) FindDrawingByID(ctx context.Context, id string) (*core.Drawing, error) {
	d, ok := st.drawings[id]
	if !ok {
		logrus.WithField("drawing_id", id).Debug("Drawing not found")
		return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrNotFound)
	}
	return d.Clone(), nil
}

func (st *state) ListDrawings(ctx context.Context, filter core.DrawingFilter) ([]*core.Drawing, error) {
	drawings := make([]*core.Drawing, 0)
	for _, d := range st.drawings {
		if !filter.Matches(d) {
			continue
		}
		drawings = append(drawings, d.Clone())
	}
	sort.Slice(drawings, func(i, j int) bool { return drawings[i].ID < drawings[j].ID })
	return drawings, nil
}

func (st *state) InsertDrawing(ctx context.Context, drawing *core.Drawing) error {
	drawing.ID = ulid.Make().String()
	if drawing.Comments == nil {
		drawing.Comments = []string{}
	}
	st.drawings[drawing.ID] = drawing.Clone()

	logrus.WithFields(logrus.Fields{
		"drawing_id": drawing.ID,
		"artist_id":  drawing.ArtistID,
	}).Info("Drawing created successfully")
	return nil
}

func (st *state) SaveDrawing(ctx context.Context, drawing *core.Drawing) error {
	if _, ok := st.drawings[drawing.ID]; !ok {
		return fmt.Errorf("drawing with id %s: %w", drawing.ID, core.ErrNotFound)
	}
	st.drawings[drawing.ID] = drawing.Clone()
	return nil
}

func (st *state) DeleteDrawing(ctx context.Context, id string) error {
	if _, ok := st.drawings[id]; !ok {
		return fmt.Errorf("drawing with id %s: %w", id, core.ErrNotFound)
	}
	delete(st.drawings, id)
	logrus.WithField("drawing_id", id).Info("Drawing deleted successfully")
	return nil
}

func (st *state) IncrementLikeCount(ctx context.Context, id string) (*core.Drawing, error) {
	d, ok := st.drawings[id]
	if !ok {
		return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrNotFound)
	}
	d.LikeCount++
	return d.Clone(), nil
}

func (st *state) FindCommentByID(ctx context.Context, id string) (*core.Comment, error) {
	c, ok := st.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment with id %s: %w", id, core.ErrNotFound)
	}
	return c.Clone(), nil
}

func (st *state) ListComments(ctx context.Context, filter core.CommentFilter) ([]*core.Comment, error) {
	comments := make([]*core.Comment, 0)
	for _, c := range st.comments {
		if filter.DrawingID != "" && c.DrawingID != filter.DrawingID {
			continue
		}
		comments = append(comments, c.Clone())
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (st *state) InsertComment(ctx context.Context, comment *core.Comment) error {
	comment.ID = ulid.Make().String()
	st.comments[comment.ID] = comment.Clone()

	logrus.WithFields(logrus.Fields{
		"comment_id": comment.ID,
		"drawing_id": comment.DrawingID,
	}).Info("Comment created successfully")
	return nil
}

func (st *state) DeleteComment(ctx context.Context, id string) error {
	if _, ok := st.comments[id]; !ok {
		return fmt.Errorf("comment with id %s: %w", id, core.ErrNotFound)
	}
	delete(st.comments, id)
	logrus.WithField("comment_id", id).Info("Comment deleted successfully")
	return nil
}
