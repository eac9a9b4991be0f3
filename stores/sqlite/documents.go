package sqlite

import (
	"context"
	"database/sql"
	"drawshare/core"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		password TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		drawings TEXT NOT NULL DEFAULT '[]',
		following TEXT NOT NULL DEFAULT '[]',
		followers TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE TABLE IF NOT EXISTS drawings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		date INTEGER NOT NULL,
		img_url TEXT NOT NULL DEFAULT '',
		img_json TEXT NOT NULL DEFAULT '',
		artist TEXT NOT NULL,
		like_count INTEGER NOT NULL DEFAULT 0,
		comments TEXT NOT NULL DEFAULT '[]'
	);`,
	`CREATE INDEX IF NOT EXISTS drawings_artist_idx ON drawings (artist);`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		drawing TEXT NOT NULL,
		author TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS comments_drawing_idx ON comments (drawing);`,
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type documentStore struct {
	repo
	db *sql.DB
}

// NewDocumentStore opens the database and creates the tables. Document
// reference lists are stored as JSON arrays so a document is saved with a
// single statement, mirroring the document model.
func NewDocumentStore(dataSourceName string) (core.Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: transactions serialize instead of failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &documentStore{repo: repo{q: db}, db: db}, nil
}

func (s *documentStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(ctx, &repo{q: tx}); err != nil {
		logrus.WithError(err).Debug("Transaction rolled back")
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *documentStore) Close() error {
	return s.db.Close()
}

// repo implements core.Repository on top of a querier.
type repo struct {
	q querier
}

const userColumns = "id, username, email, password, image, drawings, following, followers"

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	var drawings, following, followers string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Image, &drawings, &following, &followers); err != nil {
		return nil, err
	}
	var err error
	if u.Drawings, err = decodeIDs(drawings); err != nil {
		return nil, err
	}
	if u.Following, err = decodeIDs(following); err != nil {
		return nil, err
	}
	if u.Followers, err = decodeIDs(followers); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) FindUserByID(ctx context.Context, id string) (*core.User, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s: %w", id, core.ErrNotFound)
		}
		logrus.WithField("user_id", id).WithError(err).Error("Failed to retrieve user")
		return nil, err
	}
	return u, nil
}

func (r *repo) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s: %w", email, core.ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (r *repo) ListUsers(ctx context.Context) ([]*core.User, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*core.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repo) InsertUser(ctx context.Context, user *core.User) error {
	id := ulid.Make().String()
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, user.Username, user.Email, user.Password, user.Image,
		encodeIDs(user.Drawings), encodeIDs(user.Following), encodeIDs(user.Followers))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, core.ErrDuplicate)
		}
		logrus.WithError(err).Error("Failed to create user")
		return err
	}
	user.ID = id
	logrus.WithField("user_id", id).Info("User created successfully")
	return nil
}

func (r *repo) SaveUser(ctx context.Context, user *core.User) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, password = ?, image = ?, drawings = ?, following = ?, followers = ? WHERE id = ?",
		user.Username, user.Email, user.Password, user.Image,
		encodeIDs(user.Drawings), encodeIDs(user.Following), encodeIDs(user.Followers), user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", user.Email, core.ErrDuplicate)
		}
		return err
	}
	return expectRow(result, "user", user.ID)
}

const drawingColumns = "id, title, description, date, img_url, img_json, artist, like_count, comments"

func scanDrawing(row interface{ Scan(...any) error }) (*core.Drawing, error) {
	var d core.Drawing
	var date int64
	var comments string
	if err := row.Scan(&d.ID, &d.Title, &d.Description, &date, &d.ImgURL, &d.ImgJSON, &d.ArtistID, &d.LikeCount, &comments); err != nil {
		return nil, err
	}
	d.Date = time.Unix(0, date).UTC()
	var err error
	if d.Comments, err = decodeIDs(comments); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) FindDrawingByID(ctx context.Context, id string) (*core.Drawing, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+drawingColumns+" FROM drawings WHERE id = ?", id)
	d, err := scanDrawing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("drawing with id %s: %w", id, core.ErrNotFound)
		}
		logrus.WithField("drawing_id", id).WithError(err).Error("Failed to retrieve drawing")
		return nil, err
	}
	return d, nil
}

func (r *repo) ListDrawings(ctx context.Context, filter core.DrawingFilter) ([]*core.Drawing, error) {
	query := "SELECT " + drawingColumns + " FROM drawings"
	var args []any
	if filter.ArtistID != "" {
		query += " WHERE artist = ?"
		args = append(args, filter.ArtistID)
	}
	query += " ORDER BY id"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drawings := make([]*core.Drawing, 0)
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, err
		}
		// SQLite's lower() only folds ASCII, so the title search runs here.
		if !filter.Matches(d) {
			continue
		}
		drawings = append(drawings, d)
	}
	return drawings, rows.Err()
}

func (r *repo) InsertDrawing(ctx context.Context, drawing *core.Drawing) error {
	id := ulid.Make().String()
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO drawings ("+drawingColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, drawing.Title, drawing.Description, drawing.Date.UnixNano(), drawing.ImgURL, drawing.ImgJSON,
		drawing.ArtistID, drawing.LikeCount, encodeIDs(drawing.Comments))
	if err != nil {
		logrus.WithError(err).Error("Failed to create drawing")
		return err
	}
	drawing.ID = id
	if drawing.Comments == nil {
		drawing.Comments = []string{}
	}
	logrus.WithFields(logrus.Fields{
		"drawing_id": id,
		"artist_id":  drawing.ArtistID,
	}).Info("Drawing created successfully")
	return nil
}

func (r *repo) SaveDrawing(ctx context.Context, drawing *core.Drawing) error {
	result, err := r.q.ExecContext(ctx,
		"UPDATE drawings SET title = ?, description = ?, date = ?, img_url = ?, img_json = ?, artist = ?, like_count = ?, comments = ? WHERE id = ?",
		drawing.Title, drawing.Description, drawing.Date.UnixNano(), drawing.ImgURL, drawing.ImgJSON,
		drawing.ArtistID, drawing.LikeCount, encodeIDs(drawing.Comments), drawing.ID)
	if err != nil {
		return err
	}
	return expectRow(result, "drawing", drawing.ID)
}

func (r *repo) DeleteDrawing(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM drawings WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := expectRow(result, "drawing", id); err != nil {
		return err
	}
	logrus.WithField("drawing_id", id).Info("Drawing deleted successfully")
	return nil
}

func (r *repo) IncrementLikeCount(ctx context.Context, id string) (*core.Drawing, error) {
	result, err := r.q.ExecContext(ctx, "UPDATE drawings SET like_count = like_count + 1 WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := expectRow(result, "drawing", id); err != nil {
		return nil, err
	}
	return r.FindDrawingByID(ctx, id)
}

const commentColumns = "id, body, drawing, author"

func scanComment(row interface{ Scan(...any) error }) (*core.Comment, error) {
	var c core.Comment
	if err := row.Scan(&c.ID, &c.Body, &c.DrawingID, &c.AuthorID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) FindCommentByID(ctx context.Context, id string) (*core.Comment, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = ?", id)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment with id %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}
	return c, nil
}

func (r *repo) ListComments(ctx context.Context, filter core.CommentFilter) ([]*core.Comment, error) {
	query := "SELECT " + commentColumns + " FROM comments"
	var args []any
	if filter.DrawingID != "" {
		query += " WHERE drawing = ?"
		args = append(args, filter.DrawingID)
	}
	query += " ORDER BY id"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]*core.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *repo) InsertComment(ctx context.Context, comment *core.Comment) error {
	id := ulid.Make().String()
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO comments ("+commentColumns+") VALUES (?, ?, ?, ?)",
		id, comment.Body, comment.DrawingID, comment.AuthorID)
	if err != nil {
		logrus.WithError(err).Error("Failed to create comment")
		return err
	}
	comment.ID = id
	logrus.WithFields(logrus.Fields{
		"comment_id": id,
		"drawing_id": comment.DrawingID,
	}).Info("Comment created successfully")
	return nil
}

func (r *repo) DeleteComment(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(result, "comment", id)
}

func expectRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s with id %s: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func encodeIDs(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}

func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return ids, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
