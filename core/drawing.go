package core

import (
	"strings"
	"time"
)

type (
	// Drawing is an artwork owned by exactly one user.
	Drawing struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		ImgURL      string    `json:"imgURL"`
		ImgJSON     string    `json:"imgJSON"`
		ArtistID    string    `json:"artist"`
		LikeCount   int       `json:"likeCount"`
		Comments    []string  `json:"comments"`
	}

	// DrawingDetail is a drawing with its artist and comments populated.
	DrawingDetail struct {
		ID          string           `json:"id"`
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Date        time.Time        `json:"date"`
		ImgURL      string           `json:"imgURL"`
		ImgJSON     string           `json:"imgJSON"`
		Artist      *User            `json:"artist"`
		LikeCount   int              `json:"likeCount"`
		Comments    []*CommentDetail `json:"comments"`
	}

	// DrawingFilter narrows ListDrawings. Zero values match everything.
	DrawingFilter struct {
		// Search is matched case-insensitively as a substring of the title.
		Search   string
		ArtistID string
	}

	// Image is an uploaded image payload that has not been stored yet.
	Image struct {
		Data        []byte
		ContentType string
		Filename    string
	}
)

// OwnerID returns the id of the drawing's artist.
func (d *Drawing) OwnerID() string { return d.ArtistID }

// Clone returns a deep copy of the drawing.
func (d *Drawing) Clone() *Drawing {
	if d == nil {
		return nil
	}
	c := *d
	c.Comments = cloneIDs(d.Comments)
	return &c
}

// Matches reports whether d passes the filter. Titles are folded with
// Unicode case rules so every store agrees on non-ASCII searches.
func (f DrawingFilter) Matches(d *Drawing) bool {
	if f.ArtistID != "" && d.ArtistID != f.ArtistID {
		return false
	}
	return f.Search == "" || strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Search))
}

// NewDrawingDetail populates d with its artist and comments.
func NewDrawingDetail(d *Drawing, artist *User, comments []*CommentDetail) *DrawingDetail {
	if comments == nil {
		comments = []*CommentDetail{}
	}
	return &DrawingDetail{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		ImgURL:      d.ImgURL,
		ImgJSON:     d.ImgJSON,
		Artist:      artist,
		LikeCount:   d.LikeCount,
		Comments:    comments,
	}
}
