package core

type (
	// Comment is a message left by a user on a drawing.
	Comment struct {
		ID        string `json:"id"`
		Body      string `json:"body"`
		DrawingID string `json:"drawing"`
		AuthorID  string `json:"author"`
	}

	// CommentDetail is a comment with its author populated.
	CommentDetail struct {
		ID        string `json:"id"`
		Body      string `json:"body"`
		DrawingID string `json:"drawing"`
		Author    *User  `json:"author"`
	}

	CommentFilter struct {
		DrawingID string
	}
)

// OwnerID returns the id of the comment's author.
func (c *Comment) OwnerID() string { return c.AuthorID }

func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func NewCommentDetail(c *Comment, author *User) *CommentDetail {
	return &CommentDetail{
		ID:        c.ID,
		Body:      c.Body,
		DrawingID: c.DrawingID,
		Author:    author,
	}
}
