package comment

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shareit/service-booking/pkg/domain"
)

// maxTextLength is measured in characters.
const maxTextLength = 2000

// Comment is feedback left on an item by a past booker.
type Comment struct {
	id        int64
	itemID    int64
	authorID  int64
	text      string
	createdAt time.Time
}

// NewComment validates text and creates an unsaved comment.
func NewComment(itemID, authorID int64, text string, now time.Time) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.NewValidationError("comment text is required")
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return nil, domain.NewValidationError("comment text is too long")
	}
	return &Comment{
		itemID:    itemID,
		authorID:  authorID,
		text:      text,
		createdAt: now,
	}, nil
}

// ReconstructComment rebuilds a Comment from persistence data (no validation).
func ReconstructComment(id, itemID, authorID int64, text string, createdAt time.Time) *Comment {
	return &Comment{id: id, itemID: itemID, authorID: authorID, text: text, createdAt: createdAt}
}

func (c *Comment) AssignID(id int64) { c.id = id }

func (c *Comment) ID() int64 { return c.id }
func (c *Comment) ItemID() int64 { return c.itemID }
func (c *Comment) AuthorID() int64 { return c.authorID }
func (c *Comment) Text() string { return c.text }
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// View is a comment joined with its author's display name.
type View struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

// Repository persists comments.
type Repository interface {
	Save(ctx context.Context, c *Comment) error
	// ListViewsByItem returns the item's comments newest first.
	ListViewsByItem(ctx context.Context, itemID int64) ([]View, error)
}
