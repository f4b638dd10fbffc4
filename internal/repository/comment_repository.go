package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
)

// CommentModel is the GORM model for the comments table.
type CommentModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ItemID    int64     `gorm:"not null;index"`
	AuthorID  int64     `gorm:"not null;index"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (CommentModel) TableName() string { return "comments" }

// GormCommentRepository implements comment.Repository using GORM.
type GormCommentRepository struct {
	db *gorm.DB
}

// NewGormCommentRepository creates a new GormCommentRepository.
func NewGormCommentRepository(db *gorm.DB) *GormCommentRepository {
	return &GormCommentRepository{db: db}
}

// Save inserts a new comment and assigns its id.
func (r *GormCommentRepository) Save(ctx context.Context, c *commentDomain.Comment) error {
	model := CommentModel{
		ItemID:    c.ItemID(),
		AuthorID:  c.AuthorID(),
		Text:      c.Text(),
		CreatedAt: c.CreatedAt(),
	}
	if err := conn(ctx, r.db).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	c.AssignID(model.ID)
	return nil
}

// ListViewsByItem returns an item's comments with author names, newest first.
func (r *GormCommentRepository) ListViewsByItem(ctx context.Context, itemID int64) ([]commentDomain.View, error) {
	type row struct {
		ID         int64
		Text       string
		AuthorName string
		CreatedAt  time.Time
	}
	var rows []row
	if err := conn(ctx, r.db).
		Table("comments").
		Select("comments.id, comments.text, COALESCE(users.name, '') AS author_name, comments.created_at").
		Joins("LEFT JOIN users ON users.id = comments.author_id").
		Where("comments.item_id = ?", itemID).
		Order("comments.created_at DESC, comments.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	views := make([]commentDomain.View, len(rows))
	for i, r := range rows {
		views[i] = commentDomain.View{ID: r.ID, Text: r.Text, AuthorName: r.AuthorName, Created: r.CreatedAt.UTC()}
	}
	return views, nil
}
