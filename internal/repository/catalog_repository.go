package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/pkg/domain"
)

// UserModel is the GORM model for the users projection.
type UserModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:512"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string { return "users" }

// ItemModel is the GORM model for the items projection.
type ItemModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	OwnerID     int64     `gorm:"not null;index"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	Available   bool      `gorm:"not null;default:false"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string { return "items" }

// GormCatalogRepository serves the user and item directories from the local
// projection tables and applies upstream changes to them.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// Users returns the repository as a catalog.UserDirectory.
func (r *GormCatalogRepository) Users() catalog.UserDirectory { return gormUsers{r} }

// Items returns the repository as a catalog.ItemDirectory.
func (r *GormCatalogRepository) Items() catalog.ItemDirectory { return gormItems{r} }

type gormUsers struct{ r *GormCatalogRepository }

func (u gormUsers) Get(ctx context.Context, id int64) (*catalog.User, error) {
	var model UserModel
	if err := conn(ctx, u.r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return toUser(&model), nil
}

func (u gormUsers) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := conn(ctx, u.r.db).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

type gormItems struct{ r *GormCatalogRepository }

func (i gormItems) Get(ctx context.Context, id int64) (*catalog.Item, error) {
	return i.find(conn(ctx, i.r.db), id)
}

func (i gormItems) GetForUpdate(ctx context.Context, id int64) (*catalog.Item, error) {
	return i.find(conn(ctx, i.r.db).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (i gormItems) find(q *gorm.DB, id int64) (*catalog.Item, error) {
	var model ItemModel
	if err := q.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id)
		}
		return nil, fmt.Errorf("failed to find item: %w", err)
	}
	return toItem(&model), nil
}

func (i gormItems) ListByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]*catalog.Item, int64, error) {
	var total int64
	if err := conn(ctx, i.r.db).Model(&ItemModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner items: %w", err)
	}

	var models []ItemModel
	if err := conn(ctx, i.r.db).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list owner items: %w", err)
	}

	items := make([]*catalog.Item, len(models))
	for idx := range models {
		items[idx] = toItem(&models[idx])
	}
	return items, total, nil
}

// UpsertUser inserts or refreshes a user. Older snapshots never overwrite newer ones.
func (r *GormCatalogRepository) UpsertUser(ctx context.Context, u *catalog.User) error {
	model := UserModel{ID: u.ID, Name: u.Name, Email: u.Email, UpdatedAt: u.UpdatedAt}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "updated_at"}),
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "users.updated_at <= EXCLUDED.updated_at"}}},
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UpsertItem inserts or refreshes an item. Older snapshots never overwrite newer ones.
func (r *GormCatalogRepository) UpsertItem(ctx context.Context, it *catalog.Item) error {
	model := ItemModel{
		ID:          it.ID,
		OwnerID:     it.OwnerID,
		Name:        it.Name,
		Description: it.Description,
		Available:   it.Available,
		UpdatedAt:   it.UpdatedAt,
	}
	err := conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"owner_id", "name", "description", "available", "updated_at"}),
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "items.updated_at <= EXCLUDED.updated_at"}}},
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func toUser(m *UserModel) *catalog.User {
	return &catalog.User{ID: m.ID, Name: m.Name, Email: m.Email, UpdatedAt: m.UpdatedAt.UTC()}
}

func toItem(m *ItemModel) *catalog.Item {
	return &catalog.Item{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Name:        m.Name,
		Description: m.Description,
		Available:   m.Available,
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}
