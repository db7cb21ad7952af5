package eventlog

import (
	"context"

	"github.com/angelmondragon/commissary-backend/internal/repo"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/search"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository persists waste and material log entries.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, entry *models.LogEntry) error {
	return r.DB(ctx).Create(entry).Error
}

func (r *Repository) FindByID(ctx context.Context, kind enums.LogKind, id uint) (*models.LogEntry, error) {
	var entry models.LogEntry
	if err := r.DB(ctx).Where("kind = ? AND id = ?", kind, id).Take(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) Update(ctx context.Context, entry *models.LogEntry) error {
	res := r.DB(ctx).Model(&models.LogEntry{}).
		Where("kind = ? AND id = ?", entry.Kind, entry.ID).
		Updates(map[string]any{
			"item":        entry.Item,
			"uoi":         entry.UOI,
			"quantity":    entry.Quantity,
			"description": entry.Description,
			"image_url":   entry.ImageURL,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, kind enums.LogKind, id uint) error {
	res := r.DB(ctx).Where("kind = ? AND id = ?", kind, id).Delete(&models.LogEntry{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, kind enums.LogKind, term string) ([]models.LogEntry, error) {
	query := r.DB(ctx).Where("kind = ?", kind)
	if search.Normalize(term) != "" {
		query = query.Where(`LOWER(item) LIKE ? ESCAPE '\'`, search.LikePattern(term))
	}
	var rows []models.LogEntry
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListByDate(ctx context.Context, kind enums.LogKind, day types.Date) ([]models.LogEntry, error) {
	var rows []models.LogEntry
	if err := r.DB(ctx).
		Where("kind = ? AND entry_date = ?", kind, day).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByDate is used by the dashboard.
func (r *Repository) CountByDate(ctx context.Context, kind enums.LogKind, day types.Date) (int64, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.LogEntry{}).
		Where("kind = ? AND entry_date = ?", kind, day).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
