package ledger

import (
	"context"

	"github.com/angelmondragon/commissary-backend/internal/repo"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	"github.com/angelmondragon/commissary-backend/pkg/search"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository persists stock records for both ledgers.
type Repository struct {
	repo.Base
}

// NewRepository constructs a stock record repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a stock record; the store assigns the id.
func (r *Repository) Create(ctx context.Context, record *models.StockRecord) error {
	return r.DB(ctx).Create(record).Error
}

// FindByID returns gorm.ErrRecordNotFound when the id is absent or belongs to the other ledger.
func (r *Repository) FindByID(ctx context.Context, kind enums.StockKind, id uint) (*models.StockRecord, error) {
	var record models.StockRecord
	if err := r.DB(ctx).
		Where("kind = ? AND id = ?", kind, id).
		Take(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces the mutable columns of an existing record.
func (r *Repository) Update(ctx context.Context, record *models.StockRecord) error {
	res := r.DB(ctx).Model(&models.StockRecord{}).
		Where("kind = ? AND id = ?", record.Kind, record.ID).
		Updates(map[string]any{
			"item":      record.Item,
			"uoi":       record.UOI,
			"beginning": record.Beginning,
			"incoming":  record.Incoming,
			"outgoing":  record.Outgoing,
			"waste":     record.Waste,
			"ending":    record.Ending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes exactly one record.
func (r *Repository) Delete(ctx context.Context, kind enums.StockKind, id uint) error {
	res := r.DB(ctx).Where("kind = ? AND id = ?", kind, id).Delete(&models.StockRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns the ledger filtered by a case-insensitive item substring.
func (r *Repository) List(ctx context.Context, kind enums.StockKind, term string) ([]models.StockRecord, error) {
	query := r.DB(ctx).Where("kind = ?", kind)
	if search.Normalize(term) != "" {
		query = query.Where(`LOWER(item) LIKE ? ESCAPE '\'`, search.LikePattern(term))
	}

	var rows []models.StockRecord
	if err := query.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByDate returns the records stamped with the given calendar day.
func (r *Repository) ListByDate(ctx context.Context, kind enums.StockKind, day types.Date) ([]models.StockRecord, error) {
	var rows []models.StockRecord
	if err := r.DB(ctx).
		Where("kind = ? AND record_date = ?", kind, day).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
