package orders

import (
	"context"

	"github.com/angelmondragon/commissary-backend/internal/repo"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/search"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository returns a gorm-backed order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create inserts the document and its line items.
func (r *repository) Create(ctx context.Context, doc *models.OrderDocument) error {
	return r.DB(ctx).Create(doc).Error
}

func (r *repository) List(ctx context.Context, term string) ([]models.OrderDocument, error) {
	query := r.DB(ctx).Model(&models.OrderDocument{})
	if pattern := search.LikePattern(term); pattern != "" {
		query = query.Where(`LOWER(order_number) LIKE ? ESCAPE '\'`, pattern)
	}
	var docs []models.OrderDocument
	if err := query.Order("id ASC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindFirstByNumber loads the earliest document carrying orderNumber, with its lines in print order.
func (r *repository) FindFirstByNumber(ctx context.Context, orderNumber string) (*models.OrderDocument, error) {
	var doc models.OrderDocument
	err := r.DB(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("id ASC")
		}).
		Where("order_number = ?", orderNumber).
		Order("id ASC").
		Take(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteByNumber removes every document with orderNumber and their lines.
// Lines are deleted explicitly so databases without FK enforcement stay clean.
func (r *repository) DeleteByNumber(ctx context.Context, orderNumber string) (int64, error) {
	db := r.DB(ctx)
	ids := db.Model(&models.OrderDocument{}).Select("id").Where("order_number = ?", orderNumber)
	if err := db.Where("order_id IN (?)", ids).Delete(&models.OrderLineItem{}).Error; err != nil {
		return 0, err
	}
	res := db.Where("order_number = ?", orderNumber).Delete(&models.OrderDocument{})
	return res.RowsAffected, res.Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.OrderDocument{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
