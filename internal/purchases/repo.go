package purchases

import (
	"context"

	"github.com/angelmondragon/commissary-backend/internal/repo"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists purchase records and derives daily expense totals from them.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, purchase *models.PurchaseRecord) error {
	return r.DB(ctx).Create(purchase).Error
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.PurchaseRecord, error) {
	var purchase models.PurchaseRecord
	if err := r.DB(ctx).Where("id = ?", id).Take(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *Repository) Update(ctx context.Context, purchase *models.PurchaseRecord) error {
	res := r.DB(ctx).Model(&models.PurchaseRecord{}).
		Where("id = ?", purchase.ID).
		Updates(map[string]any{
			"item":          purchase.Item,
			"quantity":      purchase.Quantity,
			"unit_price":    purchase.UnitPrice,
			"total_price":   purchase.TotalPrice,
			"receipt_url":   purchase.ReceiptURL,
			"purchase_date": purchase.PurchaseDate,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.PurchaseRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]models.PurchaseRecord, error) {
	var rows []models.PurchaseRecord
	if err := r.DB(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumByDate totals total_price over the purchases made on day.
func (r *Repository) SumByDate(ctx context.Context, day types.Date) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.DB(ctx).Model(&models.PurchaseRecord{}).
		Select("SUM(total_price)").
		Where("purchase_date = ?", day).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

type dailySum struct {
	PurchaseDate types.Date
	Total        decimal.Decimal
}

// SumByDateRange returns one row per day in [from, to] that has purchases.
func (r *Repository) SumByDateRange(ctx context.Context, from, to types.Date) ([]dailySum, error) {
	var rows []dailySum
	if err := r.DB(ctx).Model(&models.PurchaseRecord{}).
		Select("purchase_date, SUM(total_price) AS total").
		Where("purchase_date >= ? AND purchase_date <= ?", from, to).
		Group("purchase_date").
		Order("purchase_date ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
