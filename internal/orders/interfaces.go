package orders

import (
	"context"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for order documents and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, doc *models.OrderDocument) error
	List(ctx context.Context, term string) ([]models.OrderDocument, error)
	FindFirstByNumber(ctx context.Context, orderNumber string) (*models.OrderDocument, error)
	DeleteByNumber(ctx context.Context, orderNumber string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
