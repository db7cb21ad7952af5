package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MaxRangeDays bounds DailyTotals requests.
const MaxRangeDays = 366

type purchasesRepository interface {
	Create(ctx context.Context, purchase *models.PurchaseRecord) error
	FindByID(ctx context.Context, id uint) (*models.PurchaseRecord, error)
	Update(ctx context.Context, purchase *models.PurchaseRecord) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.PurchaseRecord, error)
	SumByDate(ctx context.Context, day types.Date) (decimal.Decimal, error)
	SumByDateRange(ctx context.Context, from, to types.Date) ([]dailySum, error)
}

// Service records purchases and reports daily expense totals.
type Service interface {
	Create(ctx context.Context, input PurchaseInput, receipt *Receipt) (*Purchase, error)
	Get(ctx context.Context, id uint) (*Purchase, error)
	Update(ctx context.Context, id uint, input PurchaseInput, receipt *Receipt) (*Purchase, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) (*ListResult, error)
	DailyTotal(ctx context.Context, rawDate string) (*DailyTotal, error)
	DailyTotals(ctx context.Context, rawFrom, rawTo string) ([]DailyTotal, error)
}

type service struct {
	repo  purchasesRepository
	files storage.Store
	logg  *logger.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewService(repo purchasesRepository, files storage.Store, logg *logger.Logger, loc *time.Location, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if files == nil {
		return nil, fmt.Errorf("file store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, files: files, logg: logg, loc: loc, now: now}, nil
}

func (s *service) today() types.Date {
	return types.NewDate(s.now().In(s.loc))
}

func (s *service) Create(ctx context.Context, input PurchaseInput, receipt *Receipt) (*Purchase, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	day := input.Date
	if day.IsZero() {
		day = s.today()
	}

	row := &models.PurchaseRecord{
		Item:         input.Item,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		TotalPrice:   ComputeTotal(input.Quantity, input.UnitPrice),
		PurchaseDate: day,
	}

	stored, err := s.saveReceipt(ctx, receipt)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		row.ReceiptURL = &stored.URL
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if stored != nil {
			s.removeFile(ctx, stored.URL)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
	}
	out := toPurchase(*row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Purchase, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toPurchase(*row)
	return &out, nil
}

func (s *service) Update(ctx context.Context, id uint, input PurchaseInput, receipt *Receipt) (*Purchase, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	row.Item = input.Item
	row.Quantity = input.Quantity
	row.UnitPrice = input.UnitPrice
	row.TotalPrice = ComputeTotal(input.Quantity, input.UnitPrice)
	if !input.Date.IsZero() {
		row.PurchaseDate = input.Date
	}

	var previous string
	stored, err := s.saveReceipt(ctx, receipt)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		if row.ReceiptURL != nil {
			previous = *row.ReceiptURL
		}
		row.ReceiptURL = &stored.URL
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if stored != nil {
			s.removeFile(ctx, stored.URL)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
	}
	if previous != "" {
		s.removeFile(ctx, previous)
	}
	out := toPurchase(*row)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	row, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete purchase")
	}
	if row.ReceiptURL != nil {
		s.removeFile(ctx, *row.ReceiptURL)
	}
	return nil
}

func (s *service) List(ctx context.Context) (*ListResult, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	purchases := make([]Purchase, 0, len(rows))
	for _, row := range rows {
		purchases = append(purchases, toPurchase(row))
	}

	today := s.today()
	total, err := s.repo.SumByDate(ctx, today)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum purchases")
	}
	return &ListResult{Purchases: purchases, TodayTotal: newDailyTotal(today, total)}, nil
}

func (s *service) DailyTotal(ctx context.Context, rawDate string) (*DailyTotal, error) {
	day := s.resolveDate(rawDate)
	total, err := s.repo.SumByDate(ctx, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum purchases")
	}
	out := newDailyTotal(day, total)
	return &out, nil
}

// DailyTotals returns one entry per day in [from, to], zero for days without purchases.
func (s *service) DailyTotals(ctx context.Context, rawFrom, rawTo string) ([]DailyTotal, error) {
	to := s.resolveDate(rawTo)
	from := to.AddDate(0, 0, -6)
	if strings.TrimSpace(rawFrom) != "" {
		parsed, err := types.ParseDate(rawFrom)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must use YYYY-MM-DD").WithDetails(map[string]any{"from": rawFrom})
		}
		from = parsed.Time
	}
	start := types.NewDate(from)
	if start.After(to.Time) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	days := int(to.Sub(start.Time).Hours()/24) + 1
	if days > MaxRangeDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range too large").WithDetails(map[string]any{"max_days": MaxRangeDays})
	}

	sums, err := s.repo.SumByDateRange(ctx, start, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum purchases by day")
	}
	byDay := make(map[string]decimal.Decimal, len(sums))
	for _, sum := range sums {
		byDay[sum.PurchaseDate.String()] = sum.Total
	}

	out := make([]DailyTotal, 0, days)
	for i := 0; i < days; i++ {
		day := types.NewDate(start.AddDate(0, 0, i))
		total, ok := byDay[day.String()]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, newDailyTotal(day, total))
	}
	return out, nil
}

func (s *service) resolveDate(raw string) types.Date {
	if parsed, err := types.ParseDate(raw); err == nil {
		return parsed
	}
	return s.today()
}

func (s *service) find(ctx context.Context, id uint) (*models.PurchaseRecord, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return row, nil
}

func (s *service) saveReceipt(ctx context.Context, receipt *Receipt) (*storage.Object, error) {
	if receipt == nil || receipt.Content == nil {
		return nil, nil
	}
	obj, err := s.files.Save(ctx, receipt.Filename, receipt.Content)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (s *service) removeFile(ctx context.Context, url string) {
	if err := s.files.Delete(ctx, storage.NameFromURL(url)); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"receipt_url": url, "error": err.Error()}), "failed to remove receipt")
	}
}

func normalizeInput(input PurchaseInput) (PurchaseInput, error) {
	input.Item = strings.TrimSpace(input.Item)

	details := map[string]string{}
	if input.Item == "" {
		details["item"] = "is required"
	}
	if input.Quantity < 0 {
		details["quantity"] = "must be at least 0"
	}
	if input.UnitPrice.IsNegative() {
		details["unit_price"] = "must be at least 0"
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return input, nil
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
}
