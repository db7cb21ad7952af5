package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"gorm.io/gorm"
)

const maxTextLen = 255

type recordsRepository interface {
	Create(ctx context.Context, record *models.StockRecord) error
	FindByID(ctx context.Context, kind enums.StockKind, id uint) (*models.StockRecord, error)
	Update(ctx context.Context, record *models.StockRecord) error
	Delete(ctx context.Context, kind enums.StockKind, id uint) error
	List(ctx context.Context, kind enums.StockKind, term string) ([]models.StockRecord, error)
	ListByDate(ctx context.Context, kind enums.StockKind, day types.Date) ([]models.StockRecord, error)
}

// Service manages the inventory and material stock ledgers.
type Service interface {
	Create(ctx context.Context, kind enums.StockKind, input RecordInput) (*Record, error)
	Get(ctx context.Context, kind enums.StockKind, id uint) (*Record, error)
	Update(ctx context.Context, kind enums.StockKind, id uint, input RecordInput) (*Record, error)
	Delete(ctx context.Context, kind enums.StockKind, id uint) error
	List(ctx context.Context, kind enums.StockKind, term string) (*ListResult, error)
	ListByDate(ctx context.Context, kind enums.StockKind, rawDate string) (*DateResult, error)
	LowStock(ctx context.Context, kind enums.StockKind) (ScanResult, error)
}

// RecordInput carries the user-editable fields of a stock record.
type RecordInput struct {
	Item string `json:"item" validate:"required,max=255"`
	UOI  string `json:"uoi" validate:"required,max=64"`
	Movement
}

// Options tune the service. Zero values fall back to defaults.
type Options struct {
	LowStockThreshold int
	Location          *time.Location
	Now               func() time.Time
}

type service struct {
	repo      recordsRepository
	logg      *logger.Logger
	threshold int
	loc       *time.Location
	now       func() time.Time
}

// NewService builds a ledger service backed by the provided repository.
func NewService(repo recordsRepository, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock record repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.LowStockThreshold < 0 {
		return nil, fmt.Errorf("low stock threshold must not be negative")
	}
	threshold := opts.LowStockThreshold
	if threshold == 0 {
		threshold = DefaultLowStockThreshold
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, logg: logg, threshold: threshold, loc: loc, now: now}, nil
}

func (s *service) today() types.Date {
	return types.NewDate(s.now().In(s.loc))
}

func (s *service) Create(ctx context.Context, kind enums.StockKind, input RecordInput) (*Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	row := &models.StockRecord{
		Kind:       kind,
		Item:       input.Item,
		UOI:        input.UOI,
		Beginning:  input.Beginning,
		Incoming:   input.Incoming,
		Outgoing:   input.Outgoing,
		Waste:      input.Waste,
		Ending:     ComputeEnding(input.Movement),
		RecordDate: s.today(),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock record")
	}
	out := toRecord(*row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, kind enums.StockKind, id uint) (*Record, error) {
	row, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	out := toRecord(*row)
	return &out, nil
}

func (s *service) Update(ctx context.Context, kind enums.StockKind, id uint, input RecordInput) (*Record, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}
	row, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	row.Item = input.Item
	row.UOI = input.UOI
	row.Beginning = input.Beginning
	row.Incoming = input.Incoming
	row.Outgoing = input.Outgoing
	row.Waste = input.Waste
	row.Ending = ComputeEnding(input.Movement)

	if err := s.repo.Update(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(kind)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock record")
	}
	out := toRecord(*row)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, kind enums.StockKind, id uint) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(kind)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stock record")
	}
	return nil
}

func (s *service) List(ctx context.Context, kind enums.StockKind, term string) (*ListResult, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, kind, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records")
	}
	records := toRecords(rows)
	scan := ScanLowStock(s.logg.WithField(ctx, "kind", kind), records, s.threshold, s.logg)

	today := s.today()
	return &ListResult{
		Records:          records,
		Alerts:           scan.Alerts,
		DateToday:        today,
		DateTodayDisplay: today.Display(),
	}, nil
}

func (s *service) ListByDate(ctx context.Context, kind enums.StockKind, rawDate string) (*DateResult, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	day := s.today()
	if parsed, err := types.ParseDate(rawDate); err == nil {
		day = parsed
	}
	rows, err := s.repo.ListByDate(ctx, kind, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records by date")
	}
	return &DateResult{
		Records:     toRecords(rows),
		Date:        day,
		DateDisplay: day.Display(),
	}, nil
}

// LowStock scans the full, unfiltered ledger.
func (s *service) LowStock(ctx context.Context, kind enums.StockKind) (ScanResult, error) {
	if err := checkKind(kind); err != nil {
		return ScanResult{}, err
	}
	rows, err := s.repo.List(ctx, kind, "")
	if err != nil {
		return ScanResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock records")
	}
	return ScanLowStock(s.logg.WithField(ctx, "kind", kind), toRecords(rows), s.threshold, s.logg), nil
}

func (s *service) find(ctx context.Context, kind enums.StockKind, id uint) (*models.StockRecord, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(kind)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock record")
	}
	return row, nil
}

func normalizeInput(input RecordInput) (RecordInput, error) {
	input.Item = strings.TrimSpace(input.Item)
	input.UOI = strings.TrimSpace(input.UOI)

	details := map[string]string{}
	if input.Item == "" {
		details["item"] = "is required"
	} else if len(input.Item) > maxTextLen {
		details["item"] = "is too long"
	}
	if input.UOI == "" {
		details["uoi"] = "is required"
	}
	for field, value := range map[string]int{
		"beginning": input.Beginning,
		"incoming":  input.Incoming,
		"outgoing":  input.Outgoing,
		"waste":     input.Waste,
	} {
		if value < 0 {
			details[field] = "must be at least 0"
		}
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return input, nil
}

func checkKind(kind enums.StockKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown ledger %q", kind))
	}
	return nil
}

func notFound(kind enums.StockKind) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s record not found", kind))
}
