package orders

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/angelmondragon/commissary-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages supply requisitions.
type Service interface {
	Create(ctx context.Context, input OrderInput) (*Order, error)
	List(ctx context.Context, search string) (*ListResult, error)
	Get(ctx context.Context, orderNumber string) (*Order, error)
	Delete(ctx context.Context, orderNumber string) error
	Export(ctx context.Context, orderNumber string) (*Workbook, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	logg     *logger.Logger
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

// NewService builds the orders service.
func NewService(tx txRunner, repo Repository, logg *logger.Logger, loc *time.Location, now func() time.Time) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
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
	return &service{tx: tx, repo: repo, logg: logg, validate: newValidator(), loc: loc, now: now}, nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *service) Create(ctx context.Context, input OrderInput) (*Order, error) {
	input = normalizeInput(input)
	if err := s.check(input); err != nil {
		return nil, err
	}

	doc := toModel(input)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, doc)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"order_number": doc.OrderNumber, "order_id": doc.ID, "lines": len(doc.Items)})
	s.logg.Info(ctx, "order submitted")

	out := toOrder(*doc)
	return &out, nil
}

func (s *service) List(ctx context.Context, search string) (*ListResult, error) {
	docs, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	summaries := make([]Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, toSummary(doc))
	}
	today := types.NewDate(s.now().In(s.loc))
	return &ListResult{
		Orders:           summaries,
		Search:           strings.TrimSpace(search),
		DateToday:        today.String(),
		DateTodayDisplay: today.Display(),
	}, nil
}

func (s *service) Get(ctx context.Context, orderNumber string) (*Order, error) {
	doc, err := s.repo.FindFirstByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	out := toOrder(*doc)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, orderNumber string) error {
	var removed int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := s.repo.WithTx(tx).DeleteByNumber(ctx, orderNumber)
		removed = n
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if removed == 0 {
		return notFound()
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"order_number": orderNumber, "documents": removed}), "order deleted")
	return nil
}

func (s *service) Export(ctx context.Context, orderNumber string) (*Workbook, error) {
	order, err := s.Get(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	data, err := RenderWorkbook(order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render order workbook")
	}
	return &Workbook{
		Filename:    exportFilename(order.OrderNumber),
		ContentType: WorkbookContentType,
		Data:        data,
	}, nil
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	return count, nil
}

func (s *service) check(input OrderInput) error {
	details := map[string]string{}
	for category := range input.Items {
		if !category.IsValid() {
			details[string(category)] = "unknown category"
		}
	}
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fieldName(fe)] = describe(fe)
			}
		} else {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order")
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func normalizeInput(input OrderInput) OrderInput {
	input.OrderNumber = strings.TrimSpace(input.OrderNumber)
	input.PreparedBy = strings.TrimSpace(input.PreparedBy)
	input.CheckedBy = strings.TrimSpace(input.CheckedBy)
	input.Date = strings.TrimSpace(input.Date)
	input.Time = strings.TrimSpace(input.Time)
	input.StoreBranch = strings.TrimSpace(input.StoreBranch)
	input.Status = strings.TrimSpace(input.Status)

	items := make(map[enums.SupplyCategory][]LineItem, len(input.Items))
	for category, lines := range input.Items {
		category = enums.SupplyCategory(strings.ToLower(strings.TrimSpace(string(category))))
		for _, line := range lines {
			line.Item = strings.TrimSpace(line.Item)
			line.UOI = strings.TrimSpace(line.UOI)
			line.Quantity = strings.TrimSpace(line.Quantity)
			line.Prepared = strings.TrimSpace(line.Prepared)
			line.Received = strings.TrimSpace(line.Received)
			items[category] = append(items[category], line)
		}
	}
	input.Items = items
	return input
}

// fieldName trims the struct name from a namespace such as OrderInput.items[wet][0].item.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}
