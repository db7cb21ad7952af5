package eventlog

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
	"github.com/angelmondragon/commissary-backend/pkg/storage"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"gorm.io/gorm"
)

type entriesRepository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	FindByID(ctx context.Context, kind enums.LogKind, id uint) (*models.LogEntry, error)
	Update(ctx context.Context, entry *models.LogEntry) error
	Delete(ctx context.Context, kind enums.LogKind, id uint) error
	List(ctx context.Context, kind enums.LogKind, term string) ([]models.LogEntry, error)
	ListByDate(ctx context.Context, kind enums.LogKind, day types.Date) ([]models.LogEntry, error)
	CountByDate(ctx context.Context, kind enums.LogKind, day types.Date) (int64, error)
}

// Service records waste and material usage events.
type Service interface {
	Create(ctx context.Context, kind enums.LogKind, input EntryInput, attachment *Attachment) (*Entry, error)
	Get(ctx context.Context, kind enums.LogKind, id uint) (*Entry, error)
	Update(ctx context.Context, kind enums.LogKind, id uint, input EntryInput, attachment *Attachment) (*Entry, error)
	Delete(ctx context.Context, kind enums.LogKind, id uint) error
	List(ctx context.Context, kind enums.LogKind, term string) (*ListResult, error)
	ListByDate(ctx context.Context, kind enums.LogKind, rawDate string) (*DateResult, error)
	CountToday(ctx context.Context, kind enums.LogKind) (int64, error)
}

type service struct {
	repo  entriesRepository
	files storage.Store
	logg  *logger.Logger
	loc   *time.Location
	now   func() time.Time
}

// NewService wires the event log with its repository and file store.
func NewService(repo entriesRepository, files storage.Store, logg *logger.Logger, loc *time.Location, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("log entry repository required")
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

func (s *service) Create(ctx context.Context, kind enums.LogKind, input EntryInput, attachment *Attachment) (*Entry, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	input, err := normalizeInput(input)
	if err != nil {
		return nil, err
	}

	row := &models.LogEntry{
		Kind:        kind,
		Item:        input.Item,
		UOI:         input.UOI,
		Quantity:    input.Quantity,
		Description: input.Description,
		EntryDate:   s.today(),
	}

	stored, err := s.saveAttachment(ctx, attachment)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		row.ImageURL = &stored.URL
	}

	if err := s.repo.Create(ctx, row); err != nil {
		if stored != nil {
			s.removeFile(ctx, stored.URL)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create log entry")
	}
	out := toEntry(*row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, kind enums.LogKind, id uint) (*Entry, error) {
	row, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	out := toEntry(*row)
	return &out, nil
}

func (s *service) Update(ctx context.Context, kind enums.LogKind, id uint, input EntryInput, attachment *Attachment) (*Entry, error) {
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
	row.Quantity = input.Quantity
	row.Description = input.Description

	var previous string
	stored, err := s.saveAttachment(ctx, attachment)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		if row.ImageURL != nil {
			previous = *row.ImageURL
		}
		row.ImageURL = &stored.URL
	}

	if err := s.repo.Update(ctx, row); err != nil {
		if stored != nil {
			s.removeFile(ctx, stored.URL)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(kind)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update log entry")
	}
	if previous != "" {
		s.removeFile(ctx, previous)
	}
	out := toEntry(*row)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, kind enums.LogKind, id uint) error {
	row, err := s.find(ctx, kind, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(kind)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete log entry")
	}
	if row.ImageURL != nil {
		s.removeFile(ctx, *row.ImageURL)
	}
	return nil
}

func (s *service) List(ctx context.Context, kind enums.LogKind, term string) (*ListResult, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	rows, err := s.repo.List(ctx, kind, term)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list log entries")
	}
	today := s.today()
	return &ListResult{
		Entries:          toEntries(rows),
		DateToday:        today,
		DateTodayDisplay: today.Display(),
	}, nil
}

func (s *service) ListByDate(ctx context.Context, kind enums.LogKind, rawDate string) (*DateResult, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	day := s.today()
	if parsed, err := types.ParseDate(rawDate); err == nil {
		day = parsed
	}
	rows, err := s.repo.ListByDate(ctx, kind, day)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list log entries by date")
	}
	return &DateResult{
		Entries:     toEntries(rows),
		Date:        day,
		DateDisplay: day.Display(),
	}, nil
}

func (s *service) CountToday(ctx context.Context, kind enums.LogKind) (int64, error) {
	if err := checkKind(kind); err != nil {
		return 0, err
	}
	count, err := s.repo.CountByDate(ctx, kind, s.today())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count log entries")
	}
	return count, nil
}

func (s *service) find(ctx context.Context, kind enums.LogKind, id uint) (*models.LogEntry, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	row, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(kind)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load log entry")
	}
	return row, nil
}

func (s *service) saveAttachment(ctx context.Context, attachment *Attachment) (*storage.Object, error) {
	if attachment == nil || attachment.Content == nil {
		return nil, nil
	}
	obj, err := s.files.Save(ctx, attachment.Filename, attachment.Content)
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (s *service) removeFile(ctx context.Context, url string) {
	if err := s.files.Delete(ctx, storage.NameFromURL(url)); err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"image_url": url, "error": err.Error()}), "failed to remove log attachment")
	}
}

func normalizeInput(input EntryInput) (EntryInput, error) {
	input.Item = strings.TrimSpace(input.Item)
	input.UOI = strings.TrimSpace(input.UOI)
	input.Quantity = strings.TrimSpace(input.Quantity)
	input.Description = strings.TrimSpace(input.Description)

	details := map[string]string{}
	if input.Item == "" {
		details["item"] = "is required"
	}
	if input.UOI == "" {
		details["uoi"] = "is required"
	}
	if input.Quantity == "" {
		details["quantity"] = "is required"
	}
	if len(details) > 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return input, nil
}

func checkKind(kind enums.LogKind) error {
	if !kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown log %q", kind))
	}
	return nil
}

func notFound(kind enums.LogKind) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s log entry not found", kind))
}
