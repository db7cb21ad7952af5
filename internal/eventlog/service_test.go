package eventlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/db/dbtest"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	"github.com/angelmondragon/commissary-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
	"github.com/angelmondragon/commissary-backend/pkg/storage/storagetest"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (Service, *Repository, *storagetest.Memory) {
	t.Helper()
	r := NewRepository(dbtest.Open(t))
	files := storagetest.NewMemory()
	svc, err := NewService(r, files, logger.Nop(), time.UTC, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc, r, files
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, storagetest.NewMemory(), logger.Nop(), nil, nil)
	require.Error(t, err)
	_, err = NewService(NewRepository(dbtest.Open(t)), nil, logger.Nop(), nil, nil)
	require.Error(t, err)
}

func TestCreateKeepsQuantityTextAndAssignsIDs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Lettuce", UOI: "head", Quantity: "2 1/2", Description: "wilted"}, nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Tomato", UOI: "kg", Quantity: "abc"}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "2 1/2", first.Quantity)
	assert.Equal(t, "abc", second.Quantity)
	assert.Nil(t, first.ImageURL)
	assert.Equal(t, "2025-03-05", first.Date.String())
}

func TestCreateWithAttachmentStoresURL(t *testing.T) {
	svc, _, files := newTestService(t)

	entry, err := svc.Create(context.Background(), enums.LogKindWaste, EntryInput{Item: "Bread", UOI: "loaf", Quantity: "3"},
		&Attachment{Filename: "moldy bread.jpg", Content: strings.NewReader("jpeg-bytes")})
	require.NoError(t, err)
	require.NotNil(t, entry.ImageURL)
	assert.Equal(t, "/uploads/x_moldy_bread.jpg", *entry.ImageURL)
	assert.Contains(t, files.Saved, "x_moldy_bread.jpg")
}

func TestCreateAttachmentRejectionSavesNothing(t *testing.T) {
	svc, r, files := newTestService(t)
	files.SaveErr = pkgerrors.New(pkgerrors.CodeUnsupportedType, "only images or PDFs can be attached")

	_, err := svc.Create(context.Background(), enums.LogKindWaste, EntryInput{Item: "Bread", UOI: "loaf", Quantity: "3"},
		&Attachment{Filename: "virus.exe", Content: strings.NewReader("MZ")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedType))

	rows, err := r.List(context.Background(), enums.LogKindWaste, "")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUpdateReplacesImageOnlyWhenSupplied(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, enums.LogKindMaterial, EntryInput{Item: "Gloves", UOI: "box", Quantity: "1"},
		&Attachment{Filename: "gloves.png", Content: strings.NewReader("png")})
	require.NoError(t, err)
	original := *created.ImageURL

	updated, err := svc.Update(ctx, enums.LogKindMaterial, created.ID, EntryInput{Item: "Nitrile Gloves", UOI: "box", Quantity: "2"}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	assert.Equal(t, original, *updated.ImageURL)
	assert.Equal(t, "Nitrile Gloves", updated.Item)

	replaced, err := svc.Update(ctx, enums.LogKindMaterial, created.ID, EntryInput{Item: "Nitrile Gloves", UOI: "box", Quantity: "2"},
		&Attachment{Filename: "gloves-2.png", Content: strings.NewReader("png2")})
	require.NoError(t, err)
	assert.NotEqual(t, original, *replaced.ImageURL)
	assert.Equal(t, []string{storage.NameFromURL(original)}, files.Deleted)

	got, err := svc.Get(ctx, enums.LogKindMaterial, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *replaced.ImageURL, *got.ImageURL)
}

func TestMissingEntriesAreNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, enums.LogKindWaste, 42)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, enums.LogKindWaste, 42, EntryInput{Item: "x", UOI: "y", Quantity: "1"}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, enums.LogKindWaste, 42), pkgerrors.CodeNotFound))
}

func TestKindsAreIsolated(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	waste, err := svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Milk", UOI: "l", Quantity: "1"}, nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, enums.LogKindMaterial, waste.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	materials, err := svc.List(ctx, enums.LogKindMaterial, "")
	require.NoError(t, err)
	assert.Empty(t, materials.Entries)
}

func TestDeleteRemovesEntryAndAttachment(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	entry, err := svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Fish", UOI: "kg", Quantity: "1"},
		&Attachment{Filename: "fish.jpg", Content: strings.NewReader("jpg")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, enums.LogKindWaste, entry.ID))
	assert.Equal(t, []string{storage.NameFromURL(*entry.ImageURL)}, files.Deleted)

	_, err = svc.Get(ctx, enums.LogKindWaste, entry.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListSearchAndByDate(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()

	yesterday, err := types.ParseDate("2025-03-04")
	require.NoError(t, err)
	require.NoError(t, r.Create(ctx, &models.LogEntry{Kind: enums.LogKindWaste, Item: "Old Milk", UOI: "l", Quantity: "1", EntryDate: yesterday}))
	_, err = svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Whole MILK", UOI: "l", Quantity: "2"}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, enums.LogKindWaste, EntryInput{Item: "Eggs", UOI: "tray", Quantity: "1"}, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx, enums.LogKindWaste, "milk")
	require.NoError(t, err)
	assert.Len(t, list.Entries, 2)

	byDate, err := svc.ListByDate(ctx, enums.LogKindWaste, "2025-03-04")
	require.NoError(t, err)
	require.Len(t, byDate.Entries, 1)
	assert.Equal(t, "Old Milk", byDate.Entries[0].Item)

	today, err := svc.ListByDate(ctx, enums.LogKindWaste, "bogus")
	require.NoError(t, err)
	assert.Len(t, today.Entries, 2)
	assert.Equal(t, "05 March 2025", today.DateDisplay)

	count, err := svc.CountToday(ctx, enums.LogKindWaste)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), enums.LogKindWaste, EntryInput{Item: " ", UOI: "kg"}, nil)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]string)
	assert.Contains(t, details, "item")
	assert.Contains(t, details, "quantity")
}

type brokenRepo struct {
	*Repository
}

func (brokenRepo) Create(context.Context, *models.LogEntry) error {
	return errors.New("disk full")
}

func TestCreateStoreFailureCleansUpAttachment(t *testing.T) {
	files := storagetest.NewMemory()
	svc, err := NewService(brokenRepo{}, files, logger.Nop(), time.UTC, func() time.Time { return fixedNow })
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), enums.LogKindWaste, EntryInput{Item: "Fish", UOI: "kg", Quantity: "1"},
		&Attachment{Filename: "fish.jpg", Content: strings.NewReader("jpg")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, files.Saved)
}
