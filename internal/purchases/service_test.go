package purchases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/commissary-backend/pkg/db/dbtest"
	"github.com/angelmondragon/commissary-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/commissary-backend/pkg/errors"
	"github.com/angelmondragon/commissary-backend/pkg/logger"
	"github.com/angelmondragon/commissary-backend/pkg/storage"
	"github.com/angelmondragon/commissary-backend/pkg/storage/storagetest"
	"github.com/angelmondragon/commissary-backend/pkg/types"
	"github.com/shopspring/decimal"
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

func price(t *testing.T, raw string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	return d
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(nil, storagetest.NewMemory(), logger.Nop(), nil, nil)
	require.Error(t, err)
	_, err = NewService(NewRepository(dbtest.Open(t)), nil, logger.Nop(), nil, nil)
	require.Error(t, err)
	_, err = NewService(NewRepository(dbtest.Open(t)), storagetest.NewMemory(), nil, nil, nil)
	require.Error(t, err)
}

func TestComputeTotal(t *testing.T) {
	assert.True(t, ComputeTotal(3, decimal.RequireFromString("12.25")).Equal(decimal.RequireFromString("36.75")))
	assert.True(t, ComputeTotal(0, decimal.RequireFromString("99.5")).IsZero())
}

func TestCreateComputesTotalAndDefaultsDate(t *testing.T) {
	svc, _, _ := newTestService(t)

	out, err := svc.Create(context.Background(), PurchaseInput{Item: " Flour ", Quantity: 4, UnitPrice: price(t, "12.25")}, nil)
	require.NoError(t, err)
	assert.NotZero(t, out.ID)
	assert.Equal(t, "Flour", out.Item)
	assert.True(t, out.TotalPrice.Equal(price(t, "49")), "got %s", out.TotalPrice)
	assert.Equal(t, "2025-03-05", out.Date.String())
	assert.Equal(t, "05 March 2025", out.DateDisplay)
	assert.Nil(t, out.ReceiptURL)
}

func TestCreateKeepsExplicitDate(t *testing.T) {
	svc, _, _ := newTestService(t)
	day, err := types.ParseDate("2025-02-28")
	require.NoError(t, err)

	out, err := svc.Create(context.Background(), PurchaseInput{Item: "Sugar", Quantity: 1, UnitPrice: price(t, "10"), Date: day}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-02-28", out.Date.String())
}

func TestCreateRejectsNegativeValues(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), PurchaseInput{Item: "", Quantity: -1, UnitPrice: price(t, "-2")}, nil)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details := typed.Details().(map[string]string)
	assert.Contains(t, details, "item")
	assert.Contains(t, details, "quantity")
	assert.Contains(t, details, "unit_price")
}

func TestTodayTotalTracksCreateEditDelete(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, PurchaseInput{Item: "Eggs", Quantity: 1, UnitPrice: price(t, "10.0")}, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, PurchaseInput{Item: "Butter", Quantity: 1, UnitPrice: price(t, "15.0")}, nil)
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Purchases, 2)
	assert.True(t, list.TodayTotal.Total.Equal(price(t, "25")), "got %s", list.TodayTotal.Total)

	_, err = svc.Update(ctx, first.ID, PurchaseInput{Item: "Eggs", Quantity: 3, UnitPrice: price(t, "12.5")}, nil)
	require.NoError(t, err)
	total, err := svc.DailyTotal(ctx, "")
	require.NoError(t, err)
	assert.True(t, total.Total.Equal(price(t, "52.5")), "got %s", total.Total)

	require.NoError(t, svc.Delete(ctx, first.ID))
	total, err = svc.DailyTotal(ctx, "2025-03-05")
	require.NoError(t, err)
	assert.True(t, total.Total.Equal(price(t, "15")), "got %s", total.Total)
}

func TestDailyTotalWithoutPurchasesIsZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	total, err := svc.DailyTotal(context.Background(), "2024-12-25")
	require.NoError(t, err)
	assert.True(t, total.Total.IsZero())
	assert.Equal(t, "2024-12-25", total.Date.String())
}

func TestMovingPurchaseToAnotherDayMovesItsTotal(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, PurchaseInput{Item: "Oil", Quantity: 2, UnitPrice: price(t, "18.75")}, nil)
	require.NoError(t, err)

	yesterday, err := types.ParseDate("2025-03-04")
	require.NoError(t, err)
	_, err = svc.Update(ctx, created.ID, PurchaseInput{Item: "Oil", Quantity: 2, UnitPrice: price(t, "18.75"), Date: yesterday}, nil)
	require.NoError(t, err)

	totals, err := svc.DailyTotals(ctx, "2025-03-04", "2025-03-05")
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.True(t, totals[0].Total.Equal(price(t, "37.5")), "got %s", totals[0].Total)
	assert.True(t, totals[1].Total.IsZero())
}

func TestDailyTotalsFillsGapsAndDefaultsToLastWeek(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	march1, err := types.ParseDate("2025-03-01")
	require.NoError(t, err)
	_, err = svc.Create(ctx, PurchaseInput{Item: "Salt", Quantity: 1, UnitPrice: price(t, "10"), Date: march1}, nil)
	require.NoError(t, err)

	totals, err := svc.DailyTotals(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, totals, 7)
	assert.Equal(t, "2025-02-27", totals[0].Date.String())
	assert.Equal(t, "2025-03-05", totals[6].Date.String())
	assert.True(t, totals[2].Total.Equal(price(t, "10")))
	assert.True(t, totals[3].Total.IsZero())
}

func TestDailyTotalsRejectsBadRanges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.DailyTotals(ctx, "2025-03-06", "2025-03-05")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.DailyTotals(ctx, "not-a-date", "2025-03-05")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.DailyTotals(ctx, "2020-01-01", "2025-03-05")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestReceiptReplacedOnlyWhenSupplied(t *testing.T) {
	svc, _, files := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, PurchaseInput{Item: "Cheese", Quantity: 1, UnitPrice: price(t, "10")},
		&Receipt{Filename: "receipt.pdf", Content: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	require.NotNil(t, created.ReceiptURL)
	original := *created.ReceiptURL

	kept, err := svc.Update(ctx, created.ID, PurchaseInput{Item: "Cheese", Quantity: 2, UnitPrice: price(t, "10")}, nil)
	require.NoError(t, err)
	require.NotNil(t, kept.ReceiptURL)
	assert.Equal(t, original, *kept.ReceiptURL)
	assert.Empty(t, files.Deleted)

	replaced, err := svc.Update(ctx, created.ID, PurchaseInput{Item: "Cheese", Quantity: 2, UnitPrice: price(t, "10")},
		&Receipt{Filename: "receipt-2.pdf", Content: strings.NewReader("%PDF-1.4")})
	require.NoError(t, err)
	assert.NotEqual(t, original, *replaced.ReceiptURL)
	assert.Equal(t, []string{storage.NameFromURL(original)}, files.Deleted)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Contains(t, files.Deleted, storage.NameFromURL(*replaced.ReceiptURL))
}

func TestGetUpdateDeleteMissingReturnNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 404)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.Update(ctx, 404, PurchaseInput{Item: "x", Quantity: 1, UnitPrice: price(t, "1")}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, 404), pkgerrors.CodeNotFound))
}

type failingRepo struct {
	*Repository
}

func (failingRepo) Create(context.Context, *models.PurchaseRecord) error {
	return errors.New("connection reset")
}

func TestCreateStoreFailureRemovesReceipt(t *testing.T) {
	files := storagetest.NewMemory()
	svc, err := NewService(failingRepo{}, files, logger.Nop(), time.UTC, func() time.Time { return fixedNow })
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), PurchaseInput{Item: "Ham", Quantity: 1, UnitPrice: price(t, "10")},
		&Receipt{Filename: "ham.pdf", Content: strings.NewReader("%PDF")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Empty(t, files.Saved)
}
