package service_test

import (
	"context"
	"testing"

	"invoicer/internal/dto"
	"invoicer/internal/model"
	"invoicer/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInvoiceSvc() (service.InvoiceService, *stubInvoiceRepo, *stubProductRepo, *stubUserRepo) {
	invoices := newStubInvoiceRepo()
	products := newStubProductRepo()
	users := newStubUserRepo()
	svc := service.NewInvoiceService(invoices, users, products, nil)
	return svc, invoices, products, users
}

func seedUser(users *stubUserRepo) *model.User {
	u := &model.User{
		ID:       uuid.New(),
		Username: "alice",
		FullName: "Alice Example",
		Email:    "alice@x.com",
		Roles:    []model.Role{{ID: uuid.New(), Name: model.RoleUser}},
	}
	users.users[u.ID] = u
	return u
}

func itemReq(p *model.Product, qty int64) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func TestCreateInvoiceDeductsStock(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 10, true)
	bread := products.add("Bread", "1.25", 4, true)

	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 3), itemReq(bread, 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), resp.UserID)
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.Active)
	require.Len(t, resp.Items, 2)
	// 3×2.50 + 2×1.25 = 10.00
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("10.00")), "total = %s", resp.Total)
	assert.True(t, resp.Items[0].Subtotal.Equal(decimal.RequireFromString("7.50")))

	assert.Equal(t, int64(7), beer.Stock)
	assert.Equal(t, int64(2), bread.Stock)
	assert.Len(t, invoices.invoices, 1)
}

func TestCreateInvoiceInsufficientStock(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 5, true)

	_, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 6)},
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, int64(5), beer.Stock)
	assert.Empty(t, invoices.invoices)
}

func TestCreateInvoiceSameProductTwiceChecksCombinedQuantity(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 5, true)

	// 3 + 3 = 6 > 5: the second line must see stock already reduced by the
	// first, and the whole invoice must fail with nothing written.
	_, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 3), itemReq(beer, 3)},
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, int64(5), beer.Stock)
	assert.Empty(t, invoices.invoices)
}

func TestCreateInvoiceMergesDuplicateProductLines(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 5, true)

	// Two lines for the same product fit within stock together. Items are
	// keyed by (invoice, product), so they must land as one merged row.
	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 3), itemReq(beer, 2)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), beer.Stock)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("12.50")))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, int64(5), resp.Items[0].Quantity)

	stored := invoices.invoices[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, beer.ID, stored.Items[0].ProductID)
	assert.Equal(t, int64(5), stored.Items[0].Quantity)
}

func TestCreateInvoiceItemRowsAreUniquePerProduct(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 10, true)
	bread := products.add("Bread", "1.25", 10, true)

	// Interleaved duplicates: beer, bread, beer again.
	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 1), itemReq(bread, 2), itemReq(beer, 3)},
	})
	require.NoError(t, err)

	stored := invoices.invoices[uuid.MustParse(resp.ID)]
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	seen := map[uuid.UUID]int64{}
	for _, item := range stored.Items {
		_, dup := seen[item.ProductID]
		assert.False(t, dup, "product %s stored twice", item.ProductID)
		seen[item.ProductID] = item.Quantity
	}
	assert.Equal(t, int64(4), seen[beer.ID])
	assert.Equal(t, int64(2), seen[bread.ID])
	assert.Equal(t, int64(6), beer.Stock)
	assert.Equal(t, int64(8), bread.Stock)
}

func TestCreateInvoiceRejectsInactiveProduct(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	retired := products.add("Retired", "9.99", 100, false)

	_, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(retired, 1)},
	})
	assert.ErrorIs(t, err, service.ErrProductInactive)
	assert.Equal(t, int64(100), retired.Stock)
	assert.Empty(t, invoices.invoices)
}

func TestCreateInvoiceUnknownReferences(t *testing.T) {
	svc, _, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 5, true)

	_, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: uuid.NewString(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 1)},
	})
	assert.ErrorIs(t, err, service.ErrUserNotFound)

	_, err = svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, service.ErrProductNotFound)
}

func TestCreateInvoiceFailureIsAllOrNothing(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 10, true)
	bread := products.add("Bread", "1.25", 1, true)

	// First line would fit, second cannot — neither may be applied.
	_, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 2), itemReq(bread, 5)},
	})
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, int64(10), beer.Stock)
	assert.Equal(t, int64(1), bread.Stock)
	assert.Empty(t, invoices.invoices)
}

func TestInvoiceTotalTracksCurrentPrice(t *testing.T) {
	svc, _, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 10, true)

	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 2)},
	})
	require.NoError(t, err)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("5.00")))

	// Price change after creation: totals are recomputed live on read.
	beer.Price = decimal.RequireFromString("4.00")

	id := uuid.MustParse(resp.ID)
	reread, err := svc.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, reread.Total.Equal(decimal.RequireFromString("8.00")), "total = %s", reread.Total)
}

func TestSoftDeleteKeepsStockAndItems(t *testing.T) {
	svc, invoices, products, users := buildInvoiceSvc()
	user := seedUser(users)
	beer := products.add("Beer", "2.50", 10, true)

	resp, err := svc.Create(context.Background(), dto.CreateInvoiceRequest{
		UserID: user.ID.String(),
		Items:  []dto.InvoiceItemRequest{itemReq(beer, 4)},
	})
	require.NoError(t, err)
	id := uuid.MustParse(resp.ID)

	require.NoError(t, svc.SoftDelete(context.Background(), id))

	// Row survives with its items; stock is NOT restored.
	stored := invoices.invoices[id]
	require.NotNil(t, stored)
	assert.False(t, stored.Active)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, int64(6), beer.Stock)

	// Deleted invoices drop out of the active listing.
	listed, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)

	assert.ErrorIs(t, svc.SoftDelete(context.Background(), uuid.New()), service.ErrInvoiceNotFound)
}
