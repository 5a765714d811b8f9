package service_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/token"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubUserRepo is an in-memory UserRepository for testing.
type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// stubRoleRepo is an in-memory RoleRepository. Lazy creations are counted
// so tests can assert the default role is created exactly once.
type stubRoleRepo struct {
	roles   map[string]*model.Role
	created int
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]*model.Role)}
	for _, n := range names {
		r.roles[n] = &model.Role{ID: uuid.New(), Name: n}
	}
	return r
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *stubRoleRepo) FindOrCreate(_ context.Context, name string) (*model.Role, error) {
	if role, ok := r.roles[name]; ok {
		return role, nil
	}
	role := &model.Role{ID: uuid.New(), Name: name}
	r.roles[name] = role
	r.created++
	return role, nil
}

var _ repository.RoleRepository = (*stubRoleRepo)(nil)

// stubProductRepo is an in-memory ProductRepository. The Tx variants ignore
// the (nil) transaction handle and operate on the map directly.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(name string, price string, stock int64, active bool) *model.Product {
	p := &model.Product{
		ID:     uuid.New(),
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: active,
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) ListActive(_ context.Context) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) SearchByName(_ context.Context, name string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && strings.Contains(strings.ToLower(p.Name), strings.ToLower(name)) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) SearchByPriceRange(_ context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Price.GreaterThanOrEqual(min) && p.Price.LessThanOrEqual(max) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = false
	return nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) DeductStockTx(_ *gorm.DB, id uuid.UUID, quantity int64) error {
	p, ok := r.products[id]
	if !ok || p.Stock < quantity {
		return gorm.ErrRecordNotFound
	}
	p.Stock -= quantity
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubInvoiceRepo is an in-memory InvoiceRepository.
type stubInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uuid.UUID]*model.Invoice)}
}

func (r *stubInvoiceRepo) CreateTx(_ *gorm.DB, inv *model.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	// The store keys items by (invoice_id, product_id).
	seen := make(map[uuid.UUID]bool, len(inv.Items))
	for i := range inv.Items {
		if seen[inv.Items[i].ProductID] {
			return gorm.ErrDuplicatedKey
		}
		seen[inv.Items[i].ProductID] = true
		inv.Items[i].InvoiceID = inv.ID
	}
	r.invoices[inv.ID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) ListActive(_ context.Context) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.Active {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	inv, ok := r.invoices[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Active = false
	return nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	secret := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	c, err := token.NewCodec(secret, 15*time.Minute, 168*time.Hour)
	require.NoError(t, err)
	return c
}
