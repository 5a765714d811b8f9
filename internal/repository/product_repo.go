package repository

import (
	"context"

	"invoicer/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for the catalog.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	SearchByName(ctx context.Context, name string) ([]model.Product, error)
	SearchByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Used inside the invoice transaction — callers must pass the tx instance.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	DeductStockTx(tx *gorm.DB, id uuid.UUID, quantity int64) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) SearchByName(ctx context.Context, name string) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("name ILIKE ? AND active = true", "%"+name+"%").
		Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) SearchByPriceRange(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("price BETWEEN ? AND ? AND active = true", min, max).
		Order("price ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).Update("active", false).Error
}

func (r *productRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DeductStockTx decrements stock with a guarded UPDATE so the store — not
// in-process locking — serializes concurrent deductions. Zero rows affected
// means the stock check failed under concurrency.
func (r *productRepo) DeductStockTx(tx *gorm.DB, id uuid.UUID, quantity int64) error {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) DB() *gorm.DB { return r.db }
