package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicer/internal/dto"
	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceService implements the billing transaction: invoice creation with
// all-or-nothing stock deduction, soft deletion, and the live-priced reads.
type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	ListActive(ctx context.Context) ([]dto.InvoiceResponse, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	repo       repository.InvoiceRepository
	users      repository.UserRepository
	products   repository.ProductRepository
	dispatcher *worker.Dispatcher
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	users repository.UserRepository,
	products repository.ProductRepository,
	dispatcher *worker.Dispatcher,
) InvoiceService {
	return &invoiceService{repo: repo, users: users, products: products, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Create builds an invoice from the ordered line items and deducts stock
// with all-or-nothing semantics.
//
// Line items are walked in input order, and a later line referencing the
// same product sees the stock already claimed by the earlier lines —
// over-ordering across lines of one invoice is detected before anything is
// written. Lines referencing the same product are merged into a single
// stored row, since items are keyed by (invoice, product). The store writes themselves run in a single
// transaction with guarded deductions, so concurrent invoices against the
// same product conflict at the store, not in process.
func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id: %w", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	type resolvedItem struct {
		product  *model.Product
		quantity int64
	}

	order := make([]uuid.UUID, 0, len(req.Items))
	resolved := make(map[uuid.UUID]*resolvedItem, len(req.Items))

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}

		if merged, ok := resolved[pid]; ok {
			// A later line for the same product draws on the stock the
			// earlier lines already claimed.
			if item.Quantity > merged.product.Stock-merged.quantity {
				return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, merged.product.Name)
			}
			merged.quantity += item.Quantity
			continue
		}

		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID)
		}
		if !p.Active {
			return nil, fmt.Errorf("%w: %s", ErrProductInactive, p.Name)
		}
		if item.Quantity > p.Stock {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, p.Name)
		}

		resolved[pid] = &resolvedItem{product: p, quantity: item.Quantity}
		order = append(order, pid)
	}

	invoice := model.Invoice{UserID: user.ID, User: user, Active: true}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, pid := range order {
			r := resolved[pid]
			if err := s.products.DeductStockTx(tx, pid, r.quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Lost a race: another transaction drained the stock first.
					return fmt.Errorf("%w: %s", ErrInsufficientStock, r.product.Name)
				}
				return err
			}
		}

		// Price the stored rows and the response against the product state
		// the deduction actually saw, not the pre-transaction read.
		invoice.Items = invoice.Items[:0]
		for _, pid := range order {
			p, err := s.products.FindByIDTx(tx, pid)
			if err != nil {
				return err
			}
			invoice.Items = append(invoice.Items, model.InvoiceItem{
				ProductID: pid,
				Quantity:  resolved[pid].quantity,
				Product:   p,
			})
		}

		return s.repo.CreateTx(tx, &invoice)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async receipt delivery — best-effort, fire & forget.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueReceipt(ctx, worker.ReceiptJobPayload{
			InvoiceID: invoice.ID.String(),
			ToEmail:   user.Email,
		})
	}

	return invoiceToResponse(&invoice), nil
}

func (s *invoiceService) FindByID(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}
	return invoiceToResponse(inv), nil
}

func (s *invoiceService) ListActive(ctx context.Context) ([]dto.InvoiceResponse, error) {
	invoices, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		resp = append(resp, *invoiceToResponse(&invoices[i]))
	}
	return resp, nil
}

// SoftDelete flips the active flag in one atomic update. Stock is NOT
// restored: deleting an invoice is a billing-record concern, not an
// inventory reversal.
func (s *invoiceService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return err
	}
	return nil
}

// invoiceToResponse computes subtotals and the total from the product
// prices as loaded NOW — the stored rows carry quantities only.
func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for i := range inv.Items {
		item := &inv.Items[i]
		r := dto.InvoiceItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
		if item.Product != nil {
			r.ProductName = item.Product.Name
			r.UnitPrice = item.Product.Price
		}
		items = append(items, r)
	}

	username := ""
	if inv.User != nil {
		username = inv.User.Username
	}
	return &dto.InvoiceResponse{
		ID:        inv.ID.String(),
		UserID:    inv.UserID.String(),
		Username:  username,
		Active:    inv.Active,
		CreatedAt: inv.CreatedAt.UTC().Format(time.RFC3339),
		Items:     items,
		Total:     inv.Total(),
	}
}
