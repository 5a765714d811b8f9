package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"invoicer/internal/dto"
	"invoicer/internal/model"
	"invoicer/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const productCacheTTL = 10 * time.Minute

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListActive(ctx context.Context) ([]dto.ProductResponse, error)
	Search(ctx context.Context, name string, minPrice, maxPrice *decimal.Decimal) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductService(repo repository.ProductRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := model.Product{
		Name:   req.Name,
		Price:  req.Price,
		Stock:  req.Stock,
		Active: true,
	}
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	return productToResponse(&p), nil
}

// FindByID serves from the redis cache when a fresh entry exists and falls
// back to the store otherwise, repopulating the cache on the way out.
func (s *productService) FindByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	resp := productToResponse(p)
	s.cacheSet(ctx, resp)
	return resp, nil
}

func (s *productService) ListActive(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return productsToResponses(products), nil
}

// Search filters the active catalog by name substring and/or price range.
// An empty filter behaves like ListActive.
func (s *productService) Search(ctx context.Context, name string, minPrice, maxPrice *decimal.Decimal) ([]dto.ProductResponse, error) {
	if name != "" {
		products, err := s.repo.SearchByName(ctx, name)
		if err != nil {
			return nil, err
		}
		return productsToResponses(filterByPrice(products, minPrice, maxPrice)), nil
	}
	if minPrice != nil || maxPrice != nil {
		min := decimal.Zero
		if minPrice != nil {
			min = *minPrice
		}
		max := decimal.New(1, 12) // effectively unbounded
		if maxPrice != nil {
			max = *maxPrice
		}
		products, err := s.repo.SearchByPriceRange(ctx, min, max)
		if err != nil {
			return nil, err
		}
		return productsToResponses(products), nil
	}
	return s.ListActive(ctx)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cacheInvalidate(ctx, id)
	return productToResponse(p), nil
}

func (s *productService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.cacheInvalidate(ctx, id)
	return nil
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}

func (s *productService) cacheGet(ctx context.Context, id uuid.UUID) *dto.ProductResponse {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, productCacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache read failed")
		}
		return nil
	}
	var resp dto.ProductResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *productService) cacheSet(ctx context.Context, resp *dto.ProductResponse) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, "product:"+resp.ID, raw, productCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", resp.ID).Msg("product cache write failed")
	}
}

func (s *productService) cacheInvalidate(ctx context.Context, id uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}
}

func filterByPrice(products []model.Product, min, max *decimal.Decimal) []model.Product {
	if min == nil && max == nil {
		return products
	}
	out := products[:0]
	for _, p := range products {
		if min != nil && p.Price.LessThan(*min) {
			continue
		}
		if max != nil && p.Price.GreaterThan(*max) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:     p.ID.String(),
		Name:   p.Name,
		Price:  p.Price,
		Stock:  p.Stock,
		Active: p.Active,
	}
}

func productsToResponses(products []model.Product) []dto.ProductResponse {
	resp := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, *productToResponse(&products[i]))
	}
	return resp
}
