package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"invoicer/internal/dto"
	"invoicer/internal/handler"
	"invoicer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// stubProductService echoes the request back so tests can focus on the
// HTTP surface: binding, validation and status codes.
type stubProductService struct {
	updated *dto.UpdateProductRequest
}

func (s *stubProductService) Create(_ context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	return &dto.ProductResponse{ID: uuid.NewString(), Name: req.Name, Price: req.Price, Stock: req.Stock, Active: true}, nil
}

func (s *stubProductService) FindByID(_ context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	return &dto.ProductResponse{ID: id.String(), Name: "beer", Price: decimal.NewFromFloat(2.50), Active: true}, nil
}

func (s *stubProductService) ListActive(_ context.Context) ([]dto.ProductResponse, error) {
	return nil, nil
}

func (s *stubProductService) Search(_ context.Context, _ string, _, _ *decimal.Decimal) ([]dto.ProductResponse, error) {
	return nil, nil
}

func (s *stubProductService) Update(_ context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	s.updated = &req
	return &dto.ProductResponse{ID: id.String(), Name: "beer", Active: true}, nil
}

func (s *stubProductService) SoftDelete(_ context.Context, _ uuid.UUID) error {
	return nil
}

var _ service.ProductService = (*stubProductService)(nil)

func productsRouter(svc service.ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewProductsHandler(svc)
	r := gin.New()
	r.POST("/api/products", h.Create)
	r.PUT("/api/products/:id", h.Update)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProductNegativePriceReturns422(t *testing.T) {
	svc := &stubProductService{}
	r := productsRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/products", `{"name":"beer","price":-2.50,"stock":10}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Price")
}

func TestUpdateProductNegativePriceReturns422(t *testing.T) {
	svc := &stubProductService{}
	r := productsRouter(svc)

	w := doJSON(r, http.MethodPut, "/api/products/"+uuid.NewString(), `{"price":-5.00}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Price")
	assert.Nil(t, svc.updated, "a rejected request must not reach the service")
}

func TestUpdateProductNegativeStockReturns422(t *testing.T) {
	svc := &stubProductService{}
	r := productsRouter(svc)

	w := doJSON(r, http.MethodPut, "/api/products/"+uuid.NewString(), `{"stock":-1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Stock")
}

func TestUpdateProductPartialBodyReturns200(t *testing.T) {
	svc := &stubProductService{}
	r := productsRouter(svc)

	w := doJSON(r, http.MethodPut, "/api/products/"+uuid.NewString(), `{"price":3.75}`)
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.NotNil(t, svc.updated) && assert.NotNil(t, svc.updated.Price) {
		assert.True(t, svc.updated.Price.Equal(decimal.NewFromFloat(3.75)))
	}
	assert.Nil(t, svc.updated.Name)
	assert.Nil(t, svc.updated.Stock)
}
