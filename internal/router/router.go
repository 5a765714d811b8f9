package router

import (
	"time"

	"invoicer/internal/config"
	"invoicer/internal/handler"
	"invoicer/internal/middleware"
	"invoicer/internal/model"
	"invoicer/internal/repository"
	"invoicer/internal/service"
	"invoicer/internal/token"
	"invoicer/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	codec, err := token.NewCodec(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLHours)*time.Hour,
	)
	if err != nil {
		return nil, err
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, roleRepo, codec)
	productSvc := service.NewProductService(productRepo, rdb)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, userRepo, productRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	adminH := handler.NewAdminHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Every request passes through the resolver; it never rejects, it only
	// attaches a principal when the token checks out. Role guards per route
	// decide who gets through.
	r.Use(middleware.Authenticate(codec, userRepo))

	// Auth (public)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authH.Register)
		auth.POST("/login", authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	api := r.Group("/api")
	{
		// Catalog reads — any authenticated user
		api.GET("/products", middleware.RequireRole(model.RoleUser, model.RoleAdmin), productsH.List)
		api.GET("/products/search", middleware.RequireRole(model.RoleUser, model.RoleAdmin), productsH.List)
		api.GET("/products/:id", middleware.RequireRole(model.RoleUser, model.RoleAdmin), productsH.GetByID)

		// Catalog writes — admin only
		products := api.Group("/products", middleware.RequireRole(model.RoleAdmin))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		// Billing
		bills := api.Group("/bills")
		{
			bills.POST("", middleware.RequireRole(model.RoleUser, model.RoleAdmin), invoicesH.Create)
			bills.GET("", middleware.RequireRole(model.RoleUser, model.RoleAdmin), invoicesH.List)
			bills.GET("/:id", middleware.RequireRole(model.RoleUser, model.RoleAdmin), invoicesH.GetByID)
			bills.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), invoicesH.Delete)
		}

		// Admin
		admin := api.Group("/admin", middleware.RequireRole(model.RoleAdmin))
		{
			admin.POST("/users", adminH.CreateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, nil
}
