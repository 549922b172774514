package routes

import (
	"net/http"
	"time"

	"github.com/Juanitagalindoe/TiendaPoli/internal/config"
	domainRepo "github.com/Juanitagalindoe/TiendaPoli/internal/domain/repository"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/handler"
	"github.com/Juanitagalindoe/TiendaPoli/internal/presentation/http/middleware"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/clock"
	"github.com/Juanitagalindoe/TiendaPoli/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
	Invoice  *handler.InvoiceHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Clock           clock.Clock
	Logger          *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.Register(v)
		v.RegisterTagNameFunc(validation.JSONTagName)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(deps.Logger))
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	v1 := router.Group("/api/v1")
	{
		if deps.Cfg.RateLimit.Requests > 0 && deps.Cfg.RateLimit.Duration > 0 {
			rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
				RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
				BurstSize:         deps.Cfg.RateLimit.Requests,
				CleanupInterval:   5 * time.Minute,
				EntryTTL:          10 * time.Minute,
			})
			v1.Use(rateLimiter.Middleware())
		}

		v1.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:   deps.IdempotencyRepo,
			Clock:  deps.Clock,
			Logger: deps.Logger,
		}))

		registerProductRoutes(v1, h)
		registerCustomerRoutes(v1, h)
		registerInvoiceRoutes(v1, h)
	}

	return router
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.DELETE("/:id", h.Product.Delete)
		products.POST("/:id/restock", h.Product.Restock)
		products.GET("/:id/availability", h.Product.Availability)
		products.GET("/:id/invoices", h.Product.Invoices)
	}
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerInvoiceRoutes(v1 *gin.RouterGroup, h *Handlers) {
	invoices := v1.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.DELETE("/:id", h.Invoice.Cancel)
		invoices.PUT("/:id/customer", h.Invoice.AssignCustomer)
		invoices.POST("/:id/finalize", h.Invoice.Finalize)
		invoices.POST("/:id/recompute", h.Invoice.Recompute)
		invoices.GET("/:id/lines", h.Invoice.ListLines)
		invoices.PUT("/:id/lines/:line", h.Invoice.PutLine)
		invoices.DELETE("/:id/lines/:line", h.Invoice.DeleteLine)
	}
}
