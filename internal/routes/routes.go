package routes

import (
	"time"

	"invoice-management-backend/internal/config"
	handler "invoice-management-backend/internal/handlers"
	"invoice-management-backend/internal/logger"
	"invoice-management-backend/internal/middleware"
	"invoice-management-backend/internal/repository"
	service "invoice-management-backend/internal/services/invoice"
	"invoice-management-backend/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the shared middleware stack.
func NewRouter(cfg *config.Config, log *logger.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	return r
}

// RegisterRoutes wires the invoice gateway, service and handlers onto r.
func RegisterRoutes(r *gin.Engine, invoiceRepo *repository.InvoiceRepository, log *logger.Logger) {
	invoiceService := service.NewInvoiceService(invoiceRepo, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, validation.New(), log)

	r.GET("/health", handler.Health(time.Now))

	invoices := r.Group("/invoices")
	{
		invoices.GET("", invoiceHandler.List)
		invoices.POST("", invoiceHandler.Create)
		invoices.PATCH("/:id", invoiceHandler.Update)
		invoices.DELETE("/:id", invoiceHandler.Delete)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
