package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quickstack-pos/api/internal/config"
	"github.com/quickstack-pos/api/internal/database"
	"github.com/quickstack-pos/api/internal/handler"
	mw "github.com/quickstack-pos/api/internal/middleware"
	"github.com/quickstack-pos/api/internal/service"
	"go.uber.org/zap"
)

// New creates a Chi router with all application routes wired up.
// Every route except health and auth requires a bearer access token.
func New(cfg *config.Config, pool *pgxpool.Pool, log *zap.Logger) chi.Router {
	queries := database.New(pool)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	handler.NewHealthHandler(pool, log).RegisterRoutes(r)
	handler.NewAuthHandler(queries, cfg.JWTSecret, handler.TokenTTLs{
		Access:  cfg.AccessTokenTTL,
		Refresh: cfg.RefreshTokenTTL,
	}, log).RegisterRoutes(r)

	orderService := service.NewOrderService(
		queries,
		pool,
		func(db database.DBTX) service.OrderStore { return database.New(db) },
		cfg.DefaultTaxRate,
		log.Named("orders"),
	)
	paymentService := service.NewPaymentService(
		queries,
		pool,
		func(db database.DBTX) service.PaymentStore { return database.New(db) },
		log.Named("payments"),
	)
	reportService := service.NewReportService(queries)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		handler.NewOrderHandler(orderService, log).RegisterRoutes(r)
		handler.NewPaymentHandler(paymentService, log).RegisterRoutes(r)
		handler.NewCustomerHandler(queries, log).RegisterRoutes(r)
		handler.NewCatalogHandler(queries, log).RegisterRoutes(r)
		handler.NewUserHandler(queries, log).RegisterRoutes(r)
		handler.NewReportsHandler(reportService, log).RegisterRoutes(r)
	})

	return r
}
