package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/edudesk/edudesk-backend/internal/config"
	"github.com/edudesk/edudesk-backend/internal/handler"
	"github.com/edudesk/edudesk-backend/internal/middleware"
	"github.com/edudesk/edudesk-backend/internal/repository/postgres"
	"github.com/edudesk/edudesk-backend/internal/repository/storage"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title EduDesk API
// @version 1.0
// @description Back-office API for tutoring centres: students, tuition payments, teacher salaries, product sales, expenses and financial reports.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Auth0 access token as "Bearer <token>"
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	if cfg.DBAutoMigrate {
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database schema")
		}
		log.Info().Msg("Database schema applied")
	}

	// Initialize repositories
	branchRepo := postgres.NewBranchRepository(pool)
	teacherRepo := postgres.NewTeacherRepository(pool)
	studentRepo := postgres.NewStudentRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	salaryRepo := postgres.NewSalaryPaymentRepository(pool)
	saleRepo := postgres.NewProductSaleRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	txManager := postgres.NewTxManager(pool)

	// Initialize services
	studentService := service.NewStudentService(studentRepo, groupRepo, membershipRepo, paymentRepo, branchRepo, txManager)
	groupService := service.NewGroupService(groupRepo, studentRepo, membershipRepo, txManager)
	paymentService := service.NewPaymentService(paymentRepo, studentRepo, groupRepo, membershipRepo, branchRepo, txManager)
	salaryService := service.NewSalaryService(teacherRepo, groupRepo, membershipRepo, paymentRepo, salaryRepo, branchRepo)
	saleService := service.NewProductSaleService(saleRepo, studentRepo, branchRepo, txManager)
	expenseService := service.NewExpenseService(expenseRepo, branchRepo)
	reportService := service.NewReportService(paymentRepo, saleRepo, expenseRepo, salaryRepo)

	if cfg.S3.Enabled() {
		archive, err := storage.NewS3ReportArchive(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create report archive")
		}
		reportService.SetArchive(archive, cfg.S3.ReportPrefix, cfg.S3.ReportURLTTL)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Report export enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, report export disabled")
	}

	// Live feed: every write service publishes to the branch hub
	hub := websocket.NewHub()
	studentService.SetEventPublisher(hub)
	groupService.SetEventPublisher(hub)
	paymentService.SetEventPublisher(hub)
	salaryService.SetEventPublisher(hub)
	saleService.SetEventPublisher(hub)
	expenseService.SetEventPublisher(hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create websocket token validator")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	// Initialize handlers
	gate := middleware.NewBranchAccess()
	handlers := handler.Handlers{
		Students:     handler.NewStudentHandler(studentService, saleService, gate),
		Groups:       handler.NewGroupHandler(groupService, studentService, gate),
		Payments:     handler.NewPaymentHandler(paymentService, studentService, gate),
		Salaries:     handler.NewSalaryHandler(salaryService, gate),
		ProductSales: handler.NewProductSaleHandler(saleService, gate),
		Expenses:     handler.NewExpenseHandler(expenseService, gate),
		Reports:      handler.NewReportHandler(reportService, gate),
	}
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		// the Swagger UI page relies on inline scripts
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/swagger/")
		},
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Live feed authenticates through its own token query parameter
	e.GET("/ws", wsHandler.HandleWS)

	// API documentation
	handler.RegisterDocs(e)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Int("ws_clients", hub.TotalClientCount()).Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
