package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/card-order-api/api/swagger"
	"github.com/noah-isme/card-order-api/internal/handler"
	"github.com/noah-isme/card-order-api/internal/middleware"
	"github.com/noah-isme/card-order-api/internal/repository"
	"github.com/noah-isme/card-order-api/internal/service"
	"github.com/noah-isme/card-order-api/pkg/config"
	"github.com/noah-isme/card-order-api/pkg/drive"
	"github.com/noah-isme/card-order-api/pkg/graph"
	"github.com/noah-isme/card-order-api/pkg/jobs"
	"github.com/noah-isme/card-order-api/pkg/logger"
	"github.com/noah-isme/card-order-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/card-order-api/pkg/middleware/cors"
	"github.com/noah-isme/card-order-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/card-order-api/pkg/middleware/requestid"
	"github.com/noah-isme/card-order-api/pkg/workbook"
)

// @title Card Order API
// @version 1.0.0
// @description Business-card order intake backed by an Excel worksheet
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metricsSvc := service.NewMetricsService()

	tokens, err := graph.NewClientSecretProvider(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret, cfg.Graph.TokenSkew)
	if err != nil {
		return fmt.Errorf("graph credential: %w", err)
	}
	graphClient, err := graph.New(graph.Config{
		BaseURL:  cfg.Graph.BaseURL,
		Tokens:   tokens,
		Timeout:  cfg.Graph.Timeout,
		Observer: metricsSvc.ObserveRemoteCall,
	})
	if err != nil {
		return fmt.Errorf("graph client: %w", err)
	}

	store, err := workbook.NewStore(graphClient, workbook.Location{
		DriveID:      cfg.Workbook.DriveID,
		WorkbookPath: cfg.Workbook.Path,
		Worksheet:    cfg.Workbook.Worksheet,
		Table:        cfg.Workbook.Table,
	})
	if err != nil {
		return fmt.Errorf("workbook store: %w", err)
	}
	relay, err := drive.NewRelay(graphClient, cfg.Workbook.DriveID)
	if err != nil {
		return fmt.Errorf("drive relay: %w", err)
	}
	repo := repository.NewApplicationRepository(store, relay, repository.ApplicationRepositoryConfig{
		DraftFolder: cfg.Workbook.DraftFolder,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := handler.NewEngine(handler.EngineConfig{
		TrustedProxies:     cfg.TrustedProxies,
		MaxMultipartMemory: cfg.Workflow.MaxDraftSizeBytes + (1 << 20),
	})
	if err != nil {
		return err
	}

	mail, err := newMailer(ctx, cfg.Mail)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	notifier, err := service.NewNotificationService(mail, metricsSvc, logr.Named("notify"), service.NotificationConfig{
		BaseURL:      cfg.BaseURL,
		AdminEmail:   cfg.Mail.AdminEmail,
		Organization: cfg.Mail.Organization,
		Queue: jobs.QueueConfig{
			Workers:    cfg.Notify.Workers,
			BufferSize: cfg.Notify.Buffer,
			MaxRetries: cfg.Notify.Retries,
			JobTimeout: cfg.Notify.Timeout,
		},
	})
	if err != nil {
		return fmt.Errorf("notifications: %w", err)
	}
	notifier.Start(context.Background())

	validate := validator.New()
	appSvc := service.NewApplicationService(repo, notifier, metricsSvc, validate, logr, service.ApplicationServiceConfig{
		EnforceTransitions: cfg.Workflow.EnforceTransitions,
		DefaultActor:       cfg.Workflow.DefaultActor,
		MaxDraftSize:       cfg.Workflow.MaxDraftSizeBytes,
	})

	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	routes := handler.Routes{
		Applications: handler.NewApplicationHandler(appSvc),
		Admin:        handler.NewAdminHandler(appSvc, cfg.Workflow.MaxDraftSizeBytes),
		Export:       handler.NewExportHandler(service.NewExportService(appSvc, logr)),
		Metrics: handler.NewMetricsHandler(metricsSvc, handler.ReadinessCheck{
			Name: "graph_token",
			Check: func(ctx context.Context) error {
				_, err := tokens.Token(ctx)
				return err
			},
		}),
		SubmitLimit: ratelimit.New(cfg.RateLimit.SubmitPerMinute, cfg.RateLimit.SubmitBurst).Middleware(),
		LoginLimit:  ratelimit.New(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst).Middleware(),
		AuditLogger: logr.Named("audit"),
		StaticDir:   cfg.StaticDir,
	}
	if cfg.AdminAuth.Enabled {
		authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
			Username:     cfg.AdminAuth.Username,
			PasswordHash: cfg.AdminAuth.PasswordHash,
			DisplayName:  cfg.AdminAuth.DisplayName,
			Secret:       cfg.AdminAuth.Secret,
			TokenTTL:     cfg.AdminAuth.TokenTTL,
		})
		routes.Auth = handler.NewAuthHandler(authSvc)
		routes.AdminGuard = middleware.AdminJWT(authSvc)
	}
	handler.RegisterRoutes(r, routes)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("mail_provider", mail.Name()),
			zap.Bool("admin_auth", cfg.AdminAuth.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	notifier.Stop(shutdownCtx)
	return nil
}

func newMailer(ctx context.Context, cfg config.MailConfig) (mailer.Mailer, error) {
	switch cfg.Provider {
	case config.MailProviderNone:
		return mailer.Discard{}, nil
	case config.MailProviderSES:
		m, err := mailer.NewSES(ctx, cfg.SESRegion, cfg.From)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.MailProviderSMTP, "":
		m, err := mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
		})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
