package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/wso2gate/internal/cache"
	"github.com/dropDatabas3/wso2gate/internal/claims"
	"github.com/dropDatabas3/wso2gate/internal/config"
	"github.com/dropDatabas3/wso2gate/internal/domain/repository"
	"github.com/dropDatabas3/wso2gate/internal/email"
	ctrladmin "github.com/dropDatabas3/wso2gate/internal/http/controllers/admin"
	ctrlauth "github.com/dropDatabas3/wso2gate/internal/http/controllers/auth"
	ctrlhealth "github.com/dropDatabas3/wso2gate/internal/http/controllers/health"
	"github.com/dropDatabas3/wso2gate/internal/http/router"
	svcadmin "github.com/dropDatabas3/wso2gate/internal/http/services/admin"
	svcauth "github.com/dropDatabas3/wso2gate/internal/http/services/auth"
	svchealth "github.com/dropDatabas3/wso2gate/internal/http/services/health"
	"github.com/dropDatabas3/wso2gate/internal/oauth/wso2"
	"github.com/dropDatabas3/wso2gate/internal/observability/logger"
	"github.com/dropDatabas3/wso2gate/internal/provision"
	"github.com/dropDatabas3/wso2gate/internal/rate"
	"github.com/dropDatabas3/wso2gate/internal/store/memory"
	"github.com/dropDatabas3/wso2gate/internal/store/pg"
	pgmigrations "github.com/dropDatabas3/wso2gate/migrations/postgres"
)

var version = "dev"

func main() {
	// .env es opcional; en producción todo llega por entorno real.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	configPath := flag.String("config", "", "ruta al config.yaml (vacío: defaults + env)")
	migrate := flag.Bool("migrate", true, "aplicar migraciones pendientes al arrancar")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		ServiceName: "wso2gate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	logg := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg, *migrate)
	if err != nil {
		logg.Fatal("store init failed", logger.Err(err))
	}
	defer store.Close()

	cacheClient, err := cache.New(cache.Config{
		Driver:   cfg.Cache.Kind,
		Host:     cfg.Cache.Redis.Host,
		Port:     cfg.Cache.Redis.Port,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
	})
	if err != nil {
		logg.Fatal("cache init failed", logger.Err(err))
	}
	defer func() { _ = cacheClient.Close() }()

	client := wso2.New(wso2.Config{
		BaseURL:      cfg.Provider.BaseURL,
		AuthorizeURL: cfg.Provider.AuthorizeURL,
		TokenURL:     cfg.Provider.TokenURL,
		UserInfoURL:  cfg.Provider.UserInfoURL,
		ClientID:     cfg.Provider.ClientID,
		ClientSecret: cfg.Provider.ClientSecret,
		RedirectURL:  cfg.Provider.RedirectURL,
		Scopes:       cfg.Provider.Scopes,
		TokenMethod:  cfg.Provider.TokenMethod,
		BasicAuth:    cfg.Provider.BasicAuth,
		Timeout:      cfg.Provider.Timeout,
	})

	var welcome *email.WelcomeMailer
	if cfg.Email.Enabled {
		sender := email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
		sender.TLSMode = cfg.SMTP.TLS
		sender.InsecureSkipVerify = cfg.SMTP.InsecureSkipVerify
		welcome = &email.WelcomeMailer{
			Sender:   sender,
			SiteName: cfg.Email.SiteName,
			SiteURL:  cfg.Email.SiteURL,
		}
	}

	engine := provision.New(store, claims.NewRegistry(), provision.Policy{
		RequireApproval:    cfg.Policy.RequireApproval,
		TerminatedSentinel: cfg.Policy.TerminatedSentinel,
	}, welcome)

	signer := svcauth.NewHMACStateSigner(cfg.State.Secret, cfg.State.TTL)

	authControllers := ctrlauth.NewControllers(
		svcauth.NewStartService(client, signer),
		svcauth.NewCallbackService(svcauth.CallbackDeps{
			Client:       client,
			Signer:       signer,
			Engine:       engine,
			Cache:        cacheClient,
			LoginCodeTTL: cfg.Provider.LoginCodeTTL,
		}),
		svcauth.NewExchangeService(cacheClient),
	)

	var limiter rate.Limiter
	if cfg.RateLimit.Enabled {
		if rdb := cache.Redis(cacheClient); rdb != nil {
			limiter = rate.NewRedisLimiter(rdb, "rl:auth:", cfg.RateLimit.Max, cfg.RateLimit.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)
		}
	}

	handler := router.New(router.Deps{
		Auth:            authControllers,
		Departments:     ctrladmin.NewDepartmentsController(svcadmin.NewDepartmentsService(store)),
		Health:          ctrlhealth.NewController(svchealth.NewService(store, cacheClient, version)),
		AdminAPIKeyHash: cfg.Admin.APIKeyHash,
		RateLimiter:     limiter,
	})

	shutdownTimeout, _ := time.ParseDuration(cfg.Server.ShutdownTimeout)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logg.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("storage", cfg.Storage.Driver),
			logger.String("cache", cfg.Cache.Kind),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server failed", logger.Err(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", logger.Err(err))
	}
}

func buildStore(ctx context.Context, cfg *config.Config, migrate bool) (repository.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := pg.Migrate(ctx, st.Pool(), pgmigrations.FS); err != nil {
				st.Close()
				return nil, err
			}
		}
		return st, nil
	default:
		return memory.New(), nil
	}
}
