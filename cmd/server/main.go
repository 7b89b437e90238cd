package main // Entry point package

import (
    "context"   // root context cancelled on shutdown
    "errors"    // errors.Is for server close detection
    "net/http"  // http.ErrServerClosed
    "os"        // signal plumbing
    "os/signal" // SIGINT/SIGTERM handling
    "syscall"   // SIGTERM
    "time"      // shutdown and sweep timings

    "github.com/go-co-op/gocron/v2"               // expiry sweep scheduler
    "github.com/joho/godotenv"                    // .env loading for local runs
    "github.com/labstack/echo/v4"                 // Echo web framework
    echomw "github.com/labstack/echo/v4/middleware" // recover, request logging, CORS

    "github.com/iliyamo/festival-registration/internal/config"     // Internal config loader
    "github.com/iliyamo/festival-registration/internal/database"   // MySQL connection and schema
    "github.com/iliyamo/festival-registration/internal/handler"    // HTTP handlers
    "github.com/iliyamo/festival-registration/internal/logger"     // gommon + lumberjack logger
    "github.com/iliyamo/festival-registration/internal/mailer"     // SMTP transport
    "github.com/iliyamo/festival-registration/internal/middleware" // validator binding
    "github.com/iliyamo/festival-registration/internal/queue"      // email consumer
    "github.com/iliyamo/festival-registration/internal/repository" // stores
    "github.com/iliyamo/festival-registration/internal/router"     // route registration
    "github.com/iliyamo/festival-registration/internal/service"    // business logic
)

func main() {
    _ = godotenv.Load() // .env is optional

    cfg := config.Load()
    e := echo.New()
    e.HideBanner = true
    log := logger.New("festival", cfg.LogLevel, cfg.LogFile)
    e.Logger = log
    e.Validator = middleware.NewValidator()

    e.Use(echomw.Recover())
    e.Use(echomw.CORS())
    e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:  true,
        LogURI:     true,
        LogStatus:  true,
        LogLatency: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            log.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
            return nil
        },
    }))

    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer cancel()

    rdb := config.NewRedisClient(config.LoadRedisConfig())
    if rdb == nil {
        log.Info("redis unavailable; using in-process rate limiting and no response cache")
    }

    // Registration and admin-user stores: MySQL when configured and
    // reachable, otherwise registrations.json and the env bootstrap admin.
    var (
        regStore  repository.RegistrationStore = repository.NewFileRegistrationStore(cfg.DataDir)
        userStore repository.UserStore         = repository.NewEnvUserStore(cfg.AdminEmail, cfg.AdminPasswordHash)
    )
    if cfg.DatabaseEnabled() {
        db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
        if err == nil {
            err = database.Migrate(ctx, db)
        }
        if err != nil {
            log.Warnf("mysql unavailable, falling back to file storage: %v", err)
        } else {
            defer db.Close()
            users := repository.NewUserRepo(db)
            // The env bootstrap admin is the only way into an empty admin_users table.
            if created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPasswordHash); err != nil {
                log.Errorf("seed bootstrap admin: %v", err)
            } else if created {
                log.Infof("bootstrap admin %s created", cfg.AdminEmail)
            }
            regStore = repository.NewRegistrationRepo(db)
            userStore = users
        }
    }

    resStore := repository.NewJSONFileStore(cfg.DataDir)
    if err := resStore.Ensure(ctx); err != nil {
        log.Fatalf("reservations store: %v", err)
    }
    lock, err := service.NewLocker(cfg.StoreLock, rdb)
    if err != nil {
        log.Warnf("store lock: %v; using process lock", err)
        lock = service.NewMutexLocker()
    }

    // Notifications
    smtp := mailer.NewSMTPMailer(cfg.Mail)
    var pub service.EmailPublisher
    if cfg.NotifyMode == "queue" {
        pub = service.NewPublisher(cfg.RabbitMQURL)
    }
    notifier := &service.Notifier{
        Mailer:   smtp,
        Dispatch: service.NewDispatcher(cfg.NotifyMode, smtp, cfg.Mail.Timeout, pub, log),
        Operator: cfg.OperatorEmail,
        Event:    cfg.EventName,
        Currency: cfg.DefaultCurrency,
        Log:      log,
    }
    if !notifier.Configured() {
        log.Warn("SMTP_HOST not set; notification emails are disabled")
    }

    resSvc := &service.ReservationService{
        Store:           resStore,
        Lock:            lock,
        Notify:          notifier,
        TTL:             cfg.ReservationTTL,
        DefaultCurrency: cfg.DefaultCurrency,
        Strict:          cfg.StrictTransitions,
        Log:             log,
    }
    regSvc := &service.RegistrationService{Store: regStore, Notify: notifier, EventName: cfg.EventName, Log: log}
    contactSvc := &service.ContactService{Notify: notifier}
    analyticsSvc := &service.AnalyticsService{Reservations: resStore, Registrations: regStore}

    if cfg.WebhookToken == "" {
        log.Warn("PAYMENT_WEBHOOK_TOKEN not set; payment webhooks will be rejected")
    }
    resH := handler.NewReservationHandler(resSvc, cfg.WebhookToken)
    regH := handler.NewRegistrationHandler(regSvc)

    router.RegisterRoutes(e)
    router.RegisterPublic(e, router.Public{
        Reservations:  resH,
        Registrations: regH,
        Contact:       handler.NewContactHandler(contactSvc),
    }, config.LoadRateLimitConfig(), rdb)
    router.RegisterAdmin(e, router.Admin{
        Auth:          handler.NewAdminAuthHandler(cfg, userStore),
        Users:         handler.NewAdminUserHandler(cfg, userStore),
        Reservations:  resH,
        Registrations: regH,
        Analytics:     handler.NewAnalyticsHandler(analyticsSvc),
    }, cfg.JWTSecret, config.LoadCacheConfig(), rdb)

    // Background work
    var sched gocron.Scheduler
    if cfg.SweepEnabled {
        sched, err = gocron.NewScheduler()
        if err != nil {
            log.Fatalf("scheduler: %v", err)
        }
        if _, err := service.ScheduleExpirySweep(sched, resSvc, cfg.SweepInterval, log); err != nil {
            log.Fatalf("expiry sweep: %v", err)
        }
        sched.Start()
    }
    if cfg.NotifyMode == "queue" && notifier.Configured() {
        go func() {
            if err := queue.StartEmailConsumer(ctx, cfg.RabbitMQURL, smtp, log); err != nil && !errors.Is(err, context.Canceled) {
                log.Errorf("email consumer stopped: %v", err)
            }
        }()
    }

    addr := ":" + cfg.Port
    go func() {
        log.Infof("listening on %s (env=%s)", addr, cfg.Env)
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatal(err)
        }
    }()

    <-ctx.Done()
    log.Info("shutting down")
    shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
    defer stop()
    if err := e.Shutdown(shutdownCtx); err != nil {
        log.Errorf("http shutdown: %v", err)
    }
    if sched != nil {
        if err := sched.Shutdown(); err != nil {
            log.Errorf("scheduler shutdown: %v", err)
        }
    }
    if rdb != nil {
        _ = rdb.Close()
    }
}
