package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cancelBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/cancel_booking"
	createBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/create_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_booking"
	getClientBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_client_bookings"
	getStaffBookingsHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/get_staff_bookings"
	rescheduleBookingHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/reschedule_booking"
	updateBookingStatusHandler "github.com/m04kA/SMC-SchedulingService/internal/api/handlers/update_booking_status"
	"github.com/m04kA/SMC-SchedulingService/internal/api/middleware"
	"github.com/m04kA/SMC-SchedulingService/internal/config"
	slotCache "github.com/m04kA/SMC-SchedulingService/internal/infra/cache/slots"
	bookingRepo "github.com/m04kA/SMC-SchedulingService/internal/infra/storage/booking"
	catalogServiceClient "github.com/m04kA/SMC-SchedulingService/internal/integrations/catalogservice"
	"github.com/m04kA/SMC-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/SMC-SchedulingService/internal/service/availability"
	bookingsService "github.com/m04kA/SMC-SchedulingService/internal/service/bookings"
	getAvailableSlotsUC "github.com/m04kA/SMC-SchedulingService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/keylock"
	"github.com/m04kA/SMC-SchedulingService/pkg/logger"
	"github.com/m04kA/SMC-SchedulingService/pkg/metrics"
	"github.com/m04kA/SMC-SchedulingService/pkg/tracing"
	"github.com/m04kA/SMC-SchedulingService/pkg/txmanager"
)

// bookingStore хранилище, которое нужно и калькулятору, и сервису бронирований
type bookingStore interface {
	bookingsService.BookingRepository
	availability.BookingRepository
}

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if v := os.Getenv("SMC_CONFIG_PATH"); v != "" {
		configPath = v
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-SchedulingService...")
	log.Info("Configuration loaded from %s", configPath)

	// Трассировка
	shutdownTracing, err := tracing.Setup(context.Background(), tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Metrics.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Fatal("Failed to initialize tracing: %v", err)
	}
	if cfg.Tracing.Enabled {
		log.Info("Tracing enabled (endpoint=%s, ratio=%.2f)", cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище бронирований и менеджер транзакций
	var (
		store     bookingStore
		txManager bookingsService.TransactionManager
		db        *sql.DB
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		store = bookingRepo.NewMemoryRepository()
		txManager = txmanager.NopManager{}
		log.Warn("Using in-memory booking storage: data is lost on restart")

	default:
		db, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Database.DBName, stopMetricsCh)
		store = bookingRepo.NewRepository(wrappedDB)
		txManager = txmanager.NewTransactionManager(wrappedDB)
	}

	// Клиент каталога
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (CatalogService=%s timeout=%ds)",
		cfg.CatalogService.URL, cfg.CatalogService.Timeout)

	// Публикация событий
	var publisher interface {
		bookingsService.Notifier
		Close() error
	} = notifications.NopPublisher{}
	if cfg.Notifications.Enabled {
		publisher = notifications.NewKafkaPublisher(
			notifications.SplitBrokers(cfg.Notifications.Brokers),
			cfg.Notifications.TopicPrefix,
			time.Duration(cfg.Notifications.WriteTimeout)*time.Second,
		)
		log.Info("Kafka notifications enabled (brokers=%s, prefix=%s)",
			cfg.Notifications.Brokers, cfg.Notifications.TopicPrefix)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close notification publisher: %v", err)
		}
	}()

	// Калькулятор доступности и сервис бронирований
	calculator := availability.NewCalculator(store, catalogClient, log)

	bookingOpts := []bookingsService.Option{
		bookingsService.WithNotifier(publisher),
		bookingsService.WithMetrics(metricsCollector),
		bookingsService.WithNotifyTimeout(time.Duration(cfg.Notifications.SendTimeout) * time.Second),
		bookingsService.WithRetry(func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = time.Duration(cfg.Scheduling.RetryInitialIntervalMs) * time.Millisecond
			b.MaxInterval = time.Duration(cfg.Scheduling.RetryMaxIntervalMs) * time.Millisecond
			return b
		}, cfg.Scheduling.RetryMaxTries),
	}

	// Кэш слотов (опционально)
	var cache getAvailableSlotsUC.SlotCache
	if cfg.SlotCache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.SlotCache.Addr,
			Password: cfg.SlotCache.Password,
			DB:       cfg.SlotCache.DB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is not reachable at %s, slots will be computed directly until it recovers: %v",
				cfg.SlotCache.Addr, err)
		}
		cancel()

		c := slotCache.NewCache(rdb, time.Duration(cfg.SlotCache.TTL)*time.Second, cfg.SlotCache.KeyPrefix)
		cache = c
		bookingOpts = append(bookingOpts, bookingsService.WithSlotCache(c))
		log.Info("Slot cache enabled (addr=%s, ttl=%ds)", cfg.SlotCache.Addr, cfg.SlotCache.TTL)
	}

	bookingSvc := bookingsService.NewService(
		store,
		calculator,
		catalogClient,
		txManager,
		keylock.New[int64](),
		log,
		bookingOpts...,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		catalogClient,
		calculator,
		cache,
		metricsCollector,
		log,
	)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	createBooking := createBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	updateBookingStatus := updateBookingStatusHandler.NewHandler(bookingSvc, log)
	getStaffBookings := getStaffBookingsHandler.NewHandler(bookingSvc, log)
	getClientBookings := getClientBookingsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet)

	// --- Слоты ---
	r.HandleFunc("/booking/slots", getAvailableSlots.Handle).Methods(http.MethodPost)

	// --- Бронирования ---
	r.HandleFunc("/booking", createBooking.Handle).Methods(http.MethodPost)
	r.HandleFunc("/booking/{bookingId:[0-9]+}", getBooking.Handle).Methods(http.MethodGet)
	r.HandleFunc("/booking/{bookingId:[0-9]+}", rescheduleBooking.Handle).Methods(http.MethodPatch)
	r.HandleFunc("/booking/{bookingId:[0-9]+}/cancel", cancelBooking.Handle).Methods(http.MethodPost)
	r.HandleFunc("/booking/{bookingId:[0-9]+}/status", updateBookingStatus.Handle).Methods(http.MethodPost)

	// --- Списки ---
	r.HandleFunc("/staff/{staffId:[0-9]+}/bookings", getStaffBookings.Handle).Methods(http.MethodGet)
	r.HandleFunc("/clients/{clientId:[0-9]+}/bookings", getClientBookings.Handle).Methods(http.MethodGet)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(r, "scheduling-api"),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся отправки уведомлений по уже подтвержденным изменениям
	if err := bookingSvc.Shutdown(shutdownCtx); err != nil {
		log.Warn("Pending notifications were not delivered: %v", err)
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Failed to flush traces: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// healthHandler 200, если хранилище доступно. Для хранилища в памяти всегда 200.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
