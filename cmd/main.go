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

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelAppointmentHandler "github.com/randevux/booking-service/internal/api/handlers/cancel_appointment"
	createAppointmentHandler "github.com/randevux/booking-service/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/randevux/booking-service/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/randevux/booking-service/internal/api/handlers/get_available_slots"
	getBusinessAppointmentsHandler "github.com/randevux/booking-service/internal/api/handlers/get_business_appointments"
	getCustomerAppointmentsHandler "github.com/randevux/booking-service/internal/api/handlers/get_customer_appointments"
	getStaffScheduleHandler "github.com/randevux/booking-service/internal/api/handlers/get_staff_schedule"
	updateAppointmentStatusHandler "github.com/randevux/booking-service/internal/api/handlers/update_appointment_status"
	updateStaffScheduleHandler "github.com/randevux/booking-service/internal/api/handlers/update_staff_schedule"
	"github.com/randevux/booking-service/internal/api/middleware"
	"github.com/randevux/booking-service/internal/config"
	appointmentRepo "github.com/randevux/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/randevux/booking-service/internal/infra/storage/catalog"
	scheduleRepo "github.com/randevux/booking-service/internal/infra/storage/schedule"
	"github.com/randevux/booking-service/internal/integrations/notifier"
	appointmentsService "github.com/randevux/booking-service/internal/service/appointments"
	scheduleService "github.com/randevux/booking-service/internal/service/schedule"
	createBookingUC "github.com/randevux/booking-service/internal/usecase/create_booking"
	getAvailableSlotsUC "github.com/randevux/booking-service/internal/usecase/get_available_slots"
	"github.com/randevux/booking-service/pkg/dbmetrics"
	"github.com/randevux/booking-service/pkg/lock"
	"github.com/randevux/booking-service/pkg/logger"
	"github.com/randevux/booking-service/pkg/metrics"
	"github.com/randevux/booking-service/pkg/txmanager"
)

type closableLocker interface {
	createBookingUC.Locker
	Close() error
}

type closableNotifier interface {
	createBookingUC.Notifier
	Close() error
}

func main() {
	configPath := config.Getenv("RANDEVUX_CONFIG", "config.toml")

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting RandevuX booking service...")
	log.Info("Configuration loaded from %s", configPath)

	// nil-коллектор превращает все замеры в no-op
	var metricsCollector *metrics.Metrics
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database: %v", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	pingCancel()
	if err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	stopMetricsCh := make(chan struct{})
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	txMgr := txmanager.NewTransactionManager(wrappedDB)
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	scheduleRepository := scheduleRepo.NewRepository(wrappedDB)
	catalogRepository := catalogRepo.NewRepository(wrappedDB)

	var locker closableLocker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		redisLock, err := lock.NewRedisLock(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis: %v", err)
		}
		locker = redisLock
		log.Info("Redis booking lock enabled (addr=%s)", cfg.Redis.Addr)
	} else {
		log.Warn("Redis disabled, booking submissions rely on database serialization only")
	}

	var events closableNotifier
	if cfg.Kafka.Enabled {
		events = notifier.NewKafkaNotifier(notifier.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), log)
		log.Info("Kafka notifier enabled (brokers=%v, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	} else {
		events = notifier.NewLogNotifier(log)
	}

	appointmentsSvc := appointmentsService.NewService(appointmentRepository, catalogRepository, txMgr, log)
	scheduleSvc := scheduleService.NewService(scheduleRepository, catalogRepository, txMgr, log)

	createBookingUseCase := createBookingUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleRepository,
		txMgr,
		locker,
		events,
		metricsCollector,
		createBookingUC.Options{
			LockTTL:            cfg.Booking.LockTTL(),
			NotifyTimeout:      cfg.Booking.NotifyTimeout(),
			AdvanceBookingDays: cfg.Booking.AdvanceBookingDays,
		},
		log,
	)

	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		appointmentRepository,
		catalogRepository,
		scheduleRepository,
		cfg.Booking.AdvanceBookingDays,
		log,
	)

	createAppointment := createAppointmentHandler.NewHandler(createBookingUseCase, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentsSvc, log)
	updateAppointmentStatus := updateAppointmentStatusHandler.NewHandler(appointmentsSvc, log)
	getCustomerAppointments := getCustomerAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getBusinessAppointments := getBusinessAppointmentsHandler.NewHandler(appointmentsSvc, log)
	getStaffSchedule := getStaffScheduleHandler.NewHandler(scheduleSvc, log)
	updateStaffSchedule := updateStaffScheduleHandler.NewHandler(scheduleSvc, log)

	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// публичные
	api.HandleFunc("/businesses/{businessId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/businesses/{businessId}/staff/{staffId}/schedule", getStaffSchedule.Handle).Methods(http.MethodGet)

	// требуют X-User-ID
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/status", updateAppointmentStatus.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/customers/{customerId}/appointments", getCustomerAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/appointments", getBusinessAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/businesses/{businessId}/staff/{staffId}/schedule", updateStaffSchedule.Handle).Methods(http.MethodPut)

	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// дожидаемся фоновых уведомлений до закрытия writer
	createBookingUseCase.Wait()

	if err := events.Close(); err != nil {
		log.Error("Failed to close notifier: %v", err)
	}
	if err := locker.Close(); err != nil {
		log.Error("Failed to close redis lock: %v", err)
	}

	close(stopMetricsCh)

	if err := wrappedDB.Close(); err != nil {
		log.Error("Failed to close database: %v", err)
	}

	log.Info("Server stopped gracefully")
}
