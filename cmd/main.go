package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/m04kA/GlampingBackoffice/internal/api/handlers"
	beginPairingHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/begin_pairing"
	blockSessionHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/block_session"
	cancelBookingHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/cancel_booking"
	createTransportHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/create_transport"
	disconnectTransportHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/disconnect_transport"
	getBookingHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/get_booking"
	getPaymentLinkHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/get_payment_link"
	getSessionHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/get_session"
	getTranscriptHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/get_transcript"
	getTransportHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/get_transport"
	issuePaymentLinkHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/issue_payment_link"
	listBookingsHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/list_bookings"
	listPaymentLinksHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/list_payment_links"
	listSessionsHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/list_sessions"
	listTransportsHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/list_transports"
	materializeBookingHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/materialize_booking"
	sendMessageHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/send_message"
	submitProofHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/submit_proof"
	transitionStageHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/transition_stage"
	unblockSessionHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/unblock_session"
	upsertSessionHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/upsert_session"
	verifyPaymentHandler "github.com/m04kA/GlampingBackoffice/internal/api/handlers/verify_payment"
	"github.com/m04kA/GlampingBackoffice/internal/api/middleware"
	"github.com/m04kA/GlampingBackoffice/internal/config"
	"github.com/m04kA/GlampingBackoffice/internal/domain"
	"github.com/m04kA/GlampingBackoffice/internal/events"
	bookingRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/booking"
	clientRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/client"
	paymentLinkRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/paymentlink"
	sessionRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/session"
	transcriptRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/transcript"
	transportHandleRepo "github.com/m04kA/GlampingBackoffice/internal/infra/storage/transporthandle"
	"github.com/m04kA/GlampingBackoffice/internal/integrations/filestorage"
	openaiClient "github.com/m04kA/GlampingBackoffice/internal/integrations/openai"
	"github.com/m04kA/GlampingBackoffice/internal/integrations/whatsapp"
	"github.com/m04kA/GlampingBackoffice/internal/jobs"
	bookingsService "github.com/m04kA/GlampingBackoffice/internal/service/bookings"
	clientsService "github.com/m04kA/GlampingBackoffice/internal/service/clients"
	paymentsService "github.com/m04kA/GlampingBackoffice/internal/service/payments"
	responderService "github.com/m04kA/GlampingBackoffice/internal/service/responder"
	sessionsService "github.com/m04kA/GlampingBackoffice/internal/service/sessions"
	transportService "github.com/m04kA/GlampingBackoffice/internal/service/transport"
	getTranscriptUC "github.com/m04kA/GlampingBackoffice/internal/usecase/get_transcript"
	handleInboundUC "github.com/m04kA/GlampingBackoffice/internal/usecase/handle_inbound"
	materializeBookingUC "github.com/m04kA/GlampingBackoffice/internal/usecase/materialize_booking"
	sendManualMessageUC "github.com/m04kA/GlampingBackoffice/internal/usecase/send_manual_message"
	"github.com/m04kA/GlampingBackoffice/migrations"
	"github.com/m04kA/GlampingBackoffice/pkg/dbmetrics"
	"github.com/m04kA/GlampingBackoffice/pkg/logger"
	"github.com/m04kA/GlampingBackoffice/pkg/metrics"
	"github.com/m04kA/GlampingBackoffice/pkg/txmanager"
)

// jobTimeout ограничение на один запуск фоновой задачи
const jobTimeout = time.Minute

func main() {
	configPath := "config.toml"
	if v := os.Getenv("GLAMPING_CONFIG"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
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

	log.Info("Starting GlampingBackoffice...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
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

	// При выключенных метриках обёртка работает как прозрачный прокси
	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)

	if cfg.Database.AutoMigrate {
		applied, err := migrations.Apply(context.Background(), wrappedDB)
		if err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Migrations applied: %s", strings.Join(applied, ", "))
	}

	// Инициализируем репозитории
	sessionRepository := sessionRepo.NewRepository(wrappedDB)
	clientRepository := clientRepo.NewRepository(wrappedDB)
	transcriptRepository := transcriptRepo.NewRepository(wrappedDB)
	bookingRepository := bookingRepo.NewRepository(wrappedDB)
	paymentLinkRepository := paymentLinkRepo.NewRepository(wrappedDB)
	handleRepository := transportHandleRepo.NewRepository(wrappedDB)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Шина событий процесса
	bus := events.NewBus()
	if err := bus.Subscribe(events.TopicTransportState, func(h domain.TransportHandle) {
		metricsCollector.SetTransportStatus(h.Name, string(h.Status), domain.TransportStatuses)
	}); err != nil {
		log.Fatal("Failed to subscribe to transport state: %v", err)
	}

	// Транспорт мессенджера
	waDriver, err := whatsapp.NewDriver(
		context.Background(),
		cfg.Transport.StorePath,
		cfg.Transport.PrintQR,
		whatsapp.NewLogger(log.Named("whatsmeow").Zap()),
		log,
	)
	if err != nil {
		log.Fatal("Failed to open transport store: %v", err)
	}

	transportManager := transportService.NewManager(
		transportService.Config{
			PairingTimeout:     cfg.Transport.PairingTimeoutDuration(),
			ReconnectBaseDelay: cfg.Transport.ReconnectBaseDelayDuration(),
			ReconnectMaxDelay:  cfg.Transport.ReconnectMaxDelayDuration(),
			MaxReconnects:      cfg.Transport.MaxReconnects,
			SendRate:           rate.Limit(cfg.Transport.SendRate),
			SendBurst:          cfg.Transport.SendBurst,
			ReconnectOnBoot:    cfg.Transport.ReconcileOnBoot,
		},
		waDriver,
		handleRepository,
		bus,
		log,
	)

	// Инициализируем сервисы
	sessionSvc := sessionsService.NewService(sessionRepository, txMgr, log)
	clientSvc := clientsService.NewService(clientRepository, log)
	bookingSvc := bookingsService.NewService(bookingRepository, log)

	proofStorage, err := filestorage.New(cfg.Storage.UploadDir, cfg.Storage.PublicBaseURL, cfg.Storage.MaxUploadSize)
	if err != nil {
		log.Fatal("Failed to initialize upload storage: %v", err)
	}

	paymentSvc, err := paymentsService.NewService(
		paymentsService.Config{
			Currency:    cfg.Payments.Currency,
			TTL:         time.Duration(cfg.Payments.LinkTTL) * time.Hour,
			URLTemplate: cfg.Payments.PaymentURLTemplate,
			NodeID:      cfg.Payments.NodeID,
		},
		bookingRepository,
		paymentLinkRepository,
		sessionRepository,
		proofStorage,
		txMgr,
		log,
	)
	if err != nil {
		log.Fatal("Failed to initialize payments: %v", err)
	}

	// Автоответчик, nil если выключен
	var responder *responderService.Service
	if cfg.Responder.Enabled {
		generator := openaiClient.NewClient(
			cfg.Responder.BaseURL,
			cfg.Responder.APIKey,
			cfg.Responder.Model,
			time.Duration(cfg.Responder.Timeout)*time.Second,
			log,
		)
		responder, err = responderService.NewService(
			responderService.Config{
				SystemPrompt: cfg.Responder.SystemPrompt,
				MaxTokens:    cfg.Responder.MaxTokens,
				Workers:      cfg.Responder.Workers,
				QueueSize:    cfg.Responder.QueueSize,
				SendAttempts: cfg.Responder.SendAttempts,
				RetryDelay:   time.Duration(cfg.Responder.RetryDelay) * time.Millisecond,
				Timeout:      time.Duration(cfg.Responder.Timeout) * time.Second,
			},
			generator,
			transportManager,
			transcriptRepository,
			sessionRepository,
			metricsCollector,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize responder: %v", err)
		}
		log.Info("Responder enabled (model=%s, workers=%d)", cfg.Responder.Model, cfg.Responder.Workers)
	} else {
		log.Info("Responder disabled, inbound messages are stored without auto reply")
	}

	// Инициализируем use cases
	var replier handleInboundUC.Responder
	if responder != nil {
		replier = responder
	}
	handleInboundUseCase := handleInboundUC.NewUseCase(
		clientSvc,
		transcriptRepository,
		replier,
		sessionSvc,
		metricsCollector,
		log,
	)
	materializeBookingUseCase := materializeBookingUC.NewUseCase(
		sessionRepository,
		bookingRepository,
		clientRepository,
		txMgr,
		log,
	)
	sendManualMessageUseCase := sendManualMessageUC.NewUseCase(
		clientSvc,
		transcriptRepository,
		transportManager,
		sessionSvc,
		log,
	)
	getTranscriptUseCase := getTranscriptUC.NewUseCase(clientRepository, transcriptRepository, log)

	// Входящие сообщения обрабатываются асинхронно, без сериализации между отправителями
	if err := bus.SubscribeAsync(events.TopicInboundMessage, handleInboundUseCase.HandleEvent, false); err != nil {
		log.Fatal("Failed to subscribe to inbound messages: %v", err)
	}

	// Восстанавливаем подключения после рестарта
	if _, err := transportManager.Reconcile(context.Background()); err != nil {
		log.Error("Failed to reconcile transport handles: %v", err)
	}

	// Фоновые задачи
	scheduler, err := jobs.NewScheduler(cfg.Jobs.Timezone, jobTimeout, log)
	if err != nil {
		log.Fatal("Failed to initialize scheduler: %v", err)
	}
	if err := scheduler.Register("expire_payment_links", cfg.Jobs.ExpirePaymentLinks, paymentSvc.ExpireStale); err != nil {
		log.Fatal("Failed to register job: %v", err)
	}
	if err := scheduler.Register("release_blocks", cfg.Jobs.ReleaseBlocks, sessionSvc.ReleaseExpiredBlocks); err != nil {
		log.Fatal("Failed to register job: %v", err)
	}
	scheduler.Start()

	// Инициализируем handlers
	upsertSession := upsertSessionHandler.NewHandler(sessionSvc, log)
	getSession := getSessionHandler.NewHandler(sessionSvc, log)
	listSessions := listSessionsHandler.NewHandler(sessionSvc, log)
	transitionStage := transitionStageHandler.NewHandler(sessionSvc, log)
	blockSession := blockSessionHandler.NewHandler(sessionSvc, log)
	unblockSession := unblockSessionHandler.NewHandler(sessionSvc, log)
	getTranscript := getTranscriptHandler.NewHandler(getTranscriptUseCase, log)
	sendMessage := sendMessageHandler.NewHandler(sendManualMessageUseCase, log)
	materializeBooking := materializeBookingHandler.NewHandler(materializeBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	issuePaymentLink := issuePaymentLinkHandler.NewHandler(paymentSvc, log)
	listPaymentLinks := listPaymentLinksHandler.NewHandler(paymentSvc, log)
	getPaymentLink := getPaymentLinkHandler.NewHandler(paymentSvc, log)
	submitProof := submitProofHandler.NewHandler(paymentSvc, cfg.Storage.MaxUploadSize, log)
	verifyPayment := verifyPaymentHandler.NewHandler(paymentSvc, log)
	createTransport := createTransportHandler.NewHandler(transportManager, log)
	listTransports := listTransportsHandler.NewHandler(transportManager, log)
	getTransport := getTransportHandler.NewHandler(transportManager, log)
	beginPairing := beginPairingHandler.NewHandler(transportManager, log)
	disconnectTransport := disconnectTransportHandler.NewHandler(transportManager, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recover(log))

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")
	}

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			handlers.RespondServiceUnavailable(w)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Metrics endpoint
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// Загруженные подтверждения оплаты
	uploadsPrefix := strings.TrimRight(cfg.Storage.PublicBaseURL, "/") + "/"
	if strings.HasPrefix(uploadsPrefix, "/") {
		r.PathPrefix(uploadsPrefix).Handler(
			http.StripPrefix(uploadsPrefix, http.FileServer(http.Dir(proofStorage.Dir()))),
		).Methods(http.MethodGet)
	}

	// ============================================================
	// ADMIN ROUTES (требуют X-Admin-ID header)
	// ============================================================

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Сессии ---
	api.HandleFunc("/sessions", listSessions.Handle).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{phone}", upsertSession.Handle).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{phone}", getSession.Handle).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{phone}/stage", transitionStage.Handle).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{phone}/block", blockSession.Handle).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{phone}/block", unblockSession.Handle).Methods(http.MethodDelete)

	// --- Переписка ---
	api.HandleFunc("/sessions/{phone}/transcript", getTranscript.Handle).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{phone}/messages", sendMessage.Handle).Methods(http.MethodPost)

	// --- Бронирования ---
	api.HandleFunc("/sessions/{phone}/booking", materializeBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)

	// --- Оплата ---
	api.HandleFunc("/bookings/{bookingId}/payment-links", issuePaymentLink.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{bookingId}/payment-links", listPaymentLinks.Handle).Methods(http.MethodGet)
	api.HandleFunc("/payment-links/{linkId}", getPaymentLink.Handle).Methods(http.MethodGet)
	api.HandleFunc("/payment-links/{linkId}/proof", submitProof.Handle).Methods(http.MethodPost)
	api.HandleFunc("/payment-links/{linkId}/verify", verifyPayment.Handle).Methods(http.MethodPost)

	// --- Подключения мессенджера ---
	api.HandleFunc("/transports", createTransport.Handle).Methods(http.MethodPost)
	api.HandleFunc("/transports", listTransports.Handle).Methods(http.MethodGet)
	api.HandleFunc("/transports/{handleId}", getTransport.Handle).Methods(http.MethodGet)
	api.HandleFunc("/transports/{handleId}/pairing", beginPairing.Handle).Methods(http.MethodPost)
	api.HandleFunc("/transports/{handleId}/disconnect", disconnectTransport.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Сначала закрываем транспорт, чтобы не принимать новые сообщения
	transportManager.Shutdown()
	bus.WaitAsync()

	if responder != nil {
		if err := responder.Stop(shutdownTimeout); err != nil {
			log.Error("Responder stopped with pending tasks: %v", err)
		}
	}

	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler stopped with running jobs: %v", err)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
