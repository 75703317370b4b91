package internal

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	logger_adapter "property-search-service/internal/adapters/logger"
	rabbitmq_adapter "property-search-service/internal/adapters/rabbitmq"
	"property-search-service/internal/adapters/rest"
	"property-search-service/internal/configs"
	"property-search-service/internal/constants"
	"property-search-service/internal/core/port"
	"property-search-service/internal/core/port/usecases_port"
	"property-search-service/internal/core/summary"
	"property-search-service/internal/core/usecase"
	fluentlogger "property-search-service/pkg/fluent_logger"
	"property-search-service/pkg/rabbitmq/rabbitmq_common"
	"property-search-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/fluent/fluent-logger-golang/fluent"
)

const (
	ensureIndexesTimeout = 2 * time.Minute
	shutdownTimeout      = 15 * time.Second
)

// App – структура приложения
type App struct {
	config *configs.AppConfig

	closeStore   func()
	messaging    *Messaging
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	restServer *rest.Server
	// nil, если RabbitMQ выключен
	searchRequestsListener port.EventListenerPort
}

// NewApp - корень композиции: здесь создаются и связываются все зависимости.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	app := &App{config: appConfig}

	// --- 1. ЛОГГЕРЫ ---
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	// --- 2. ХРАНИЛИЩЕ ---
	store, closeStore, err := OpenListingStore(context.Background(), appConfig, baseLogger)
	if err != nil {
		appLogger.Error("Failed to initialize listing store", err, port.Fields{"backend": appConfig.StoreBackend})
		app.closeResources()
		return nil, err
	}
	app.closeStore = closeStore

	indexCtx, cancel := context.WithTimeout(context.Background(), ensureIndexesTimeout)
	err = store.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		appLogger.Error("Failed to ensure indexes", err, nil)
		app.closeResources()
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	appLogger.Info("Listing store ready", port.Fields{"backend": appConfig.StoreBackend})

	// --- 3. ЯДРО ---
	core := NewSearchCore(appConfig.Search, store)
	findBestMatchUC, summarizer := core.FindBestMatch, core.Summarizer

	// интерфейс, а не *usecase..., чтобы выключенная очередь давала настоящий nil
	var processUC usecases_port.ProcessSearchRequestUseCase

	// --- 4. RABBITMQ ---
	if appConfig.RabbitMQ.Enabled {
		processSearchRequestUC, err := app.initMessaging(baseLogger, findBestMatchUC, summarizer)
		if err != nil {
			appLogger.Error("Failed to initialize RabbitMQ", err, nil)
			app.closeResources()
			return nil, err
		}
		processUC = processSearchRequestUC
	}

	// --- 5. REST ---
	app.restServer = rest.NewServer(
		rest.ServerConfig{
			Port:           appConfig.Rest.Port,
			AllowedOrigins: appConfig.Rest.AllowedOrigins,
			RateLimitRPS:   appConfig.Rest.RateLimitRPS,
			RateLimitBurst: appConfig.Rest.RateLimitBurst,
		},
		rest.NewSearchHandlers(findBestMatchUC, summarizer),
		rest.NewToolCallHandlers(findBestMatchUC, processUC, summarizer),
		rest.NewHealthHandlers(store),
		baseLogger.WithFields(port.Fields{"component": "rest"}),
	)

	appLogger.Info("Application initialized", port.Fields{
		"candidate_limit":  core.EngineConfig.CandidateLimit,
		"fuzzy_cutoff":     core.EngineConfig.FuzzyCutoff,
		"rabbitmq_enabled": appConfig.RabbitMQ.Enabled,
	})
	return app, nil
}

func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		UseColor: true,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		a.fluentClient = fluentClient

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			_ = fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers),
		"fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

func (a *App) initMessaging(
	baseLogger port.LoggerPort,
	findBestMatchUC usecases_port.FindBestMatchUseCase,
	summarizer *summary.Summarizer,
) (*usecase.ProcessSearchRequestUseCase, error) {
	cfg := a.config

	messaging, err := OpenMessaging(cfg.RabbitMQ.URL, baseLogger)
	if err != nil {
		return nil, err
	}
	a.messaging = messaging

	processUC := usecase.NewProcessSearchRequestUseCase(findBestMatchUC, summarizer, messaging.MatchPublisher)

	consumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:                 rabbitmq_common.Config{URL: cfg.RabbitMQ.URL},
		QueueName:              constants.QueueSearchRequests,
		DeclareQueue:           true,
		DurableQueue:           true,
		ExchangeNameForBind:    constants.SearchExchange,
		DeclareExchangeForBind: true,
		ExchangeTypeForBind:    constants.SearchExchangeType,
		DurableExchangeForBind: true,
		RoutingKeyForBind:      constants.RoutingKeySearchRequested,
		PrefetchCount:          cfg.RabbitMQ.Workers,
		Workers:                cfg.RabbitMQ.Workers,
		ConsumerTag:            "property-search-requests-adapter",

		EnableRetryMechanism: true,
		RetryExchange:        constants.SearchRequestsRetryExchange,
		RetryQueue:           constants.SearchRequestsRetryQueue,
		RetryTTL:             constants.SearchRequestsRetryTTL,
		FinalDLXExchange:     constants.FinalDLXExchangeForSearchRequests,
		FinalDLQ:             constants.FinalDLQForSearchRequests,
		FinalDLQRoutingKey:   constants.FinalDLQRoutingKeyForSearchRequests,
		MaxRetries:           constants.SearchRequestsMaxRetries,
	}
	listener, err := rabbitmq_adapter.NewSearchRequestConsumerAdapter(consumerCfg, processUC, baseLogger, messaging.ConnManager)
	if err != nil {
		return nil, err
	}
	a.searchRequestsListener = listener

	return processUC, nil
}

// Run запускает компоненты и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	var wg sync.WaitGroup
	componentErrors := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.restServer.Start(); err != nil {
			componentErrors <- fmt.Errorf("rest server: %w", err)
		}
	}()

	if a.searchRequestsListener != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			listenerLogger := a.logger.WithFields(port.Fields{"listener_name": "Search Requests Listener"})
			listenerLogger.Info("Starting listener...", nil)
			if err := a.searchRequestsListener.Start(appCtx); err != nil {
				listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
				componentErrors <- fmt.Errorf("search requests listener: %w", err)
				return
			}
			listenerLogger.Info("Listener stopped gracefully", nil)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case runErr = <-componentErrors:
		a.logger.Error("A critical component failed, shutting down", runErr, nil)
	}

	cancelApp()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.restServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("Error stopping REST server", err, nil)
	}

	a.logger.Info("Waiting for background processes to finish...", nil)
	wg.Wait()

	a.logger.Info("Application shut down gracefully.", nil)
	a.closeResources()
	return runErr
}

// closeResources закрывает все, что успели создать. Безопасен при частичной инициализации.
func (a *App) closeResources() {
	logf := func(msg string, err error) {
		if a.logger != nil {
			a.logger.Error(msg, err, nil)
			return
		}
		log.Printf("App: %s: %v\n", msg, err)
	}

	if a.searchRequestsListener != nil {
		if err := a.searchRequestsListener.Close(); err != nil {
			logf("Error closing search requests listener", err)
		}
	}
	if a.messaging != nil {
		a.messaging.Close()
	}
	if a.closeStore != nil {
		a.closeStore()
	}
	// последним: до этого момента логи еще уходят во Fluent Bit
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			log.Printf("App: Error closing fluent client: %v\n", err)
		}
	}
}
