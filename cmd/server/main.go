// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "rfid-service/docs"
	"rfid-service/internal/config"
	"rfid-service/internal/discovery/serial"
	"rfid-service/internal/event"
	"rfid-service/internal/handler"
	"rfid-service/internal/mqtt"
	"rfid-service/internal/protocol"
	"rfid-service/internal/reader"
	"rfid-service/internal/routes"
	"rfid-service/internal/service"
	"rfid-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server

	// Event plumbing
	eventBus  *event.Bus
	wsHandler *handler.WebSocketHandler
	publisher *mqtt.Publisher

	// Services
	readerService *service.ReaderService
	poller        *service.Poller

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// @title RFID Reader Service API
// @version 1.0.0
// @description UHF RFID reader service: serial port discovery, connection management and single-tag inventory scans

// @contact.name RFID Service API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
func main() {
	configDir := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = append(paths, *configDir)
	}

	app, err := NewApplication(paths...)
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication(configPaths ...string) (*Application, error) {
	cfg, err := config.Load(configPaths...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "rfid-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := app.initializePublisher(); err != nil {
		return nil, fmt.Errorf("failed to initialize MQTT publisher: %w", err)
	}

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeServices creates the reader session and the services around it
func (app *Application) initializeServices() error {
	app.eventBus = event.NewBus(app.logger)

	sessionConfig := reader.DefaultConfig()
	sessionConfig.Address = app.config.ReaderAddress()
	session := reader.NewSession(protocol.NewSerialFactory(), sessionConfig, app.logger)

	app.readerService = service.NewReaderService(
		session,
		serial.NewScanner(app.logger),
		app.eventBus,
		app.config,
		app.logger,
	)

	if app.config.Reader.PollEnabled {
		app.poller = service.NewPoller(app.readerService, app.config.Reader.PollInterval, app.logger)
	}

	app.logger.Info("Services initialized successfully",
		zap.Bool("poll_enabled", app.config.Reader.PollEnabled),
	)
	return nil
}

// initializePublisher creates the MQTT publisher, disabled without a broker host
func (app *Application) initializePublisher() error {
	publisher, err := mqtt.New(app.config.MQTT, app.logger)
	if err != nil {
		return err
	}
	app.publisher = publisher
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	app.wsHandler = handler.NewWebSocketHandler(
		app.readerService,
		app.eventBus,
		app.config.Security.AllowedOrigins,
		app.logger,
	)

	routerManager := routes.NewRouter(app.config, app.logger, app.readerService, app.wsHandler)
	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)

	return nil
}

// startBackgroundServices starts the event bus, its consumers and the poller
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.goBackground(func() { app.eventBus.Start(ctx) })
	app.goBackground(func() { app.wsHandler.Start(ctx) })

	if app.publisher.IsEnabled() {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := app.publisher.Connect(connectCtx); err != nil {
			app.logger.Warn("MQTT broker not reachable yet, retrying in background", zap.Error(err))
		}
		connectCancel()

		events, unsubscribe := app.eventBus.Subscribe()
		app.goBackground(func() {
			defer unsubscribe()
			app.publisher.Run(ctx, events)
		})
	}

	if app.poller != nil {
		app.goBackground(func() { app.poller.Run(ctx) })
	}

	app.logger.Info("Background services started")
}

func (app *Application) goBackground(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer utils.LogPanic(app.logger)
		fn()
	}()
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown stops the HTTP server, background loops, the reader and MQTT
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "rfid-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Stop poller, event bus and stream consumers
	if app.cancel != nil {
		app.cancel()
	}
	app.wg.Wait()

	if err := app.readerService.Shutdown(ctx); err != nil {
		app.logger.Error("Reader disconnect error", zap.Error(err))
	}

	app.publisher.Disconnect()

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start runs the HTTP server and background services until a shutdown signal
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()

	app.waitForShutdown()

	return nil
}
