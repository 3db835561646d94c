package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/handlers"
	"marketplace/internal/auth"
	"marketplace/internal/config"
	"marketplace/internal/consul"
	"marketplace/internal/events"
	"marketplace/internal/records"
	"marketplace/internal/shop"
	"marketplace/internal/stores/kafka"
	"marketplace/pkg/logkey"
)

func main() {
	setupSlog()
	if err := startApp(); err != nil {
		slog.Error("marketplace stopped", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func setupSlog() {
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	})
	slog.SetDefault(slog.New(logHandler))
}

func startApp() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var publisher events.Publisher = events.LogPublisher{Logger: slog.Default()}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := kafka.NewConf(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		if err != nil {
			return fmt.Errorf("connecting to kafka: %w", err)
		}
		defer k.Close()
		publisher = k
		slog.Info("publishing events to kafka", slog.Any("brokers", cfg.KafkaBrokers))
	}

	stores, err := loadStores(cfg.SnapshotFile)
	if err != nil {
		return err
	}
	if cfg.SnapshotFile != "" {
		defer func() {
			if err := saveStores(cfg.SnapshotFile, stores); err != nil {
				slog.Error("saving snapshot failed", slog.String(logkey.ERROR, err.Error()))
			}
		}()
	}

	e, err := shop.New(stores, shop.WithLogger(slog.Default()), shop.WithPublisher(publisher))
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	if err := bootstrapAdmin(e, cfg.Admin); err != nil {
		return err
	}

	keys, err := auth.NewKeys(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("setting up auth: %w", err)
	}
	sessions := shop.NewSessions(cfg.TokenTTL)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, time.Minute)

	r, err := handlers.API(cfg.EndpointPrefix, cfg.GinMode, e, sessions, keys)
	if err != nil {
		return fmt.Errorf("building api: %w", err)
	}

	api := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  8 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("api listening", slog.String("addr", cfg.HTTPAddr))
		serverErrors <- api.ListenAndServe()
	}()

	if cfg.ConsulAddr != "" {
		client, err := consul.NewClient(cfg.ConsulAddr)
		if err != nil {
			return err
		}
		id, err := consul.Register(client, cfg.ServiceName, cfg.HTTPAddr)
		if err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("service_id", id))
		defer func() {
			if err := consul.Deregister(client, id); err != nil {
				slog.Error("consul deregistration failed", slog.String(logkey.ERROR, err.Error()))
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		slog.Info("shutdown started", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := api.Shutdown(ctx); err != nil {
			_ = api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

// bootstrapAdmin creates the configured admin account, if any.
func bootstrapAdmin(e *shop.Engine, a config.AdminAccount) error {
	if a.Username == "" {
		return nil
	}
	_, err := e.RegisterAdmin(context.Background(), shop.RegisterRequest{
		Username: a.Username,
		Password: a.Password,
		Email:    a.Email,
		Phone:    a.Phone,
	})
	if errors.Is(err, shop.ErrDuplicateID) {
		slog.Info("admin account already exists", slog.String(logkey.Username, a.Username))
		return nil
	}
	if err != nil {
		return fmt.Errorf("creating admin %s: %w", a.Username, err)
	}
	return nil
}

// loadStores restores the stores from path. A missing file, or no path at
// all, gives empty stores.
func loadStores(path string) (shop.Stores, error) {
	if path == "" {
		return shop.NewStores(), nil
	}
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no snapshot found, starting empty", slog.String("path", path))
		return shop.NewStores(), nil
	}
	if err != nil {
		return shop.Stores{}, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	snap, err := records.ReadSnapshot(f)
	if err != nil {
		return shop.Stores{}, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	stores, err := shop.LoadStores(snap)
	if err != nil {
		return shop.Stores{}, fmt.Errorf("restoring snapshot %s: %w", path, err)
	}
	slog.Info("snapshot restored", slog.String("path", path), slog.Int("products", len(snap.Products)),
		slog.Int("orders", len(snap.Orders)))
	return stores, nil
}

// saveStores writes the snapshot to a temporary file and renames it over path.
func saveStores(path string, stores shop.Stores) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := records.WriteSnapshot(f, stores.Snapshot()); err != nil {
		f.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing snapshot: %w", err)
	}
	return os.Rename(tmp, path)
}
