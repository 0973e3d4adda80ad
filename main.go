package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2/app"

	"github.com/borgmon/wakebell/pkg/audio"
	"github.com/borgmon/wakebell/pkg/config"
	"github.com/borgmon/wakebell/pkg/logger"
	"github.com/borgmon/wakebell/pkg/notify"
	"github.com/borgmon/wakebell/pkg/schedule"
	"github.com/borgmon/wakebell/pkg/scheduler"
	"github.com/borgmon/wakebell/pkg/sound"
	"github.com/borgmon/wakebell/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.New(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	l := logger.New(cfg.Log.Level, cfg.App.Env)

	if err := setupAutostart(cfg.App.AutoStart); err != nil {
		l.Warn("failed to setup autostart", logger.Err(err))
	}

	fyneApp := app.NewWithID("com.borgmon.wakebell")

	notifier := notify.NewDesktop(fyneApp)
	controller := audio.NewController(audio.NewOtoFactory())
	catalog := sound.DefaultCatalog(cfg.Sound.AssetDir)

	svc := scheduler.New(
		l,
		store.NewPreferencesStore(fyneApp),
		notifier,
		controller,
		catalog,
		schedule.SystemClock(),
	)

	if err := svc.Start(); err != nil {
		l.Error("failed to start scheduler", logger.Err(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Run(ctx, cfg.Schedule.RearmInterval)

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		sig := <-interrupt

		l.Info("shutting down", slog.String("signal", sig.String()))
		cancel()
		if err := svc.Close(); err != nil {
			l.Error("failed to close scheduler", logger.Err(err))
		}
		notifier.Close()
		fyneApp.Quit()
	}()

	fyneApp.Run()
}
