package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"taskMaster/internal/app"
	"taskMaster/internal/config"
	"taskMaster/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TASKMASTER_CONFIG"))
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		logger.Error("App: Работа завершена с ошибкой", err)
		return err
	}
	logger.Info("App: Работа завершена")
	return nil
}
