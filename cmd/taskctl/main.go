package main

import (
	"context"
	"fmt"
	"os"

	"taskMaster/internal/app"
	"taskMaster/internal/config"
	"taskMaster/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

type options struct {
	configPath string
	verbose    bool
	json       bool
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - управление журналом задач из терминала",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "путь к config.yml (по умолчанию $TASKMASTER_CONFIG или ./config.yml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "писать журнал в stderr")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "вывод в JSON")

	cmd.AddCommand(listCmd(opts))
	cmd.AddCommand(addCmd(opts))
	cmd.AddCommand(editCmd(opts))
	cmd.AddCommand(statusCmd(opts))
	cmd.AddCommand(deleteCmd(opts))
	cmd.AddCommand(migrateCmd(opts))

	return cmd
}

// open собирает сервис по конфигурации; вызывающий обязан закрыть приложение
func open(ctx context.Context, opts *options) (*app.App, error) {
	if opts.verbose {
		if err := logger.Init(true); err != nil {
			return nil, err
		}
	}

	path := opts.configPath
	if path == "" {
		path = os.Getenv("TASKMASTER_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("загрузка конфигурации: %w", err)
	}

	return app.New(cfg).InitCore(ctx)
}
