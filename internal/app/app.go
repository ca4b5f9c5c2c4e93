package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskMaster/internal/config"
	"taskMaster/internal/handlers"
	"taskMaster/internal/logger"
	"taskMaster/internal/middleware"
	"taskMaster/internal/migrations"
	"taskMaster/internal/migrator"
	"taskMaster/internal/notify"
	"taskMaster/internal/repository/task/inmemory"
	"taskMaster/internal/repository/task/postgres"
	"taskMaster/internal/repository/task/sqlite"
	"taskMaster/internal/seed"
	"taskMaster/internal/service"
	"taskMaster/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// Store - хранилище задач, в которое умеет писать и координатор миграции
type Store interface {
	service.TaskRepository
	migrator.Store
}

type App struct {
	config        *config.Config
	server        *http.Server
	router        *chi.Mux
	repository    Store
	flags         migrator.FlagStore
	source        migrator.Source
	coordinator   *migrator.Coordinator
	notifications *notify.Buffer
	service       *service.TaskService
	shutdowns     []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init собирает всё приложение вместе с HTTP-сервером
func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if _, err := a.InitCore(ctx); err != nil {
		return nil, err
	}

	a.initRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return a, nil
}

// InitCore собирает хранилище, миграцию и сервис без HTTP; используется CLI
func (a *App) InitCore(ctx context.Context) (*App, error) {
	if err := a.initRepository(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.notifications = notify.NewBuffer(a.config.Notifications.BufferSize)
	opts := []service.Option{
		service.WithLocale(a.config.Query.Locale),
		service.WithNotifier(notify.Multi{notify.Log{}, a.notifications}),
	}

	if a.config.Migration.Enabled {
		if err := a.initMigration(ctx); err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, service.WithMigrator(a.coordinator))
	}

	a.service = service.NewTaskService(a.repository, service.RepoType(a.config.Repository.Type), opts...)
	logger.Info("App: Сервис задач готов",
		zap.String("repo", a.config.Repository.Type),
		zap.Bool("migration", a.config.Migration.Enabled))
	return a, nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch service.RepoType(a.config.Repository.Type) {
	case service.DBType:
		if err := migrations.UpPostgres(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции схемы: %w", err)
		}

		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.Config{
			MaxConns:        int32(a.config.Database.MaxConnections),
			MinConns:        int32(a.config.Database.MinConnections),
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.repository = storage
		a.shutdowns = append(a.shutdowns, storage.Close)

		// флаг миграции и исходные локальные задачи живут на устройстве
		local, err := sqlite.New(ctx, a.config.Local.Path)
		if err != nil {
			return fmt.Errorf("локальное хранилище: %w", err)
		}
		a.shutdowns = append(a.shutdowns, local.Close)
		a.flags = sqlite.NewFlagStore(local)
		if a.config.Migration.Source == config.SourceLocal {
			a.source = migrator.NewStoreSource("sqlite", local)
		}

	case service.LocalType:
		storage, err := sqlite.New(ctx, a.config.Local.Path)
		if err != nil {
			return fmt.Errorf("локальное хранилище: %w", err)
		}
		a.repository = storage
		a.flags = sqlite.NewFlagStore(storage)
		a.shutdowns = append(a.shutdowns, storage.Close)

	case service.InMemoryType:
		a.repository = inmemory.NewTaskStorage()
		a.flags = inmemory.NewFlagStore()

	default:
		return fmt.Errorf("неизвестный тип хранилища %q", a.config.Repository.Type)
	}
	return nil
}

func (a *App) initMigration(ctx context.Context) error {
	if a.source == nil {
		switch a.config.Migration.Source {
		case config.SourceFile:
			a.source = seed.File{Path: a.config.Migration.SeedFile}
		case config.SourceLocal:
			return errors.New("перенос из локального хранилища доступен только для postgres")
		default:
			a.source = seed.Default()
		}
	}

	coordinator, err := migrator.New(ctx, a.repository, a.flags, a.source,
		migrator.WithFlagKey(a.config.Migration.FlagKey))
	if err != nil {
		return fmt.Errorf("координатор миграции: %w", err)
	}
	a.coordinator = coordinator
	return nil
}

func (a *App) initRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	handlers.NewTaskHandler(a.service, a.notifications).Routes(r)
	a.router = r
}

func (a *App) Service() *service.TaskService {
	return a.service
}

func (a *App) Notifications() *notify.Buffer {
	return a.notifications
}

func (a *App) Handler() http.Handler {
	return a.router
}

// Run обслуживает HTTP до отмены ctx, затем корректно останавливает сервер
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		return errors.New("приложение не инициализировано")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP: Сервер остановлен с ошибкой", err)
			return err
		}
		return nil
	})

	if a.config.Migration.Enabled && a.config.Migration.RetryInterval > 0 {
		g.Go(func() error {
			worker.NewMigrationWorker(a.service, a.config.Migration.RetryInterval).Start(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("HTTP: Остановка сервера...")
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close освобождает ресурсы в порядке, обратном созданию
func (a *App) Close() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
