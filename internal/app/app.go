package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/taskmanager/internal/config"
	"github.com/aidar/taskmanager/internal/handler"
	"github.com/aidar/taskmanager/internal/middleware"
	"github.com/aidar/taskmanager/internal/repository"
	"github.com/aidar/taskmanager/internal/repository/memory"
	"github.com/aidar/taskmanager/internal/repository/postgres"
	"github.com/aidar/taskmanager/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config *config.Config
	db     *pgxpool.Pool
	server *http.Server
	logger *slog.Logger
}

// repositories - набор хранилищ выбранного драйвера
type repositories struct {
	users    repository.UserRepository
	teams    repository.TeamRepository
	tasks    repository.TaskRepository
	requests repository.JoinRequestRepository
	stats    repository.StatsRepository
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Структурированный логгер в JSON формате, уровень из LOG_LEVEL
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	repos, err := a.openStorage(ctx)
	if err != nil {
		return err
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer(repos)

	a.logger.Info("Application initialized successfully", "storage", a.config.Storage.Driver)
	return nil
}

// openStorage создает репозитории выбранного драйвера
func (a *App) openStorage(ctx context.Context) (*repositories, error) {
	if a.config.Storage.Driver == config.StorageDriverMemory {
		store := memory.NewStore()
		return &repositories{
			users:    memory.NewUserRepository(store),
			teams:    memory.NewTeamRepository(store),
			tasks:    memory.NewTaskRepository(store),
			requests: memory.NewJoinRequestRepository(store),
			stats:    memory.NewStatsRepository(store),
		}, nil
	}

	if err := a.connectDB(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &repositories{
		users:    postgres.NewUserRepository(a.db),
		teams:    postgres.NewTeamRepository(a.db),
		tasks:    postgres.NewTaskRepository(a.db),
		requests: postgres.NewJoinRequestRepository(a.db),
		stats:    postgres.NewStatsRepository(a.db),
	}, nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer(repos *repositories) {
	// Слой сервисов (бизнес-логика)
	joinCodes := service.NewJoinCodeGenerator(a.config.Teams.JoinCodeLength, a.config.Teams.JoinCodeMaxAttempts)
	authService := service.NewAuthService(
		repos.users,
		a.config.JWT.Secret,
		a.config.JWT.GetExpiration(),
		a.logger,
	)
	userService := service.NewUserService(repos.users, a.logger)
	teamService := service.NewTeamService(repos.teams, repos.users, repos.requests, joinCodes, a.logger)
	taskService := service.NewTaskService(
		repos.tasks,
		repos.teams,
		repos.users,
		service.DeletePolicy(a.config.Tasks.DeletePolicy),
		a.logger,
	)
	statsService := service.NewStatsService(repos.stats, repos.teams, repos.users)

	// HTTP обработчики
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService)
	teamHandler := handler.NewTeamHandler(teamService)
	taskHandler := handler.NewTaskHandler(taskService)
	statsHandler := handler.NewStatsHandler(statsService)

	r := newRouter(a.logger, middleware.AuthMiddleware(authService), routes{
		auth:  authHandler,
		users: userHandler,
		teams: teamHandler,
		tasks: taskHandler,
		stats: statsHandler,
	})

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", "addr", addr)
}

// Handler возвращает корневой HTTP обработчик (нужен тестам)
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", "addr", a.server.Addr)
	return a.server.ListenAndServe()
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Закрываем подключения к базе данных
	if a.db != nil {
		a.db.Close()
	}

	a.logger.Info("Application stopped gracefully")
	return nil
}

// routes - обработчики, которые монтируются в роутер
type routes struct {
	auth  *handler.AuthHandler
	users *handler.UserHandler
	teams *handler.TeamHandler
	tasks *handler.TaskHandler
	stats *handler.StatsHandler
}

// newRouter собирает chi роутер со всеми эндпоинтами
func newRouter(logger *slog.Logger, authMiddleware func(http.Handler) http.Handler, h routes) chi.Router {
	r := chi.NewRouter()

	// Глобальные middleware (применяются ко всем запросам)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Публичные эндпоинты (без авторизации)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.auth.Register)
		r.Post("/login", h.auth.Login)
	})

	// Health check для мониторинга
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("Failed to write health check response", "error", err)
		}
	})

	// Защищенные эндпоинты (требуют JWT токен в заголовке Authorization)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", h.users.Me)
			r.Put("/me", h.users.UpdateProfile)
			r.Put("/me/password", h.users.ChangePassword)
			r.Put("/{email}/role", h.users.ChangeRole)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.tasks.ListTasks)
			r.Post("/", h.tasks.AddTask)
			r.Post("/sweep", h.tasks.SweepOverdue)
			r.Put("/{taskID}", h.tasks.EditTask)
			r.Put("/{taskID}/progress", h.tasks.ChangeProgress)
			r.Delete("/{taskID}", h.tasks.DeleteTask)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/", h.teams.CreateTeam)
			r.Post("/join", h.teams.JoinTeam)
			r.Post("/members", h.teams.AddMember)
			r.Post("/requests/{requestID}/approve", h.teams.ApproveJoinRequest)
			r.Delete("/requests/{requestID}", h.teams.DeleteJoinRequest)

			r.Route("/{teamID}", func(r chi.Router) {
				r.Get("/", h.teams.GetTeam)
				r.Put("/", h.teams.EditTeam)
				r.Put("/members/role", h.teams.ChangeRole)
				r.Delete("/members", h.teams.RemoveMember)
				r.Get("/requests", h.teams.ListJoinRequests)
				r.Get("/tasks", h.tasks.ListMemberTasks)
				r.Post("/tasks", h.tasks.AddTeamTask)
				r.Get("/stats", h.stats.GetTeamStats)
			})
		})

		r.Get("/stats", h.stats.GetStats)
	})

	return r
}
