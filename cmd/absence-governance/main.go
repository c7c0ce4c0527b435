// Точка входа сервиса управления случаями отсутствия.
// Загружает конфигурацию и политику, подключает хранилище (PostgreSQL
// или память), издателя событий (Kafka или лог), создаёт фасад
// и API handlers, запускает topologymetrics и HTTP-сервер
// с JWT middleware, проверкой запросов по OpenAPI и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/absence-governance/internal/api/handlers"
	"github.com/bigkaa/absence-governance/internal/api/middleware"
	"github.com/bigkaa/absence-governance/internal/api/spec"
	"github.com/bigkaa/absence-governance/internal/config"
	"github.com/bigkaa/absence-governance/internal/database"
	"github.com/bigkaa/absence-governance/internal/domain/rbac"
	"github.com/bigkaa/absence-governance/internal/events"
	"github.com/bigkaa/absence-governance/internal/policy"
	"github.com/bigkaa/absence-governance/internal/repository"
	"github.com/bigkaa/absence-governance/internal/repository/memstore"
	"github.com/bigkaa/absence-governance/internal/server"
	"github.com/bigkaa/absence-governance/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Absence Governance запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("store", cfg.Store),
	)

	if os.Getenv("AG_DEPHEALTH_GROUP") == "" {
		logger.Warn("AG_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Политика: роли, возможности, переходы, каталог контрольных точек
	pol, err := policy.Load(cfg.PolicyPath)
	if err != nil {
		logger.Error("Ошибка загрузки политики", slog.String("error", err.Error()))
		os.Exit(1)
	}
	gov, err := pol.Compile(rbac.NewEmailAllowList(cfg.SuperAdminEmails), nil)
	if err != nil {
		logger.Error("Некорректная политика", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Политика загружена",
		slog.String("path", cfg.PolicyPath),
		slog.Int("super_admins", len(cfg.SuperAdminEmails)),
	)

	ctx := context.Background()
	checkers := make(map[string]handlers.ReadinessChecker, 2)
	var targets service.DephealthTargets

	// 4. Хранилище
	var store repository.Store
	switch cfg.Store {
	case config.StorePostgres:
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}

		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		// Проверка здоровья PostgreSQL идёт через существующий пул,
		// что позволяет обнаружить его исчерпание.
		pgDB := stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		store = repository.NewPgStore(pool)
		checkers["postgresql"] = database.NewReadinessChecker(pool)
		targets.DB = pgDB
		targets.PostgresURL = cfg.DatabaseURL()
	default:
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между рестартами")
		store = memstore.New(nil)
	}

	// 5. Издатель доменных событий
	var publisher events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		logger.Info("События публикуются в Kafka",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	} else {
		publisher = events.NewLogPublisher(logger)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("Ошибка закрытия издателя событий", slog.String("error", err.Error()))
		}
	}()

	// 6. Фасад
	scoreCache := service.NewScoreCache(cfg.ScoreCacheSize, cfg.ScoreCacheTTL)
	govSvc := service.NewGovernanceService(gov, store, publisher, scoreCache, cfg.BradfordWindowDays, logger)

	// 7. Readiness checkers
	kcChecker, err := middleware.NewKeycloakReadinessChecker(cfg.JWTJWKSURL, cfg.CACertPath, cfg.JWKSClientTimeout)
	if err != nil {
		logger.Error("Ошибка создания Keycloak readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checkers["keycloak"] = kcChecker
	targets.KeycloakJWKSURL = cfg.JWTJWKSURL

	apiHandler := handlers.NewAPIHandler(handlers.NewHealthHandler(checkers), govSvc, logger)

	// 8. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.CACertPath,
		cfg.JWTIssuer,
		gov.Roles,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 9. topologymetrics — мониторинг зависимостей
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"absence-governance",
		cfg.DephealthGroup,
		targets,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.Any("dependencies", dephealthSvc.Dependencies()),
		)
	}

	// 10. OpenAPI-контракт и проверка запросов
	apiDoc, err := spec.Load()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI-контракта", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := middleware.RequestValidator(apiDoc)
	if err != nil {
		logger.Error("Ошибка создания проверки запросов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler, jwtAuth, validator)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("Absence Governance остановлен")
}
