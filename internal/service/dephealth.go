// dephealth.go — мониторинг зависимостей через topologymetrics SDK.
//
// Зависимости сервиса:
//   - PostgreSQL — SQL checker через существующий pgxpool (pool mode, critical),
//     только при AG_STORE=postgres
//   - Keycloak — HTTP checker к JWKS endpoint (critical)
//
// Метрики app_dependency_* доступны на /metrics.
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для Keycloak
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthService — мониторинг зависимостей.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// DephealthTargets — проверяемые зависимости.
type DephealthTargets struct {
	// DB — *sql.DB из pgxpool (stdlib.OpenDBFromPool); nil — PostgreSQL не проверяется
	DB *sql.DB
	// PostgresURL — URL PostgreSQL для меток (не для подключения)
	PostgresURL string
	// KeycloakJWKSURL — JWKS endpoint Keycloak
	KeycloakJWKSURL string
}

// NewDephealthService создаёт сервис мониторинга с глобальным Prometheus registry.
func NewDephealthService(serviceID, group string, targets DephealthTargets, checkInterval time.Duration, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(serviceID, group, targets, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным registerer (для тестов).
func NewDephealthServiceWithRegisterer(serviceID, group string, targets DephealthTargets, checkInterval time.Duration, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(serviceID, group, targets, checkInterval, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	targets DephealthTargets,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := []dephealth.Option{dephealth.WithLogger(logger)}
	var deps []string

	if targets.DB != nil {
		// pgcheck напрямую, без contrib/sqldb и его транзитивной зависимости на MySQL
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(targets.DB)),
			dephealth.FromURL(targets.PostgresURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		))
		deps = append(deps, "postgresql")
	}

	opts = append(opts, dephealth.HTTP("keycloak-jwks",
		dephealth.FromURL(targets.KeycloakJWKSURL),
		dephealth.WithHTTPHealthPath(jwksHealthPath(targets.KeycloakJWKSURL)),
		dephealth.CheckInterval(checkInterval),
		dephealth.Critical(true),
		dephealth.WithHTTPTLSSkipVerify(true), // Dev-среда: self-signed сертификаты
	))
	deps = append(deps, "keycloak-jwks")
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// jwksHealthPath возвращает path JWKS URL для HTTP-проверки.
// /health Keycloak доступен только на management-порту, поэтому
// проверяется сам JWKS endpoint realm.
func jwksHealthPath(jwksURL string) string {
	if parsed, err := url.Parse(jwksURL); err == nil && parsed.Path != "" {
		return parsed.Path
	}
	return "/health"
}

// Dependencies возвращает имена проверяемых зависимостей.
func (ds *DephealthService) Dependencies() []string {
	return append([]string(nil), ds.deps...)
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен", slog.Any("dependencies", ds.deps))
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей (true — ok).
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
