package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestJWKSHealthPath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "path JWKS realm",
			input:    "https://keycloak.local/realms/absence/protocol/openid-connect/certs",
			expected: "/realms/absence/protocol/openid-connect/certs",
		},
		{
			name:     "без path — /health",
			input:    "https://keycloak.local",
			expected: "/health",
		},
		{
			name:     "некорректный URL — /health",
			input:    "://bad",
			expected: "/health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jwksHealthPath(tt.input); got != tt.expected {
				t.Errorf("jwksHealthPath(%q) = %q, ожидали %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestNewDephealthService_WithoutDB — без *sql.DB проверяется только Keycloak.
func TestNewDephealthService_WithoutDB(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ds, err := NewDephealthServiceWithRegisterer("absence-governance", "test",
		DephealthTargets{KeycloakJWKSURL: "http://localhost:8180/realms/absence/protocol/openid-connect/certs"},
		15*time.Second, logger, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewDephealthServiceWithRegisterer: %v", err)
	}

	deps := ds.Dependencies()
	if len(deps) != 1 || deps[0] != "keycloak-jwks" {
		t.Errorf("Dependencies() = %v, ожидали [keycloak-jwks]", deps)
	}
}
