package dbmigrate

import (
	"context"
	"strings"
	"testing"

	"github.com/fdg312/family-hub/internal/config"
)

func TestSelectTarget(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.Config
		requireDirect bool
		wantURL       string
		wantSource    string
		wantWarning   bool
		wantErr       bool
	}{
		{
			name: "direct wins",
			cfg: config.Config{
				DatabaseURLDirect: "postgres://direct",
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://direct",
			wantSource: "DATABASE_URL_DIRECT",
		},
		{
			name: "fallback to DATABASE_URL",
			cfg: config.Config{
				DatabaseURLRaw:    "postgres://url",
				DatabaseURLPooled: "postgres://pooled",
			},
			wantURL:    "postgres://url",
			wantSource: "DATABASE_URL",
		},
		{
			name:        "pooled with warning",
			cfg:         config.Config{DatabaseURLPooled: "postgres://pooled"},
			wantURL:     "postgres://pooled",
			wantSource:  "DATABASE_URL_POOLED",
			wantWarning: true,
		},
		{
			name:          "direct required but missing",
			cfg:           config.Config{DatabaseURLRaw: "postgres://url"},
			requireDirect: true,
			wantErr:       true,
		},
		{
			name:    "nothing configured",
			cfg:     config.Config{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := SelectTarget(&tt.cfg, tt.requireDirect)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", target)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if target.URL != tt.wantURL || target.Source != tt.wantSource {
				t.Fatalf("got url=%q source=%q, want url=%q source=%q", target.URL, target.Source, tt.wantURL, tt.wantSource)
			}
			if (target.Warning != "") != tt.wantWarning {
				t.Fatalf("warning = %q, wantWarning=%v", target.Warning, tt.wantWarning)
			}
		})
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	if err := Run(context.Background(), "up", "", nil); err == nil {
		t.Fatal("expected error for empty database URL")
	}

	err := Run(context.Background(), "reset", "postgres://localhost/x", nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported command") {
		t.Fatalf("expected unsupported command error, got %v", err)
	}
}
