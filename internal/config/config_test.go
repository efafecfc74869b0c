package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SCOPES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.DatabaseDriver != "sqlite" {
		t.Errorf("DatabaseDriver = %s", cfg.DatabaseDriver)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[0] != "read_products" || cfg.Scopes[1] != "read_orders" {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}
}

func TestLoadScopesTrimmed(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SCOPES", " read_orders, write_orders ,,read_customers ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"read_orders", "write_orders", "read_customers"}
	if len(cfg.Scopes) != len(want) {
		t.Fatalf("Scopes = %v", cfg.Scopes)
	}
	for i, s := range want {
		if cfg.Scopes[i] != s {
			t.Errorf("Scopes[%d] = %s, want %s", i, cfg.Scopes[i], s)
		}
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	if _, err := Load(); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
