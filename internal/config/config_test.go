package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POINT_VALUE", "")
	t.Setenv("MILE_VALUE", "")
	t.Setenv("RECOMMENDATION_LIMIT", "")
	t.Setenv("GENERATE_TIMEOUT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PointValue != 0.01 {
		t.Errorf("expected point value 0.01, got %v", cfg.PointValue)
	}
	if cfg.MileValue != 0.015 {
		t.Errorf("expected mile value 0.015, got %v", cfg.MileValue)
	}
	if cfg.RecommendationLimit != 10 {
		t.Errorf("expected limit 10, got %d", cfg.RecommendationLimit)
	}
	if cfg.GenerateTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.GenerateTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POINT_VALUE", "0.004")
	t.Setenv("MILE_VALUE", "0.02")
	t.Setenv("RECOMMENDATION_LIMIT", "3")
	t.Setenv("GENERATE_TIMEOUT", "250ms")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PointValue != 0.004 || cfg.MileValue != 0.02 {
		t.Errorf("unexpected values: point=%v mile=%v", cfg.PointValue, cfg.MileValue)
	}
	if cfg.RecommendationLimit != 3 {
		t.Errorf("expected limit 3, got %d", cfg.RecommendationLimit)
	}
	if cfg.GenerateTimeout != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %v", cfg.GenerateTimeout)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("negative point value", func(t *testing.T) {
		t.Setenv("POINT_VALUE", "-0.5")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for negative POINT_VALUE")
		}
	})

	t.Run("unparseable mile value", func(t *testing.T) {
		t.Setenv("MILE_VALUE", "cheap")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for invalid MILE_VALUE")
		}
	})

	t.Run("bad timeout falls back", func(t *testing.T) {
		t.Setenv("GENERATE_TIMEOUT", "soon")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.GenerateTimeout != 5*time.Second {
			t.Errorf("expected fallback to 5s, got %v", cfg.GenerateTimeout)
		}
	})
}

func TestLoadRefresher(t *testing.T) {
	t.Run("requires api url", func(t *testing.T) {
		t.Setenv("GOTOCARD_API_URL", "")
		t.Setenv("PIPELINE_API_KEY", "key")
		if _, err := LoadRefresher(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("requires api key", func(t *testing.T) {
		t.Setenv("GOTOCARD_API_URL", "http://localhost:8080")
		t.Setenv("PIPELINE_API_KEY", "")
		if _, err := LoadRefresher(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("GOTOCARD_API_URL", "http://localhost:8080")
		t.Setenv("PIPELINE_API_KEY", "key")
		t.Setenv("REQUEST_TIMEOUT", "")
		t.Setenv("REFRESH_CONCURRENCY", "")
		t.Setenv("REFRESH_MAX_RETRIES", "")

		cfg, err := LoadRefresher()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected 30s, got %v", cfg.RequestTimeout)
		}
		if cfg.Concurrency != 4 || cfg.MaxRetries != 3 {
			t.Errorf("unexpected concurrency=%d retries=%d", cfg.Concurrency, cfg.MaxRetries)
		}
	})

	t.Run("rejects zero concurrency", func(t *testing.T) {
		t.Setenv("GOTOCARD_API_URL", "http://localhost:8080")
		t.Setenv("PIPELINE_API_KEY", "key")
		t.Setenv("REFRESH_CONCURRENCY", "0")
		if _, err := LoadRefresher(); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestConnectionStrings(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "cards", DBSSLMode: "require"}
	if got := cfg.DSN(); got != "host=db port=5433 user=u password=p dbname=cards sslmode=require" {
		t.Errorf("unexpected DSN %q", got)
	}
	if got := cfg.DatabaseURL(); got != "postgres://u:p@db:5433/cards?sslmode=require" {
		t.Errorf("unexpected URL %q", got)
	}
}
