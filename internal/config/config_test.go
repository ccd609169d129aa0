package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "OMDB_API_KEY", "TMDB_API_KEY", "OMDB_REQUEST_INTERVAL", "CATALOG_MIN_LISTING"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
	if cfg.Catalog.MinListing != 20 || cfg.Catalog.MinTrending != 10 {
		t.Errorf("thresholds = %d/%d, want 20/10", cfg.Catalog.MinListing, cfg.Catalog.MinTrending)
	}
	if cfg.OMDb.RequestInterval != 250*time.Millisecond {
		t.Errorf("OMDb interval = %v", cfg.OMDb.RequestInterval)
	}
	if cfg.OMDb.APIKey != "" || cfg.TMDB.APIKey != "" {
		t.Error("provider keys should be empty when unset")
	}
}

func TestLoadOMDbKeyFallsBackToTMDBKey(t *testing.T) {
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("TMDB_API_KEY", "shared")

	cfg := Load()
	if cfg.OMDb.APIKey != "shared" {
		t.Errorf("OMDb key = %q, want shared", cfg.OMDb.APIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CATALOG_MIN_LISTING", "5")
	t.Setenv("OMDB_REQUEST_INTERVAL", "300ms")
	t.Setenv("CATALOG_REFRESH_INTERVAL", "bogus")

	cfg := Load()
	if cfg.Catalog.MinListing != 5 {
		t.Errorf("MinListing = %d", cfg.Catalog.MinListing)
	}
	if cfg.OMDb.RequestInterval != 300*time.Millisecond {
		t.Errorf("interval = %v", cfg.OMDb.RequestInterval)
	}
	if cfg.Catalog.RefreshInterval != 0 {
		t.Errorf("invalid duration should fall back to 0, got %v", cfg.Catalog.RefreshInterval)
	}
}
