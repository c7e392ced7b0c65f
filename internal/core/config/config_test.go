package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "STAC_URL", "AOI_FILE", "STAC_TIMEOUT", "DEFAULT_COLLECTION", "DEFAULT_LIMIT", "DEFAULT_CLOUD_COVER", "METRICS_ENABLED"} {
		t.Setenv(k, "")
	}
	cfg := FromEnv()

	if cfg.Addr != ":8000" {
		t.Fatalf("addr=%q", cfg.Addr)
	}
	if cfg.STACURL != "https://earth-search.aws.element84.com/v1" {
		t.Fatalf("stac url=%q", cfg.STACURL)
	}
	if cfg.AOIFile != "data/aoi_serengeti.geojson" {
		t.Fatalf("aoi file=%q", cfg.AOIFile)
	}
	if cfg.STACTimeout != 60*time.Second {
		t.Fatalf("timeout=%v want 60s", cfg.STACTimeout)
	}
	if cfg.DefaultCollection != "sentinel-2-l2a" || cfg.DefaultLimit != 5 || cfg.DefaultCloudCover != 20 {
		t.Fatalf("search defaults=%+v", cfg)
	}
	if cfg.Metrics.Enabled {
		t.Fatal("metrics listener should be off by default")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STAC_URL", "http://localhost:8081/")
	t.Setenv("AOI_FILE", "/tmp/aoi.geojson")
	t.Setenv("STAC_TIMEOUT", "5s")
	t.Setenv("DEFAULT_LIMIT", "-3")
	t.Setenv("DEFAULT_CLOUD_COVER", "150")
	t.Setenv("METRICS_ENABLED", "yes")

	cfg := FromEnv()
	if cfg.STACURL != "http://localhost:8081" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.STACURL)
	}
	if cfg.AOIFile != "/tmp/aoi.geojson" || cfg.STACTimeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.DefaultLimit != 5 || cfg.DefaultCloudCover != 20 {
		t.Fatalf("invalid defaults should be ignored: %+v", cfg)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics should be enabled")
	}
}
