package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type MetricsCfg struct {
	Enabled bool
	Addr    string
	Path    string
}

// Config is read once at startup and handed to constructors.
type Config struct {
	Addr              string
	LogLevel          string
	LogConsole        bool
	LogSampleN        int
	STACURL           string
	AOIFile           string
	STACTimeout       time.Duration
	DefaultCollection string
	DefaultLimit      int
	DefaultCloudCover int
	Metrics           MetricsCfg
}

func FromEnv() Config {
	limit := getint("DEFAULT_LIMIT", 5)
	if limit <= 0 {
		limit = 5
	}
	cloud := getint("DEFAULT_CLOUD_COVER", 20)
	if cloud < 0 || cloud > 100 {
		cloud = 20
	}
	timeout := getduration("STAC_TIMEOUT", 60*time.Second)
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return Config{
		Addr:              getenv("ADDR", ":8000"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		LogConsole:        getbool("LOG_CONSOLE", false),
		LogSampleN:        getint("LOG_SAMPLE_N", 0),
		STACURL:           strings.TrimRight(getenv("STAC_URL", "https://earth-search.aws.element84.com/v1"), "/"),
		AOIFile:           getenv("AOI_FILE", "data/aoi_serengeti.geojson"),
		STACTimeout:       timeout,
		DefaultCollection: getenv("DEFAULT_COLLECTION", "sentinel-2-l2a"),
		DefaultLimit:      limit,
		DefaultCloudCover: cloud,
		Metrics: MetricsCfg{
			Enabled: getbool("METRICS_ENABLED", false),
			Addr:    getenv("METRICS_ADDR", ":9090"),
			Path:    getenv("METRICS_PATH", "/metrics"),
		},
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
