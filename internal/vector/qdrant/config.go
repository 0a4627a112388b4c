package qdrant

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/akira/indexify/internal/platform/envutil"
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		URL:     envutil.String("QDRANT_URL", ""),
		APIKey:  envutil.String("QDRANT_API_KEY", ""),
		Timeout: envutil.Duration("QDRANT_TIMEOUT", 10*time.Second),
	}
}

func ValidateConfig(cfg Config) error {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return fmt.Errorf("qdrant url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("qdrant url %q is not a valid http(s) url", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("qdrant url scheme %q is not supported", u.Scheme)
	}
	return nil
}
