// README: Config loader; viper defaults overridden by TRIPGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tripgen/internal/ai"
	"tripgen/internal/maps"
)

var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is required")

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`

	// TrustedProxies lists proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client is always the socket peer.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type GeminiConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`
	Transport string `mapstructure:"transport"`

	// Timeout bounds a single model call; zero means no bound beyond the request context.
	Timeout time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type MapsConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	DB     struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Maps      MapsConfig      `mapstructure:"maps"`
	Metrics   struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

const (
	TransportHTTP = ai.TransportHTTP
	TransportSDK  = ai.TransportSDK
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.generate_timeout", 90*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.trusted_proxies", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", ai.DefaultModel)
	v.SetDefault("gemini.base_url", ai.DefaultBaseURL)
	v.SetDefault("gemini.transport", TransportHTTP)
	v.SetDefault("gemini.timeout", time.Duration(0))
	v.SetDefault("db.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("ratelimit.requests", 10)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("maps.api_key", "")
	v.SetDefault("maps.cache_ttl", maps.DefaultCacheTTL)
	v.SetDefault("metrics.enabled", true)
}

// Load reads configuration from the environment. Every key maps to TRIPGEN_<SECTION>_<KEY>
// (e.g. TRIPGEN_HTTP_ADDR); GEMINI_API_KEY and GOOGLE_MAPS_API_KEY are also honoured.
// A Gemini API key is required.
func Load() (Config, error) {
	cfg, err := LoadWithoutKey()
	if err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		return Config{}, ErrMissingAPIKey
	}
	return cfg, nil
}

// LoadWithoutKey is Load minus the API key requirement, for commands that never call
// the model.
func LoadWithoutKey() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TRIPGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("gemini.api_key", "TRIPGEN_GEMINI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, err
	}
	if err := v.BindEnv("maps.api_key", "TRIPGEN_MAPS_API_KEY", "GOOGLE_MAPS_API_KEY"); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	for _, p := range cfg.HTTP.TrustedProxies {
		if !validProxy(p) {
			return Config{}, fmt.Errorf("http.trusted_proxies: %q is not an IP or CIDR", p)
		}
	}

	switch cfg.Gemini.Transport {
	case TransportHTTP, TransportSDK:
	default:
		return Config{}, errors.New("gemini.transport must be \"http\" or \"sdk\"")
	}
	return cfg, nil
}

func validProxy(s string) bool {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
