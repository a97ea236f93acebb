package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Duration reads Go duration strings ("5m", "720h") from JSON.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

type CacheConfig struct {
	MaxSize         int      `json:"maxSize"`
	ForwardTTL      Duration `json:"forwardTTL"`
	ReverseTTL      Duration `json:"reverseTTL"`
	RecordsTTL      Duration `json:"recordsTTL"`
	CleanupInterval Duration `json:"cleanupInterval"`
}

type BatchConfig struct {
	Enabled      bool `json:"enabled"`
	MaxBatchSize int  `json:"maxBatchSize"`
}

type ENSConfig struct {
	Enabled       bool   `json:"enabled"`
	Network       string `json:"network"`
	Registry      string `json:"registry"`
	BaseRegistrar string `json:"baseRegistrar"`
}

type SpaceIDConfig struct {
	Enabled          bool   `json:"enabled"`
	BSCRegistry      string `json:"bscRegistry"`
	ArbitrumRegistry string `json:"arbitrumRegistry"`
}

type UnstoppableConfig struct {
	Enabled            bool   `json:"enabled"`
	MainnetProxyReader string `json:"mainnetProxyReader"`
	PolygonProxyReader string `json:"polygonProxyReader"`
}

type CiFiConfig struct {
	Enabled   bool    `json:"enabled"`
	APIURL    string  `json:"apiURL"`
	RateLimit float64 `json:"rateLimit"`
}

type SNSConfig struct {
	Enabled   bool    `json:"enabled"`
	ProxyURL  string  `json:"proxyURL"`
	RateLimit float64 `json:"rateLimit"`
}

type SuiNSConfig struct {
	Enabled bool   `json:"enabled"`
	RPCURL  string `json:"rpcURL"`
}

type CustomConfig struct {
	Enabled bool     `json:"enabled"`
	File    string   `json:"file"`
	TLDs    []string `json:"tlds"`
}

// ResolversConfig has one entry per optional resolver.
type ResolversConfig struct {
	ENS         ENSConfig         `json:"ens"`
	SpaceID     SpaceIDConfig     `json:"spaceid"`
	Unstoppable UnstoppableConfig `json:"unstoppable"`
	CiFi        CiFiConfig        `json:"cifi"`
	SNS         SNSConfig         `json:"sns"`
	SuiNS       SuiNSConfig       `json:"suins"`
	Custom      CustomConfig      `json:"custom"`
}

type ExpirationConfig struct {
	PollInterval Duration   `json:"pollInterval"`
	Thresholds   []Duration `json:"thresholds"`
}

type ServerConfig struct {
	ListenAddr string `json:"listenAddr"`
}

type PostgresConfig struct {
	DatabaseURL string `json:"databaseURL"`
}

type Config struct {
	Cache      CacheConfig      `json:"cache"`
	Batch      BatchConfig      `json:"batch"`
	Resolvers  ResolversConfig  `json:"resolvers"`
	Priority   []string         `json:"priority"`
	Expiration ExpirationConfig `json:"expiration"`
	Server     ServerConfig     `json:"server"`
	Postgres   PostgresConfig   `json:"postgres"`
}

const day = 24 * time.Hour

func Default() Config {
	return Config{
		Cache: CacheConfig{
			MaxSize:         1000,
			ForwardTTL:      Duration(5 * time.Minute),
			ReverseTTL:      Duration(5 * time.Minute),
			RecordsTTL:      Duration(10 * time.Minute),
			CleanupInterval: Duration(time.Minute),
		},
		Batch: BatchConfig{
			Enabled:      true,
			MaxBatchSize: 50,
		},
		Resolvers: ResolversConfig{
			ENS: ENSConfig{
				Enabled:       true,
				Network:       "mainnet",
				Registry:      "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e",
				BaseRegistrar: "0x57f1887a8BF19b14fC0dF6Fd9B2acc9Af147eA85",
			},
			SpaceID: SpaceIDConfig{
				Enabled:          true,
				BSCRegistry:      "0x08CEd32a7f3eeC915Ba84415e9C07a7286977956",
				ArbitrumRegistry: "0x4a067EE58e73ac5E4a43722E008DFdf65B2bF348",
			},
			Unstoppable: UnstoppableConfig{
				Enabled:            true,
				MainnetProxyReader: "0x578853aa776Eef10CeE6c4dd2B5862bdcE767A8B",
				PolygonProxyReader: "0x91EDd8708062bd4233f4Dd0FCE15A7cb4d500091",
			},
			CiFi: CiFiConfig{
				Enabled:   true,
				APIURL:    "https://api.cifi.com",
				RateLimit: 5,
			},
			SNS: SNSConfig{
				Enabled:   true,
				ProxyURL:  "https://sns-sdk-proxy.bonfida.workers.dev",
				RateLimit: 5,
			},
			SuiNS: SuiNSConfig{
				Enabled: true,
				RPCURL:  "https://fullnode.mainnet.sui.io:443",
			},
			Custom: CustomConfig{
				Enabled: true,
				File:    filepath.Join(Dir(), "addresses.json"),
			},
		},
		Priority: []string{"ens", "spaceid", "unstoppable", "cifi", "sns", "suins", "custom"},
		Expiration: ExpirationConfig{
			PollInterval: Duration(time.Hour),
			Thresholds: []Duration{
				Duration(30 * day),
				Duration(14 * day),
				Duration(7 * day),
				Duration(3 * day),
				Duration(1 * day),
			},
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
	}
}

// Dir is ~/.uns, or .uns in the working directory when the home directory
// is unknown.
func Dir() string {
	usr, err := user.Current()
	if err != nil {
		return ".uns"
	}
	return filepath.Join(usr.HomeDir, ".uns")
}

func DefaultFile() string {
	return filepath.Join(Dir(), "config.json")
}

// Load overlays the JSON file at path, then environment variables, on top
// of Default. An empty path means DefaultFile. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile()
	}
	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := json.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("UNS_CACHE_MAX_SIZE")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("UNS_CACHE_MAX_SIZE: %w", err)
		}
		cfg.Cache.MaxSize = size
	}
	if v := strings.TrimSpace(os.Getenv("UNS_BATCH_SIZE")); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("UNS_BATCH_SIZE: %w", err)
		}
		cfg.Batch.MaxBatchSize = size
	}
	setString := func(env string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	setString("UNS_LISTEN_ADDR", &cfg.Server.ListenAddr)
	setString("DATABASE_URL", &cfg.Postgres.DatabaseURL)
	setString("CIFI_API_URL", &cfg.Resolvers.CiFi.APIURL)
	setString("SNS_PROXY_URL", &cfg.Resolvers.SNS.ProxyURL)
	setString("SUI_RPC_URL", &cfg.Resolvers.SuiNS.RPCURL)
	setString("UNS_ADDRESS_BOOK", &cfg.Resolvers.Custom.File)
	return nil
}

func (c Config) Validate() error {
	errs := []error{}
	if c.Cache.MaxSize <= 0 {
		errs = append(errs, fmt.Errorf("cache.maxSize must be positive, got %d", c.Cache.MaxSize))
	}
	if c.Cache.CleanupInterval < 0 {
		errs = append(errs, fmt.Errorf("cache.cleanupInterval must not be negative"))
	}
	if c.Batch.Enabled && c.Batch.MaxBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("batch.maxBatchSize must be positive, got %d", c.Batch.MaxBatchSize))
	}
	if c.Expiration.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("expiration.pollInterval must be positive"))
	}
	for _, th := range c.Expiration.Thresholds {
		if th <= 0 {
			errs = append(errs, fmt.Errorf("expiration thresholds must be positive, got %s", th.Std()))
		}
	}
	return errors.Join(errs...)
}

// ThresholdDurations converts the configured thresholds.
func (c ExpirationConfig) ThresholdDurations() []time.Duration {
	result := make([]time.Duration, 0, len(c.Thresholds))
	for _, th := range c.Thresholds {
		result = append(result, th.Std())
	}
	return result
}
