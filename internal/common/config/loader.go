// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendElasticsearch = "elasticsearch"
	BackendPostgres      = "postgres"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml
// over it and lets environment variables override any key
// (database.redis.address -> DATABASE_REDIS_ADDRESS).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName("config." + env)
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile loads configuration from one explicit file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers keys that may exist only in the environment;
// AutomaticEnv alone cannot surface keys viper has never seen.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"store.backend",
		"database.elasticsearch.url",
		"database.elasticsearch.username",
		"database.elasticsearch.password",
		"database.postgres.host",
		"database.postgres.user",
		"database.postgres.password",
		"database.postgres.database",
		"database.redis.address",
		"cache.enabled",
		"camunda.enabled",
		"camunda.broker_address",
		"apis.xai.api_key",
		"tracing.jaeger_endpoint",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	paths := []string{".env", "../.env", "../../.env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig falls back to the conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.APIs.XAI.APIKey == "" {
		for _, name := range []string{"XAI_API_KEY", "GROK_API_KEY"} {
			if val := os.Getenv(name); val != "" {
				cfg.APIs.XAI.APIKey = val
				break
			}
		}
	}
	if cfg.Database.Elasticsearch.Username == "" {
		cfg.Database.Elasticsearch.Username = os.Getenv("ELASTIC_USERNAME")
	}
	if cfg.Database.Elasticsearch.Password == "" {
		cfg.Database.Elasticsearch.Password = os.Getenv("ELASTIC_PASSWORD")
	}
	if cfg.Database.Postgres.User == "" {
		cfg.Database.Postgres.User = os.Getenv("DB_USER")
	}
	if cfg.Database.Postgres.Password == "" {
		cfg.Database.Postgres.Password = os.Getenv("DB_PASSWORD")
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "university-matcher"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15000
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	for key, w := range cfg.Workers {
		if w.MaxJobsActive == 0 {
			w.MaxJobsActive = cfg.Camunda.MaxJobsActive
		}
		if w.Timeout == 0 {
			w.Timeout = cfg.Camunda.Timeout
		}
		cfg.Workers[key] = w
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.MaxRetries == 0 {
		cfg.Database.Elasticsearch.MaxRetries = 3
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendElasticsearch
	}
	if cfg.Store.Index == "" {
		cfg.Store.Index = "universities"
	}
	if cfg.Store.Table == "" {
		cfg.Store.Table = "universities"
	}
	if cfg.Store.Timeout == 0 {
		cfg.Store.Timeout = 5000
	}
	if cfg.Store.PageSize == 0 {
		cfg.Store.PageSize = 500
	}

	if cfg.Ranking.MaxResults == 0 {
		cfg.Ranking.MaxResults = 15
	}
	if cfg.Ranking.SimilarSize == 0 {
		cfg.Ranking.SimilarSize = 5
	}
	if cfg.Ranking.FetchMultiplier == 0 {
		cfg.Ranking.FetchMultiplier = 3
	}
	if cfg.Ranking.MaxFetchSize == 0 {
		cfg.Ranking.MaxFetchSize = 50
	}

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 300
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = "unimatch"
	}

	if cfg.APIs.XAI.BaseURL == "" {
		cfg.APIs.XAI.BaseURL = "https://api.x.ai"
	}
	if cfg.APIs.XAI.Model == "" {
		cfg.APIs.XAI.Model = "grok-v1"
	}
	if cfg.APIs.XAI.Timeout == 0 {
		cfg.APIs.XAI.Timeout = 60000
	}
	if cfg.APIs.XAI.MaxRetries == 0 {
		cfg.APIs.XAI.MaxRetries = 2
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Tracing.SampleRatio == 0 {
		cfg.Tracing.SampleRatio = 1
	}
}

func validateConfig(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendElasticsearch:
		if cfg.Database.Elasticsearch.GetURL() == "" {
			return fmt.Errorf("database.elasticsearch.addresses or url is required")
		}
	case BackendPostgres:
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendElasticsearch, BackendPostgres, cfg.Store.Backend)
	}

	if cfg.Cache.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when cache is enabled")
	}
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}
	if cfg.Ranking.MaxResults < 1 {
		return fmt.Errorf("ranking.max_results must be positive")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig returns the worker's settings, enabled by default.
func GetWorkerConfig(cfg *Config, name string) WorkerConfig {
	if w, ok := cfg.Workers[name]; ok {
		return w
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: cfg.Camunda.MaxJobsActive,
		Timeout:       cfg.Camunda.Timeout,
	}
}
