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

// Load reads configs/config.yaml, merges configs/config.<env>.yaml on top,
// expands ${VAR} placeholders and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
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

	// AutomaticEnv only sees keys viper already knows about.
	for _, key := range []string{
		"server.port",
		"content.drafts_dir",
		"content.approved_dir",
		"assessment.allow_partial",
		"assessment.catalog_path",
		"database.postgres.host",
		"database.redis.address",
		"database.elasticsearch.url",
		"camunda.broker_address",
		"auth.keycloak.url",
		"auth.keycloak.client_secret",
		"logging.level",
	} {
		_ = v.BindEnv(key)
	}
	return v
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

// loadEnvFile loads the first .env found walking up towards the module root.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
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

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional env names when the file left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Auth.Keycloak.ClientSecret, "KEYCLOAK_CLIENT_SECRET")
	setIfEmpty(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
	setIfEmpty(&cfg.Integrations.AWS.SNS.TopicARN, "SNS_TOPIC_ARN")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "edpsych-connect"
	}
	if cfg.App.Version == "" {
		cfg.App.Version = "1.0.0"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Content.DraftsDir == "" {
		cfg.Content.DraftsDir = filepath.Join("content", "blog", "drafts")
	}
	if cfg.Content.ApprovedDir == "" {
		cfg.Content.ApprovedDir = filepath.Join("content", "blog", "approved")
	}

	if cfg.MCP.Path == "" {
		cfg.MCP.Path = "/mcp"
	}
	if cfg.MCP.RegistryPath == "" {
		cfg.MCP.RegistryPath = filepath.Join("configs", "tool-registry.json")
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
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
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "blog_posts"
	}

	if cfg.Cache.PostsTTL == 0 {
		cfg.Cache.PostsTTL = 300
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "edpsych:"
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "eu-west-2"
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

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig checks fields that have no usable default. External
// dependencies are optional; a partially configured one is an error.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", cfg.Server.Port)
	}
	if filepath.Clean(cfg.Content.DraftsDir) == filepath.Clean(cfg.Content.ApprovedDir) {
		return fmt.Errorf("content.drafts_dir and content.approved_dir must differ")
	}

	pg := cfg.Database.Postgres
	if pg.Enabled() && (pg.Database == "" || pg.User == "") {
		return fmt.Errorf("database.postgres.database and database.postgres.user are required when database.postgres.host is set")
	}

	kc := cfg.Auth.Keycloak
	if kc.URL != "" && (kc.Realm == "" || kc.ClientID == "") {
		return fmt.Errorf("auth.keycloak.realm and auth.keycloak.client_id are required when auth.keycloak.url is set")
	}

	aws := cfg.Integrations.AWS
	if aws.SES.Enabled && (aws.SES.FromEmail == "" || aws.SES.ToEmail == "") {
		return fmt.Errorf("integrations.aws.ses.from_email and to_email are required when SES is enabled")
	}
	if aws.SNS.Enabled && aws.SNS.TopicARN == "" {
		return fmt.Errorf("integrations.aws.sns.topic_arn is required when SNS is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
