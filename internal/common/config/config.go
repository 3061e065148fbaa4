package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig               `mapstructure:"app"`
	Server       ServerConfig            `mapstructure:"server"`
	Content      ContentConfig           `mapstructure:"content"`
	Assessment   AssessmentConfig        `mapstructure:"assessment"`
	MCP          MCPConfig               `mapstructure:"mcp"`
	Camunda      CamundaConfig           `mapstructure:"camunda"`
	Database     DatabaseConfig          `mapstructure:"database"`
	Cache        CacheConfig             `mapstructure:"cache"`
	Workers      map[string]WorkerConfig `mapstructure:"workers"`
	Auth         AuthConfig              `mapstructure:"auth"`
	Integrations IntegrationConfig       `mapstructure:"integrations"`
	Logging      LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// ContentConfig locates the markdown blog directories.
type ContentConfig struct {
	DraftsDir   string `mapstructure:"drafts_dir"`
	ApprovedDir string `mapstructure:"approved_dir"`
	Watch       bool   `mapstructure:"watch"`
}

// AssessmentConfig controls the scoring engine.
type AssessmentConfig struct {
	AllowPartial bool   `mapstructure:"allow_partial"`
	CatalogPath  string `mapstructure:"catalog_path"` // optional JSON catalog registry
	Persist      bool   `mapstructure:"persist"`
}

// MCPConfig controls the MCP endpoint and the tool registry file.
type MCPConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Path         string `mapstructure:"path"`
	RegistryPath string `mapstructure:"registry_path"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// Enabled reports whether a PostgreSQL host has been configured.
func (p PostgresConfig) Enabled() bool {
	return p.Host != ""
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"`
	Index     string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

func (e ElasticsearchConfig) Enabled() bool {
	return e.GetURL() != ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// CacheConfig controls the approved-post listing cache.
type CacheConfig struct {
	PostsTTL  int    `mapstructure:"posts_ttl"` // seconds
	KeyPrefix string `mapstructure:"key_prefix"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// AuthConfig holds identity provider settings and the admin allow-list.
type AuthConfig struct {
	Keycloak struct {
		URL          string `mapstructure:"url"`
		Realm        string `mapstructure:"realm"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
	} `mapstructure:"keycloak"`

	AdminUsernames []string `mapstructure:"admin_usernames"`
}

// KeycloakEnabled reports whether login and admin checks go through Keycloak.
func (a AuthConfig) KeycloakEnabled() bool {
	return a.Keycloak.URL != "" && a.Keycloak.Realm != "" && a.Keycloak.ClientID != ""
}

// IntegrationConfig holds settings for CRM, Email, and other external services.
type IntegrationConfig struct {
	Zoho struct {
		BaseURL   string `mapstructure:"base_url"`
		AuthToken string `mapstructure:"oauth_token"`
	} `mapstructure:"zoho"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
			ToEmail   string `mapstructure:"to_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
