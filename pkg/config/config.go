package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Mail providers understood by the notification wiring.
const (
	MailProviderSMTP = "smtp"
	MailProviderSES  = "ses"
	MailProviderNone = "none"
)

type Config struct {
	Env       string
	Port      int
	BaseURL   string
	StaticDir string

	CORS      CORSConfig
	// TrustedProxies lists proxies whose X-Forwarded-For is honoured.
	TrustedProxies []string
	Log       LogConfig
	Graph     GraphConfig
	Workbook  WorkbookConfig
	Mail      MailConfig
	Notify    NotifyConfig
	Workflow  WorkflowConfig
	AdminAuth AdminAuthConfig
	RateLimit RateLimitConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GraphConfig holds the service identity used against Microsoft Graph.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
	TokenSkew    time.Duration
}

// WorkbookConfig locates the backing worksheet table and the draft folder.
type WorkbookConfig struct {
	DriveID     string
	Path        string
	Worksheet   string
	Table       string
	DraftFolder string
}

// MailConfig selects and configures the outbound mail transport.
type MailConfig struct {
	Provider   string
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
	SESRegion  string
	// Organization signs applicant-facing mail.
	Organization string
}

// NotifyConfig sizes the notification worker pool.
type NotifyConfig struct {
	Workers int
	Buffer  int
	Retries int
	Timeout time.Duration
}

// WorkflowConfig tunes lifecycle behaviour.
type WorkflowConfig struct {
	EnforceTransitions bool
	DefaultActor       string
	MaxDraftSizeBytes  int64
}

// AdminAuthConfig gates the administrator endpoints behind a bearer token.
type AdminAuthConfig struct {
	Enabled      bool
	Username     string
	PasswordHash string
	DisplayName  string
	Secret       string
	TokenTTL     time.Duration
}

// RateLimitConfig throttles the public submission endpoint per client.
type RateLimitConfig struct {
	SubmitPerMinute int
	SubmitBurst     int
	LoginPerMinute  int
	LoginBurst      int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.BaseURL = resolveBaseURL(v.GetString("BASE_URL"), v.GetString("VERCEL_URL"))
	cfg.StaticDir = v.GetString("STATIC_DIR")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Graph = GraphConfig{
		TenantID:     v.GetString("TENANT_ID"),
		ClientID:     v.GetString("CLIENT_ID"),
		ClientSecret: v.GetString("CLIENT_SECRET"),
		BaseURL:      v.GetString("GRAPH_BASE_URL"),
		Timeout:      parseDuration(v.GetString("GRAPH_TIMEOUT"), 30*time.Second),
		TokenSkew:    parseDuration(v.GetString("GRAPH_TOKEN_SKEW"), 2*time.Minute),
	}

	cfg.Workbook = WorkbookConfig{
		DriveID:     v.GetString("DRIVE_ID"),
		Path:        v.GetString("WORKBOOK_PATH"),
		Worksheet:   v.GetString("WORKSHEET_NAME"),
		Table:       v.GetString("WORKBOOK_TABLE"),
		DraftFolder: v.GetString("DRAFT_FOLDER"),
	}

	cfg.Mail = MailConfig{
		Provider:   strings.ToLower(v.GetString("MAIL_PROVIDER")),
		Host:       v.GetString("EMAIL_HOST"),
		Port:       v.GetInt("EMAIL_PORT"),
		Username:   v.GetString("EMAIL_USER"),
		Password:   v.GetString("EMAIL_PASSWORD"),
		From:       v.GetString("EMAIL_FROM"),
		AdminEmail: v.GetString("ADMIN_EMAIL"),
		SESRegion:  v.GetString("SES_REGION"),

		Organization: v.GetString("ORG_NAME"),
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	cfg.Notify = NotifyConfig{
		Workers: v.GetInt("NOTIFY_WORKERS"),
		Buffer:  v.GetInt("NOTIFY_BUFFER"),
		Retries: v.GetInt("NOTIFY_RETRIES"),
		Timeout: parseDuration(v.GetString("NOTIFY_TIMEOUT"), 30*time.Second),
	}

	maxDraft := v.GetInt64("DRAFT_MAX_FILE_SIZE")
	if maxDraft <= 0 {
		maxDraft = 4 * 1024 * 1024
	}
	cfg.Workflow = WorkflowConfig{
		EnforceTransitions: v.GetBool("WORKFLOW_ENFORCE_TRANSITIONS"),
		DefaultActor:       v.GetString("WORKFLOW_DEFAULT_ACTOR"),
		MaxDraftSizeBytes:  maxDraft,
	}

	cfg.AdminAuth = AdminAuthConfig{
		Enabled:      v.GetBool("ADMIN_AUTH_ENABLED"),
		Username:     v.GetString("ADMIN_USERNAME"),
		PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		DisplayName:  v.GetString("ADMIN_DISPLAY_NAME"),
		Secret:       v.GetString("ADMIN_JWT_SECRET"),
		TokenTTL:     parseDuration(v.GetString("ADMIN_TOKEN_TTL"), 8*time.Hour),
	}

	cfg.RateLimit = RateLimitConfig{
		SubmitPerMinute: v.GetInt("SUBMIT_RATE_PER_MINUTE"),
		SubmitBurst:     v.GetInt("SUBMIT_RATE_BURST"),
		LoginPerMinute:  v.GetInt("LOGIN_RATE_PER_MINUTE"),
		LoginBurst:      v.GetInt("LOGIN_RATE_BURST"),
	}

	return cfg, nil
}

// Validate reports settings the process cannot start without.
func (c *Config) Validate() error {
	missing := make([]string, 0)
	required := []struct {
		key   string
		value string
	}{
		{"TENANT_ID", c.Graph.TenantID},
		{"CLIENT_ID", c.Graph.ClientID},
		{"CLIENT_SECRET", c.Graph.ClientSecret},
		{"DRIVE_ID", c.Workbook.DriveID},
		{"WORKBOOK_PATH", c.Workbook.Path},
		{"WORKSHEET_NAME", c.Workbook.Worksheet},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if c.AdminAuth.Enabled && (c.AdminAuth.Secret == "" || c.AdminAuth.PasswordHash == "") {
		missing = append(missing, "ADMIN_JWT_SECRET/ADMIN_PASSWORD_HASH")
	}
	if len(missing) > 0 {
		return errors.New("missing required configuration: " + strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3000)
	v.SetDefault("BASE_URL", "")
	v.SetDefault("VERCEL_URL", "")
	v.SetDefault("STATIC_DIR", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0")
	v.SetDefault("GRAPH_TIMEOUT", "30s")
	v.SetDefault("GRAPH_TOKEN_SKEW", "2m")

	v.SetDefault("WORKBOOK_TABLE", "Table1")
	v.SetDefault("DRAFT_FOLDER", "/명함초안")

	v.SetDefault("MAIL_PROVIDER", MailProviderSMTP)
	v.SetDefault("EMAIL_HOST", "localhost")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("SES_REGION", "ap-northeast-2")
	v.SetDefault("ORG_NAME", "법무법인 린")

	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_BUFFER", 64)
	v.SetDefault("NOTIFY_RETRIES", 0)
	v.SetDefault("NOTIFY_TIMEOUT", "30s")

	v.SetDefault("WORKFLOW_ENFORCE_TRANSITIONS", false)
	v.SetDefault("WORKFLOW_DEFAULT_ACTOR", "관리자")
	v.SetDefault("DRAFT_MAX_FILE_SIZE", 4*1024*1024)

	v.SetDefault("ADMIN_AUTH_ENABLED", false)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_DISPLAY_NAME", "관리자")
	v.SetDefault("ADMIN_TOKEN_TTL", "8h")

	v.SetDefault("SUBMIT_RATE_PER_MINUTE", 10)
	v.SetDefault("SUBMIT_RATE_BURST", 5)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)
	v.SetDefault("LOGIN_RATE_BURST", 3)
}

func resolveBaseURL(baseURL, vercelURL string) string {
	switch {
	case baseURL != "":
		return strings.TrimRight(baseURL, "/")
	case vercelURL != "":
		if !strings.HasPrefix(vercelURL, "http") {
			vercelURL = "https://" + vercelURL
		}
		return strings.TrimRight(vercelURL, "/")
	default:
		return "http://localhost:3000"
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
