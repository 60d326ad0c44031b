package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/wso2gate/internal/security/secretbox"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr            string `yaml:"addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // "memory" | "postgres"
		DSN      string `yaml:"dsn"`
		Postgres struct {
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // "memory" | "redis"
		Redis struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	// ───────── Social Login Provider ─────────
	Provider struct {
		BaseURL      string        `yaml:"base_url"`
		AuthorizeURL string        `yaml:"authorize_url"` // si vacío => <base_url>/oauth2/authorize
		TokenURL     string        `yaml:"token_url"`     // si vacío => <base_url>/oauth2/token
		UserInfoURL  string        `yaml:"userinfo_url"`  // si vacío => <base_url>/oauth2/userinfo
		ClientID     string        `yaml:"client_id"`
		ClientSecret string        `yaml:"client_secret"`
		RedirectURL  string        `yaml:"redirect_url"`
		Scopes       []string      `yaml:"scopes"`       // default: openid
		TokenMethod  string        `yaml:"token_method"` // "POST" | "GET"
		BasicAuth    bool          `yaml:"basic_auth"`
		Timeout      time.Duration `yaml:"timeout"`
		LoginCodeTTL time.Duration `yaml:"login_code_ttl"` // TTL para el login_code del social flow
	} `yaml:"provider"`

	State struct {
		Secret string        `yaml:"secret"` // HMAC key del state JWT
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"state"`

	Policy struct {
		RequireApproval    bool   `yaml:"require_approval"`
		TerminatedSentinel string `yaml:"terminated_sentinel"`
	} `yaml:"policy"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		Enabled  bool   `yaml:"enabled"`
		SiteName string `yaml:"site_name"`
		SiteURL  string `yaml:"site_url"`
	} `yaml:"email"`

	Admin struct {
		// bcrypt hash de la API key del surface administrativo.
		// Vacío deshabilita los endpoints de admin.
		APIKeyHash string `yaml:"api_key_hash"`
	} `yaml:"admin"`

	RateLimit struct {
		Enabled bool          `yaml:"enabled"`
		Max     int           `yaml:"max"`    // hits por ventana por IP
		Window  time.Duration `yaml:"window"` // default 1m
	} `yaml:"rate_limit"`
}

// encPrefix marca un valor de config cifrado con la clave maestra
// (ver tools/encrypt_secret.go). Se descifra en Load.
const encPrefix = "enc:"

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.decryptSecrets(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default construye una config sin YAML (solo defaults + env).
// Útil para dev y para el CLI.
func Default() (*Config, error) {
	var c Config
	c.applyDefaults()
	c.applyEnvOverrides()
	if err := c.decryptSecrets(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// decryptSecrets descifra los valores con prefijo "enc:". Aplica a los
// secretos que suelen viajar en el YAML versionado.
func (c *Config) decryptSecrets() error {
	targets := []*string{
		&c.Storage.DSN,
		&c.Cache.Redis.Password,
		&c.Provider.ClientSecret,
		&c.State.Secret,
		&c.SMTP.Password,
	}
	for _, t := range targets {
		if !strings.HasPrefix(*t, encPrefix) {
			continue
		}
		plain, err := secretbox.Decrypt(strings.TrimPrefix(*t, encPrefix))
		if err != nil {
			return fmt.Errorf("config: decrypt secret: %w", err)
		}
		*t = plain
	}
	return nil
}

func (c *Config) applyDefaults() {
	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if len(c.Provider.Scopes) == 0 {
		c.Provider.Scopes = []string{"openid"}
	}
	if c.Provider.TokenMethod == "" {
		c.Provider.TokenMethod = "POST"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Provider.LoginCodeTTL == 0 {
		c.Provider.LoginCodeTTL = 60 * time.Second
	}
	if c.State.TTL == 0 {
		c.State.TTL = 10 * time.Minute
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.RateLimit.Max == 0 {
		c.RateLimit.Max = 30
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		if strings.TrimSpace(s) == "" {
			return []string{}, true
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}

	// STORAGE
	if v, ok := getEnvStr("STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}

	// CACHE
	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = v
	}
	if v, ok := getEnvStr("REDIS_HOST"); ok {
		c.Cache.Redis.Host = v
	}
	if v, ok := getEnvInt("REDIS_PORT"); ok {
		c.Cache.Redis.Port = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	// PROVIDER
	if v, ok := getEnvStr("WSO2_BASE_URL"); ok {
		c.Provider.BaseURL = v
	}
	if v, ok := getEnvStr("WSO2_CLIENT_ID"); ok {
		c.Provider.ClientID = v
	}
	if v, ok := getEnvStr("WSO2_CLIENT_SECRET"); ok {
		c.Provider.ClientSecret = v
	}
	if v, ok := getEnvStr("WSO2_REDIRECT_URL"); ok {
		c.Provider.RedirectURL = v
	}
	if v, ok := getEnvCSV("WSO2_SCOPES"); ok {
		c.Provider.Scopes = v
	}
	if v, ok := getEnvStr("WSO2_TOKEN_METHOD"); ok {
		c.Provider.TokenMethod = strings.ToUpper(v)
	}
	if v, ok := getEnvBool("WSO2_BASIC_AUTH"); ok {
		c.Provider.BasicAuth = v
	}
	if v, ok := getEnvDur("WSO2_TIMEOUT"); ok {
		c.Provider.Timeout = v
	}

	// STATE
	if v, ok := getEnvStr("STATE_SECRET"); ok {
		c.State.Secret = v
	}
	if v, ok := getEnvDur("STATE_TTL"); ok {
		c.State.TTL = v
	}

	// POLICY
	if v, ok := getEnvBool("POLICY_REQUIRE_APPROVAL"); ok {
		c.Policy.RequireApproval = v
	}
	if v, ok := getEnvStr("POLICY_TERMINATED_SENTINEL"); ok {
		c.Policy.TerminatedSentinel = v
	}

	// SMTP
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.SMTP.Port = v
	}
	if v, ok := getEnvStr("SMTP_USERNAME"); ok {
		c.SMTP.Username = v
	}
	if v, ok := getEnvStr("SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("SMTP_FROM"); ok {
		c.SMTP.From = v
	}

	// EMAIL
	if v, ok := getEnvBool("EMAIL_ENABLED"); ok {
		c.Email.Enabled = v
	}
	if v, ok := getEnvStr("EMAIL_SITE_NAME"); ok {
		c.Email.SiteName = v
	}
	if v, ok := getEnvStr("EMAIL_SITE_URL"); ok {
		c.Email.SiteURL = v
	}

	// ADMIN
	if v, ok := getEnvStr("ADMIN_API_KEY_HASH"); ok {
		c.Admin.APIKeyHash = v
	}

	// RATE LIMIT
	if v, ok := getEnvBool("RATE_LIMIT_ENABLED"); ok {
		c.RateLimit.Enabled = v
	}
	if v, ok := getEnvInt("RATE_LIMIT_MAX"); ok {
		c.RateLimit.Max = v
	}
	if v, ok := getEnvDur("RATE_LIMIT_WINDOW"); ok {
		c.RateLimit.Window = v
	}
}

// Validate verifica invariantes que romperían el servicio en runtime.
func (c *Config) Validate() error {
	if c.Provider.TokenMethod != "POST" && c.Provider.TokenMethod != "GET" {
		return errors.New("config: provider.token_method must be POST or GET")
	}
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return errors.New("config: storage.driver must be memory or postgres")
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return errors.New("config: storage.dsn required for postgres driver")
	}
	if c.Server.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
			return err
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return err
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("config: rate_limit.max and rate_limit.window must be positive")
	}
	// En prod no arrancamos con credenciales o state secret vacíos.
	if strings.EqualFold(c.App.Env, "prod") {
		if strings.TrimSpace(c.Provider.ClientID) == "" || strings.TrimSpace(c.Provider.ClientSecret) == "" {
			return errors.New("config: provider credentials required in prod")
		}
		if strings.TrimSpace(c.State.Secret) == "" {
			return errors.New("config: state.secret required in prod")
		}
		if c.Email.Enabled && strings.TrimSpace(c.SMTP.Host) == "" {
			return errors.New("config: smtp.host required when email is enabled in prod")
		}
	}
	return nil
}
