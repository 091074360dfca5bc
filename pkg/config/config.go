package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	PayFast       PayFastConfig
	Tenders       TendersConfig
	Proxy         ProxyConfig
	Cart          CartConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VELDMARKET_APP_ENV" required:"true"`
	Port         string `envconfig:"VELDMARKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VELDMARKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VELDMARKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VELDMARKET_DB_DSN"`
	Driver string `envconfig:"VELDMARKET_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"VELDMARKET_DB_HOST"`
	Port     int    `envconfig:"VELDMARKET_DB_PORT" default:"5432"`
	User     string `envconfig:"VELDMARKET_DB_USER"`
	Password string `envconfig:"VELDMARKET_DB_PASSWORD"`
	Name     string `envconfig:"VELDMARKET_DB_NAME"`
	SSLMode  string `envconfig:"VELDMARKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VELDMARKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VELDMARKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VELDMARKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VELDMARKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VELDMARKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"VELDMARKET_REDIS_ADDR"`
	Password     string        `envconfig:"VELDMARKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"VELDMARKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VELDMARKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VELDMARKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VELDMARKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VELDMARKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VELDMARKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"VELDMARKET_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"VELDMARKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"VELDMARKET_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"VELDMARKET_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VELDMARKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VELDMARKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VELDMARKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VELDMARKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VELDMARKET_ARGON_KEY_LEN" default:"32"`
}

type PayFastConfig struct {
	MerchantID  string `envconfig:"VELDMARKET_PAYFAST_MERCHANT_ID" required:"true"`
	MerchantKey string `envconfig:"VELDMARKET_PAYFAST_MERCHANT_KEY" required:"true"`
	Passphrase  string `envconfig:"VELDMARKET_PAYFAST_PASSPHRASE"`
	Sandbox     bool   `envconfig:"VELDMARKET_PAYFAST_SANDBOX" default:"true"`
	ReturnURL   string `envconfig:"VELDMARKET_PAYFAST_RETURN_URL" required:"true"`
	CancelURL   string `envconfig:"VELDMARKET_PAYFAST_CANCEL_URL" required:"true"`
	NotifyURL   string `envconfig:"VELDMARKET_PAYFAST_NOTIFY_URL" required:"true"`
}

type TendersConfig struct {
	BaseURL        string        `envconfig:"VELDMARKET_TENDERS_BASE_URL" default:"https://ocds-api.etenders.gov.za/api"`
	FetchTimeout   time.Duration `envconfig:"VELDMARKET_TENDERS_FETCH_TIMEOUT" default:"30s"`
	DateWindowDays int           `envconfig:"VELDMARKET_TENDERS_DATE_WINDOW_DAYS" default:"90"`
	UpstreamPage   int           `envconfig:"VELDMARKET_TENDERS_UPSTREAM_PAGE_SIZE" default:"50"`
}

type ProxyConfig struct {
	FetchTimeout time.Duration `envconfig:"VELDMARKET_PROXY_FETCH_TIMEOUT" default:"30s"`
	PDFMaxBytes  int64         `envconfig:"VELDMARKET_PROXY_PDF_MAX_BYTES" default:"26214400"`
}

type CartConfig struct {
	SessionTTL time.Duration `envconfig:"VELDMARKET_CART_SESSION_TTL" default:"168h"`
}

// AuthRateLimitConfig throttles credential endpoints per IP and per email.
// A zero window or zero limits disables the corresponding check.
type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"VELDMARKET_AUTH_LOGIN_WINDOW" default:"10m"`
	LoginIPLimit       int           `envconfig:"VELDMARKET_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"VELDMARKET_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"VELDMARKET_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"VELDMARKET_AUTH_REGISTER_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"VELDMARKET_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VELDMARKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VELDMARKET_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		"VELDMARKET_DB_HOST": db.Host,
		"VELDMARKET_DB_USER": db.User,
		"VELDMARKET_DB_NAME": db.Name,
	}
	for _, env := range []string{"VELDMARKET_DB_HOST", "VELDMARKET_DB_USER", "VELDMARKET_DB_NAME"} {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either VELDMARKET_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
