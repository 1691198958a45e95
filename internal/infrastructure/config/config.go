package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 儲存 KPI 服務、資料來源與外部相依的執行設定。
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	DB        DBConfig        `yaml:"db"`
	Auth      AuthConfig      `yaml:"auth"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Cache     CacheConfig     `yaml:"cache"`
	Currency  CurrencyConfig  `yaml:"currency"`
	Notifier  NotifierConfig  `yaml:"notifier"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	DSN          string        `yaml:"dsn"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	MaxIdleTime  time.Duration `yaml:"max_idle_time"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
	Secret   string        `yaml:"secret"`
}

// 資料來源種類
const (
	SourceSynthetic = "synthetic"
	SourceCSV       = "csv"
	SourcePostgres  = "postgres"
)

type IngestionConfig struct {
	Source                 string        `yaml:"source"`
	CSVPath                string        `yaml:"csv_path"`
	Seed                   int64         `yaml:"seed"`
	StartYear              int           `yaml:"start_year"`
	Months                 int           `yaml:"months"`
	EnforceInactiveBalance bool          `yaml:"enforce_inactive_balance"`
	ReloadInterval         time.Duration `yaml:"reload_interval"`
}

type CacheConfig struct {
	Enabled     bool  `yaml:"enabled"`
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
}

type CurrencyConfig struct {
	Default string  `yaml:"default"`
	EURRate float64 `yaml:"eur_rate"`
}

type NotifierConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Token    string        `yaml:"token"`
	ChatID   int64         `yaml:"chat_id"`
	Interval time.Duration `yaml:"interval"`
	Prefix   string        `yaml:"prefix"`
}

// LoadFromFile 從 YAML 組態檔載入設定。
func LoadFromFile(path string) (Config, error) {
	// 嘗試載入 .env 檔案（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg = applyDefaults(cfg)
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 檢查互相依賴的設定。
func (c Config) Validate() error {
	switch c.Ingestion.Source {
	case SourceSynthetic:
	case SourceCSV:
		if c.Ingestion.CSVPath == "" {
			return fmt.Errorf("ingestion.csv_path is required for csv source")
		}
	case SourcePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for postgres source")
		}
	default:
		return fmt.Errorf("unsupported ingestion source %q", c.Ingestion.Source)
	}
	if c.Currency.EURRate <= 0 {
		return fmt.Errorf("currency.eur_rate must be > 0")
	}
	return nil
}

// WithDefaults 補上未設定欄位的預設值，供不經檔案載入的呼叫端（測試、CLI）使用。
func WithDefaults(cfg Config) Config {
	return applyDefaults(cfg)
}

func applyDefaults(cfg Config) Config {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.DB.MaxOpenConns == 0 {
		cfg.DB.MaxOpenConns = 5
	}
	if cfg.DB.MaxIdleConns == 0 {
		cfg.DB.MaxIdleConns = 2
	}
	if cfg.DB.MaxIdleTime == 0 {
		cfg.DB.MaxIdleTime = 15 * time.Minute
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 30 * time.Minute
	}
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = "dev-secret-change-me"
	}
	if cfg.Ingestion.Source == "" {
		cfg.Ingestion.Source = SourceSynthetic
	}
	if cfg.Ingestion.Seed == 0 {
		cfg.Ingestion.Seed = 42
	}
	if cfg.Ingestion.StartYear == 0 {
		cfg.Ingestion.StartYear = 2023
	}
	if cfg.Ingestion.Months == 0 {
		cfg.Ingestion.Months = 24
	}
	if cfg.Cache.NumCounters == 0 {
		cfg.Cache.NumCounters = 1e5
	}
	if cfg.Cache.MaxCost == 0 {
		cfg.Cache.MaxCost = 1 << 26
	}
	if cfg.Currency.Default == "" {
		cfg.Currency.Default = "FCFA"
	}
	if cfg.Currency.EURRate == 0 {
		cfg.Currency.EURRate = 655.957
	}
	if cfg.Notifier.Telegram.Interval == 0 {
		cfg.Notifier.Telegram.Interval = 24 * time.Hour
	}
	if cfg.Notifier.Telegram.Prefix == "" {
		cfg.Notifier.Telegram.Prefix = "[KPI]"
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if val := os.Getenv("HTTP_ADDR"); val != "" {
		cfg.HTTP.Addr = val
	}
	if val := os.Getenv("PORT"); val != "" {
		cfg.HTTP.Addr = ":" + val
	}
	if val := os.Getenv("DB_DSN"); val != "" {
		cfg.DB.DSN = val
	}
	if val := os.Getenv("AUTH_SECRET"); val != "" {
		cfg.Auth.Secret = val
	}
	if val := os.Getenv("INGESTION_SOURCE"); val != "" {
		cfg.Ingestion.Source = val
	}
	if val := os.Getenv("CSV_PATH"); val != "" {
		cfg.Ingestion.CSVPath = val
	}
	if val := os.Getenv("SYNTHETIC_SEED"); val != "" {
		if seed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Ingestion.Seed = seed
		}
	}
	if val := os.Getenv("ENFORCE_INACTIVE_BALANCE"); val != "" {
		cfg.Ingestion.EnforceInactiveBalance = (val == "true")
	}
	if val := os.Getenv("RELOAD_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Ingestion.ReloadInterval = d
		}
	}
	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		cfg.Cache.Enabled = (val == "true")
	}
	if val := os.Getenv("DEFAULT_CURRENCY"); val != "" {
		cfg.Currency.Default = val
	}
	if val := os.Getenv("TELEGRAM_TOKEN"); val != "" {
		cfg.Notifier.Telegram.Token = val
	}
	if val := os.Getenv("TELEGRAM_CHAT_ID"); val != "" {
		if id, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Notifier.Telegram.ChatID = id
		}
	}
	if val := os.Getenv("TELEGRAM_ENABLED"); val != "" {
		cfg.Notifier.Telegram.Enabled = (val == "true")
	}
	return cfg
}
