package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Режимы хранения ссылок.
const (
	ModeDatabase = "database"
	ModeSQLite   = "sqlite"
	ModeFile     = "file"
	ModeMemory   = "memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string        `json:"server_address"`
	BaseURL          string        `json:"base_url"`
	FrontendURL      string        `json:"frontend_url"`
	FileStoragePath  string        `json:"file_storage_path"`
	SQLitePath       string        `json:"sqlite_path"`
	DatabaseDSN      string        `json:"database_dsn"`
	PgMigrationsPath string        `json:"pg_migrations_path"`
	GRPCAddress      string        `json:"grpc_address"`
	TLSCertPath      string        `json:"tls_cert_path"`
	TLSKeyPath       string        `json:"tls_key_path"`
	Mode             string        `json:"-"`
	RequestTimeout   time.Duration `json:"-"`
	CodeLength       int           `json:"code_length"`
	EnableHTTPS      bool          `json:"enable_https"`
}

// jsonConfig JSON-файл конфигурации; таймаут задаётся строкой вида "5s".
type jsonConfig struct {
	Config
	RequestTimeout string `json:"request_timeout"`
}

// NewConfig собирает конфигурацию из умолчаний, .env, переменных окружения,
// JSON-файла и флагов командной строки (в порядке возрастания приоритета).
func NewConfig() (*Config, error) {
	return Load(flag.CommandLine, os.Args[1:])
}

// Load собирает конфигурацию, разбирая args набором флагов fs.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	// .env не переопределяет уже заданные переменные окружения
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("SERVER_ADDRESS", "localhost:8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("FILE_STORAGE_PATH", "links.json")
	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PG_MIGRATIONS_PATH", "")
	v.SetDefault("GRPC_ADDRESS", "")
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("CODE_LENGTH", 8)
	v.SetDefault("ENABLE_HTTPS", false)
	v.SetDefault("TLS_CERT_PATH", "cert.pem")
	v.SetDefault("TLS_KEY_PATH", "key.pem")
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	serverAddress := fs.String("a", "", "server address")
	baseURL := fs.String("b", "", "base URL for short links")
	frontendURL := fs.String("o", "", "allowed CORS origin (frontend URL)")
	fileStoragePath := fs.String("f", "", "file storage path (JSON lines)")
	sqlitePath := fs.String("l", "", "SQLite database path")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	grpcAddress := fs.String("g", "", "gRPC listen address")
	requestTimeout := fs.Duration("timeout", 0, "per-operation storage timeout")
	enableHTTPS := fs.Bool("s", false, "enable HTTPS")
	tlsCertPath := fs.String("cert", "", "path to TLS certificate")
	tlsKeyPath := fs.String("key", "", "path to TLS key")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		BaseURL:          v.GetString("BASE_URL"),
		FrontendURL:      v.GetString("FRONTEND_URL"),
		FileStoragePath:  v.GetString("FILE_STORAGE_PATH"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		PgMigrationsPath: v.GetString("PG_MIGRATIONS_PATH"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		TLSCertPath:      v.GetString("TLS_CERT_PATH"),
		TLSKeyPath:       v.GetString("TLS_KEY_PATH"),
		RequestTimeout:   timeout,
		CodeLength:       v.GetInt("CODE_LENGTH"),
		EnableHTTPS:      v.GetBool("ENABLE_HTTPS"),
	}

	// JSON-файл заполняет только то, что не задано в окружении
	if *configPath == "" {
		*configPath = os.Getenv("CONFIG")
	}
	if *configPath != "" {
		if err := cfg.mergeJSON(*configPath); err != nil {
			return nil, err
		}
	}

	// Флаги имеют наивысший приоритет
	override := func(flagVal string, target *string) {
		if flagVal != "" {
			*target = flagVal
		}
	}
	override(*serverAddress, &cfg.ServerAddress)
	override(*baseURL, &cfg.BaseURL)
	override(*frontendURL, &cfg.FrontendURL)
	override(*fileStoragePath, &cfg.FileStoragePath)
	override(*sqlitePath, &cfg.SQLitePath)
	override(*databaseDSN, &cfg.DatabaseDSN)
	override(*grpcAddress, &cfg.GRPCAddress)
	override(*tlsCertPath, &cfg.TLSCertPath)
	override(*tlsKeyPath, &cfg.TLSKeyPath)
	if *requestTimeout != 0 {
		cfg.RequestTimeout = *requestTimeout
	}
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	// Определяем режим работы
	switch {
	case cfg.DatabaseDSN != "":
		cfg.Mode = ModeDatabase
	case cfg.SQLitePath != "":
		cfg.Mode = ModeSQLite
	case cfg.FileStoragePath != "":
		cfg.Mode = ModeFile
	default:
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) mergeJSON(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	var fileCfg jsonConfig
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	fill := func(env, fileVal string, target *string) {
		if _, set := os.LookupEnv(env); !set && fileVal != "" {
			*target = fileVal
		}
	}
	fill("SERVER_ADDRESS", fileCfg.ServerAddress, &cfg.ServerAddress)
	fill("BASE_URL", fileCfg.BaseURL, &cfg.BaseURL)
	fill("FRONTEND_URL", fileCfg.FrontendURL, &cfg.FrontendURL)
	fill("FILE_STORAGE_PATH", fileCfg.FileStoragePath, &cfg.FileStoragePath)
	fill("SQLITE_PATH", fileCfg.SQLitePath, &cfg.SQLitePath)
	fill("DATABASE_DSN", fileCfg.DatabaseDSN, &cfg.DatabaseDSN)
	fill("PG_MIGRATIONS_PATH", fileCfg.PgMigrationsPath, &cfg.PgMigrationsPath)
	fill("GRPC_ADDRESS", fileCfg.GRPCAddress, &cfg.GRPCAddress)
	fill("TLS_CERT_PATH", fileCfg.TLSCertPath, &cfg.TLSCertPath)
	fill("TLS_KEY_PATH", fileCfg.TLSKeyPath, &cfg.TLSKeyPath)

	if _, set := os.LookupEnv("REQUEST_TIMEOUT"); !set && fileCfg.RequestTimeout != "" {
		timeout, err := time.ParseDuration(fileCfg.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout in %q: %w", path, err)
		}
		cfg.RequestTimeout = timeout
	}
	if _, set := os.LookupEnv("CODE_LENGTH"); !set && fileCfg.CodeLength != 0 {
		cfg.CodeLength = fileCfg.CodeLength
	}
	if _, set := os.LookupEnv("ENABLE_HTTPS"); !set && fileCfg.EnableHTTPS {
		cfg.EnableHTTPS = true
	}
	return nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if cfg.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", cfg.RequestTimeout)
	}
	if cfg.CodeLength < 6 || cfg.CodeLength > 8 {
		return fmt.Errorf("code length must be between 6 and 8, got %d", cfg.CodeLength)
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return fmt.Errorf("HTTPS requires both certificate and key paths")
	}
	return nil
}
