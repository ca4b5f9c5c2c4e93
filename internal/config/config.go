package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

// EnvPrefix - префикс переменных окружения: TASKMASTER_SERVER_PORT и т.п.
const EnvPrefix = "TASKMASTER"

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Local         LocalConfig         `yaml:"local"`
	Logging       LoggingConfig       `yaml:"logging"`
	Repository    RepositoryConfig    `yaml:"repository"`
	Migration     MigrationConfig     `yaml:"migration"`
	Query         QueryConfig         `yaml:"query"`
	Notifications NotificationsConfig `yaml:"notifications"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// LocalConfig - файл локального SQLite-хранилища (задачи и флаг миграции)
type LocalConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres", "sqlite" или "inmemory"
}

type MigrationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Source   string `yaml:"source"` // "default", "file" или "local"
	SeedFile string `yaml:"seed_file"`
	FlagKey  string `yaml:"flag_key"`
	// RetryInterval - пауза между фоновыми попытками после сбоя переноса; 0 отключает
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type QueryConfig struct {
	Locale string `yaml:"locale"`
}

type NotificationsConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

type RateLimitConfig struct {
	RPM int `yaml:"rpm"`
}

const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceLocal   = "local"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: "8080"},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Local:      LocalConfig{Path: "taskmaster.db"},
		Repository: RepositoryConfig{Type: "inmemory"},
		Migration: MigrationConfig{
			Enabled:       true,
			Source:        SourceDefault,
			FlagKey:       "taskmaster.migrated",
			RetryInterval: time.Minute,
		},
		Query:         QueryConfig{Locale: "en"},
		Notifications: NotificationsConfig{BufferSize: 50},
		RateLimit:     RateLimitConfig{RPM: 600},
	}
}

// Load читает YAML поверх значений по умолчанию и применяет переменные окружения.
// Отсутствующий файл не ошибка: остаются умолчания и окружение.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	str := map[string]*string{
		"server.host":         &cfg.Server.Host,
		"server.port":         &cfg.Server.Port,
		"database.url":        &cfg.Database.URL,
		"local.path":          &cfg.Local.Path,
		"repository.type":     &cfg.Repository.Type,
		"migration.source":    &cfg.Migration.Source,
		"migration.seed_file": &cfg.Migration.SeedFile,
		"migration.flag_key":  &cfg.Migration.FlagKey,
		"query.locale":        &cfg.Query.Locale,
	}
	ints := map[string]*int{
		"database.max_connections":  &cfg.Database.MaxConnections,
		"database.min_connections":  &cfg.Database.MinConnections,
		"notifications.buffer_size": &cfg.Notifications.BufferSize,
		"rate_limit.rpm":            &cfg.RateLimit.RPM,
	}
	bools := map[string]*bool{
		"logging.development": &cfg.Logging.Development,
		"migration.enabled":   &cfg.Migration.Enabled,
	}

	for key, dst := range str {
		if bind(v, key) {
			*dst = v.GetString(key)
		}
	}
	for key, dst := range ints {
		if bind(v, key) {
			*dst = v.GetInt(key)
		}
	}
	for key, dst := range bools {
		if bind(v, key) {
			*dst = v.GetBool(key)
		}
	}

	durations := map[string]*time.Duration{
		"database.idle_timeout":    &cfg.Database.IdleTimeout,
		"migration.retry_interval": &cfg.Migration.RetryInterval,
	}
	for key, dst := range durations {
		if !bind(v, key) {
			continue
		}
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return fmt.Errorf("неверное значение %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}

// bind привязывает ключ к переменной окружения и сообщает, задана ли она
func bind(v *viper.Viper, key string) bool {
	_ = v.BindEnv(key)
	return v.IsSet(key)
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("database.url обязателен для repository.type=postgres")
		}
	case "sqlite", "inmemory":
	default:
		return fmt.Errorf("неизвестный repository.type %q", c.Repository.Type)
	}

	switch c.Migration.Source {
	case SourceDefault:
	case SourceLocal:
		if c.Repository.Type != "postgres" {
			return errors.New("migration.source=local переносит локальные задачи только в postgres")
		}
	case SourceFile:
		if c.Migration.SeedFile == "" {
			return errors.New("migration.seed_file обязателен для migration.source=file")
		}
	default:
		return fmt.Errorf("неизвестный migration.source %q", c.Migration.Source)
	}

	if c.Migration.RetryInterval < 0 {
		return errors.New("migration.retry_interval не может быть отрицательным")
	}
	if c.RateLimit.RPM < 0 {
		return errors.New("rate_limit.rpm не может быть отрицательным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
