package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	ut "github.com/go-playground/universal-translator"
	"github.com/spf13/viper"

	"github.com/at-ishikawa/flashdeck/internal/srs"
)

const (
	ProgressBackendYAML   = "yaml"
	ProgressBackendMySQL  = "mysql"
	ProgressBackendSQLite = "sqlite"
)

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"gte=0,lte=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Progress ProgressConfig `mapstructure:"progress"`
	Database DatabaseConfig `mapstructure:"database"`
	Study    StudyConfig    `mapstructure:"study"`
	Apps     AppsConfig     `mapstructure:"apps"`
	Media    MediaConfig    `mapstructure:"media"`
	Outputs  OutputsConfig  `mapstructure:"outputs"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
}

// ProgressConfig selects where review progress is stored.
type ProgressConfig struct {
	Backend    string `mapstructure:"backend" validate:"oneof=yaml mysql sqlite"`
	Directory  string `mapstructure:"directory" validate:"required_if=Backend yaml"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Backend sqlite"`
}

type StudyConfig struct {
	RevealDelay time.Duration `mapstructure:"reveal_delay" validate:"gte=0"`
}

type SchedulerConfig struct {
	Policy                    string  `mapstructure:"policy" validate:"oneof=sm2 drill"`
	JitterRange               float64 `mapstructure:"jitter_range" validate:"gte=0"`
	Epsilon                   float64 `mapstructure:"epsilon" validate:"gt=0"`
	ResetCycleOnCatalogChange bool    `mapstructure:"reset_cycle_on_catalog_change"`
	MasteryThreshold          int     `mapstructure:"mastery_threshold" validate:"gte=1"`
}

func (c SchedulerConfig) SRSConfig() srs.Config {
	return srs.Config{
		Policy:                    c.Policy,
		JitterRange:               c.JitterRange,
		Epsilon:                   c.Epsilon,
		ResetCycleOnCatalogChange: c.ResetCycleOnCatalogChange,
		MasteryThreshold:          c.MasteryThreshold,
	}
}

type AppsConfig struct {
	Kana    KanaConfig     `mapstructure:"kana"`
	Numbers NumbersConfig  `mapstructure:"numbers"`
	Vocab   WordListConfig `mapstructure:"vocab"`
	Phrases WordListConfig `mapstructure:"phrases"`
}

type KanaConfig struct {
	Mode        string          `mapstructure:"mode" validate:"oneof=hiragana katakana mixed"`
	DefaultRows []string        `mapstructure:"default_rows"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
}

type NumbersConfig struct {
	Range     string          `mapstructure:"range" validate:"oneof=0-10 0-100 0-1000 0-10000"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type WordListConfig struct {
	Files     []WordListFileConfig `mapstructure:"files" validate:"dive"`
	BatchSize int                  `mapstructure:"batch_size" validate:"gte=1"`
	Scheduler SchedulerConfig      `mapstructure:"scheduler"`
}

type WordListFileConfig struct {
	Path string `mapstructure:"path" validate:"file"`
	Kind string `mapstructure:"kind" validate:"omitempty,oneof=word phrase"`
}

// MediaConfig configures audio download, caching and playback.
type MediaConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,url"`
	CacheDirectory string        `mapstructure:"cache_directory" validate:"required"`
	Extension      string        `mapstructure:"extension"`
	PlayerCommand  []string      `mapstructure:"player_command" validate:"command"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RetryAttempts  uint          `mapstructure:"retry_attempts"`
	Concurrency    int           `mapstructure:"concurrency" validate:"gte=1"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
	// ReportTemplate replaces the embedded markdown template when set.
	ReportTemplate string `mapstructure:"report_template" validate:"omitempty,file"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/flashdeck")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("progress.backend", ProgressBackendYAML)
	v.SetDefault("progress.directory", filepath.Join("data", "progress"))
	v.SetDefault("progress.sqlite_path", filepath.Join("data", "flashdeck.db"))
	v.SetDefault("study.reveal_delay", time.Second)
	v.SetDefault("apps.kana.mode", "hiragana")
	v.SetDefault("apps.kana.default_rows", []string{"a"})
	v.SetDefault("apps.numbers.range", "0-10")
	v.SetDefault("apps.vocab.batch_size", 20)
	v.SetDefault("apps.phrases.batch_size", 20)
	for _, app := range []string{"kana", "numbers", "vocab", "phrases"} {
		key := "apps." + app + ".scheduler."
		v.SetDefault(key+"policy", srs.PolicySM2)
		v.SetDefault(key+"jitter_range", srs.DefaultJitterRange)
		v.SetDefault(key+"epsilon", srs.DefaultEpsilon)
		v.SetDefault(key+"mastery_threshold", srs.DefaultMasteryThreshold)
	}
	// Switching number ranges starts over, like a fresh drill.
	v.SetDefault("apps.numbers.scheduler.policy", srs.PolicyDrill)
	v.SetDefault("apps.numbers.scheduler.reset_cycle_on_catalog_change", true)
	v.SetDefault("media.cache_directory", filepath.Join("data", "audio"))
	v.SetDefault("media.extension", ".mp3")
	v.SetDefault("media.timeout", 10*time.Second)
	v.SetDefault("media.retry_attempts", 3)
	v.SetDefault("media.concurrency", 4)
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "flashdeck")
	v.SetDefault("database.username", "user")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("media.base_url", "FLASHDECK_MEDIA_BASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind FLASHDECK_MEDIA_BASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
