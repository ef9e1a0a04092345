package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/rocketscienceinc/pentago-client/internal/entity"
)

type Config struct {
	LogLevel          string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort        string    `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis             Redis     `yaml:"redis"`
	SQLiteStoragePath string    `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"./results.db"`
	Engine            Engine    `yaml:"engine"`
	Animation         Animation `yaml:"animation"`
	Lineup            Lineup    `yaml:"lineup"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Engine struct {
	URL          string        `yaml:"url" env:"ENGINE_URL" env-default:"http://127.0.0.1:8000"`
	PollInterval time.Duration `yaml:"poll-interval" env-default:"150ms"`
	PollTimeout  time.Duration `yaml:"poll-timeout" env-default:"1s"`
	HideDelay    time.Duration `yaml:"hide-delay" env-default:"200ms"`
}

type Animation struct {
	SettleDelay    time.Duration `yaml:"settle-delay" env-default:"20ms"`
	RotateDuration time.Duration `yaml:"rotate-duration" env-default:"320ms"`
}

type Lineup struct {
	Mode   string       `yaml:"mode" env-default:"human-vs-engine"`
	Human  string       `yaml:"human" env-default:"B"`
	Engine EngineConfig `yaml:"engine"`
	Black  EngineConfig `yaml:"black"`
	White  EngineConfig `yaml:"white"`
}

type EngineConfig struct {
	Kind        string `yaml:"kind" env-default:"minimax"`
	Depth       int    `yaml:"depth" env-default:"3"`
	TimeMs      int    `yaml:"time-ms"`
	Simulations int    `yaml:"simulations"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// ToEntity converts the lineup section into the lineup the first game is played with.
func (that *Lineup) ToEntity() (entity.Lineup, error) {
	mode, err := entity.ParseMode(that.Mode)
	if err != nil {
		return entity.Lineup{}, fmt.Errorf("failed to parse lineup mode: %w", err)
	}

	lineup := entity.Lineup{
		Mode:   mode,
		Engine: that.Engine.ToEntity(),
		Black:  that.Black.ToEntity(),
		White:  that.White.ToEntity(),
	}

	if mode == entity.HumanVsEngine {
		if lineup.Human, err = entity.ParseSide(that.Human); err != nil {
			return entity.Lineup{}, fmt.Errorf("failed to parse human side: %w", err)
		}
	}

	if err = lineup.Validate(); err != nil {
		return entity.Lineup{}, fmt.Errorf("invalid lineup: %w", err)
	}

	return lineup, nil
}

func (that *EngineConfig) ToEntity() entity.EngineConfig {
	return entity.EngineConfig{
		Kind:        entity.EngineKind(that.Kind),
		Depth:       that.Depth,
		TimeMs:      that.TimeMs,
		Simulations: that.Simulations,
	}
}
