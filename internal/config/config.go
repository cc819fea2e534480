package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/daisywatson/monopoly-game/internal/game/policy"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Game    GameConfig    `mapstructure:"game"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	GamesColl  string `mapstructure:"games_collection"`
	EventsColl string `mapstructure:"events_collection"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	URI          string `mapstructure:"uri"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	SnapshotTTL  int    `mapstructure:"snapshot_ttl"` // in minutes
	EventChannel string `mapstructure:"event_channel"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration int    `mapstructure:"expiration"` // in hours
}

// GameConfig holds game-specific configuration
type GameConfig struct {
	MaxPlayers        int    `mapstructure:"max_players"`
	MinPlayers        int    `mapstructure:"min_players"`
	DefaultDifficulty string `mapstructure:"default_difficulty"`
	DefaultTimeLimit  int    `mapstructure:"default_time_limit"` // in minutes, 0 is a classic game
	CommandRate       int    `mapstructure:"command_rate"`       // websocket commands per second
	CommandBurst      int    `mapstructure:"command_burst"`
	IdleGameExpiry    int    `mapstructure:"idle_game_expiry"` // in hours
}

// LogConfig selects the zap preset
type LogConfig struct {
	Production bool   `mapstructure:"production"`
	Level      string `mapstructure:"level"`
}

// Validate rejects game settings the engine cannot honor
func (g GameConfig) Validate() error {
	if g.MinPlayers < 2 || g.MaxPlayers > 4 || g.MinPlayers > g.MaxPlayers {
		return fmt.Errorf("player range %d-%d must lie within 2-4", g.MinPlayers, g.MaxPlayers)
	}
	if _, err := policy.ParseDifficulty(g.DefaultDifficulty); err != nil {
		return err
	}
	if g.DefaultTimeLimit < 0 {
		return errors.New("default time limit cannot be negative")
	}
	if g.CommandRate <= 0 || g.CommandBurst <= 0 {
		return errors.New("command rate and burst must be positive")
	}
	return nil
}

// Load reads configuration from a file or environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/monopoly-game")

	// Environment variables, e.g. MONOPOLY_REDIS_URI
	v.SetEnvPrefix("monopoly")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; we'll just use environment and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Game.Validate(); err != nil {
		return nil, fmt.Errorf("game config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)

	// MongoDB defaults
	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "monopoly")
	v.SetDefault("mongodb.games_collection", "games")
	v.SetDefault("mongodb.events_collection", "events")

	// Redis defaults
	v.SetDefault("redis.uri", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.snapshot_ttl", 60*24)
	v.SetDefault("redis.event_channel", "monopoly:events")

	// JWT defaults
	v.SetDefault("jwt.secret", "replace-with-secure-secret")
	v.SetDefault("jwt.expiration", 24)

	// Game defaults
	v.SetDefault("game.max_players", 4)
	v.SetDefault("game.min_players", 2)
	v.SetDefault("game.default_difficulty", string(policy.Easy))
	v.SetDefault("game.default_time_limit", 0)
	v.SetDefault("game.command_rate", 5)
	v.SetDefault("game.command_burst", 10)
	v.SetDefault("game.idle_game_expiry", 24)

	// Log defaults
	v.SetDefault("log.production", false)
	v.SetDefault("log.level", "info")
}
