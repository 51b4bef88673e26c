// Package config は環境変数からアプリケーション設定を読み込む
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tasukuchiba/ed_monitor/internal/dashboard"
	"github.com/tasukuchiba/ed_monitor/internal/storage"
)

// Config はサーバーの設定
type Config struct {
	Port           string        `mapstructure:"port"`
	TickInterval   time.Duration `mapstructure:"tick_interval"`
	ReplyDelay     time.Duration `mapstructure:"reply_delay"`
	ActivityChance float64       `mapstructure:"activity_chance"`
	ActivityLimit  int           `mapstructure:"activity_limit"`
	MessageLimit   int           `mapstructure:"message_limit"`
	Seed           int64         `mapstructure:"sim_seed"`
}

// Load は .env (存在すれば) と環境変数から設定を読み込む
//
// 既に設定されている環境変数は .env で上書きしない。
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv は環境変数だけから設定を読み込む
//
// キー名を大文字にしたものが環境変数名になる (tick_interval -> TICK_INTERVAL)。
func FromEnv() (Config, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("tick_interval", dashboard.DefaultTickInterval)
	v.SetDefault("reply_delay", dashboard.DefaultReplyDelay)
	v.SetDefault("activity_chance", dashboard.DefaultActivityChance)
	v.SetDefault("activity_limit", storage.DefaultActivityLimit)
	v.SetDefault("message_limit", storage.DefaultMessageLimit)
	v.SetDefault("sim_seed", time.Now().UnixNano())
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.TickInterval < 0:
		return fmt.Errorf("TICK_INTERVAL must be a non-negative duration: %s", c.TickInterval)
	case c.ReplyDelay < 0:
		return fmt.Errorf("REPLY_DELAY must be a non-negative duration: %s", c.ReplyDelay)
	case c.ActivityChance < 0 || c.ActivityChance > 1:
		return fmt.Errorf("ACTIVITY_CHANCE must be between 0 and 1: %v", c.ActivityChance)
	case c.ActivityLimit <= 0:
		return fmt.Errorf("ACTIVITY_LIMIT must be a positive integer: %d", c.ActivityLimit)
	case c.MessageLimit <= 0:
		return fmt.Errorf("MESSAGE_LIMIT must be a positive integer: %d", c.MessageLimit)
	}
	return nil
}

// Dashboard はServiceの設定に変換する
func (c Config) Dashboard() dashboard.Config {
	return dashboard.Config{
		TickInterval:   c.TickInterval,
		ReplyDelay:     c.ReplyDelay,
		ActivityChance: c.ActivityChance,
	}
}

// Addr はlistenアドレスを返す
func (c Config) Addr() string {
	return ":" + c.Port
}

// LogSummary は読み込んだ設定をログに出す
func (c Config) LogSummary() {
	log.Printf("Config: port=%s tick=%s reply_delay=%s activity_chance=%.2f activity_limit=%d",
		c.Port, c.TickInterval, c.ReplyDelay, c.ActivityChance, c.ActivityLimit)
}
