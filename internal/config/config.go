package config

import (
	"log"
	"os"
	"strconv"

	"lifeflow/pkg/config"

	"gopkg.in/yaml.v3"
)

type SyncConfig struct {
	DeviceID             string `yaml:"device_id"`
	TimezoneOffsetMin    int    `yaml:"timezone_offset_minutes"`
	TimelinePageSize     int    `yaml:"timeline_page_size"`
	ToastDismissSeconds  int    `yaml:"toast_dismiss_seconds"`
	ReminderDailyAt      string `yaml:"reminder_daily_at"`
	AtRiskScanMinutes    int    `yaml:"at_risk_scan_minutes"`
	DedupTTLSeconds      int    `yaml:"dedup_ttl_seconds"`
}

type Config struct {
	Remote config.RemoteConfig `yaml:"remote"`
	MQ     config.MQConfig     `yaml:"mq"`
	Redis  config.RedisConfig  `yaml:"redis"`
	JWT    config.JWTConfig    `yaml:"jwt"`
	Server config.ServerConfig `yaml:"server"`
	Sync   SyncConfig          `yaml:"sync"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideRemoteFromEnv(&cfg.Remote)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	if deviceID := os.Getenv("DEVICE_ID"); deviceID != "" {
		cfg.Sync.DeviceID = deviceID
	}
	if offset := os.Getenv("TIMEZONE_OFFSET_MINUTES"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			cfg.Sync.TimezoneOffsetMin = o
		}
	}

	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8086"
	}
	if cfg.Sync.TimelinePageSize <= 0 {
		cfg.Sync.TimelinePageSize = 20
	}
	if cfg.Sync.ToastDismissSeconds <= 0 {
		cfg.Sync.ToastDismissSeconds = 4
	}
	if cfg.Sync.ReminderDailyAt == "" {
		cfg.Sync.ReminderDailyAt = "09:00"
	}
	if cfg.Sync.AtRiskScanMinutes <= 0 {
		cfg.Sync.AtRiskScanMinutes = 60
	}
	if cfg.Sync.DedupTTLSeconds <= 0 {
		cfg.Sync.DedupTTLSeconds = 300
	}
	if cfg.Sync.DeviceID == "" {
		cfg.Sync.DeviceID = "dev-local"
	}
}
