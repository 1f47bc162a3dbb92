package config

import (
	"tracelens/internal/model"
)

const defaultSqlDsn = "root:123456@tcp(127.0.0.1:3306)/tracelens?charset=utf8mb4&parseTime=True&loc=Local"

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

type InsightsConfig struct {
	// staleness window for cached insights responses, in seconds
	CacheTTL int `yaml:"cacheTTL"`
	// cap on distinct values returned by tag value and correlation queries
	MaxValues int `yaml:"maxValues"`
}

type Config struct {
	Addr      string         `yaml:"addr"`
	SSLCert   string         `yaml:"sslCert"`
	SSLKey    string         `yaml:"sslKey"`
	JwtSecret string         `yaml:"jwtSecret"`
	DB        model.DBConfig `yaml:"db"`
	S3        S3Config       `yaml:"s3"`
	Insights  InsightsConfig `yaml:"insights"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr: "127.0.0.1:8081",
		DB: model.DBConfig{
			DSN:          defaultSqlDsn,
			MaxIdleConns: 100,
			MaxOpenConns: 1000,
			MaxLifetime:  60,
		},
		S3: S3Config{
			Bucket:   "tracelens",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		Insights: InsightsConfig{
			CacheTTL:  30,
			MaxValues: 10,
		},
	}
}
