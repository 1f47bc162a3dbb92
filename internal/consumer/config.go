package consumer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"tracelens/internal/model"
)

type NSQConfig struct {
	NSQDAddrs []string `yaml:"nsqdAddrs"`
	Topic     string   `yaml:"topic"`
	Channel   string   `yaml:"channel"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL,omitempty"`
	Region          string `yaml:"region,omitempty"`
}

type Config struct {
	NSQ NSQConfig      `yaml:"nsq"`
	S3  S3Config       `yaml:"s3"`
	DB  model.DBConfig `yaml:"db"`
}

func DefaultConfig() *Config {
	return &Config{
		NSQ: NSQConfig{
			NSQDAddrs: []string{"localhost:4150"},
			Topic:     "trace_ingest",
			Channel:   "tracelens-consumer",
		},
		DB: *model.DefaultDBConfig(),
		S3: S3Config{
			Bucket:   "tracelens",
			Endpoint: "localhost:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
	}
}

func LoadConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %v", err)
	}
	err = yaml.Unmarshal(data, conf)
	if err != nil {
		return nil, fmt.Errorf("unmarshal config file: %v", err)
	}

	return conf, nil
}
