package config

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"
)

type Config struct {
	FQDN   string `yaml:"fqdn"`
	Listen string `yaml:"listen"`

	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`

	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`

	Storage Storage `yaml:"storage"`
}

// Storage selects the blob backend for uploaded files. Backend is "fs"
// (default) or "s3".
type Storage struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`

	S3Endpoint  string `yaml:"s3Endpoint"`
	S3AccessKey string `yaml:"s3AccessKey"`
	S3SecretKey string `yaml:"s3SecretKey"`
	S3Bucket    string `yaml:"s3Bucket"`
	S3UseSSL    bool   `yaml:"s3UseSSL"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Listen == "" {
		config.Listen = ":8000"
	}
	if config.Storage.Backend == "" {
		config.Storage.Backend = "fs"
	}
	if config.Storage.Backend == "fs" && config.Storage.Path == "" {
		config.Storage.Path = "uploads"
	}
	if config.Storage.Backend == "s3" && config.Storage.S3Bucket == "" {
		return Config{}, fmt.Errorf("storage.s3Bucket is required for the s3 backend")
	}

	return config, nil
}
