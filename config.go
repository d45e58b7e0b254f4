package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Queue provider names.
const (
	QueueProviderMemory = "memory"
	QueueProviderRedis  = "redis"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit    string        `yaml:"git_commit" envconfig:"BSTORE_GIT_COMMIT"`
	GitTag       string        `yaml:"git_tag" envconfig:"BSTORE_GIT_TAG"`
	BuildTime    string        `yaml:"build_time" envconfig:"BSTORE_BUILD_TIME"`
	IsProduction bool          `yaml:"is_production" envconfig:"BSTORE_IS_PRODUCTION"`
	LogLevel     zapcore.Level `yaml:"log_level" envconfig:"BSTORE_LOG_LEVEL"`
	LogFolder    string        `yaml:"log_folder" envconfig:"BSTORE_LOG_FOLDER"`
	LogMaxSize   int           `yaml:"log_max_size" envconfig:"BSTORE_LOG_MAX_SIZE"`
	Request      RequestConfig `yaml:"request"`
	Overdue      OverdueConfig `yaml:"overdue"`
	Queue        QueueConfig   `yaml:"queue"`
	BoltDB       BoltDBConfig  `yaml:"boltdb"`
	Redis        RedisConfig   `yaml:"redis"`
}

// RequestConfig drives the simulated asynchronous request boundary.
type RequestConfig struct {
	Latency time.Duration `yaml:"latency" envconfig:"BSTORE_REQUEST_LATENCY"`
}

// OverdueConfig drives the external overdue sweeper. After is the age beyond
// which an active borrow becomes overdue, Sweep the scan interval.
type OverdueConfig struct {
	Enable bool          `yaml:"enable" envconfig:"BSTORE_OVERDUE_ENABLE"`
	After  time.Duration `yaml:"after" envconfig:"BSTORE_OVERDUE_AFTER"`
	Sweep  time.Duration `yaml:"sweep" envconfig:"BSTORE_OVERDUE_SWEEP"`
}

// QueueConfig selects the journal queue provider.
type QueueConfig struct {
	Provider string `yaml:"provider" envconfig:"BSTORE_QUEUE_PROVIDER"`
	Size     int    `yaml:"size" envconfig:"BSTORE_QUEUE_SIZE"`
}

type BoltDBConfig struct {
	FilePath      string        `yaml:"filepath" envconfig:"BSTORE_BOLTDB_FILE_PATH"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"BSTORE_BOLTDB_TIMEOUT"`
	SessionBucket string        `yaml:"session_bucket" envconfig:"BSTORE_BOLTDB_SESSION_BUCKET"`
	JournalBucket string        `yaml:"journal_bucket" envconfig:"BSTORE_BOLTDB_JOURNAL_BUCKET"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BSTORE_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BSTORE_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"BSTORE_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"BSTORE_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"BSTORE_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BSTORE_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"BSTORE_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BSTORE_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BSTORE_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BSTORE_REDIS_DATABASE_INDEX"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and overlays them onto the config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig sets up defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}
	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}
	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if config.LogFolder == "" {
		config.LogFolder = "logs"
	}
	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}
	if config.Request.Latency <= 0 {
		config.Request.Latency = 800 * time.Millisecond
	}
	if config.Overdue.After <= 0 {
		config.Overdue.After = 30 * 24 * time.Hour
	}
	if config.Overdue.Sweep <= 0 {
		config.Overdue.Sweep = time.Minute
	}
	if config.Queue.Provider == "" {
		config.Queue.Provider = QueueProviderMemory
	}
	if config.Queue.Size <= 0 {
		config.Queue.Size = 128
	}

	if config.Queue.Provider != QueueProviderMemory && config.Queue.Provider != QueueProviderRedis {
		return fmt.Errorf("unknown queue provider %q", config.Queue.Provider)
	}
	if config.Queue.Provider == QueueProviderRedis && (len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0) {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}
	if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.SessionBucket) == 0 || len(config.BoltDB.JournalBucket) == 0 {
		return errors.New("make sure to set valid boltdb path and bucket names in configuration file")
	}
	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	err = godotenv.Load("./config.env")
	if err != nil {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `BSTORE`.
	err = LoadConfigEnvs("BSTORE", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
