package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/spf13/viper"
	_ "github.com/spf13/viper/remote"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	configHolder atomic.Value
	backend      = "consul"
	backendAddr  = "127.0.0.1:8500"
	backendPath  = "license-tracker/development"
	configType   = "yaml"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`
	NodeID     int64  `mapstructure:"NODE_ID"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr     string `mapstructure:"ADDR"`
		Protocol string `mapstructure:"PROTOCOL"` // http | grpc
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
		AllowOrigin  string        `mapstructure:"ALLOW_ORIGIN"`
	} `mapstructure:"HTTP_SERVER"`
	Session struct {
		Name   string        `mapstructure:"NAME"`
		Secret string        `mapstructure:"SECRET"`
		TTL    time.Duration `mapstructure:"TTL"`
		Secure bool          `mapstructure:"SECURE"`
	} `mapstructure:"SESSION"`
	Auth struct {
		BcryptCost int `mapstructure:"BCRYPT_COST"`
		MaxAdmins  int `mapstructure:"MAX_ADMINS"`
	} `mapstructure:"AUTH"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Tracing        bool   `mapstructure:"TRACING"`
		Metrics        bool   `mapstructure:"METRICS"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Redis struct {
		Addr        string        `mapstructure:"ADDR"`
		Password    string        `mapstructure:"PASSWORD"`
		DB          int           `mapstructure:"DB"`
		PoolSize    int           `mapstructure:"POOL_SIZE"`
		PoolTimeout time.Duration `mapstructure:"POOL_TIMEOUT"`
	} `mapstructure:"REDIS"`
	AccessControl struct {
		Model  string `mapstructure:"MODEL"`
		Policy string `mapstructure:"POLICY"`
	} `mapstructure:"ACCESS_CONTROL"`
	Scanner struct {
		Milestones   []int  `mapstructure:"MILESTONES"`
		UrgentCutoff *int   `mapstructure:"URGENT_CUTOFF"`
		Expression   string `mapstructure:"EXPRESSION"`
		Timezone     string `mapstructure:"TIMEZONE"`
	} `mapstructure:"SCANNER"`
	Schedule struct {
		Cron     string `mapstructure:"CRON"`
		Timezone string `mapstructure:"TIMEZONE"`
	} `mapstructure:"SCHEDULE"`
	Notification struct {
		ContactChannels []string `mapstructure:"CONTACT_CHANNELS"`
		SMTP            struct {
			Host     string        `mapstructure:"HOST"`
			Port     int           `mapstructure:"PORT"`
			Username string        `mapstructure:"USERNAME"`
			Password string        `mapstructure:"PASSWORD"`
			From     string        `mapstructure:"FROM"`
			StartTLS bool          `mapstructure:"STARTTLS"`
			Timeout  time.Duration `mapstructure:"TIMEOUT"`
		} `mapstructure:"SMTP"`
		Webhook struct {
			URL     string        `mapstructure:"URL"`
			Timeout time.Duration `mapstructure:"TIMEOUT"`
		} `mapstructure:"WEBHOOK"`
		SNS struct {
			TopicArn  string `mapstructure:"TOPIC_ARN"`
			Region    string `mapstructure:"REGION"`
			Endpoint  string `mapstructure:"ENDPOINT"`
			AccessKey string `mapstructure:"ACCESS_KEY"`
			SecretKey string `mapstructure:"SECRET_KEY"`
		} `mapstructure:"SNS"`
		Kafka struct {
			Addrs       string `mapstructure:"ADDR"`
			TopicPrefix string `mapstructure:"TOPIC_PREFIX"`
		} `mapstructure:"KAFKA"`
	} `mapstructure:"NOTIFICATION"`
	Validation struct {
		CheckMX bool `mapstructure:"CHECK_MX"`
	} `mapstructure:"VALIDATION"`
	Flagsmith struct {
		Addr   string `mapstructure:"ADDR"`
		ApiKey string `mapstructure:"API_KEY"`
	} `mapstructure:"FLAGSMITH"`
	Consul struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"CONSUL"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))
var RemoteModule = fx.Module("remote.config", fx.Provide(LoadRemote))

// Source picks RemoteModule when REMOTE_CONFIG_PROVIDER is set.
func Source() fx.Option {
	if _, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		return RemoteModule
	}
	return Module
}

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

func LoadConfig(p Params) *Config {
	cfg, err := Load(".")
	if err != nil {
		zap.L().Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applySecrets(context.Background(), p.Vault, cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}

	configHolder.Store(cfg)
	return cfg
}

// Load reads config.yaml from dir (when present) and overlays environment variables.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType(configType)
	v.AddConfigPath(dir)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func LoadRemote(p Params) *Config {
	if v, ok := os.LookupEnv("REMOTE_CONFIG_PROVIDER"); ok {
		backend = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_ADDR"); ok {
		backendAddr = v
	}

	if v, ok := os.LookupEnv("REMOTE_CONFIG_PATH"); ok {
		backendPath = v
	}

	remote := viper.New()
	remote.SetConfigType(configType)
	setDefaults(remote)
	if err := remote.AddRemoteProvider(backend, backendAddr, backendPath); err != nil {
		zap.L().Error("invalid remote config provider", zap.String("provider", backend), zap.Error(err))
		os.Exit(1)
	}

	if err := remote.ReadRemoteConfig(); err != nil {
		zap.L().Error("unable to read remote config", zap.String("addr", backendAddr), zap.Error(err))
		os.Exit(1)
	}

	var cfg Config
	if err := remote.Unmarshal(&cfg); err != nil {
		os.Exit(1)
	}

	if p.Vault != nil {
		if err := applySecrets(context.Background(), p.Vault, &cfg); err != nil {
			zap.L().Error("failed get secret from vault", zap.Error(err))
			os.Exit(1)
		}
	}
	configHolder.Store(&cfg)

	go func() {
		for {
			time.Sleep(time.Second * 5)

			if err := remote.WatchRemoteConfig(); err != nil {
				zap.L().Error("unable to read remote config", zap.Error(err))
				continue
			}

			var newcfg Config
			if err := remote.Unmarshal(&newcfg); err != nil {
				continue
			}
			configHolder.Store(&newcfg)
		}
	}()

	return &cfg
}

// Current returns the most recently loaded configuration.
func Current() *Config {
	cfg, _ := configHolder.Load().(*Config)
	return cfg
}

// applySecrets overlays credentials stored in the KV v2 mount under the app env path.
func applySecrets(ctx context.Context, client *vault.Client, cfg *Config) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", cfg.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, cfg.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		return err
	}
	zap.L().Info("Success Get Secret")

	get := func(key, fallback string) string {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			return val
		}
		return fallback
	}

	cfg.Database.User = get("database_user", cfg.Database.User)
	cfg.Database.Password = get("database_password", cfg.Database.Password)
	cfg.Redis.Password = get("redis_password", cfg.Redis.Password)
	cfg.Session.Secret = get("session_secret", cfg.Session.Secret)
	cfg.Notification.SMTP.Password = get("smtp_password", cfg.Notification.SMTP.Password)
	cfg.Notification.Webhook.URL = get("webhook_url", cfg.Notification.Webhook.URL)
	cfg.Notification.SNS.AccessKey = get("aws_access_key", cfg.Notification.SNS.AccessKey)
	cfg.Notification.SNS.SecretKey = get("aws_secret_key", cfg.Notification.SNS.SecretKey)
	cfg.Flagsmith.ApiKey = get("flagsmith_api_key", cfg.Flagsmith.ApiKey)
	return nil
}
