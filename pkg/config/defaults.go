package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so AutomaticEnv can override values that are
// absent from config.yaml.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("app_name", "license-tracker")
	v.SetDefault("app_version", "dev")
	v.SetDefault("log_level", "")
	v.SetDefault("node_id", 1)

	v.SetDefault("tls.enable", false)
	v.SetDefault("tls.cert_path", "")
	v.SetDefault("tls.key_path", "")

	v.SetDefault("otel.addr", "")
	v.SetDefault("otel.protocol", "http")
	v.SetDefault("pyroscope.addr", "")

	v.SetDefault("http_server.addr", "8080")
	v.SetDefault("http_server.read_timeout", 15*time.Second)
	v.SetDefault("http_server.write_timeout", 15*time.Second)
	v.SetDefault("http_server.idle_timeout", 60*time.Second)
	v.SetDefault("http_server.allow_origin", "*")

	v.SetDefault("session.name", "license_session")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("auth.bcrypt_cost", 0)
	v.SetDefault("auth.max_admins", 3)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.dbname", "licenses.db")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.tracing", false)
	v.SetDefault("database.metrics", false)
	v.SetDefault("database.connection_pool.max_idle_conn", 5)
	v.SetDefault("database.connection_pool.max_open_conns", 20)
	v.SetDefault("database.connection_pool.conn_max_lifetime", time.Hour)
	v.SetDefault("database.connection_pool.conn_max_idle_time", 10*time.Minute)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	v.SetDefault("access_control.model", "")
	v.SetDefault("access_control.policy", "")

	v.SetDefault("scanner.milestones", []int{45, 30, 15, 7, 1})
	v.SetDefault("scanner.urgent_cutoff", nil)
	v.SetDefault("scanner.expression", "")
	v.SetDefault("scanner.timezone", "Asia/Dhaka")

	v.SetDefault("schedule.cron", "15 10 * * *")
	v.SetDefault("schedule.timezone", "Asia/Dhaka")

	v.SetDefault("notification.contact_channels", []string{"email"})
	v.SetDefault("notification.smtp.host", "smtp.gmail.com")
	v.SetDefault("notification.smtp.port", 587)
	v.SetDefault("notification.smtp.username", "")
	v.SetDefault("notification.smtp.password", "")
	v.SetDefault("notification.smtp.from", "")
	v.SetDefault("notification.smtp.starttls", true)
	v.SetDefault("notification.smtp.timeout", 15*time.Second)
	v.SetDefault("notification.webhook.url", "")
	v.SetDefault("notification.webhook.timeout", 10*time.Second)
	v.SetDefault("notification.sns.topic_arn", "")
	v.SetDefault("notification.sns.region", "us-east-1")
	v.SetDefault("notification.sns.endpoint", "")
	v.SetDefault("notification.sns.access_key", "")
	v.SetDefault("notification.sns.secret_key", "")
	v.SetDefault("notification.kafka.addr", "")
	v.SetDefault("notification.kafka.topic_prefix", "license-alerts")

	v.SetDefault("validation.check_mx", false)

	v.SetDefault("flagsmith.addr", "")
	v.SetDefault("flagsmith.api_key", "")
	v.SetDefault("consul.addr", "")
}
