package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config структура конфигурации приложения
type Config struct {
	Server struct {
		Port        int
		Host        string
		GRPCPort    int
		Environment string
	}
	Database struct {
		Host     string
		Port     string
		Name     string
		User     string
		Password string
		SSLMode  string
	}
	VisionAPI struct {
		BaseURL string
		Timeout int // в секундах
	}
	Obstacle struct {
		CooldownMs int
		Labels     []string
	}
	Logging struct {
		Level string
	}
}

// LoadConfig загружает конфигурацию из переменных окружения и необязательного config.yaml
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Файл конфигурации необязателен
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return fromViper(v), nil
}

// setDefaults задает значения по умолчанию
func setDefaults(v *viper.Viper) {
	// Конфигурация сервера
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 9090)
	v.SetDefault("server.environment", "development")

	// Конфигурация базы данных
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "iris")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres123")
	v.SetDefault("db.ssl_mode", "disable")

	// Конфигурация сервиса описания сцены
	v.SetDefault("vision_api.base_url", "http://localhost:8000")
	v.SetDefault("vision_api.timeout_seconds", 30)

	// Препятствия
	v.SetDefault("obstacle.cooldown_ms", 1000)
	v.SetDefault("obstacle.labels", []string{})

	// Конфигурация логирования
	v.SetDefault("log.level", "info")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.Host = v.GetString("server.host")
	cfg.Server.GRPCPort = v.GetInt("server.grpc_port")
	cfg.Server.Environment = v.GetString("server.environment")

	cfg.Database.Host = v.GetString("db.host")
	cfg.Database.Port = v.GetString("db.port")
	cfg.Database.Name = v.GetString("db.name")
	cfg.Database.User = v.GetString("db.user")
	cfg.Database.Password = v.GetString("db.password")
	cfg.Database.SSLMode = v.GetString("db.ssl_mode")

	cfg.VisionAPI.BaseURL = v.GetString("vision_api.base_url")
	cfg.VisionAPI.Timeout = v.GetInt("vision_api.timeout_seconds")

	cfg.Obstacle.CooldownMs = v.GetInt("obstacle.cooldown_ms")
	cfg.Obstacle.Labels = stringList(v, "obstacle.labels")

	cfg.Logging.Level = v.GetString("log.level")

	return cfg
}

// stringList читает список строк. Значение из окружения разделяется запятыми,
// так как метки могут содержать пробелы ("Dining Table").
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Cooldown период охлаждения оповещений
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Obstacle.CooldownMs) * time.Millisecond
}

// VisionTimeout таймаут запросов к сервису описания сцены
func (c *Config) VisionTimeout() time.Duration {
	return time.Duration(c.VisionAPI.Timeout) * time.Second
}
