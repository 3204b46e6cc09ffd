package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ProviderConfig 单个价格数据源配置
type ProviderConfig struct {
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Config 应用配置
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
		URL  string `yaml:"url"` // 通知内容里的预订跳转地址
	} `yaml:"app"`

	Providers struct {
		Amadeus    ProviderConfig `yaml:"amadeus"`
		Skyscanner ProviderConfig `yaml:"skyscanner"`
		Booking    ProviderConfig `yaml:"booking"`
		Hertz      ProviderConfig `yaml:"hertz"`
	} `yaml:"providers"`

	Database struct {
		Postgres struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	SMTP struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		User string `yaml:"user"`
		Pass string `yaml:"pass"`
		From string `yaml:"from"`
	} `yaml:"smtp"`

	Twilio struct {
		AccountSID string `yaml:"account_sid"`
		AuthToken  string `yaml:"auth_token"`
		FromNumber string `yaml:"from_number"`
		BaseURL    string `yaml:"base_url"`
	} `yaml:"twilio"`

	Alerts struct {
		CronSpec     string        `yaml:"cron_spec"`     // 默认每天 9:00
		Timezone     string        `yaml:"timezone"`      // cron 使用的时区
		CheckDelay   time.Duration `yaml:"check_delay"`   // 相邻提醒之间的间隔
		FetchTimeout time.Duration `yaml:"fetch_timeout"` // 单次价格查询超时
	} `yaml:"alerts"`

	API struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"api"`
}

// LoadConfig 从文件加载配置
func LoadConfig(path string) (*Config, error) {
	// 读取配置文件
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	// 解析YAML
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 环境变量覆盖
	overrideFromEnv(&config)

	// 缺省值
	applyDefaults(&config)

	return &config, nil
}

// overrideFromEnv 使用环境变量覆盖配置
func overrideFromEnv(config *Config) {
	// 应用配置
	if env := os.Getenv("APP_NAME"); env != "" {
		config.App.Name = env
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.App.Env = env
	}
	if env := os.Getenv("APP_URL"); env != "" {
		config.App.URL = env
	}

	// 数据源配置
	if env := os.Getenv("AMADEUS_API_KEY"); env != "" {
		config.Providers.Amadeus.APIKey = env
	}
	if env := os.Getenv("AMADEUS_API_SECRET"); env != "" {
		config.Providers.Amadeus.APISecret = env
	}
	if env := os.Getenv("SKYSCANNER_API_KEY"); env != "" {
		config.Providers.Skyscanner.APIKey = env
	}
	if env := os.Getenv("BOOKING_API_KEY"); env != "" {
		config.Providers.Booking.APIKey = env
	}
	if env := os.Getenv("HERTZ_API_KEY"); env != "" {
		config.Providers.Hertz.APIKey = env
	}

	// 数据库配置
	if env := os.Getenv("DB_HOST"); env != "" {
		config.Database.Postgres.Host = env
	}
	if env := os.Getenv("DB_PORT"); env != "" {
		var port int
		fmt.Sscanf(env, "%d", &port)
		if port > 0 {
			config.Database.Postgres.Port = port
		}
	}
	if env := os.Getenv("DB_USER"); env != "" {
		config.Database.Postgres.User = env
	}
	if env := os.Getenv("DB_PASSWORD"); env != "" {
		config.Database.Postgres.Password = env
	}
	if env := os.Getenv("DB_NAME"); env != "" {
		config.Database.Postgres.DBName = env
	}

	// NATS配置
	if env := os.Getenv("NATS_URL"); env != "" {
		config.NATS.URL = env
	}

	// 通知渠道配置
	if env := os.Getenv("SMTP_HOST"); env != "" {
		config.SMTP.Host = env
	}
	if env := os.Getenv("SMTP_USER"); env != "" {
		config.SMTP.User = env
	}
	if env := os.Getenv("SMTP_PASS"); env != "" {
		config.SMTP.Pass = env
	}
	if env := os.Getenv("SMTP_FROM"); env != "" {
		config.SMTP.From = env
	}
	if env := os.Getenv("TWILIO_ACCOUNT_SID"); env != "" {
		config.Twilio.AccountSID = env
	}
	if env := os.Getenv("TWILIO_AUTH_TOKEN"); env != "" {
		config.Twilio.AuthToken = env
	}
	if env := os.Getenv("TWILIO_PHONE"); env != "" {
		config.Twilio.FromNumber = env
	}

	// API配置
	if env := os.Getenv("API_PORT"); env != "" {
		config.API.Port = env
	}
}

// applyDefaults 填充未配置的缺省值
func applyDefaults(config *Config) {
	if config.Alerts.CronSpec == "" {
		config.Alerts.CronSpec = "0 9 * * *" // 每天上午9点
	}
	if config.Alerts.CheckDelay == 0 {
		config.Alerts.CheckDelay = 2 * time.Second
	}
	if config.Alerts.FetchTimeout == 0 {
		config.Alerts.FetchTimeout = 10 * time.Second
	}
	if config.API.Port == "" {
		config.API.Port = "8080"
	}
	if config.SMTP.Port == 0 {
		config.SMTP.Port = 587
	}
	if config.Twilio.BaseURL == "" {
		config.Twilio.BaseURL = "https://api.twilio.com"
	}
}

// GetDefaultConfigPath 获取默认配置文件路径
func GetDefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev" // 默认开发环境
	}

	return fmt.Sprintf("configs/%s/app.yaml", env)
}
