package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"
)

type Configs struct {
	Env      string
	LogLevel string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Post      PostConfigs
	Feed      FeedConfigs
	Reward    RewardConfigs
	Payment   PaymentConfigs
	Redis     RedisConfigs
	Kafka     KafkaConfigs
	Storage   StorageConfigs
	File      FileConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = d.Host + ":" + d.Port
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.MultiStatements = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

type ServerConfigs struct {
	Host           string
	Port           string
	AllowedOrigins []string

	MaxLimit     int
	DefaultLimit int

	// RateLimit is the number of requests per second allowed for one client.
	RateLimit float64
	RateBurst int
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type PostConfigs struct {
	MaxContentLength  int
	MaxCritiqueLength int
}

type FeedConfigs struct {
	// Limit is the maximum number of entries of a feed.
	Limit int

	// Window bounds how many direct posts and how many reposts are read from
	// the store before merging.
	Window int
}

type RewardConfigs struct {
	MinAmount           int64
	MaxAmount           int64
	Currency            string
	SettleRetryInterval time.Duration
	CaptureLockTTL      time.Duration
}

type PaymentConfigs struct {
	// Provider is either "stripe" or "sandbox".
	Provider  string
	Endpoint  string
	SecretKey string
	Timeout   time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr     string
	ClientID string
	GroupID  string
}

type StorageConfigs struct {
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	Region         string
	Bucket         string
	SSLDisabled    bool
}

type FileConfigs struct {
	MaxSize      int
	MaxDimension uint
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Host:     "localhost",
			Port:     "3306",
			Database: "tensaku",
			User:     "mysql",
		},
		ApiServer: ServerConfigs{
			Host:           "",
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173"},
			MaxLimit:       50,
			DefaultLimit:   50,
			RateLimit:      20,
			RateBurst:      40,
		},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
		},
		Post: PostConfigs{
			MaxContentLength:  500,
			MaxCritiqueLength: 1000,
		},
		Feed: FeedConfigs{
			Limit:  50,
			Window: 200,
		},
		Reward: RewardConfigs{
			MinAmount:           100,
			MaxAmount:           10000,
			Currency:            "jpy",
			SettleRetryInterval: time.Minute,
			CaptureLockTTL:      10 * time.Minute,
		},
		Payment: PaymentConfigs{
			Provider: "sandbox",
			Endpoint: "https://api.stripe.com",
			Timeout:  30 * time.Second,
		},
		Redis: RedisConfigs{
			Addr: "localhost:6379",
		},
		Kafka: KafkaConfigs{
			Addr:     "localhost:9092",
			ClientID: "tensaku-api",
			GroupID:  "tensaku-settler",
		},
		Storage: StorageConfigs{
			Region: "auto",
			Bucket: "images",
		},
		File: FileConfigs{
			MaxSize:      10 * 1024 * 1024,
			MaxDimension: 2048,
		},
	}
}

// Load reads the toml file on top of the default configs. Secrets may be
// given by environment variables, which take precedence over the file.
func Load(path string) (Configs, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Payment.SecretKey, "PAYMENT_SECRET_KEY")
	overrideString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")

	return cfg, nil
}

func overrideString(target *string, env string) {
	if value, ok := os.LookupEnv(env); ok {
		*target = value
	}
}
