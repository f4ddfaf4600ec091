package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dayjobfun/dayjob/backend/go-services/internal/solana"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Solana    SolanaConfig
	IPFS      IPFSConfig
	Mirror    MirrorConfig
	Gating    GatingConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type SolanaConfig struct {
	RPCURL       string
	IndexAddress string
}

type IPFSConfig struct {
	PinataJWT string
	Gateways  []string
}

type MirrorConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type GatingConfig struct {
	TokenMint      string
	RequiredAmount float64
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type AdminConfig struct {
	JWTSecret string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "5001")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("SOLANA_RPC_URL", solana.DefaultRPCURL)
	viper.SetDefault("GATING_REQUIRED_AMOUNT", 1_000_000)
	viper.SetDefault("MINIO_BUCKET", "dayjob-pins")
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       0,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Solana: SolanaConfig{
			RPCURL:       viper.GetString("SOLANA_RPC_URL"),
			IndexAddress: viper.GetString("DAYJOB_INDEX_ADDRESS"),
		},
		IPFS: IPFSConfig{
			PinataJWT: viper.GetString("PINATA_JWT"),
			Gateways:  viper.GetStringSlice("IPFS_GATEWAYS"),
		},
		Mirror: MirrorConfig{
			Endpoint:  viper.GetString("MINIO_ENDPOINT"),
			AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey: viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:    viper.GetBool("MINIO_USE_SSL"),
			Bucket:    viper.GetString("MINIO_BUCKET"),
		},
		Gating: GatingConfig{
			TokenMint:      viper.GetString("GATING_TOKEN_MINT"),
			RequiredAmount: viper.GetFloat64("GATING_REQUIRED_AMOUNT"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Admin: AdminConfig{
			JWTSecret: viper.GetString("ADMIN_JWT_SECRET"),
		},
	}

	return cfg, nil
}
