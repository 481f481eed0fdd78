package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

var (
	ServerAddr   string
	DatabasePath string

	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string
	JWTExpireDays int

	OEmbedEndpoint string
	OEmbedTimeout  time.Duration

	AWSRegion string
	S3Bucket  string
)

func Load() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("cmd/config/")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PUREPLAY")
	viper.AutomaticEnv()

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("database.path", "pureplay.db")
	viper.SetDefault("jwt.issuer", "pureplay")
	viper.SetDefault("jwt.audience", "pureplay-clients")
	viper.SetDefault("jwt.expire_days", 7)
	viper.SetDefault("oembed.endpoint", "https://www.youtube.com/oembed")
	viper.SetDefault("oembed.timeout_seconds", 10)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Fatalf("Error reading config file, %s", err)
		}
	}

	ServerAddr = viper.GetString("server.addr")
	DatabasePath = viper.GetString("database.path")

	JWTSecret = viper.GetString("jwt.secret")
	JWTIssuer = viper.GetString("jwt.issuer")
	JWTAudience = viper.GetString("jwt.audience")
	JWTExpireDays = viper.GetInt("jwt.expire_days")

	OEmbedEndpoint = viper.GetString("oembed.endpoint")
	OEmbedTimeout = time.Duration(viper.GetInt("oembed.timeout_seconds")) * time.Second

	AWSRegion = viper.GetString("aws.region")
	S3Bucket = viper.GetString("aws.s3_bucket")

	// Missing signing key is fatal at startup, not per-request.
	if JWTSecret == "" {
		log.Fatal("jwt.secret is not configured")
	}
}
