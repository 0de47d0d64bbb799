package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `env:"ENV" env-required:"true"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer HttpServer
	Database   Database
	Limiter    Limiter
	Auth       AuthConfig
	SMTP       SMTPConfig
	Email      EmailConfig
	Cache      Cache
	CheckIn    CheckInConfig
	Storage    StorageConfig
	Assistant  AssistantConfig
}

type HttpServer struct {
	Port           string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout        time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	SwaggerEnabled bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	AllowedOrigins []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT                    JWTConfig
	PasswordSalt           string `env:"AUTH_PASSWORD_SALT" env-required:"true"`
	VerificationCodeLength int    `env:"AUTH_VERIFICATION_CODE_LENGTH" env-default:"6"`
}

type JWTConfig struct {
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"240h"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-required:"true"`
	Port int    `env:"SMTP_PORT" env-required:"true"`
	From string `env:"SMTP_FROM" env-required:"true"`
	Pass string `env:"SMTP_PASS" env-required:"true"`
}

type EmailConfig struct {
	Enabled   bool   `env:"EMAIL_ENABLED" env-default:"false"`
	BaseURL   string `env:"EMAIL_BASE_URL" env-default:"http://localhost:8080" env-description:"public base url embedded in email links"`
	Templates EmailTemplates
}

type EmailTemplates struct {
	Verification string `env:"EMAIL_TEMPLATE_VERIFICATION" env-default:"verification_code.html"`
	CheckIn      string `env:"EMAIL_TEMPLATE_CHECK_IN" env-default:"checkin_weekly.html"`
	Invitation   string `env:"EMAIL_TEMPLATE_INVITATION" env-default:"contact_invitation.html"`
	DeathOTP     string `env:"EMAIL_TEMPLATE_DEATH_OTP" env-default:"death_verification_otp.html"`
	WillReleased string `env:"EMAIL_TEMPLATE_WILL_RELEASED" env-default:"will_released.html"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

type CheckInConfig struct {
	Period          time.Duration `env:"CHECK_IN_PERIOD" env-default:"168h" env-description:"time between liveness check-ins"`
	CronSpec        string        `env:"CHECK_IN_CRON" env-default:"0 9 * * 1" env-description:"cron spec for the weekly sweep"`
	TokenTTL        time.Duration `env:"CHECK_IN_TOKEN_TTL" env-default:"168h"`
	QuorumThreshold int           `env:"CHECK_IN_QUORUM_THRESHOLD" env-default:"5" env-description:"confirmations required to release wills, clamped to verifier count"`
	QuorumWindow    time.Duration `env:"CHECK_IN_QUORUM_WINDOW" env-default:"720h"`
	OTPTTL          time.Duration `env:"CHECK_IN_OTP_TTL" env-default:"168h"`
	OTPCodeLength   int           `env:"CHECK_IN_OTP_CODE_LENGTH" env-default:"6"`
}

type StorageConfig struct {
	Region     string        `env:"S3_REGION" env-default:"us-east-1"`
	Endpoint   string        `env:"S3_ENDPOINT" env-default:""`
	Bucket     string        `env:"S3_BUCKET" env-default:"everkeep-documents"`
	AccessKey  string        `env:"S3_ACCESS_KEY" env-default:""`
	SecretKey  string        `env:"S3_SECRET_KEY" env-default:""`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" env-default:"15m"`
}

type AssistantConfig struct {
	Enabled bool   `env:"ASSISTANT_ENABLED" env-default:"false"`
	BaseURL string `env:"ASSISTANT_BASE_URL" env-default:"https://api.openai.com/v1"`
	APIKey  string `env:"ASSISTANT_API_KEY" env-default:""`
	Model   string `env:"ASSISTANT_MODEL" env-default:"gpt-4o-mini"`
}

func MustLoad() *Config {
	var cfg Config

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
