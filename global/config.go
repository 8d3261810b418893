package global

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the gateway process. Values come from the
// environment with the VCHAT_ prefix, e.g. VCHAT_REDIS_ADDR.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":8080"`
	GatewayID  string `envconfig:"GATEWAY_ID" default:"gateway_01"`

	// Comma-separated Origin allow list for browser clients; empty
	// accepts everything (non-browser clients send no Origin header).
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:""`

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"20"`

	// Empty NatsURL disables the presence event feed.
	NatsURL string `envconfig:"NATS_URL" default:""`

	JWTSecret string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	// Staleness bounds for the external cache; see the presence store.
	TypingTTL   time.Duration `envconfig:"TYPING_TTL" default:"5s"`
	StatusTTL   time.Duration `envconfig:"STATUS_TTL" default:"300s"`
	CallRoomTTL time.Duration `envconfig:"CALL_ROOM_TTL" default:"3600s"`
	LocationTTL time.Duration `envconfig:"LOCATION_TTL" default:"3600s"`

	WriteWait     time.Duration `envconfig:"WRITE_WAIT" default:"10s"`
	PingInterval  time.Duration `envconfig:"PING_INTERVAL" default:"25s"`
	FanoutWorkers int           `envconfig:"FANOUT_WORKERS" default:"4"`
	FanoutQueue   int           `envconfig:"FANOUT_QUEUE" default:"1024"`
	NearbyLimit   int           `envconfig:"NEARBY_LIMIT" default:"50"`

	SnowflakeNode int64 `envconfig:"SNOWFLAKE_NODE" default:"1"`
}

func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("vchat", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		panic(err)
	}
	return c
}
