package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Client holds configuration for the dicechat terminal client.
type Client struct {
	ServerURL    string        `env:"DICECHAT_SERVER_URL,    default=http://localhost:8080"`
	Room         string        `env:"DICECHAT_ROOM,          default=main"`
	PollInterval time.Duration `env:"DICECHAT_POLL_INTERVAL, default=3s"`
	CredentialDB string        `env:"DICECHAT_CREDENTIAL_DB, default=dicechat.db"`
	LogLevel     string        `env:"LOG_LEVEL,              default=info"`
	LogPretty    bool          `env:"LOG_PRETTY,             default=true"`
}

// Server holds configuration for the bundled development server.
type Server struct {
	Port      string        `env:"PORT,        default=8080"`
	JWTSecret string        `env:"JWT_SECRET,  default=dicechat-dev-secret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL,   default=24h"`
	DBPath    string        `env:"DICECHAT_DB, default=dicechat-server.db"`
	LogLevel  string        `env:"LOG_LEVEL,   default=info"`
	LogPretty bool          `env:"LOG_PRETTY,  default=false"`
}

// LoadClient reads client configuration from environment variables.
func LoadClient() *Client {
	var cfg Client
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load client configuration: %v", err))
	}
	return &cfg
}

// LoadServer reads server configuration from environment variables.
func LoadServer() *Server {
	var cfg Server
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load server configuration: %v", err))
	}
	return &cfg
}
