package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Host   string `env:"ADDR" envDefault:"0.0.0.0"`
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Discord struct {
		BotToken      string `env:"TOKEN,required"`
		GuildID       string `env:"GUILD_ID,required"`
		RoleID        string `env:"ROLE_ID,required"`
		CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	}

	Verification struct {
		FrontendURL string `env:"FRONTEND_URL,required"`

		// TokenTTL bounds how long an issued token stays consumable.
		// Zero disables expiry.
		TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
		QueueSize int           `env:"SUBMISSION_QUEUE_SIZE" envDefault:"64"`
	}

	Allowlist struct {
		SubgraphURL     string        `env:"SUBGRAPH_URL" envDefault:"https://api.thegraph.com/subgraphs/name/graphprotocol/graph-network-arbitrum"`
		PageSize        int           `env:"ALLOWLIST_PAGE_SIZE" envDefault:"1000"`
		RefreshInterval time.Duration `env:"ALLOWLIST_REFRESH_INTERVAL" envDefault:"15m"`
	}
}

func Load() (*Config, error) {
	// Ignore a missing .env file; in production the variables are set
	// directly in the environment.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
