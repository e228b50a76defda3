package economy

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/greenrush-game/economy-engine/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	DB      database.DBConfig `toml:"db"`
	Economy EconomyConfig     `toml:"economy"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type EconomyConfig struct {
	// Seed for the engine's randomness source; 0 means time-seeded.
	Seed int64 `toml:"seed"`
	// How often the host scheduler should tick the market.
	MarketTickSeconds int `toml:"market_tick_seconds"`
	// Catalog ids bulk orders may request.
	OrderProducts []string `toml:"order_products"`
}

// DefaultEconomyConfig returns the canonical tunables.
func DefaultEconomyConfig() EconomyConfig {
	return EconomyConfig{
		MarketTickSeconds: 60,
	}
}
