package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	RateLimit     string

	// Combination search limits. These bound the receipt combination
	// selector so a single request cannot run unbounded.
	CombinationMaxSize      int
	CombinationCandidateCap int
	CombinationResultCap    int
	CombinationNodeBudget   int
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("COMBINATION_MAX_SIZE", 8)
	viper.SetDefault("COMBINATION_CANDIDATE_CAP", 200)
	viper.SetDefault("COMBINATION_RESULT_CAP", 100)
	viper.SetDefault("COMBINATION_NODE_BUDGET", 2000000)

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.CombinationMaxSize = viper.GetInt("COMBINATION_MAX_SIZE")
	cfg.CombinationCandidateCap = viper.GetInt("COMBINATION_CANDIDATE_CAP")
	cfg.CombinationResultCap = viper.GetInt("COMBINATION_RESULT_CAP")
	cfg.CombinationNodeBudget = viper.GetInt("COMBINATION_NODE_BUDGET")

	return cfg, nil
}
