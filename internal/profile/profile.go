package profile

import (
	"os"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the recall service.
type Profile struct {
	// Mode can be "prod" or "dev"
	Mode string
	// Data is the data directory for embedded backends
	Data string
	// Driver is the database driver for the first-party memory store
	// (sqlite or postgres)
	Driver string
	// DSN points to where recall stores its own data
	DSN string
	// MemoriesDSN points to the externally-managed memories database.
	// Empty means the external adapter is not configured.
	MemoriesDSN string
	// VectorDriver selects the vector index backend (chromem or pgvector).
	// pgvector reuses DSN and requires the postgres driver.
	VectorDriver string
	// Version is the current version of the service
	Version string

	// Embedding gateway configuration
	EmbeddingBaseURL string // RECALL_EMBEDDING_BASE_URL (default: https://api.openai.com/v1)
	EmbeddingAPIKey  string // RECALL_EMBEDDING_API_KEY
	EmbeddingModel   string // RECALL_EMBEDDING_MODEL (default: text-embedding-3-small)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from RECALL_* environment variables.
// Values already set on the profile (e.g. from flags) take precedence.
func (p *Profile) FromEnv() {
	if p.DSN == "" {
		p.DSN = os.Getenv("RECALL_DSN")
	}
	if p.MemoriesDSN == "" {
		p.MemoriesDSN = os.Getenv("RECALL_MEMORIES_DSN")
	}
	if p.Driver == "" {
		p.Driver = getEnvOrDefault("RECALL_DRIVER", "sqlite")
	}
	if p.Data == "" {
		p.Data = getEnvOrDefault("RECALL_DATA", ".")
	}
	if p.VectorDriver == "" {
		p.VectorDriver = getEnvOrDefault("RECALL_VECTOR_DRIVER", "chromem")
	}
	p.EmbeddingBaseURL = getEnvOrDefault("RECALL_EMBEDDING_BASE_URL", "https://api.openai.com/v1")
	p.EmbeddingAPIKey = os.Getenv("RECALL_EMBEDDING_API_KEY")
	p.EmbeddingModel = getEnvOrDefault("RECALL_EMBEDDING_MODEL", "text-embedding-3-small")
}

// Validate normalizes the profile and rejects unusable combinations.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	switch p.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unknown db driver %q: only 'postgres' and 'sqlite' are supported", p.Driver)
	}

	if p.DSN == "" {
		return errors.New("dsn is required")
	}

	switch p.VectorDriver {
	case "chromem":
	case "pgvector":
		if p.Driver != "postgres" {
			return errors.New("pgvector vector driver requires the postgres db driver")
		}
	default:
		return errors.Errorf("unknown vector driver %q: only 'chromem' and 'pgvector' are supported", p.VectorDriver)
	}

	return nil
}
