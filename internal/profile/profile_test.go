package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("RECALL_DSN", "")
	t.Setenv("RECALL_DRIVER", "")
	t.Setenv("RECALL_VECTOR_DRIVER", "")
	t.Setenv("RECALL_EMBEDDING_MODEL", "")

	p := &Profile{}
	p.FromEnv()
	require.Equal(t, "sqlite", p.Driver)
	require.Equal(t, "chromem", p.VectorDriver)
	require.Equal(t, ".", p.Data)
	require.Equal(t, "https://api.openai.com/v1", p.EmbeddingBaseURL)
	require.Equal(t, "text-embedding-3-small", p.EmbeddingModel)
}

func TestFromEnvFlagPrecedence(t *testing.T) {
	t.Setenv("RECALL_DRIVER", "postgres")
	t.Setenv("RECALL_DSN", "postgres://env")

	p := &Profile{Driver: "sqlite", DSN: "/tmp/recall.db"}
	p.FromEnv()
	require.Equal(t, "sqlite", p.Driver)
	require.Equal(t, "/tmp/recall.db", p.DSN)
}

func TestValidate(t *testing.T) {
	t.Run("NormalizesMode", func(t *testing.T) {
		p := &Profile{Driver: "sqlite", DSN: "/tmp/recall.db", VectorDriver: "chromem"}
		require.NoError(t, p.Validate())
		require.Equal(t, "dev", p.Mode)
		require.True(t, p.IsDev())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		p := &Profile{Driver: "mysql", DSN: "x", VectorDriver: "chromem"}
		require.Error(t, p.Validate())
	})

	t.Run("MissingDSN", func(t *testing.T) {
		p := &Profile{Driver: "sqlite", VectorDriver: "chromem"}
		require.Error(t, p.Validate())
	})

	t.Run("PgvectorRequiresPostgres", func(t *testing.T) {
		p := &Profile{Driver: "sqlite", DSN: "/tmp/recall.db", VectorDriver: "pgvector"}
		require.Error(t, p.Validate())

		p = &Profile{Driver: "postgres", DSN: "postgres://x", VectorDriver: "pgvector"}
		require.NoError(t, p.Validate())
	})
}
