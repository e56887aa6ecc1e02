package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/server/ai"
	memorysvc "github.com/hrygo/recall/server/service/memory"
	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/store/db"
	"github.com/hrygo/recall/vector"
	"github.com/hrygo/recall/vector/chromemindex"
	"github.com/hrygo/recall/vector/pgvectorindex"
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:          "recall",
	Short:        "Per-user memory service with relational/vector dual-write",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	viper.SetEnvPrefix("recall")
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.String("mode", "dev", `mode of the service, can be "prod" or "dev"`)
	pf.String("data", ".", "data directory for embedded backends")
	pf.String("driver", "sqlite", "database driver (sqlite or postgres)")
	pf.String("dsn", "", "database source name")
	pf.String("memories-dsn", "", "DSN of the externally-managed memories database")
	pf.String("vector-driver", "chromem", "vector index backend (chromem or pgvector)")
	pf.Int32P("user", "u", 0, "acting user id")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "memories-dsn", "vector-driver", "user"} {
		if err := viper.BindPFlag(flag, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(
		newListCmd(),
		newAddCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newDeleteAllCmd(),
		newQueryCmd(),
		newResetCmd(),
		newEmbedCheckCmd(),
		newExternalCmd(),
	)
}

// env bundles everything a subcommand needs.
type env struct {
	profile  *profile.Profile
	store    *store.Store
	provider *ai.Provider
	service  memorysvc.Service
}

func (e *env) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:         viper.GetString("mode"),
		Data:         viper.GetString("data"),
		Driver:       viper.GetString("driver"),
		DSN:          viper.GetString("dsn"),
		MemoriesDSN:  viper.GetString("memories-dsn"),
		VectorDriver: viper.GetString("vector-driver"),
		Version:      version,
	}
	p.FromEnv()
	if p.DSN == "" && p.Driver == "sqlite" {
		p.DSN = filepath.Join(p.Data, "recall.db")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func setupLogger(p *profile.Profile) {
	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

func newEnv(cmd *cobra.Command) (*env, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	setupLogger(p)

	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	memoryStore := store.New(driver, p)
	if err := memoryStore.Migrate(cmd.Context()); err != nil {
		memoryStore.Close()
		return nil, err
	}

	var index vector.Index
	switch p.VectorDriver {
	case "pgvector":
		pgIndex := pgvectorindex.New(memoryStore.GetDriver().GetDB())
		if err := pgIndex.Migrate(cmd.Context()); err != nil {
			memoryStore.Close()
			return nil, err
		}
		index = pgIndex
	default:
		chromemIndex, err := chromemindex.NewPersistent(filepath.Join(p.Data, "vector"))
		if err != nil {
			memoryStore.Close()
			return nil, err
		}
		index = chromemIndex
	}

	provider, err := ai.NewProvider(ai.ConfigFromProfile(p))
	if err != nil {
		memoryStore.Close()
		return nil, err
	}

	return &env{
		profile:  p,
		store:    memoryStore,
		provider: provider,
		service:  memorysvc.NewService(memoryStore, index, provider, slog.Default()),
	}, nil
}

func actingUser() (int32, error) {
	userID := viper.GetInt32("user")
	if userID <= 0 {
		return 0, fmt.Errorf("a positive --user id is required")
	}
	return userID, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
