package main

import (
	"strings"

	"github.com/spf13/cobra"

	memorysvc "github.com/hrygo/recall/server/service/memory"
	"github.com/hrygo/recall/store"
)

// memoryJSON is the CLI rendering of a memory record.
type memoryJSON struct {
	ID        string `json:"id"`
	UserID    int32  `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	Sync      string `json:"sync,omitempty"`
}

func toMemoryJSON(m *store.Memory, sync string) memoryJSON {
	return memoryJSON{
		ID:        m.ID,
		UserID:    m.CreatorID,
		Content:   m.Content,
		CreatedAt: m.CreatedTs,
		UpdatedAt: m.UpdatedTs,
		Sync:      sync,
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the acting user's memories",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			memories, err := e.service.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			out := make([]memoryJSON, 0, len(memories))
			for _, m := range memories {
				out = append(out, toMemoryJSON(m, ""))
			}
			return printJSON(out)
		},
	}
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <content>",
		Short: "Add a memory and mirror it into the vector index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.service.Create(cmd.Context(), userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printJSON(toMemoryJSON(result.Memory, result.Sync.String()))
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <content>",
		Short: "Replace a memory's content and re-embed it",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.service.Update(cmd.Context(), args[0], userID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(toMemoryJSON(result.Memory, result.Sync.String()))
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a memory and its vector entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			sync, err := e.service.Delete(cmd.Context(), args[0], userID)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"deleted": args[0], "sync": sync.String()})
		},
	}
}

func newDeleteAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every memory of the acting user",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			sync, err := e.service.DeleteAll(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{"sync": sync.String()})
		},
	}
}

func newQueryCmd() *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Semantic search over the acting user's memories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			results, err := e.service.Query(cmd.Context(), userID, strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			type hit struct {
				ID      string  `json:"id"`
				Content string  `json:"content"`
				Score   float32 `json:"score"`
			}
			out := make([]hit, 0, len(results))
			for _, r := range results {
				out = append(out, hit{ID: r.ID, Content: r.Text, Score: r.Score})
			}
			return printJSON(out)
		},
	}
	cmd.Flags().IntVarP(&k, "limit", "k", memorysvc.DefaultQueryLimit, "maximum number of results")
	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Rebuild the acting user's vector collection from the relational store",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := actingUser()
			if err != nil {
				return err
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.service.Reset(cmd.Context(), userID); err != nil {
				return err
			}
			return printJSON(map[string]bool{"reset": true})
		},
	}
}

func newEmbedCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed-check",
		Short: "Verify the embedding gateway by embedding a test phrase",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			result, err := e.provider.Embed(cmd.Context(), "hello world", 0)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"result": result})
		},
	}
}
