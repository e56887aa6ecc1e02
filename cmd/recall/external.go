package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/recall/externaldb"
)

func openExternal() (*externaldb.Adapter, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	setupLogger(p)
	return externaldb.Open(p)
}

func newExternalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "external",
		Short: "Operate on the externally-managed memories table",
	}
	cmd.AddCommand(
		newExternalListCmd(),
		newExternalAddCmd(),
		newExternalUpdateCmd(),
		newExternalDeleteCmd(),
	)
	return cmd
}

func newExternalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rows of the external memories table",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openExternal()
			if err != nil {
				return err
			}
			defer adapter.Close()

			list, err := adapter.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(list)
		},
	}
}

func newExternalAddCmd() *cobra.Command {
	var category string
	var importance int64
	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Insert a row into the external memories table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := openExternal()
			if err != nil {
				return err
			}
			defer adapter.Close()

			create := &externaldb.CreateExternalMemory{Content: strings.Join(args, " ")}
			if cmd.Flags().Changed("category") {
				create.Category = &category
			}
			if cmd.Flags().Changed("importance") {
				create.Importance = &importance
			}

			record, err := adapter.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return printJSON(record)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category of the memory")
	cmd.Flags().Int64Var(&importance, "importance", 0, "importance of the memory")
	return cmd
}

func newExternalUpdateCmd() *cobra.Command {
	var content, category string
	var importance int64
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a row of the external memories table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}

			adapter, err := openExternal()
			if err != nil {
				return err
			}
			defer adapter.Close()

			update := &externaldb.UpdateExternalMemory{}
			if cmd.Flags().Changed("content") {
				update.Content = &content
			}
			if cmd.Flags().Changed("category") {
				update.Category = &category
			}
			if cmd.Flags().Changed("importance") {
				update.Importance = &importance
			}

			record, err := adapter.Update(cmd.Context(), id, update)
			if err != nil {
				return err
			}
			return printJSON(record)
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().Int64Var(&importance, "importance", 0, "new importance")
	return cmd
}

func newExternalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a row of the external memories table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}

			adapter, err := openExternal()
			if err != nil {
				return err
			}
			defer adapter.Close()

			if err := adapter.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return printJSON(map[string]bool{"deleted": true})
		},
	}
}
