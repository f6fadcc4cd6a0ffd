package client

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewItemsCommand constructs the `items` command group.
func NewItemsCommand(baseURL BaseURLFunc) *cobra.Command {
	itemsCmd := &cobra.Command{Use: "items", Short: "Item list administration"}
	itemsCmd.AddCommand(newItemsImportCommand(baseURL), newItemsListCommand(baseURL))
	return itemsCmd
}

// newItemsImportCommand constructs the `items import` subcommand.
func newItemsImportCommand(baseURL BaseURLFunc) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: `Import a text list ("url | label" per line); existing keys are kept`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := newTransport(baseURL).ImportItems(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported: %d\n", n)
			return nil
		},
	}
	importCmd.Flags().String("file", "profiles.txt", "List file to import")
	return importCmd
}

// newItemsListCommand constructs the `items list` subcommand.
func newItemsListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			list, err := newTransport(baseURL).ListItems(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, it := range list.Items {
				mark := " "
				if it.Retired {
					mark = "x"
				}
				if it.Label != "" {
					fmt.Fprintf(out, "[%s] %s | %s\n", mark, it.Key, it.Label)
				} else {
					fmt.Fprintf(out, "[%s] %s\n", mark, it.Key)
				}
			}
			fmt.Fprintf(out, "total: %d\n", list.Total)
			return nil
		},
	}
	listCmd.Flags().Int("limit", 0, "Show at most N items (0 = all)")
	return listCmd
}
