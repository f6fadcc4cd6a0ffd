package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the shly client.
// It registers the review and items command groups.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "shly",
		Short: "shly client commands",
	}
	root.AddCommand(NewReviewCommand(baseURL))
	root.AddCommand(NewItemsCommand(baseURL))
	return root
}
