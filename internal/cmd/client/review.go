package client

import (
	"encoding/json"
	"fmt"

	transports "github.com/MagicGod/shly/internal/cmd/client/transports"
	"github.com/spf13/cobra"
)

// NewReviewCommand constructs the `review` command group and subcommands.
// Every subcommand acts as the consumer given by --consumer (default
// $SHLY_CONSUMER, then $USER).
func NewReviewCommand(baseURL BaseURLFunc) *cobra.Command {
	reviewCmd := &cobra.Command{Use: "review", Short: "Review queue operations"}
	reviewCmd.PersistentFlags().String("consumer", consumerFromEnv(), "Reviewer identity")

	reviewCmd.AddCommand(
		newReviewStartCommand(baseURL),
		newReviewSkipCommand(baseURL),
		newReviewStatusCommand(baseURL),
		newReviewAcceptedCommand(baseURL),
		newReviewVerdictCommand(baseURL, "accept", "Accept the current item (keeps it listed)"),
		newReviewVerdictCommand(baseURL, "reject", "Reject the current item (removes it from the list)"),
		newReviewWatchCommand(baseURL),
	)
	return reviewCmd
}

func consumerFlag(cmd *cobra.Command) string {
	c, _ := cmd.Flags().GetString("consumer")
	return c
}

// newReviewStartCommand constructs the `review start` subcommand.
func newReviewStartCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start (or restart) reviewing with a freshly shuffled queue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := newTransport(baseURL).Start(cmd.Context(), consumerFlag(cmd))
			if err != nil {
				return err
			}
			if res.Queued == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No items available. The list is empty or every item was already reviewed.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started! Items in queue: %d\n", res.Queued)
			return nil
		},
	}
}

// newReviewSkipCommand constructs the `review skip` subcommand.
func newReviewSkipCommand(baseURL BaseURLFunc) *cobra.Command {
	skipCmd := &cobra.Command{
		Use:   "skip",
		Short: "Skip the current item without judging it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTransport(baseURL)
			consumer := consumerFlag(cmd)
			pid, err := presentationFor(cmd, t, consumer)
			if err != nil {
				return err
			}
			res, err := t.Skip(cmd.Context(), consumer, pid)
			if err != nil {
				return err
			}
			if res.Status == "ignored" {
				fmt.Fprintln(cmd.OutOrStdout(), "Ignored: the item is no longer current.")
				return nil
			}
			printStatus(cmd, res.Queue)
			return nil
		},
	}
	skipCmd.Flags().String("presentation", "", "Presentation id to skip (defaults to the latest one shown)")
	return skipCmd
}

// presentationFor returns the presentation id an action should carry: the
// --presentation flag, else the latest presentation delivered to consumer.
// It is empty when nothing was delivered yet.
func presentationFor(cmd *cobra.Command, t transports.ReviewTransport, consumer string) (string, error) {
	if pid, _ := cmd.Flags().GetString("presentation"); pid != "" {
		return pid, nil
	}
	p, ok, err := t.Current(cmd.Context(), consumer)
	if err != nil || !ok {
		return "", err
	}
	return p.PresentationID, nil
}

// newReviewStatusCommand constructs the `review status` subcommand.
func newReviewStatusCommand(baseURL BaseURLFunc) *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue, accepted and globally reviewed counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := newTransport(baseURL).Status(cmd.Context(), consumerFlag(cmd))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(st)
			}
			printStatus(cmd, st)
			return nil
		},
	}
	statusCmd.Flags().Bool("json", false, "Print raw JSON")
	return statusCmd
}

func printStatus(cmd *cobra.Command, st transports.Status) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "In queue: %d\nAccepted: %d\nReviewed globally: %d\n", st.Pending, st.Accepted, st.Retired)
	if st.Current != "" {
		fmt.Fprintf(out, "Current: %s\n", st.Current)
	}
}

// newReviewAcceptedCommand constructs the `review accepted` subcommand.
func newReviewAcceptedCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "accepted",
		Short: "List items accepted in the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			acc, err := newTransport(baseURL).Accepted(cmd.Context(), consumerFlag(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if acc.Count == 0 {
				fmt.Fprintln(out, "Nothing accepted yet.")
				return nil
			}
			fmt.Fprintln(out, "Accepted:")
			for _, k := range acc.Accepted {
				fmt.Fprintln(out, k)
			}
			return nil
		},
	}
}

// newReviewVerdictCommand constructs `review accept` and `review reject`.
func newReviewVerdictCommand(baseURL BaseURLFunc, action, short string) *cobra.Command {
	verdictCmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := newTransport(baseURL)
			consumer := consumerFlag(cmd)
			owner, _ := cmd.Flags().GetString("owner")
			pid, _ := cmd.Flags().GetString("presentation")
			// Only the owner's own presentations can be looked up.
			if owner == "" || owner == consumer {
				var err error
				if pid, err = presentationFor(cmd, t, consumer); err != nil {
					return err
				}
			}
			res, err := t.Verdict(cmd.Context(), consumer, transports.VerdictRequest{
				Owner:          owner,
				Action:         action,
				PresentationID: pid,
			})
			if err != nil {
				return err
			}
			if res.Status == "ignored" {
				fmt.Fprintln(cmd.OutOrStdout(), "Ignored: the item is no longer current.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Status, res.Action)
			return nil
		},
	}
	verdictCmd.Flags().String("owner", "", "Session owner (defaults to --consumer)")
	verdictCmd.Flags().String("presentation", "", "Presentation id the verdict refers to (defaults to the latest one shown)")
	return verdictCmd
}

// newReviewWatchCommand constructs the `review watch` subcommand.
func newReviewWatchCommand(baseURL BaseURLFunc) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow presentations and notices for this consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			mediaDir, _ := cmd.Flags().GetString("media-dir")
			asJSON, _ := cmd.Flags().GetBool("json")

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			seen := 0
			return newTransport(baseURL).Watch(cmd.Context(), consumerFlag(cmd), func(ev transports.Event) error {
				var err error
				if asJSON {
					err = enc.Encode(map[string]any{"id": ev.ID, "type": ev.Type, "data": ev.Data})
				} else {
					err = printEvent(out, ev, mediaDir)
				}
				if err != nil {
					return err
				}
				seen++
				if limit > 0 && seen >= limit {
					return transports.ErrEndOfStream
				}
				return nil
			})
		},
	}
	watchCmd.Flags().Int("limit", 0, "Stop after N events (0 = infinite)")
	watchCmd.Flags().String("media-dir", "", "Write presented images into this directory")
	watchCmd.Flags().Bool("json", false, "Print raw events as JSON lines")
	return watchCmd
}
