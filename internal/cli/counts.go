package cli

import (
	"github.com/spf13/cobra"
)

func newCountsCmd(a *app) *cobra.Command {
	var (
		statePath  string
		eventsPath string
		user       string
		trace      bool
	)

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show unread counts for a session",
		Long: `Load an initial state payload, apply an optional JSONL event stream,
and print the resulting unread counts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInputFiles(statePath, eventsPath)
			if err != nil {
				return err
			}
			opts := replayOptions{Trace: trace}
			if user != "" {
				if opts.UserID, err = parseUserID(user); err != nil {
					return err
				}
			}
			res, err := a.replay(cmd.Context(), in, opts)
			if err != nil {
				return err
			}
			return a.printResult(res)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "initial state JSON file (required)")
	cmd.Flags().StringVar(&eventsPath, "events", "", "JSONL file of events to apply")
	cmd.Flags().StringVar(&user, "user", "", "view the session as this user id")
	cmd.Flags().BoolVar(&trace, "trace", false, "print each count change to stderr")
	_ = cmd.MarkFlagRequired("state")

	return cmd
}
