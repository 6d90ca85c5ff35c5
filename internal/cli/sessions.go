package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/law-makers/goodscrawl/internal/auth"
	"github.com/law-makers/goodscrawl/internal/ui"
	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved login sessions",
	}
	cmd.AddCommand(newSessionsListCmd(), newSessionsDeleteCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewStore()
			if err != nil {
				return err
			}
			names, err := store.List()
			if err != nil {
				return err
			}
			out := runtimeOf(cmd).stdout
			if len(names) == 0 {
				fmt.Fprintln(out, ui.Dim("No saved sessions."))
				return nil
			}

			now := time.Now()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tURL\tCOOKIES\tEXPIRES")
			for _, name := range names {
				s, err := store.Load(name)
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t%s\n", name, err)
					continue
				}
				expires := "never"
				if !s.ExpiresAt.IsZero() {
					expires = s.ExpiresAt.Format(time.DateTime)
					if s.Expired(now) {
						expires += " (expired)"
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", name, s.URL, len(s.Cookies), expires)
			}
			return tw.Flush()
		},
	}
}

func newSessionsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return fmt.Errorf("failed to delete session %q: %w", args[0], err)
			}
			fmt.Fprintf(runtimeOf(cmd).stdout, "%s deleted session %s\n", ui.Success("✓"), args[0])
			return nil
		},
	}
}
