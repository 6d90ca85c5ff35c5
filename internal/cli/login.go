package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/law-makers/goodscrawl/internal/auth"
	"github.com/law-makers/goodscrawl/internal/ui"
	urlutil "github.com/law-makers/goodscrawl/internal/utils/url"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var (
		waitSelector string
		loginTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "login <site> <url>",
		Short: "Log in to a shop in a visible browser and save the session",
		Long: `Opens a visible browser window on the given page so you can log in by hand.
Once logged in, the cookies are saved under the site name in the OS keyring
(or in ~/.goodscrawl/sessions when no keyring is available).

Use the session with --session=<site> on scrape and batch, for example to see
member-only coupon prices.`,
		Example: `  # Log in to musinsa and press Enter when done
  goodscrawl login musinsa https://www.musinsa.com/auth/login

  # Finish automatically once the account menu appears
  goodscrawl login musinsa https://www.musinsa.com/auth/login --wait=".my-menu"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, loginURL := args[0], args[1]
			a, err := appOf(cmd)
			if err != nil {
				return err
			}
			if _, ok := a.Sites.Get(name); !ok {
				return fmt.Errorf("unknown site %q (supported: %v)", name, a.Sites.Names())
			}
			if err := urlutil.ValidateURL(loginURL); err != nil {
				return err
			}
			store, err := auth.NewStore()
			if err != nil {
				return err
			}

			rt := runtimeOf(cmd)
			session, err := auth.InteractiveLogin(cmd.Context(), auth.LoginOptions{
				SessionName:  name,
				URL:          loginURL,
				WaitSelector: waitSelector,
				Timeout:      loginTimeout,
				ChromePath:   a.Config.ChromePath,
				UserAgent:    a.Config.UserAgent,
				Prompt:       rt.stderr,
				Confirm:      os.Stdin,
			})
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			if err := store.Save(session); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			fmt.Fprintf(rt.stderr, "%s saved session %s (%d cookies, %s)\n",
				ui.Success("✓"), ui.Accent(name), len(session.Cookies), store.Backend())
			return nil
		},
	}
	cmd.Flags().StringVar(&waitSelector, "wait", "", "CSS selector that appears once logged in")
	cmd.Flags().DurationVar(&loginTimeout, "login-timeout", 5*time.Minute, "How long to wait for the login")
	return cmd
}
