package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/law-makers/goodscrawl/internal/app"
	"github.com/law-makers/goodscrawl/internal/config"
	"github.com/law-makers/goodscrawl/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "0.1.0"

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "goodscrawl",
		Short: "Extract product records from shopping pages",
		Long: `goodscrawl loads a product page from a supported shop (musinsa, naver
smartstore) and prints a normalized product record: title, price, coupon
price, image, stock status, sizes with measurements, and colors.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rt := runtimeOf(cmd)
			if rt.app != nil {
				return nil
			}
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			rt.app = a
			return nil
		},
	}

	config.RegisterFlags(root)
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderHelp(cmd.OutOrStdout(), cmd)
	})
	root.SetUsageFunc(func(cmd *cobra.Command) error {
		renderUsage(cmd.ErrOrStderr(), cmd)
		return nil
	})

	root.AddCommand(
		newScrapeCmd(),
		newBatchCmd(),
		newServeCmd(),
		newLoginCmd(),
		newSessionsCmd(),
	)
	return root
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rt := &runtime{stdout: stdout, stderr: stderr}
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(withRuntime(ctx, rt))

	if rt.app != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = rt.app.Close(closeCtx)
		cancel()
	}

	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintf(stderr, "%s %v\n", ui.Error("Error:"), err)
	return 1
}

// Execute runs the CLI against the process arguments and streams
func Execute(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

func renderHelp(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Paint(strings.ToUpper(cmd.Name()), ui.ColorBold, ui.ColorCyan))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}
	renderUsage(w, cmd)
}

func renderUsage(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Bold("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Accent(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n", ui.Accent(cmd.CommandPath()), ui.Paint("<command>", ui.ColorYellow), ui.Dim("[flags]"))
	}

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Examples"))
		for _, line := range strings.Split(cmd.Example, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case strings.HasPrefix(line, "#"):
				fmt.Fprintf(w, "  %s\n", ui.Dim(line))
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Bold("Commands"))
		width := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				width = max(width, len(c.Name()))
			}
		}
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Fprintf(w, "  %s%s%s\n", ui.Accent(c.Name()), strings.Repeat(" ", width-len(c.Name())+2), ui.Dim(c.Short))
			}
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n%s", ui.Bold("Flags"), cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n%s", ui.Bold("Global Flags"), cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}
