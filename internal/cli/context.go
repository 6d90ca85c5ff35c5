// Package cli provides the command-line interface of goodscrawl.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/law-makers/goodscrawl/internal/app"
	"github.com/spf13/cobra"
)

type ctxKey struct{}

// runtime is shared by every command of one invocation. The application is
// created by the root pre-run hook and closed by Run once the command ends,
// whether it failed or not.
type runtime struct {
	app    *app.Application
	stdout io.Writer
	stderr io.Writer
}

func withRuntime(ctx context.Context, rt *runtime) context.Context {
	return context.WithValue(ctx, ctxKey{}, rt)
}

func runtimeOf(cmd *cobra.Command) *runtime {
	if rt, ok := cmd.Context().Value(ctxKey{}).(*runtime); ok {
		return rt
	}
	return &runtime{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()}
}

// appOf returns the application of the running command
func appOf(cmd *cobra.Command) (*app.Application, error) {
	rt := runtimeOf(cmd)
	if rt.app == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return rt.app, nil
}

// exitError carries an exit code for a failure already reported on stdout
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
