// pkg/zulip_cli/wrap.go

package zulip_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_err"
	"github.com/CodeMonkeyCybersecurity/zulip-install/pkg/zulip_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Wrap adapts a RuntimeContext handler to a cobra RunE, adding panic
// recovery and outcome logging. User errors pass through without a stack;
// everything else gets one attached for the install log.
func Wrap(fn func(rc *zulip_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := zulip_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		rc.LogRuntimeExecutionContext()

		err = fn(rc, cmd, args)
		if err != nil && !zulip_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
