package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/miqalab/miqa/pkg/miqa"
)

// ForcedApprover implements the Approver interface for forced (non-interactive)
// approval. It displays a countdown and automatically approves after the countdown,
// used when the --force flag is provided.
type ForcedApprover struct {
	verbose bool
	output  io.Writer
	sleepFn func(time.Duration)
}

// NewForcedApprover creates a new ForcedApprover.
func NewForcedApprover(verbose bool) miqa.Approver {
	return &ForcedApprover{
		verbose: verbose,
		output:  os.Stderr,
		sleepFn: time.Sleep,
	}
}

// RequestApproval displays a countdown and automatically approves after the countdown.
func (a *ForcedApprover) RequestApproval(ctx context.Context, dbName string) (bool, error) {
	fmt.Fprintln(a.output)
	fmt.Fprintln(a.output, "☠️  DANGER: forced schema reset")
	fmt.Fprintf(a.output, "All study catalog data in '%s' is about to be destroyed.\n", dbName)
	fmt.Fprintln(a.output)

	countdownSeconds := int(miqa.DefaultForceApprovalCountdown.Seconds())
	for i := countdownSeconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
			fmt.Fprintf(a.output, "\rDropping in: %d seconds... (Press Ctrl+C to cancel)", i)
			a.sleepFn(1 * time.Second)
		}
	}

	fmt.Fprintf(a.output, "\r✓ Proceeding with schema reset...                              \n")
	return true, nil
}

// Verify ForcedApprover implements the Approver interface at compile time
var _ miqa.Approver = (*ForcedApprover)(nil)
