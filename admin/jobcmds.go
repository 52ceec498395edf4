package admin

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/uds"
)

const cmdTimeout = 30 * time.Second

// NewJobCommandMap builds the operator command set for the admin socket.
// Every command runs against the shared job store with its own deadline,
// so a hung backend cannot wedge the socket loop.
func NewJobCommandMap(parentCtx context.Context, jobs printjobs.Store) map[string]uds.CmdHnd {
	return map[string]uds.CmdHnd{
		"jobs.list": {
			Desc:  "list all print jobs in submission order",
			Usage: "jobs.list",
			Fn: func(args []string, w io.Writer) error {
				ctx, cancel := context.WithTimeout(parentCtx, cmdTimeout)
				defer cancel()
				all, err := jobs.List(ctx)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				if len(all) == 0 {
					_, _ = fmt.Fprintln(w, "no jobs")
					return nil
				}
				for _, job := range all {
					line := fmt.Sprintf("%s  %-10s  printer=%q", job.ID, job.Status, job.PrinterName)
					if job.ClaimedBy.Valid {
						line += "  agent=" + job.ClaimedBy.String
					}
					if job.Error.Valid {
						line += "  error=" + strconv.Quote(job.Error.String)
					}
					_, _ = fmt.Fprintln(w, line)
				}
				return nil
			},
		},
		"jobs.clear-finished": {
			Desc:  "remove every completed and failed job",
			Usage: "jobs.clear-finished",
			Fn: func(args []string, w io.Writer) error {
				ctx, cancel := context.WithTimeout(parentCtx, cmdTimeout)
				defer cancel()
				n, err := jobs.ClearFinished(ctx, false)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				_, _ = fmt.Fprintf(w, "removed %d job(s)\n", n)
				return nil
			},
		},
		"jobs.reset-stuck": {
			Desc:  "revert every processing job back to pending",
			Usage: "jobs.reset-stuck",
			Fn: func(args []string, w io.Writer) error {
				ctx, cancel := context.WithTimeout(parentCtx, cmdTimeout)
				defer cancel()
				n, err := jobs.ClearFinished(ctx, true)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				_, _ = fmt.Fprintf(w, "reset %d job(s)\n", n)
				return nil
			},
		},
		"jobs.reap": {
			Desc:  "revert processing jobs with expired leases",
			Usage: "jobs.reap",
			Fn: func(args []string, w io.Writer) error {
				ctx, cancel := context.WithTimeout(parentCtx, cmdTimeout)
				defer cancel()
				n, err := jobs.ReapExpired(ctx)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				_, _ = fmt.Fprintf(w, "reaped %d job(s)\n", n)
				return nil
			},
		},
		"jobs.clear-all": {
			Desc:  "remove every job regardless of state",
			Usage: "jobs.clear-all confirm",
			Fn: func(args []string, w io.Writer) error {
				if len(args) == 0 || args[0] != "confirm" {
					_, _ = fmt.Fprintln(w, "refusing: run `jobs.clear-all confirm` to wipe the queue")
					return nil
				}
				ctx, cancel := context.WithTimeout(parentCtx, cmdTimeout)
				defer cancel()
				n, err := jobs.ClearAll(ctx)
				if err != nil {
					_, _ = fmt.Fprintf(w, "error: %v\n", err)
					return err
				}
				_, _ = fmt.Fprintf(w, "removed %d job(s)\n", n)
				return nil
			},
		},
	}
}
