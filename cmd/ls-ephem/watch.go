package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephem/internal/ephem"
	"github.com/litescript/ls-ephem/internal/logging"
	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/spkfile"
	"github.com/litescript/ls-ephem/internal/state"
	"github.com/litescript/ls-ephem/internal/ui"
)

// reloader rereads the configured manifests into a live kernel and tracks
// what changed between loads.
type reloader struct {
	paths    []string
	provider *ephem.KernelProvider
	state    *state.Manager
	logger   *logging.Logger
}

func newReloader(a *app, k *spk.Kernel) *reloader {
	cfg := state.DefaultConfig()
	cfg.RefreshInterval = a.cfg.Browse.Refresh
	mgr := state.NewManager(cfg)
	mgr.Update(k.Segments, 0, nil)

	logger := a.logger.Named("reload")
	return &reloader{
		paths:    a.cfg.Kernels,
		provider: ephem.NewKernelProvider(k, logger),
		state:    mgr,
		logger:   logger,
	}
}

// reload swaps freshly read segments into the existing kernel. A manifest
// that fails to load leaves the kernel untouched.
func (r *reloader) reload() ([]state.Event, error) {
	start := time.Now()
	segs, err := spkfile.LoadSegments(r.paths...)
	dur := time.Since(start)
	if err != nil {
		r.state.Update(nil, dur, err)
		return nil, err
	}

	r.provider.Update(func(k *spk.Kernel) { k.Replace(segs) })
	events := r.state.Update(segs, dur, nil)
	r.logger.Info("reloaded %d segments in %v", len(segs), dur.Round(time.Millisecond))
	return events, nil
}

// run reloads on every change until ctx ends or the channel closes, calling
// report after each attempt.
func (r *reloader) run(ctx context.Context, changes <-chan spkfile.Change, report func([]state.Event, error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			r.logger.Debug("%s %s", ch.File, ch.Kind)
			events, err := r.reload()
			if err != nil {
				r.logger.Error("reload failed: %v", err)
			}
			report(events, err)
		}
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the manifests when they change and print what changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			r := newReloader(a, k)
			fmt.Fprintln(a.out, k.Summary())

			w, err := spkfile.NewWatcher(a.cfg.Kernels...)
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			if err := w.Start(); err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Stop()

			r.run(cmd.Context(), w.Changes, func(events []state.Event, err error) {
				if err != nil {
					return
				}
				fmt.Fprintln(a.out)
				writeEvents(a.out, events)
				fmt.Fprintln(a.out, r.provider.Summary())
			})
			return nil
		},
	}
}

// writeEvents prints one line per event, or a note when nothing changed.
func writeEvents(w io.Writer, events []state.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "Reloaded: no changes")
		return
	}
	for _, e := range events {
		fmt.Fprintf(w, "%s  %-16s  %s\n", e.Timestamp.Format("15:04:05"), e.Type, ui.FormatEvent(e))
	}
}
