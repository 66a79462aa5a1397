package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/spkfile"
	"github.com/litescript/ls-ephem/internal/state"
	"github.com/litescript/ls-ephem/internal/ui"
)

func newBrowseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse body positions in a terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.styled {
				return errors.New("browse needs a terminal")
			}
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			center, err := spk.ParseCode(a.cfg.Center)
			if err != nil {
				return fmt.Errorf("center: %w", err)
			}
			observer, err := spk.ParseCode(a.cfg.Observer)
			if err != nil {
				return fmt.Errorf("observer: %w", err)
			}

			r := newReloader(a, k)
			model := ui.New(r.provider, r.state, ui.Options{
				Observer: observer,
				Center:   center,
				Step:     a.cfg.Browse.Step,
				Refresh:  a.cfg.Browse.Refresh,
			})

			ctx := cmd.Context()
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

			w, err := spkfile.NewWatcher(a.cfg.Kernels...)
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			if err := w.Start(); err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			defer w.Stop()

			go r.run(ctx, w.Changes, func(_ []state.Event, err error) {
				if err != nil {
					p.Send(ui.ErrorMsg{Error: err})
					return
				}
				p.Send(ui.KernelReloadedMsg{Snapshot: r.state.Snapshot()})
			})

			if _, err := p.Run(); err != nil {
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("running browser: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("center", "", "center body code or name (default from config, 0)")
	cmd.Flags().String("observer", "", "observer body code or name (default from config, earth)")
	return cmd
}
