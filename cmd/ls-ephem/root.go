package main

import (
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/litescript/ls-ephem/internal/config"
	"github.com/litescript/ls-ephem/internal/logging"
	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/spkfile"
	"github.com/litescript/ls-ephem/internal/version"
)

// errNoKernels is returned by commands that need data when no manifest was
// configured.
var errNoKernels = errors.New("no kernels given; pass --kernel or set kernels in .ls-ephem.yaml")

// app carries the state shared by every command of one invocation. Commands
// are built per invocation so flag state never leaks between runs.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *logging.Logger
	out    io.Writer
	styled bool
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "ls-ephem",
		Short: "Query planetary ephemeris segment kernels",
		Long: "ls-ephem loads ephemeris segment manifests into a kernel and answers\n" +
			"position queries between any two bodies the segments connect.",
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default .ls-ephem.yaml)")
	pf.StringSliceP("kernel", "k", nil, "segment manifest to load (repeatable, loaded in order)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("kernels", pf.Lookup("kernel"))
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	root.AddCommand(
		newSummaryCmd(a),
		newCodesCmd(a),
		newNamesCmd(a),
		newAtCmd(a),
		newObserveCmd(a),
		newChainCmd(a),
		newExportCmd(a),
		newBrowseCmd(a),
		newWatchCmd(a),
	)
	return root
}

// commandKeys maps flags that only some commands define onto config keys.
// They are bound for the command being run.
var commandKeys = map[string]string{
	"center":   "center",
	"observer": "observer",
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	for flag, key := range commandKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			_ = a.v.BindPFlag(key, f)
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.Init(a.v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger = logging.New(logging.ParseLevel(cfg.LogLevel))
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.out = cmd.OutOrStdout()
	a.styled = isTerminal(a.out)
	return nil
}

// loadKernel reads the configured manifests.
func (a *app) loadKernel() (*spk.Kernel, error) {
	if len(a.cfg.Kernels) == 0 {
		return nil, errNoKernels
	}
	return spkfile.LoadKernel(a.logger.Named("kernel"), a.cfg.Kernels...)
}

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9D4EDD"))

// heading styles a title line when writing to a terminal.
func (a *app) heading(s string) string {
	if !a.styled {
		return s
	}
	return headingStyle.Render(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
