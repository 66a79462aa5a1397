package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephem/internal/astro"
	"github.com/litescript/ls-ephem/internal/ephem"
	"github.com/litescript/ls-ephem/internal/spk"
)

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the segments of every loaded manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, k.Summary())
			return nil
		},
	}
}

func newCodesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List the body codes the kernel can answer for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			for _, c := range k.Codes() {
				name := spk.DisplayName(c)
				if name == "" {
					name = "-"
				}
				fmt.Fprintf(a.out, "%8d  %s\n", c, name)
			}
			return nil
		},
	}
}

func newNamesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "List every name accepted for the kernel's bodies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			names := k.Names().Map()
			codes := make([]spk.Code, 0, len(names))
			for c := range names {
				codes = append(codes, c)
			}
			sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
			for _, c := range codes {
				fmt.Fprintf(a.out, "%8d  %s\n", c, strings.Join(names[c], ", "))
			}
			return nil
		},
	}
}

func newAtCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "at <body> [jd...]",
		Short: "Print the position of a body at TDB Julian dates (default now)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			center, err := spk.ParseCode(a.cfg.Center)
			if err != nil {
				return fmt.Errorf("center: %w", err)
			}
			target, err := spk.ParseCode(args[0])
			if err != nil {
				return err
			}
			tdb, err := parseJulianDates(args[1:])
			if err != nil {
				return err
			}

			v, err := k.Resolve(center, target)
			if err != nil {
				return err
			}
			pos, vel, err := v.Evaluate(tdb...)
			if err != nil {
				return err
			}

			fmt.Fprintln(a.out, a.heading(fmt.Sprintf("%s relative to %s", bodyLabel(target), bodyLabel(center))))
			for i, jd := range tdb {
				r := pos[i].Norm()
				fmt.Fprintf(a.out, "JD %.6f  %s km  %.3f km  %.9f AU\n", jd, pos[i], r, astro.KmToAU(r))
				if vel != nil {
					fmt.Fprintf(a.out, "%*s  %s km/day\n", 17, "", vel[i])
				}
			}
			return nil
		},
	}
	cmd.Flags().String("center", "", "center body code or name (default from config, 0)")
	return cmd
}

func newObserveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observe <body> [jd...]",
		Short: "Print RA/Dec, range and sun separation of a body seen from the observer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			observer, err := spk.ParseCode(a.cfg.Observer)
			if err != nil {
				return fmt.Errorf("observer: %w", err)
			}
			target, err := spk.ParseCode(args[0])
			if err != nil {
				return err
			}
			tdb, err := parseJulianDates(args[1:])
			if err != nil {
				return err
			}

			p := ephem.NewKernelProvider(k, a.logger.Named("ephem"))
			fmt.Fprintln(a.out, a.heading(fmt.Sprintf("%s seen from %s", bodyLabel(target), bodyLabel(observer))))
			for _, jd := range tdb {
				obs, err := p.Observe(observer, target, astro.TimeFromTDB(jd))
				if err != nil {
					return err
				}
				line := fmt.Sprintf("JD %.6f  RA %9.5f°  Dec %+9.5f°  range %.0f km  light time %s",
					jd, obs.RADeg, obs.DecDeg, obs.RangeKm, astro.FormatLightTime(obs.LightTime.Seconds()))
				if obs.HasSun {
					line += fmt.Sprintf("  sun %.1f° (%s)", obs.SunSeparationDeg, obs.SunTier)
				}
				fmt.Fprintln(a.out, line)
			}
			return nil
		},
	}
	cmd.Flags().String("observer", "", "observer body code or name (default from config, earth)")
	return cmd
}

func newChainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <body>",
		Short: "Print the segments combined to reach a body from the center",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}
			center, err := spk.ParseCode(a.cfg.Center)
			if err != nil {
				return fmt.Errorf("center: %w", err)
			}
			target, err := spk.ParseCode(args[0])
			if err != nil {
				return err
			}
			v, err := k.Resolve(center, target)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, v)
			return nil
		},
	}
	cmd.Flags().String("center", "", "center body code or name (default from config, 0)")
	return cmd
}

// parseJulianDates parses TDB Julian date arguments; none means now.
func parseJulianDates(args []string) ([]float64, error) {
	if len(args) == 0 {
		return []float64{astro.TDB(time.Now())}, nil
	}
	out := make([]float64, len(args))
	for i, s := range args {
		jd, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid Julian date %q", s)
		}
		out[i] = jd
	}
	return out, nil
}

// bodyLabel renders a code with its display name when one is known.
func bodyLabel(c spk.Code) string {
	if name := spk.DisplayName(c); name != "" {
		return fmt.Sprintf("%d %s", c, name)
	}
	return fmt.Sprintf("%d", c)
}
