package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-ephem/internal/spk"
	"github.com/litescript/ls-ephem/internal/spkfile"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <out.toml>",
		Short: "Write the loaded segments to a single manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := a.loadKernel()
			if err != nil {
				return err
			}

			bodies, _ := cmd.Flags().GetStringSlice("body")
			if len(bodies) > 0 {
				keep := make(map[spk.Code]bool, len(bodies))
				for _, b := range bodies {
					c, err := spk.ParseCode(b)
					if err != nil {
						return err
					}
					keep[c] = true
				}
				k.Retain(func(s *spk.Segment) bool { return keep[s.Target()] })
			}
			if k.Len() == 0 {
				return fmt.Errorf("no segments to export")
			}

			label, _ := cmd.Flags().GetString("label")
			if label == "" {
				label = filepath.Base(args[0])
			}
			if err := spkfile.Write(args[0], label, k.Segments); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %d segments to %s\n", k.Len(), args[0])
			return nil
		},
	}
	cmd.Flags().String("label", "", "label stored in the manifest (default: output file name)")
	cmd.Flags().StringSlice("body", nil, "only export segments whose target is one of these bodies")
	return cmd
}
