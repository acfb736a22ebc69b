// Command penny converts and analyzes wavefunction files: load one input,
// apply the requested transformations, export to another format, print
// analyses. Any failure exits with status 1.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcocdawc/molpy/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// wfaFormats are the extraction targets that need no symmetry data; the
// rest make no sense for the flattened WFA families and are refused here,
// before the pipeline runs.
var wfaFormats = map[string]bool{"molden": true, "gv": true, "fchk": true}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts      pipeline.Options
		erange    string
		quick     bool
		verbosity int
	)
	cmd := &cobra.Command{
		Use:           "penny <wavefunction-file>",
		Short:         "convert and analyze wavefunction files",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbosity)
			opts.Input = args[0]
			if quick {
				opts.PrintOrbitals = true
				if !cmd.Flags().Changed("threshold") {
					opts.Filter.Threshold = 0.1
				}
				opts.Filter.EnergyMin, opts.Filter.EnergyMax = -1.0, 0.5
				opts.Filter.HasRange = true
			}
			if erange != "" {
				min, max, err := parseRange(erange)
				if err != nil {
					return err
				}
				opts.Filter.EnergyMin, opts.Filter.EnergyMax = min, max
				opts.Filter.HasRange = true
			}
			if opts.Convert != "" {
				if _, ok := pipeline.WriterFor(opts.Convert); !ok {
					return fmt.Errorf("unknown output format %q, pick one of %s",
						opts.Convert, strings.Join(pipeline.Formats(), ", "))
				}
			}
			if opts.WFA != "" && !wfaFormats[opts.WFA] {
				return fmt.Errorf("WFA extraction supports molden, gv and fchk, not %q", opts.WFA)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.Run(opts, cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("run failed")
				fmt.Fprintln(cmd.ErrOrStderr(), "penny:", err)
				return err
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.BoolVar(&opts.Desymmetrize, "desymmetrize", false, "strip native symmetry blocking")
	fl.StringVar(&opts.Join, "join", "", "replace orbital sets with the ones of this InpOrb file")
	fl.BoolVar(&opts.SALC, "salc", false, "build symmetry-adapted linear combination orbitals")
	fl.BoolVar(&opts.Guess, "guess", false, "build a core-Hamiltonian initial guess")
	fl.BoolVar(&opts.Natural, "natorb", false, "compute natural orbitals")
	fl.BoolVar(&opts.SpinNatural, "spinnatorb", false, "compute spin-natural orbitals")
	fl.IntVar(&opts.Root, "root", 0, "electronic state for natural orbitals (default: first)")
	fl.StringVar(&opts.WFA, "wfa", "", "extract embedded WFA orbitals to this format")
	fl.BoolVar(&opts.Symmetrize, "symmetrize", false, "project orbitals onto their symmetry-adapted counterparts")
	fl.StringVar(&opts.Convert, "convert", "", "export to this format ("+strings.Join(pipeline.Formats(), ", ")+")")
	fl.StringVarP(&opts.Output, "output", "o", "", "output path (default: input base with the format's extension)")
	fl.BoolVarP(&opts.Force, "force", "f", false, "overwrite existing output files")

	fl.BoolVar(&opts.PrintOrbitals, "print_orbitals", false, "print the orbital listing")
	fl.BoolVar(&opts.PrintSym, "print_symmetry", false, "print each orbital's symmetry species")
	fl.BoolVar(&opts.SupSym, "supsym", false, "print SUPSYM blocks")
	fl.BoolVar(&opts.Mulliken, "mulliken", false, "print Mulliken charges")
	fl.StringVar(&opts.Plot, "plot", "", "write an orbital energy-level diagram to this file")

	fl.StringVar(&opts.Filter.Types, "types", "", "restrict printing to these orbital type codes (fi123sd)")
	fl.StringVar(&opts.Filter.Pattern, "pattern", "", "restrict printing to labels containing this string")
	fl.StringVar(&erange, "erange", "", "orbital energy window, as min,max")
	fl.Float64Var(&opts.Filter.Threshold, "threshold", 0, "smallest |coefficient| to print")
	fl.BoolVar(&opts.Filter.AOWeights, "ao-weights", false, "print AO population weights instead of raw coefficients")
	fl.IntVar(&opts.Filter.Width, "width", 0, "coefficients per printed line")
	fl.BoolVar(&quick, "quick", false, "shorthand for --print_orbitals --threshold 0.1 --erange -1.0,0.5")
	fl.CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	return cmd
}

func parseRange(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("energy range must be min,max, got %q", s)
	}
	min, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad energy range %q: %v", s, err)
	}
	max, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad energy range %q: %v", s, err)
	}
	return min, max, nil
}

func setupLogging(verbosity int) {
	switch verbosity {
	case 0:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
