package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mcocdawc/molpy"
	"github.com/mcocdawc/molpy/inporb"
	"github.com/rs/zerolog/log"
)

// Filter narrows what the print stage shows.
type Filter struct {
	Types     string // orbital type codes, empty for all
	Pattern   string // substring match on basis-function labels
	EnergyMin float64
	EnergyMax float64
	HasRange  bool
	Threshold float64 // minimum |coefficient| to show, 0 for all
	AOWeights bool    // show AO populations instead of raw coefficients
	Width     int     // line width for the orbital table, 0 for default
}

// Options is the full user intent for one run.
type Options struct {
	Input string

	// transformations, applied in the fixed order below
	Desymmetrize bool
	Join         string // second orbital file, empty for off
	SALC         bool
	Guess        bool
	Natural      bool
	SpinNatural  bool
	Root         int    // electronic state for the natural orbitals, 0 = first
	WFA          string // format id for WFA extraction, empty for off
	Symmetrize   bool

	// export
	Convert string // format id, empty for no export
	Output  string // path override, empty for the default
	Force   bool   // allow overwriting

	// read-only analyses
	PrintOrbitals bool
	PrintSym      bool
	SupSym        bool
	Mulliken      bool
	Plot          string // PNG path for the energy diagram, empty for off
	Filter        Filter
}

// OutputPath resolves where the converted file would go: the explicit
// override, or the input base name with the target format's extension.
func (o Options) OutputPath(w Writer) string {
	if o.Output != "" {
		return o.Output
	}
	base := strings.TrimSuffix(o.Input, filepath.Ext(o.Input))
	return base + "." + w.Ext()
}

// Run drives one whole invocation: load, transform, export, print.
// Analyses write to out. Any error aborts the run; nothing is retried and
// no later stage runs after a failure.
func Run(opts Options, out io.Writer) error {
	var target Writer
	if opts.Convert != "" {
		var ok bool
		if target, ok = WriterFor(opts.Convert); !ok {
			return Error{UnknownFormat + " " + opts.Convert, "", []string{"Run"}, true}
		}
		// fail on a doomed destination before any heavy work
		if err := checkDestination(opts.OutputPath(target), opts.Force); err != nil {
			return err
		}
	}

	w, reader, err := Load(opts.Input)
	if err != nil {
		return err
	}
	if err := transform(&w, reader, opts); err != nil {
		return err
	}

	if target != nil {
		if err := export(target, opts.OutputPath(target), w, opts.Force); err != nil {
			return err
		}
	}
	return analyses(w, opts, out)
}

// transform applies the requested mutations in their fixed order. Each
// step sees the wavefunction state the previous one left behind, which is
// why the order is not negotiable.
func transform(w **molpy.Wavefunction, reader Reader, opts Options) error {
	if opts.Desymmetrize {
		if err := molpy.DesymmetrizeWfn(*w); err != nil {
			return err
		}
		log.Debug().Msg("desymmetrized")
	}
	if opts.Join != "" {
		if err := join(*w, opts.Join); err != nil {
			return err
		}
	}
	if opts.SALC {
		salc, err := molpy.SALCOrbitals(*w)
		if err != nil {
			return err
		}
		*w = salc
		log.Debug().Msg("built SALC orbitals")
	}
	if opts.Guess {
		guess, err := molpy.GuessOrbitals(*w)
		if err != nil {
			return err
		}
		(*w).MO = map[string]*molpy.OrbitalSet{molpy.Restricted: guess}
		(*w).NSym = guess.NSym
		(*w).NBas = append([]int(nil), guess.NBas...)
		log.Debug().Msg("built core-hamiltonian guess")
	}
	if opts.Natural {
		nat, err := molpy.NaturalOrbitals(*w, opts.Root)
		if err != nil {
			return err
		}
		(*w).MO[molpy.Restricted] = nat
		log.Debug().Int("root", opts.Root).Msg("built natural orbitals")
	}
	if opts.SpinNatural {
		if opts.Natural {
			// Last one wins. Probably not what the user meant, so say so.
			log.Warn().Msg("spin-natural orbitals replace the natural orbitals computed in the same run")
		}
		nat, err := molpy.SpinNaturalOrbitals(*w, opts.Root)
		if err != nil {
			return err
		}
		(*w).MO[molpy.Restricted] = nat
		log.Debug().Int("root", opts.Root).Msg("built spin-natural orbitals")
	}
	if opts.WFA != "" {
		if err := extractWFA(*w, reader, opts); err != nil {
			return err
		}
	}
	if opts.Symmetrize {
		if err := molpy.SymmetrizeWfn(*w); err != nil {
			return err
		}
		log.Debug().Msg("symmetrized")
	}
	return nil
}

// join replaces the orbital sets wholesale with the ones of a second file,
// read with the legacy text codec only. The replacement sets are
// re-attached to the original wavefunction's basis set, and the symmetry
// blocking follows the joined file.
func join(w *molpy.Wavefunction, path string) error {
	other, err := inporb.Codec{}.Read(path)
	if err != nil {
		return errDecorate(err, "join")
	}
	shared := false
	for kind := range other.MO {
		if _, ok := w.MO[kind]; ok {
			shared = true
		}
	}
	if !shared {
		return Error{NoJoinKeys, path, []string{"join"}, true}
	}
	for _, o := range other.MO {
		o.Basis = w.Basis
	}
	w.MO = other.MO
	w.NSym = other.NSym
	w.NBas = append([]int(nil), other.NBas...)
	log.Debug().Str("file", path).Msg("joined orbital sets")
	return nil
}

// extractWFA pulls the WFA orbital families out of the input file itself
// and writes each as <base>.<tag>.<ext> right away. The families never
// enter the main pipeline.
func extractWFA(w *molpy.Wavefunction, reader Reader, opts Options) error {
	wfa, ok := reader.(WFAReader)
	if !ok {
		return molpy.NewMissing("wfa", NoWFAHere, "extractWFA")
	}
	families, err := wfa.ReadWFA(opts.Input, w)
	if err != nil {
		return err
	}
	writer, ok := WriterFor(opts.WFA)
	if !ok {
		return Error{UnknownFormat + " " + opts.WFA, "", []string{"extractWFA"}, true}
	}
	base := strings.TrimSuffix(opts.Input, filepath.Ext(opts.Input))
	for _, tag := range sortedTags(families) {
		path := base + "." + strings.ToLower(tag) + "." + writer.Ext()
		sub := &molpy.Wavefunction{
			MO:    map[string]*molpy.OrbitalSet{molpy.Restricted: families[tag]},
			Basis: w.Basis,
			NSym:  1,
			NBas:  []int{w.TotalBas()},
			Path:  w.Path,
		}
		if err := export(writer, path, sub, opts.Force); err != nil {
			return errDecorate(err, "extractWFA")
		}
		log.Info().Str("file", path).Str("family", tag).Msg("wrote WFA orbitals")
	}
	return nil
}

func sortedTags(m map[string]*molpy.OrbitalSet) []string {
	tags := make([]string, 0, len(m))
	for t := range m {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// checkDestination is the overwrite guard: an existing destination without
// the force flag refuses before anything is computed or written.
func checkDestination(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return existsError{Error{AlreadyThere, path, []string{"checkDestination"}, true}}
	}
	return nil
}

// export writes w to path with the given codec, enforcing the overwrite
// guard. The codec owns the file handle and closes it on every path.
func export(writer Writer, path string, w *molpy.Wavefunction, force bool) error {
	if err := checkDestination(path, force); err != nil {
		return err
	}
	if err := writer.Write(path, w); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("wrote")
	return nil
}
