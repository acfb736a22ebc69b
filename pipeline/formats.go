//Package pipeline sequences the wavefunction conversion pipeline: loading
//with format probing, the ordered optional transformations, export with
//overwrite protection, and the read-only analyses.
package pipeline

import (
	"os"
	"sort"

	"github.com/mcocdawc/molpy"
	"github.com/mcocdawc/molpy/fchk"
	"github.com/mcocdawc/molpy/h5orb"
	"github.com/mcocdawc/molpy/inporb"
	"github.com/mcocdawc/molpy/molden"
	"github.com/rs/zerolog/log"
)

// Reader is the read half of a format codec. Read reports a file that is
// simply not in its format with the molpy.FormatErr class, anything else
// (I/O trouble, corruption) with an ordinary error.
type Reader interface {
	Read(path string) (*molpy.Wavefunction, error)
}

// Writer is the write half of a format codec.
type Writer interface {
	Ext() string
	Write(path string, w *molpy.Wavefunction) error
}

// WFAReader is implemented by codecs whose format can embed WFA orbital
// families next to the main orbitals.
type WFAReader interface {
	ReadWFA(path string, w *molpy.Wavefunction) (map[string]*molpy.OrbitalSet, error)
}

// writers maps the format identifiers of the command line to their codecs.
// New formats register here; nothing else needs editing.
var writers = map[string]Writer{
	"h5":       h5orb.Codec{},
	"inporb":   inporb.Codec{},
	"inporb11": inporb.Codec{Version: inporb.V11},
	"molden":   molden.Codec{},
	"gv":       molden.Codec{GV: true},
	"fchk":     fchk.Codec{},
}

// readers are probed in preference order: the binary format first, the
// legacy text format as fallback.
var readers = []Reader{h5orb.Codec{}, inporb.Codec{}}

// Formats returns the known output format identifiers, sorted.
func Formats() []string {
	ids := make([]string, 0, len(writers))
	for id := range writers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WriterFor resolves a format identifier. Unknown identifiers are a
// programming error here: the CLI validates them before the pipeline runs.
func WriterFor(id string) (Writer, bool) {
	w, ok := writers[id]
	return w, ok
}

// Load resolves the codec for path by probing: first the primary binary
// format, then the legacy text format. A codec's format-mismatch verdict
// moves on to the next candidate; any other failure propagates unchanged.
// Returns the wavefunction together with the reader that accepted it.
func Load(path string) (*molpy.Wavefunction, Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, unreadableError{Error{NoSuchInput, path, []string{"Load"}, true}}
	}
	for _, r := range readers {
		w, err := r.Read(path)
		if err == nil {
			log.Debug().Str("file", path).Msgf("loaded with %T", r)
			return w, r, nil
		}
		if !molpy.IsFormat(err) {
			return nil, nil, err
		}
	}
	return nil, nil, unreadableError{Error{NoKnownFormat, path, []string{"Load"}, true}}
}
