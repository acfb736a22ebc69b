//Package inporb reads and writes the legacy Molcas orbital text format, in
//its 1.1 and 2.2 dialects. Compressed input (gzip or zstd) is handled
//transparently, the way trajectory tools treat compressed frames.
package inporb

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/mcocdawc/molpy"
	"gonum.org/v1/gonum/mat"
)

// Versions the reader accepts and the writer can produce.
const (
	V11 = "1.1"
	V22 = "2.2"
)

// Codec is the InpOrb codec. The zero value writes dialect 2.2; set
// Version to V11 for the old 4-per-line layout.
type Codec struct {
	Version string
}

// Ext returns the conventional file extension.
func (c Codec) Ext() string { return "InpOrb" }

func (c Codec) version() string {
	if c.Version == "" {
		return V22
	}
	return c.Version
}

// reals per line and their formatting, by dialect
func (c Codec) layout() (perline int, format string) {
	if c.version() == V11 {
		return 4, "%18.11E"
	}
	return 5, "%22.14E"
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// open returns a line scanner over the possibly compressed file, plus the
// closers to run when done.
func open(path string) (*bufio.Scanner, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	var r io.Reader = br
	closer := func() { f.Close() }
	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, Error{UnableToOpen + ": " + err.Error(), path, []string{"open"}, true}
		}
		r = gz
		closer = func() { gz.Close(); f.Close() }
	case len(magic) >= 4 && string(magic) == string(zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			f.Close()
			return nil, nil, Error{UnableToOpen + ": " + err.Error(), path, []string{"open"}, true}
		}
		r = zr
		closer = func() { zr.Close(); f.Close() }
	}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	return s, closer, nil
}

// parser keeps the scanning state while walking the section structure.
type parser struct {
	s    *bufio.Scanner
	path string
	line string
	eof  bool
}

func (p *parser) next() bool {
	if p.s.Scan() {
		p.line = p.s.Text()
		return true
	}
	p.eof = true
	return false
}

// nextData advances to the next non-comment line.
func (p *parser) nextData() bool {
	for p.next() {
		if !strings.HasPrefix(p.line, "*") {
			return true
		}
	}
	return false
}

func (p *parser) fail(msg string) error {
	return Error{msg, p.path, []string{"Read"}, true}
}

func expMark(c byte) bool {
	return c == 'E' || c == 'e' || c == 'D' || c == 'd'
}

// splitNumbers cuts one whitespace-delimited token into the numbers it
// holds. Fixed-width Fortran output lets a negative value sit flush
// against its neighbor, so a sign that does not follow an exponent
// marker starts a new number.
func splitNumbers(field string) []string {
	start := 0
	var out []string
	for i := 1; i < len(field); i++ {
		if (field[i] == '-' || field[i] == '+') && !expMark(field[i-1]) {
			out = append(out, field[start:i])
			start = i
		}
	}
	return append(out, field[start:])
}

// readFloats keeps consuming data lines until n floats are collected.
func (p *parser) readFloats(n int) ([]float64, error) {
	out := make([]float64, 0, n)
	for len(out) < n {
		if !p.nextData() {
			return nil, p.fail(Truncated)
		}
		for _, field := range strings.Fields(p.line) {
			for _, num := range splitNumbers(field) {
				// Fortran writes D exponents in some Molcas versions
				v, err := strconv.ParseFloat(strings.Replace(num, "D", "E", 1), 64)
				if err != nil {
					return nil, p.fail(fmt.Sprintf("bad number %q", num))
				}
				out = append(out, v)
			}
		}
	}
	if len(out) != n {
		return nil, p.fail(fmt.Sprintf("expected %d numbers, got %d", n, len(out)))
	}
	return out, nil
}

func (p *parser) readInts(n int) ([]int, error) {
	fs, err := p.readFloats(n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i, f := range fs {
		out[i] = int(f)
	}
	return out, nil
}

// Read loads a wavefunction from an InpOrb file. A file that does not open
// with the #INPORB magic is reported with the format-mismatch error class,
// so callers probing formats can fall through to another codec.
func (c Codec) Read(path string) (*molpy.Wavefunction, error) {
	s, closer, err := open(path)
	if err != nil {
		return nil, err
	}
	defer closer()
	p := &parser{s: s, path: path}
	if !p.next() || !strings.HasPrefix(p.line, "#INPORB") {
		return nil, formatError{Error{NotInpOrb, path, []string{"Read"}, false}}
	}
	fields := strings.Fields(p.line)
	version := V22
	if len(fields) > 1 {
		version = fields[1]
	}
	if version != V11 && version != V22 {
		return nil, p.fail("unsupported INPORB version " + version)
	}
	w := &molpy.Wavefunction{MO: map[string]*molpy.OrbitalSet{}, Path: path}
	uhf := false
	var norb []int
	for !p.eof {
		if !strings.HasPrefix(p.line, "#") {
			if !p.next() {
				break
			}
			continue
		}
		section := strings.TrimSpace(p.line)
		switch section {
		case "#INFO":
			flags, err := p.readInts(3)
			if err != nil {
				return nil, err
			}
			uhf = flags[0] != 0
			w.NSym = flags[1]
			if w.NBas, err = p.readInts(w.NSym); err != nil {
				return nil, err
			}
			if norb, err = p.readInts(w.NSym); err != nil {
				return nil, err
			}
			p.next()
		case "#ORB", "#UORB":
			kind := molpy.Restricted
			if uhf {
				kind = molpy.Alpha
			}
			if section == "#UORB" {
				kind = molpy.Beta
			}
			o, err := p.readOrbitals(w, norb)
			if err != nil {
				return nil, err
			}
			w.MO[kind] = o
		case "#OCC", "#UOCC":
			kind := occKind(uhf, section == "#UOCC")
			o := w.MO[kind]
			if o == nil {
				return nil, p.fail(section + " before orbital section")
			}
			if o.Occupations, err = p.readFloats(o.NOrb()); err != nil {
				return nil, err
			}
			p.next()
		case "#ONE", "#UONE":
			kind := occKind(uhf, section == "#UONE")
			o := w.MO[kind]
			if o == nil {
				return nil, p.fail(section + " before orbital section")
			}
			if o.Energies, err = p.readFloats(o.NOrb()); err != nil {
				return nil, err
			}
			p.next()
		case "#INDEX":
			if err := p.readIndex(w, norb, uhf); err != nil {
				return nil, err
			}
		default:
			p.next()
		}
	}
	for _, kind := range w.Kinds() {
		o := w.MO[kind]
		if o.Types == nil {
			o.DefaultTypes()
		}
	}
	if len(w.MO) == 0 {
		return nil, p.fail(Truncated)
	}
	if err := w.Check(); err != nil {
		return nil, errDecorate(err, "Read")
	}
	return w, nil
}

func occKind(uhf, beta bool) string {
	if !uhf {
		return molpy.Restricted
	}
	if beta {
		return molpy.Beta
	}
	return molpy.Alpha
}

// readOrbitals reads one #ORB/#UORB section as a block-diagonal
// coefficient matrix.
func (p *parser) readOrbitals(w *molpy.Wavefunction, norb []int) (*molpy.OrbitalSet, error) {
	totBas := 0
	totOrb := 0
	for i, n := range w.NBas {
		totBas += n
		totOrb += norb[i]
	}
	o := &molpy.OrbitalSet{
		Coeffs: mat.NewDense(totBas, totOrb, nil),
		NSym:   w.NSym,
		NBas:   append([]int(nil), w.NBas...),
	}
	if w.NSym > 1 {
		o.Irreps = make([]int, 0, totOrb)
	}
	basOff, orbOff := 0, 0
	for isym := 0; isym < w.NSym; isym++ {
		for iorb := 0; iorb < norb[isym]; iorb++ {
			col, err := p.readFloats(w.NBas[isym])
			if err != nil {
				return nil, err
			}
			for i, v := range col {
				o.Coeffs.Set(basOff+i, orbOff+iorb, v)
			}
			if o.Irreps != nil {
				o.Irreps = append(o.Irreps, isym)
			}
		}
		basOff += w.NBas[isym]
		orbOff += norb[isym]
	}
	p.next()
	return o, nil
}

// readIndex reads the per-symmetry type-code section and stamps the type
// codes on the channels present.
func (p *parser) readIndex(w *molpy.Wavefunction, norb []int, uhf bool) error {
	totOrb := 0
	for _, n := range norb {
		totOrb += n
	}
	types := make([]byte, 0, totOrb)
	for len(types) < totOrb && p.next() {
		if strings.HasPrefix(p.line, "*") || strings.HasPrefix(p.line, "#") {
			continue
		}
		fields := strings.Fields(p.line)
		if len(fields) != 2 {
			return p.fail("malformed index line " + strconv.Quote(p.line))
		}
		for _, r := range fields[1] {
			if !strings.ContainsRune(molpy.TypeCodes, r) {
				return p.fail("unknown orbital type code " + strconv.QuoteRune(r))
			}
			types = append(types, byte(r))
		}
	}
	if len(types) != totOrb {
		return p.fail(Truncated)
	}
	for _, kind := range w.Kinds() {
		w.MO[kind].Types = append([]byte(nil), types...)
	}
	p.next()
	return nil
}
