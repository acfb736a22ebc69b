/*
 * errors.go, part of molpy
 *
 * Copyright 2024 The molpy authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package molpy

import "fmt"

// Err is the interface all errors in this library implement. The Decorate
// method adds information as the error travels up the call stack without
// changing its type. Passed an empty string it only returns the current
// decoration slice.
type Err interface {
	Error() string
	Decorate(string) []string
}

// FormatErr marks a reader's "this is not my format" verdict, so a caller
// probing codecs in preference order can tell it apart from real I/O or
// corruption failures and move on to the next codec.
type FormatErr interface {
	Err
	NotThisFormat()
}

// MissingErr marks the failure of an operation that needs data the loaded
// wavefunction simply does not carry: no symmetry to strip, no density for
// the requested state, no integrals for a guess. Recoverable in the sense
// that the wavefunction is left untouched.
type MissingErr interface {
	Err
	Missing() string // what was absent
}

// Error is the general error of the root package. It fulfills Err.
type Error struct {
	message  string
	filename string // the related file, or empty
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.filename, err.message)
}

// Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	//The receiver is not a pointer but deco is a slice, hence itself a
	//pointer, so the append is visible to the caller's copy too.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

// missingError fulfills MissingErr. The base error is held as a field, not
// embedded: an embedded field named Error would shadow the Error method.
type missingError struct {
	err  Error
	what string
}

func (err missingError) Error() string { return err.err.Error() }

func (err missingError) Decorate(deco string) []string { return err.err.Decorate(deco) }

func (err missingError) Missing() string { return err.what }

// NewMissing builds the error for an operation that found the wavefunction
// lacks what, with a user-facing message.
func NewMissing(what, message, caller string) error {
	return missingError{Error{message, "", []string{caller}, false}, what}
}

// IsMissing reports whether err is the missing-data condition.
func IsMissing(err error) bool {
	_, ok := err.(MissingErr)
	return ok
}

// IsFormat reports whether err is a codec's format-mismatch verdict.
func IsFormat(err error) bool {
	_, ok := err.(FormatErr)
	return ok
}

// errDecorate asserts that err implements Err and decorates it with the
// caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(Err)
	err2.Decorate(caller)
	return err2
}

// Messages shared by operations of the root package.
const (
	NoSymmetry   = "wavefunction carries no symmetry information"
	NoBasis      = "no basis-set information available"
	NoOverlap    = "no AO overlap matrix available"
	NoCoreH      = "no core Hamiltonian available"
	NoDensity    = "no density matrix available"
	NoSuchState  = "no density stored for the requested state"
	NoOccupation = "orbital set carries no occupation numbers"
)
