package pipeline

import (
	"fmt"

	"github.com/mcocdawc/molpy"
)

//errDecorate asserts that err implements molpy.Err and decorates it with
//the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(molpy.Err)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for pipeline errors. It fulfills molpy.Err.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	if err.filename == "" {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error.
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	NoSuchInput   = "input file does not exist"
	NoKnownFormat = "file matches no known wavefunction format"
	AlreadyThere  = "output file exists; remove it, pass the force flag, or pick another name"
	NoJoinKeys    = "joined file shares no orbital channel with the input"
	UnknownFormat = "unknown output format"
	NoWFAHere     = "input format cannot carry WFA orbitals"
)

//unreadableError marks a file that no codec accepts or that is missing.
//The base error is a field, not embedded, so it cannot shadow the Error
//method.
type unreadableError struct {
	err Error
}

func (err unreadableError) Error() string { return err.err.Error() }

func (err unreadableError) Decorate(deco string) []string { return err.err.Decorate(deco) }

func (unreadableError) Unreadable() {}

//existsError marks an overwrite refusal.
type existsError struct {
	err Error
}

func (err existsError) Error() string { return err.err.Error() }

func (err existsError) Decorate(deco string) []string { return err.err.Decorate(deco) }

func (existsError) OutputExists() {}

// IsUnreadable reports whether err is the no-codec-accepts condition.
func IsUnreadable(err error) bool {
	type u interface{ Unreadable() }
	_, ok := err.(u)
	return ok
}

// IsExists reports whether err is the overwrite refusal.
func IsExists(err error) bool {
	type e interface{ OutputExists() }
	_, ok := err.(e)
	return ok
}
