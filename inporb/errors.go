package inporb

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

//Error is the general structure for InpOrb codec errors. It fulfills
//molpy.Err.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("inporb file %s error: %s", err.filename, err.message)
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
	NotInpOrb    = "missing #INPORB magic"
	Truncated    = "file ends inside a section"
	UnableToOpen = "unable to open file"
)

//formatError marks the "not my format" verdict. It fulfills molpy.FormatErr.
//The base error is a field, not embedded, so it cannot shadow the Error
//method.
type formatError struct {
	err Error
}

func (err formatError) Error() string { return err.err.Error() }

func (err formatError) Decorate(deco string) []string { return err.err.Decorate(deco) }

func (formatError) NotThisFormat() {}
