package fchk

import "fmt"

//Error is the general structure for checkpoint writer errors. It fulfills
//molpy.Err.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("fchk file %s error: %s", err.filename, err.message)
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
	UnableToOpen = "unable to open file"
	StillBlocked = "wavefunction still carries symmetry blocking, desymmetrize first"
	NoPrimitives = "basis set carries no primitive data"
)
