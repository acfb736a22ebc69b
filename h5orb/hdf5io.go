package h5orb

import (
	"gonum.org/v1/hdf5"
)

// Low-level helpers over the gonum HDF5 bindings. Readers return the Go
// error for the caller to classify; optional datasets are simply probed and
// their absence swallowed at the call site.

func readFloats(f *hdf5.File, name string) ([]float64, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}
	out := make([]float64, n)
	if err := dset.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func readGroupFloats(g *hdf5.Group, name string) ([]float64, error) {
	dset, err := g.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}
	out := make([]float64, n)
	if err := dset.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func readInts(f *hdf5.File, name string) ([]int32, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, err
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil, err
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}
	out := make([]int32, n)
	if err := dset.Read(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func readBytes(f *hdf5.File, name string) []byte {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil {
		return nil
	}
	n := uint(1)
	for _, d := range dims {
		n *= d
	}
	out := make([]byte, n)
	if err := dset.Read(&out); err != nil {
		return nil
	}
	return out
}

func readStrings(f *hdf5.File, name string) []string {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil
	}
	defer dset.Close()
	dims, _, err := dset.Space().SimpleExtentDims()
	if err != nil || len(dims) != 1 {
		return nil
	}
	out := make([]string, dims[0])
	if err := dset.Read(&out); err != nil {
		return nil
	}
	return out
}

func writeFloats(f *hdf5.File, name string, dims []uint, data []float64) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	defer dset.Close()
	return dset.Write(&data)
}

func writeInts(f *hdf5.File, name string, dims []uint, data []int32) error {
	space, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_INT32, space)
	if err != nil {
		return err
	}
	defer dset.Close()
	return dset.Write(&data)
}

func writeBytes(f *hdf5.File, name string, data []byte) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_UCHAR, space)
	if err != nil {
		return err
	}
	defer dset.Close()
	return dset.Write(&data)
}

func writeStrings(f *hdf5.File, name string, data []string) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_GO_STRING, space)
	if err != nil {
		return err
	}
	defer dset.Close()
	return dset.Write(&data)
}

