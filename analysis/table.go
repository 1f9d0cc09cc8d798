package analysis

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-elliot/spectrum"
)

// Errors returned for table access.
var (
	ErrDatasetIndex = errors.New("analysis: dataset index out of range")
	ErrRaggedTable  = errors.New("analysis: column length differs from axis")
)

// AxisUnit is the unit of a table's first column.
type AxisUnit int

const (
	// Wavelength axes are in nm and converted with E = 1239.84193/λ.
	Wavelength AxisUnit = iota
	// Energy axes are already in eV.
	Energy
)

func (u AxisUnit) String() string {
	if u == Energy {
		return "eV"
	}

	return "nm"
}

// Table is a measurement file: one axis column and one absorption column
// per dataset.
type Table struct {
	Name    string
	Unit    AxisUnit
	Axis    []float64
	Columns [][]float64
}

// NumDatasets returns the number of absorption columns.
func (t Table) NumDatasets() int { return len(t.Columns) }

// Energies converts the axis to photon energies.
func (t Table) Energies() ([]float64, error) {
	if t.Unit == Energy {
		return append([]float64(nil), t.Axis...), nil
	}

	return spectrum.WavelengthToEnergy(t.Axis)
}

// Dataset builds the spectrum of 1-based dataset n.
func (t Table) Dataset(n int) (spectrum.Spectrum, error) {
	if n < 1 || n > len(t.Columns) {
		return spectrum.Spectrum{}, fmt.Errorf("%w: %d not in 1..%d", ErrDatasetIndex, n, len(t.Columns))
	}

	col := t.Columns[n-1]
	if len(col) != len(t.Axis) {
		return spectrum.Spectrum{}, fmt.Errorf("%w: dataset %d has %d rows, axis %d", ErrRaggedTable, n, len(col), len(t.Axis))
	}

	energies, err := t.Energies()
	if err != nil {
		return spectrum.Spectrum{}, err
	}

	return spectrum.New(energies, col)
}

// selection resolves Config.Datasets against the table.
func (t Table) selection(datasets []int) []int {
	if len(datasets) > 0 {
		return append([]int(nil), datasets...)
	}

	all := make([]int, len(t.Columns))
	for i := range all {
		all[i] = i + 1
	}

	return all
}
