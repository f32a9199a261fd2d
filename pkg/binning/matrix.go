package binning

import (
	"errors"
	"fmt"
	"math"
)

var ErrShape = errors.New("invalid matrix shape")

// Matrix is an immutable 2-D score grid stored row-major.
type Matrix struct {
	rows, cols int
	cells      []float64
}

// BuildLogMatrix builds a rows x cols grid where
//
//	cell[m][n] = round(rowScalar*log10(m+1) + colScalar*log10(n+1), 2)
//
// so scores grow smoothly along both dimensions.
func BuildLogMatrix(rows, cols int, rowScalar, colScalar float64) (Matrix, error) {
	if rows <= 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("%w: %dx%d", ErrShape, rows, cols)
	}

	cells := make([]float64, rows*cols)
	for m := 0; m < rows; m++ {
		for n := 0; n < cols; n++ {
			cells[m*cols+n] = Round(rowScalar*math.Log10(float64(m+1))+colScalar*math.Log10(float64(n+1)), 2)
		}
	}

	return Matrix{rows: rows, cols: cols, cells: cells}, nil
}

func (m Matrix) Rows() int { return m.rows }
func (m Matrix) Cols() int { return m.cols }

func (m Matrix) At(row, col int) (float64, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, fmt.Errorf("%w: cell (%d,%d) not in %dx%d", ErrOutOfRange, row, col, m.rows, m.cols)
	}
	return m.cells[row*m.cols+col], nil
}

// T returns the transposed grid.
func (m Matrix) T() Matrix {
	cells := make([]float64, len(m.cells))
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			cells[c*m.rows+r] = m.cells[r*m.cols+c]
		}
	}
	return Matrix{rows: m.cols, cols: m.rows, cells: cells}
}

// Row returns a copy of a single row.
func (m Matrix) Row(row int) ([]float64, error) {
	if row < 0 || row >= m.rows {
		return nil, fmt.Errorf("%w: row %d not in [0,%d)", ErrOutOfRange, row, m.rows)
	}
	out := make([]float64, m.cols)
	copy(out, m.cells[row*m.cols:(row+1)*m.cols])
	return out, nil
}
