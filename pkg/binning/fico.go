package binning

import "fmt"

// FicoScale normalises score bounds [b0..bn] onto [0,1] and drops the top
// bound: (b[i]-b0)/(bn-b0) for i < n.
func FicoScale(bounds Vector) (Vector, error) {
	if bounds.Len() < 2 {
		return Vector{}, fmt.Errorf("%w: need at least 2 score bounds, got %d", ErrEmpty, bounds.Len())
	}

	head := bounds.values[bounds.Len()-1]
	tail := bounds.values[0]
	if head <= tail {
		return Vector{}, fmt.Errorf("%w: score bounds must ascend", ErrNotMonotonic)
	}

	out := make([]float64, bounds.Len()-1)
	for i := range out {
		out[i] = (bounds.values[i] - tail) / (head - tail)
	}
	return Vector{values: out}, nil
}

// FicoMedians returns the normalised midpoint of each score bin followed by
// a 1.0 sentinel for "above the top bin". A metric that digitizes a feature
// against k edges gets an index in [0,k]; with k+1 medians every index maps
// to a target score.
func FicoMedians(bounds Vector) (Vector, error) {
	fico, err := FicoScale(bounds)
	if err != nil {
		return Vector{}, err
	}

	medians := make([]float64, 0, fico.Len())
	for i := 0; i < fico.Len()-1; i++ {
		medians = append(medians, Round(fico.values[i]+(fico.values[i+1]-fico.values[i])/2, 2))
	}
	medians = append(medians, 1)

	return Vector{values: medians}, nil
}

// DeriveEdges scales the FICO scale by k, rounds it and drops the leading
// zero, e.g. DeriveEdges(fico, 25, 0) yields the monthly-count edges.
func DeriveEdges(fico Vector, k float64, decimals int) Vector {
	return fico.Scale(k).Round(decimals).Drop(1, 0)
}

// DeriveInverseEdges builds descending edges for features where lower is
// better (utilisation, interest frequency): reverse(round(fico*k))[:-1].
func DeriveInverseEdges(fico Vector, k float64, decimals int) Vector {
	return fico.Scale(k).Round(decimals).Reverse().Drop(0, 1)
}
