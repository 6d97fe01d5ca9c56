// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nnls

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// HALSSpec configures the accelerated HALS solver.
// The zero value selects the defaults of every field.
type HALSSpec struct {
	// MaxIter bounds the number of row sweeps.
	// Default: 500 (5000 in exact mode).
	MaxIter int
	// Tol is the early-stop tolerance relative to the baseline error
	// captured at the second sweep. Default: 1e-7 (1e-12 in exact mode).
	Tol float64
	// Sparsity is the coefficient controlling the sparsity level of the
	// solution. Zero solves the unconstrained problem.
	Sparsity float64
	// Normalize rescales every updated row to unit norm.
	Normalize bool
	// NonzeroRows forbids zero rows in the solution: a row whose Gram
	// diagonal is zero becomes a DegenerateRowError, and a row converging
	// to zero is rescued with a machine-epsilon floor.
	NonzeroRows bool
	// Exact switches to the tight-tolerance high-iteration mode used for
	// final refinement: MaxIter 5000, Tol 1e-12, and the adaptive
	// complexity cap disabled.
	Exact bool
}

// HALSResult holds the solution and the convergence trackers of a HALS run.
type HALSResult struct {
	// V is the r×n nonnegative solution, the same object as a provided
	// warm start.
	V *mat.Dense
	// RecError is the sum of squared row updates of the last sweep,
	// a progress proxy rather than the true reconstruction error.
	RecError float64
	// Iterations is the index of the last sweep performed.
	Iterations int
	// ComplexityRatio is the precomputation-vs-update cost ratio bounding
	// the adaptive iteration cap.
	ComplexityRatio float64
}

// HALS computes an approximate solution of 𝚖𝚒𝚗 ‖ 𝐌 - 𝐔𝐕 ‖F² subject to
// 𝐕 ≥ 0 with an exact block-coordinate descent scheme over the rows of 𝐕,
// given the precomputed Gram products utm = 𝐔ᵀ𝐌 (r×n) and utu = 𝐔ᵀ𝐔 (r×r).
//
// The update rule for row k is
//
//	𝐕[k,:] += 𝚖𝚊𝚡( (𝐔ᵀ𝐌[k,:] - 𝐔ᵀ𝐔[k,:]·𝐕 - sparsity)/𝐔ᵀ𝐔[k,k], -𝐕[k,:] )
//
// applied sequentially, so that row k+1 sees the updated row k. Two
// accelerations bound the effort relative to the Gram precomputation: an
// early-stop criterion against the error of the second sweep, and an
// adaptive iteration cap derived from the precomputation/update cost ratio.
// The scheme is designed to be called repeatedly inside an outer alternating
// factorization loop, reusing the previous solution as warm start.
//
// If v is nil, the solver starts from the clipped unconstrained solution of
// the full system, rescaled to correct the clipping bias. Otherwise v is
// owned by the solver for the duration of the call and mutated in place.
//
// # References
//
//	N. Gillis and F. Glineur, Accelerated Multiplicative Updates and
//	Hierarchical ALS Algorithms for Nonnegative Matrix Factorization,
//	Neural Computation 24 (4): 1085-1105, 2012.
func (s HALSSpec) Solve(utm, utu, v *mat.Dense) (*HALSResult, error) {

	rank, n := utm.Dims()
	ur, uc := utu.Dims()

	var err error
	switch {
	case ur != uc || ur != rank:
		err = errors.New("gram matrix dimension must match factor rank")
	case s.MaxIter < 0:
		err = errors.New("max iteration must not less than 0")
	case s.Tol < zero || s.Tol > one:
		err = errors.New("tolerance must lie in [0,1]")
	case v != nil:
		if vr, vc := v.Dims(); vr != rank || vc != n {
			err = errors.New("warm start dimension must match gram products")
		}
	}
	if err != nil {
		return nil, err
	}

	maxIter, tol := s.MaxIter, s.Tol
	if maxIter == 0 {
		maxIter = 500
	}
	if tol == 0 {
		tol = 1e-7
	}
	if s.Exact {
		maxIter, tol = 5000, 1e-12
	}

	if v == nil {
		if v, err = halsInit(utm, utu); err != nil {
			return nil, err
		}
	}

	// Cost ratio between the Gram precomputation and one row sweep.
	ratio := one + float64(rank*n+n*rank)/float64(rank*rank+rank)

	acc := make([]float64, n)
	delta := make([]float64, n)

	var recError, recError0 float64
	iteration := 0
	for {
		recError = zero
		for k := 0; k < rank; k++ {
			ukk := utu.At(k, k)
			if ukk == zero {
				if s.NonzeroRows {
					return nil, &DegenerateRowError{Row: k}
				}
				// Degenerate rows are left untouched.
			} else {
				row := v.RawRowView(k)
				urow := utu.RawRowView(k)
				mrow := utm.RawRowView(k)

				// acc = 𝐔ᵀ𝐔[k,:]·𝐕
				for i := range acc {
					acc[i] = zero
				}
				for i := 0; i < rank; i++ {
					floats.AddScaled(acc, urow[i], v.RawRowView(i))
				}

				// Clamp the step below by -𝐕[k,:] so the row stays nonnegative.
				for j := range delta {
					d := (mrow[j] - acc[j] - s.Sparsity) / ukk
					if d < -row[j] {
						d = -row[j]
					}
					delta[j] = d
				}
				floats.Add(row, delta)
				recError += floats.Dot(delta, delta)

				// Rescue a row that converged to zero when zero rows are forbidden.
				if s.NonzeroRows && allZero(row) {
					floor := eps * mat.Max(v)
					for j := range row {
						row[j] = floor
					}
				}
			}

			if s.Normalize {
				row := v.RawRowView(k)
				if norm := floats.Norm(row, 2); norm != zero {
					floats.Scale(one/norm, row)
				} else {
					u := one / math.Sqrt(float64(n))
					for j := range row {
						row[j] = u
					}
				}
			}
		}

		// The early-stop baseline is the error of the second sweep,
		// skipping the cold-start transient of the first.
		if iteration == 1 {
			recError0 = recError
		}

		stop := recError <= tol*recError0
		if !s.Exact {
			stop = stop || float64(iteration) > one+0.5*ratio
		}
		if stop || iteration+1 >= maxIter {
			break
		}
		iteration++
	}

	return &HALSResult{
		V:               v,
		RecError:        recError,
		Iterations:      iteration,
		ComplexityRatio: ratio,
	}, nil
}

// halsInit computes the clipped unconstrained solution of the full system,
// rescaled by 𝚜𝚞𝚖(𝐔ᵀ𝐌⊙𝐕)/𝚜𝚞𝚖(𝐔ᵀ𝐔⊙(𝐕𝐕ᵀ)) to correct the clipping bias.
func halsInit(utm, utu *mat.Dense) (*mat.Dense, error) {
	rank, _ := utm.Dims()

	v := new(mat.Dense)
	if err := v.Solve(utu, utm); err != nil {
		return nil, err
	}
	v.Apply(func(_, _ int, x float64) float64 { return math.Max(x, zero) }, v)

	var vvt mat.Dense
	vvt.Mul(v, v.T())

	var num, den float64
	for i := 0; i < rank; i++ {
		num += floats.Dot(utm.RawRowView(i), v.RawRowView(i))
		den += floats.Dot(utu.RawRowView(i), vvt.RawRowView(i))
	}
	if den != zero {
		v.Scale(num/den, v)
	}
	return v, nil
}

func allZero(row []float64) bool {
	for _, x := range row {
		if x != zero {
			return false
		}
	}
	return true
}
