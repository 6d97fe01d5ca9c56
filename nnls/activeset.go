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

// ActiveSetSpec configures the active-set solver.
// The zero value selects the defaults of every field.
type ActiveSetSpec struct {
	// MaxIter bounds the worst-case pivoting. Default: 100.
	MaxIter int
}

// ActiveSet computes the nonnegative x minimizing ‖ 𝐀 - 𝐁∘𝐱 ‖F², where a is
// approximated by the multi-mode product of x with the factor list b, using
// active-set pivoting over the vectorized variables.
//
// The variables are partitioned into a passive set ℙ (free to take positive
// values) and an active set ℝ (held at zero). Each iteration relaxes the
// most violated constraint 𝚊𝚛𝚐𝚖𝚊𝚡(𝐰) of the dual vector
// 𝐰 = 𝐀ᵗ𝐁 - 𝐀ᵗ𝐀·𝐱, solves the unconstrained restricted system on ℙ, and
// repairs infeasible solutions with a minimum-ratio line search, evicting
// variables driven negative back to ℝ. The iteration terminates at KKT
// stationarity 𝚖𝚒𝚗(𝐰) ≥ 0, when the update norm stops decreasing, or when
// ℝ is exhausted.
//
// If x is nil the solver starts from zero, otherwise x serves as warm start;
// the returned tensor is owned by the caller and always elementwise
// nonnegative. A singular restricted system surfaces the error of the
// underlying solve unchanged.
//
// # References
//
//	C.L. Lawson, R.J. Hanson, 'Solving least squares problems'
//	Prentice Hall, 1974. Chapter 23, Algorithm 23.10.
func (s ActiveSetSpec) Solve(a *Tensor, b []*mat.Dense, x *Tensor) (*Tensor, error) {

	xDims, err := factorDims(a, b)
	if err != nil {
		return nil, err
	}
	if s.MaxIter < 0 {
		return nil, errors.New("max iteration must not less than 0")
	}
	maxIter := s.MaxIter
	if maxIter == 0 {
		maxIter = 100
	}

	if x == nil {
		x = NewTensor(xDims, nil)
	} else {
		if !sameDims(x.dims, xDims) {
			return nil, errors.New("warm start dimension must match factor columns")
		}
		x = x.Clone()
	}
	xv := x.Vec()
	n := len(xv)

	// Pseudo-Gram matrix 𝐁ᵢᵀ𝐁ᵢ per mode.
	grams := make([]*mat.Dense, len(b))
	for i, bi := range b {
		g := new(mat.Dense)
		g.Mul(bi.T(), bi)
		grams[i] = g
	}

	// 𝐀ᵗ𝐁 is the vectorized cross term, 𝐀ᵗ𝐀 the Kronecker product of the
	// pseudo-Grams; both are precomputed once and reused across pivots.
	atb := multiModeDot(a, b, true).Vec()
	ata := kronecker(grams)

	w := make([]float64, n)
	sv := make([]float64, n)
	gradient := func() {
		var g mat.VecDense
		g.MulVec(ata, mat.NewVecDense(n, xv))
		for i := range w {
			w[i] = atb[i] - g.AtVec(i)
		}
	}
	gradient()

	pass := newIndexSet(n, false)
	act := newIndexSet(n, true)

	var prevNorm float64
	for iteration := 0; iteration < maxIter; iteration++ {
		// KKT stationarity: no constraint left to relax.
		if floats.Min(w) >= zero {
			break
		}

		// Greedy most-violated-constraint pivot, skipped when the
		// candidate is already the newest passive variable.
		if t := floats.MaxIdx(w); pass.len() == 0 || pass.last() != t {
			act.remove(t)
			pass.add(t)
		}

		if err := solveRestricted(ata, atb, pass.order, sv); err != nil {
			return nil, err
		}

		var norm float64
		if minAt(sv, pass.order) <= zero {
			// Feasibility repair: step toward the restricted solution
			// as far as the nonnegativity boundary allows, evicting
			// every passive variable driven negative.
			for i := 0; i < pass.len(); i++ {
				alpha := math.Inf(1)
				for _, j := range pass.order {
					if r := xv[j] / (xv[j] - sv[j]); r < alpha {
						alpha = r
					}
				}
				alpha = -alpha

				norm = zero
				for _, j := range pass.order {
					u := alpha * (sv[j] - xv[j])
					xv[j] += u
					norm += u * u
				}

				if ji := pass.order[i]; xv[ji] < zero {
					pass.remove(ji)
					act.add(ji)
					if err := solveRestricted(ata, atb, pass.order, sv); err != nil {
						return nil, err
					}
					if sv[ji] > zero {
						xv[ji] = sv[ji]
					} else {
						xv[ji] = zero
					}
				}
				if pass.len() == 0 || minAt(sv, pass.order) > zero {
					break
				}
			}
		} else {
			for _, j := range pass.order {
				u := sv[j] - xv[j]
				norm += u * u
				xv[j] = sv[j]
			}
		}
		norm = math.Sqrt(norm)

		gradient()

		if iteration >= 1 {
			if floats.Min(xv) >= zero || prevNorm-norm < zero {
				break
			}
			if act.len() == 0 {
				break
			}
		}
		prevNorm = norm
	}

	// Nonnegativity is a postcondition, not a target: zero out round-off.
	for i, v := range xv {
		if v < zero {
			xv[i] = zero
		}
	}
	return x, nil
}

// solveRestricted solves 𝐀ᵗ𝐀[ℙ,ℙ]·𝐬[ℙ] = 𝐀ᵗ𝐁[ℙ] and scatters the solution
// back into s at the passive indices. Entries outside ℙ are left untouched.
func solveRestricted(ata *mat.Dense, atb []float64, p []int, s []float64) error {
	k := len(p)
	if k == 0 {
		return nil
	}
	sub := mat.NewDense(k, k, nil)
	rhs := mat.NewVecDense(k, nil)
	for i, pi := range p {
		for j, pj := range p {
			sub.Set(i, j, ata.At(pi, pj))
		}
		rhs.SetVec(i, atb[pi])
	}
	var sol mat.VecDense
	if err := sol.SolveVec(sub, rhs); err != nil {
		return err
	}
	for i, pi := range p {
		s[pi] = sol.AtVec(i)
	}
	return nil
}

// factorDims validates the data tensor against the factor list and returns
// the dimensions of the unknown: one mode per factor, sized by its columns.
func factorDims(a *Tensor, b []*mat.Dense) ([]int, error) {
	if len(b) == 0 {
		return nil, errors.New("factor list must not be empty")
	}
	if len(b) != a.Order() {
		return nil, errors.New("factor list length must match tensor order")
	}
	dims := make([]int, len(b))
	for i, bi := range b {
		r, c := bi.Dims()
		if r != a.dims[i] {
			return nil, errors.New("factor rows must match tensor dimension")
		}
		dims[i] = c
	}
	return dims, nil
}

// minAt returns the minimum of s over the given indices, or +Inf when idx
// is empty.
func minAt(s []float64, idx []int) float64 {
	m := math.Inf(1)
	for _, i := range idx {
		if s[i] < m {
			m = s[i]
		}
	}
	return m
}
