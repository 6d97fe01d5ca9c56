// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nnls

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// FISTASpec configures the accelerated projected-gradient solver.
// The zero value selects the defaults of every field.
type FISTASpec struct {
	// MaxIter bounds the number of gradient iterations. Default: 100.
	MaxIter int
	// Step is the fixed gradient step size. Default: 0.001.
	Step float64
	// Sparsity is the coefficient shrinking the update toward sparser
	// solutions. Zero solves the unconstrained problem.
	Sparsity float64
}

// FISTA computes the nonnegative x approximately minimizing ‖ 𝐀 - 𝐁∘𝐱 ‖F²
// with an accelerated projected-gradient iteration.
//
// Each iteration evaluates the gradient at the extrapolated point
// 𝐱ₑ, takes the clamped step 𝛅 = 𝚖𝚒𝚗(step·𝐠, 𝐱ₑ) elementwise (an approximate
// nonnegativity projection: the clamp never pushes an entry below zero
// relative to the current point), and extrapolates the next point with the
// Nesterov momentum sequence. The iteration stops when ‖𝛅‖ falls below one
// percent of the norm captured at the second iteration.
//
// If x is nil the solver starts from zero, otherwise x serves as warm start;
// the returned tensor is owned by the caller.
//
// # References
//
//	A. Beck and M. Teboulle, A Fast Iterative Shrinkage-Thresholding
//	Algorithm for Linear Inverse Problems,
//	SIAM J. Imaging Sciences 2 (1): 183-202, 2009.
func (s FISTASpec) Solve(a *Tensor, b []*mat.Dense, x *Tensor) (*Tensor, error) {

	xDims, err := factorDims(a, b)
	if err != nil {
		return nil, err
	}
	switch {
	case s.MaxIter < 0:
		err = errors.New("max iteration must not less than 0")
	case s.Step < zero:
		err = errors.New("gradient step must not less than 0")
	}
	if err != nil {
		return nil, err
	}

	maxIter, step := s.MaxIter, s.Step
	if maxIter == 0 {
		maxIter = 100
	}
	if step == 0 {
		step = 0.001
	}

	if x == nil {
		x = NewTensor(xDims, nil)
	} else {
		if !sameDims(x.dims, xDims) {
			return nil, errors.New("warm start dimension must match factor columns")
		}
		x = x.Clone()
	}

	grams := make([]*mat.Dense, len(b))
	for i, bi := range b {
		g := new(mat.Dense)
		g.Mul(bi.T(), bi)
		grams[i] = g
	}
	bta := multiModeDot(a, b, true).Vec()

	xd := x.Vec()   // current iterate
	xe := x.Clone() // extrapolated point
	xed := xe.Vec()
	xnew := make([]float64, len(xd))

	momentum := one
	var norm0 float64
	for iteration := 0; iteration < maxIter; iteration++ {
		// 𝐠 = -𝐁ᵗ𝐀 + pseudo-Gram·𝐱ₑ + sparsity
		g := multiModeDot(xe, grams, false).Vec()

		var deltaNorm float64
		for i := range g {
			d := step * (g[i] - bta[i] + s.Sparsity)
			if xed[i] < d {
				d = xed[i]
			}
			xnew[i] = xed[i] - d
			deltaNorm += d * d
		}

		next := nesterov(momentum)
		coef := (momentum - one) / next
		for i := range xed {
			xed[i] = xnew[i] + coef*(xnew[i]-xd[i])
		}
		copy(xd, xnew)
		momentum = next

		norm := math.Sqrt(deltaNorm)
		if iteration == 1 {
			norm0 = norm
		}
		if norm < 0.01*norm0 {
			break
		}
	}

	return x, nil
}

// nesterov advances the momentum sequence: mₖ₊₁ = (1+√(1+4mₖ²))/2.
func nesterov(m float64) float64 {
	return (one + math.Sqrt(one+4*m*m)) / 2
}
