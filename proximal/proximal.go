// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package proximal provides closed-form proximal operators used alongside
// the nonnegative least-squares solvers in regularized factorization loops:
// elementwise soft-thresholding for L1 penalties, singular-value
// thresholding for nuclear-norm penalties, and the Procrustes projection
// onto orthogonal matrices.
package proximal

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SoftThreshold applies the soft-thresholding operator
//
//	𝚜𝚒𝚐𝚗(a)⊙𝚖𝚊𝚡(|a| - threshold, 0)
//
// elementwise and returns the result as a new matrix.
func SoftThreshold(a *mat.Dense, threshold float64) *mat.Dense {
	r, c := a.Dims()
	t := mat.NewDense(r, c, nil)
	t.Apply(func(_, _ int, x float64) float64 {
		return softValue(x, threshold)
	}, a)
	return t
}

// SoftThresholdEach is SoftThreshold with one threshold per element.
// A zero threshold entry leaves the corresponding value untouched.
// SoftThresholdEach panics with mat.ErrShape when the dimensions of a and
// threshold differ.
func SoftThresholdEach(a, threshold *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	if tr, tc := threshold.Dims(); tr != r || tc != c {
		panic(mat.ErrShape)
	}
	t := mat.NewDense(r, c, nil)
	t.Apply(func(i, j int, x float64) float64 {
		return softValue(x, threshold.At(i, j))
	}, a)
	return t
}

// SVDThreshold applies the singular-value thresholding operator
//
//	𝐔·𝚍𝚒𝚊𝚐(𝚜𝚘𝚏𝚝(𝐬, threshold))·𝐕ᵀ
//
// where 𝐔·𝚍𝚒𝚊𝚐(𝐬)·𝐕ᵀ is the thin SVD of a. An error is returned when the
// decomposition fails to converge.
func SVDThreshold(a *mat.Dense, threshold float64) (*mat.Dense, error) {
	u, s, v, err := thinSVD(a)
	if err != nil {
		return nil, err
	}
	for i, x := range s {
		s[i] = softValue(x, threshold)
	}
	var us, r mat.Dense
	us.Mul(u, mat.NewDiagDense(len(s), s))
	r.Mul(&us, v.T())
	return &r, nil
}

// Procrustes projects a onto the orthogonal matrices: 𝐔·𝐕ᵀ with 𝐔, 𝐕 the
// singular vectors of a. An error is returned when the decomposition fails
// to converge.
func Procrustes(a *mat.Dense) (*mat.Dense, error) {
	u, _, v, err := thinSVD(a)
	if err != nil {
		return nil, err
	}
	var r mat.Dense
	r.Mul(u, v.T())
	return &r, nil
}

func thinSVD(a *mat.Dense) (u *mat.Dense, s []float64, v *mat.Dense, err error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, nil, nil, errors.New("proximal: singular value decomposition did not converge")
	}
	u, v = new(mat.Dense), new(mat.Dense)
	svd.UTo(u)
	svd.VTo(v)
	return u, svd.Values(nil), v, nil
}

func softValue(x, t float64) float64 {
	if x == 0 {
		return 0
	}
	s := math.Abs(x) - t
	if s <= 0 {
		return 0
	}
	return math.Copysign(s, x)
}
