// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nnls

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// With an identity factor the problem separates per variable: positive data
// is matched exactly, negative data is clamped at zero.
func TestActiveSetVector(t *testing.T) {

	a := NewTensor([]int{2}, []float64{2, -1})

	x, err := ActiveSetSpec{}.Solve(a, []*mat.Dense{eye(2)}, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{2, 0}, 1e-12) {
		t.Fatal("active set solution unexpected:", x.Vec())
	}
}

func TestActiveSetMatrix(t *testing.T) {

	a := NewTensor([]int{2, 2}, []float64{
		2, -1,
		-1, 3,
	})

	x, err := ActiveSetSpec{}.Solve(a, []*mat.Dense{eye(2), eye(2)}, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{2, 0, 0, 3}, 1e-12) {
		t.Fatal("active set solution unexpected:", x.Vec())
	}
}

// A dual vector with no violated constraint is terminal: the warm start is
// returned untouched.
func TestActiveSetStationary(t *testing.T) {

	a := NewTensor([]int{2}, []float64{2, 3})

	x, err := ActiveSetSpec{}.Solve(a, []*mat.Dense{eye(2)}, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{0, 0}, 0) {
		t.Fatal("active set moved a stationary point:", x.Vec())
	}

	warm := NewTensor([]int{2}, []float64{1, 1})
	x, err = ActiveSetSpec{}.Solve(a, []*mat.Dense{eye(2)}, warm)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{1, 1}, 0) {
		t.Fatal("active set moved a stationary point:", x.Vec())
	}
	if !almostEqual(warm.Vec(), []float64{1, 1}, 0) {
		t.Fatal("active set mutated the warm start")
	}
}

// Feeding a converged solution back as warm start must return it unchanged.
func TestActiveSetWarmStart(t *testing.T) {

	a := NewTensor([]int{2}, []float64{2, -1})
	b := []*mat.Dense{eye(2)}

	x, err := ActiveSetSpec{}.Solve(a, b, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	again, err := ActiveSetSpec{}.Solve(a, b, x)
	if err != nil {
		t.Fatal("active set warm restart failed:", err)
	}
	if !almostEqual(again.Vec(), x.Vec(), 1e-15) {
		t.Fatal("active set warm restart not idempotent:", again.Vec())
	}
}

// Entirely nonpositive data drives every variable to the boundary.
func TestActiveSetNegativeData(t *testing.T) {

	a := NewTensor([]int{1}, []float64{-2})

	x, err := ActiveSetSpec{}.Solve(a, []*mat.Dense{eye(1)}, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{0}, 0) {
		t.Fatal("active set solution unexpected:", x.Vec())
	}
}

// Correlated factor columns make the restricted solution infeasible after
// the second pivot, exercising the minimum-ratio repair.
func TestActiveSetRepair(t *testing.T) {

	b := mat.NewDense(3, 3, []float64{
		2, 0.95, 0,
		0, 0.31225, 0,
		0, 0, 1,
	})
	a := NewTensor([]int{3}, []float64{2.25, 5.9648, -1})

	x, err := ActiveSetSpec{}.Solve(a, []*mat.Dense{b}, nil)
	if err != nil {
		t.Fatal("active set failed:", err)
	}
	if !almostEqual(x.Vec(), []float64{1.125, 0, 0}, 1e-9) {
		t.Fatal("active set solution unexpected:", x.Vec())
	}
	if !nonNegative(x.Vec(), 0) {
		t.Fatal("active set solution has negative entries")
	}
}

// A zero factor column yields a singular restricted system once its index
// is pivoted in: the solve error surfaces unchanged.
func TestActiveSetSingular(t *testing.T) {

	b := mat.NewDense(2, 2, []float64{
		1, 0,
		-1, 0,
	})
	a := NewTensor([]int{2}, []float64{-1, 0})

	if _, err := (ActiveSetSpec{}).Solve(a, []*mat.Dense{b}, nil); err == nil {
		t.Fatal("active set accepted a singular restricted system")
	}
}

func TestActiveSetBadArgument(t *testing.T) {

	a := NewTensor([]int{2}, nil)

	if _, err := (ActiveSetSpec{}).Solve(a, nil, nil); err == nil {
		t.Fatal("active set accepted empty factor list")
	}
	if _, err := (ActiveSetSpec{}).Solve(a, []*mat.Dense{eye(3)}, nil); err == nil {
		t.Fatal("active set accepted mismatched factor")
	}
	if _, err := (ActiveSetSpec{}).Solve(a, []*mat.Dense{eye(2)}, NewTensor([]int{3}, nil)); err == nil {
		t.Fatal("active set accepted mismatched warm start")
	}
}
