// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nnls provides iterative solvers for the nonnegative least-squares
// subproblem 𝚖𝚒𝚗 ‖ 𝐀 - 𝐁𝐱 ‖F² subject to 𝐱 ≥ 0, as used inside alternating
// nonnegative matrix and tensor factorization loops.
//
// Three interchangeable strategies are provided:
//   - HALS : block-coordinate descent over the rows of the unknown factor
//   - ActiveSet : Lawson-Hanson style passive/active pivoting
//   - FISTA : accelerated projected gradient with Nesterov momentum
//
// Each solver is a pure function of its inputs: no state is shared between
// invocations and independent calls may run concurrently. A warm-start input
// is owned by the solver for the duration of the call and may be mutated.
package nnls

import (
	"fmt"
)

const (
	zero = 0.0
	one  = 1.0
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

// DegenerateRowError reports a row of the unknown factor whose Gram diagonal
// entry is zero while the solver was asked to keep every row nonzero.
// No recovery is possible: the caller must drop the degenerate column of the
// fixed factor upstream.
type DegenerateRowError struct {
	// Row is the offending 0-based row index.
	Row int
}

func (e *DegenerateRowError) Error() string {
	return fmt.Sprintf("nnls: gram diagonal of row %d is zero with nonzero rows required", e.Row)
}
