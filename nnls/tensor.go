// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nnls

import (
	"gonum.org/v1/gonum/mat"
)

// Tensor is a dense real tensor stored as a flat slice in C (row-major) order:
// the last mode varies fastest. A matrix is a Tensor of order 2 and a vector
// a Tensor of order 1.
//
// The C-order layout makes vectorization agree with natural-order Kronecker
// products: 𝚟𝚎𝚌(𝐓 ×₀ 𝐌₀ ×₁ 𝐌₁ ··· ) = (𝐌₀ ⊗ 𝐌₁ ⊗ ···) 𝚟𝚎𝚌(𝐓).
type Tensor struct {
	dims []int
	data []float64
}

// NewTensor creates a tensor with the given dimensions backed by data.
// If data is nil, a zero tensor is allocated. NewTensor panics when data is
// non-nil and its length does not match the product of dims, or when any
// dimension is not positive.
func NewTensor(dims []int, data []float64) *Tensor {
	n := 1
	for _, d := range dims {
		if d <= 0 {
			panic("nnls: non-positive tensor dimension")
		}
		n *= d
	}
	if data == nil {
		data = make([]float64, n)
	} else if len(data) != n {
		panic("nnls: tensor data length mismatch")
	}
	d := make([]int, len(dims))
	copy(d, dims)
	return &Tensor{dims: d, data: data}
}

// Dims returns a copy of the tensor dimensions.
func (t *Tensor) Dims() []int {
	d := make([]int, len(t.dims))
	copy(d, t.dims)
	return d
}

// Order returns the number of modes.
func (t *Tensor) Order() int { return len(t.dims) }

// Size returns the total number of elements.
func (t *Tensor) Size() int { return len(t.data) }

// Vec returns the backing slice of the tensor in C order.
// Mutations of the returned slice are visible in the tensor.
func (t *Tensor) Vec() []float64 { return t.data }

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := NewTensor(t.dims, nil)
	copy(c.data, t.data)
	return c
}

func sameDims(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, d := range a {
		if d != b[i] {
			return false
		}
	}
	return true
}

// unfold returns the mode-m unfolding of t: a dims[m] × (size/dims[m]) matrix
// whose row k collects every element with mode-m index k, remaining modes in
// C order.
func (t *Tensor) unfold(mode int) *mat.Dense {
	outer, inner := 1, 1
	for _, d := range t.dims[:mode] {
		outer *= d
	}
	for _, d := range t.dims[mode+1:] {
		inner *= d
	}
	dm := t.dims[mode]
	u := mat.NewDense(dm, outer*inner, nil)
	for o := 0; o < outer; o++ {
		for k := 0; k < dm; k++ {
			src := (o*dm + k) * inner
			row := u.RawRowView(k)
			copy(row[o*inner:(o+1)*inner], t.data[src:src+inner])
		}
	}
	return u
}

// fold is the inverse of unfold for a tensor whose mode-th dimension has been
// replaced by the row count of u.
func fold(u *mat.Dense, mode int, dims []int) *Tensor {
	dm, _ := u.Dims()
	nd := make([]int, len(dims))
	copy(nd, dims)
	nd[mode] = dm
	outer, inner := 1, 1
	for _, d := range nd[:mode] {
		outer *= d
	}
	for _, d := range nd[mode+1:] {
		inner *= d
	}
	t := NewTensor(nd, nil)
	for o := 0; o < outer; o++ {
		for k := 0; k < dm; k++ {
			dst := (o*dm + k) * inner
			row := u.RawRowView(k)
			copy(t.data[dst:dst+inner], row[o*inner:(o+1)*inner])
		}
	}
	return t
}

// modeDot contracts the given mode of t with matrix m, or with mᵀ when
// transpose is set. The contracted dimension of t must equal the column count
// of m (row count when transposed).
func (t *Tensor) modeDot(m *mat.Dense, mode int, transpose bool) *Tensor {
	u := t.unfold(mode)
	var r mat.Dense
	if transpose {
		r.Mul(m.T(), u)
	} else {
		r.Mul(m, u)
	}
	return fold(&r, mode, t.dims)
}

// multiModeDot contracts every mode of t with the corresponding matrix in ms,
// in mode order.
func multiModeDot(t *Tensor, ms []*mat.Dense, transpose bool) *Tensor {
	for mode, m := range ms {
		t = t.modeDot(m, mode, transpose)
	}
	return t
}

// kronecker returns the Kronecker product 𝐌₀ ⊗ 𝐌₁ ⊗ ··· in natural order.
func kronecker(ms []*mat.Dense) *mat.Dense {
	res := mat.NewDense(1, 1, []float64{one})
	for _, m := range ms {
		var next mat.Dense
		next.Kronecker(res, m)
		res = &next
	}
	return res
}
