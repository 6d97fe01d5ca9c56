// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nnls

// indexSet is an ordered set of variable indices over a fixed range,
// pairing an insertion-ordered list with a presence bitmap so that
// membership tests are O(1) while iteration keeps insertion order.
// The passive/active partition of the active-set solver maintains two of
// these over the same range: every index belongs to exactly one of them.
type indexSet struct {
	order  []int
	member []bool
}

func newIndexSet(n int, full bool) *indexSet {
	s := &indexSet{
		order:  make([]int, 0, n),
		member: make([]bool, n),
	}
	if full {
		for i := 0; i < n; i++ {
			s.order = append(s.order, i)
			s.member[i] = true
		}
	}
	return s
}

func (s *indexSet) len() int { return len(s.order) }

// last returns the most recently added index.
// It must not be called on an empty set.
func (s *indexSet) last() int { return s.order[len(s.order)-1] }

func (s *indexSet) add(i int) {
	if s.member[i] {
		return
	}
	s.member[i] = true
	s.order = append(s.order, i)
}

func (s *indexSet) remove(i int) {
	if !s.member[i] {
		return
	}
	s.member[i] = false
	for p, j := range s.order {
		if j == i {
			s.order = append(s.order[:p], s.order[p+1:]...)
			break
		}
	}
}
