package field

import (
	"fmt"
	"io"
)

// Vector is an ordered sequence of exactly N field elements (V = F_q^n).
type Vector []Element

// NewVector builds a zero vector of the given modulus and dimension.
func NewVector(m *Modulus, n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = Zero(m)
	}
	return v
}

// Broadcast replicates a single element into a length-n vector. Used where
// this system treats a scalar hash (of a password or session value) as a
// vector by broadcasting it across every PRF input component (spec §3/§4.4).
func Broadcast(e Element, n int) Vector {
	v := make(Vector, n)
	for i := range v {
		v[i] = e
	}
	return v
}

// RandVector draws n independent uniformly random elements of F_q.
func RandVector(m *Modulus, n int, r io.Reader) (Vector, error) {
	v := make(Vector, n)
	for i := range v {
		e, err := Rand(m, r)
		if err != nil {
			return nil, fmt.Errorf("field: rand vector: %w", err)
		}
		v[i] = e
	}
	return v, nil
}

// Add returns the componentwise sum of v and o. Panics on dimension mismatch.
func (v Vector) Add(o Vector) Vector {
	v.mustMatch(o)
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Add(o[i])
	}
	return out
}

// Sub returns the componentwise difference of v and o.
func (v Vector) Sub(o Vector) Vector {
	v.mustMatch(o)
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Sub(o[i])
	}
	return out
}

// Scale returns v with every component multiplied by the scalar s.
func (v Vector) Scale(s Element) Vector {
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i].Mul(s)
	}
	return out
}

// Inner returns the inner product <v, o> = sum(v_i * o_i) in F_q.
func (v Vector) Inner(o Vector) Element {
	v.mustMatch(o)
	if len(v) == 0 {
		panic("field: inner product of empty vectors")
	}
	sum := Zero(v[0].mod)
	for i := range v {
		sum = sum.Add(v[i].Mul(o[i]))
	}
	return sum
}

// Equal reports whether v and o hold the same elements in the same order.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if !v[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

func (v Vector) mustMatch(o Vector) {
	if len(v) != len(o) {
		panic(fmt.Sprintf("field: dimension mismatch: %d vs %d", len(v), len(o)))
	}
}
