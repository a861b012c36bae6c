// Copyright 2024 Quasar Labs
// This file is part of the Quasar uncertainty quantification toolkit.
//
// Quasar is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Quasar is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Quasar. If not, see <http://www.gnu.org/licenses/>.

package kriging

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Regression trend names accepted by Fit.
const (
	BasisConstant  = "constant"
	BasisLinear    = "linear"
	BasisQuadratic = "quadratic"
)

// Basis is a polynomial regression trend. Eval returns the basis
// functions evaluated at a point; Jacobian their derivative, one row
// per coordinate, one column per basis function.
type Basis interface {
	// Size returns the number of basis functions in dimension d.
	Size(d int) int
	Eval(x []float64) []float64
	Jacobian(x []float64) *mat.Dense
}

// NewBasis resolves a regression trend by name.
func NewBasis(name string) (Basis, error) {
	switch name {
	case BasisConstant:
		return constantBasis{}, nil
	case BasisLinear:
		return linearBasis{}, nil
	case BasisQuadratic:
		return quadraticBasis{}, nil
	default:
		return nil, fmt.Errorf("NewBasis: unknown regression trend %q; known trends are %q, %q and %q",
			name, BasisConstant, BasisLinear, BasisQuadratic)
	}
}

type constantBasis struct{}

func (constantBasis) Size(int) int { return 1 }

func (constantBasis) Eval([]float64) []float64 { return []float64{1} }

func (constantBasis) Jacobian(x []float64) *mat.Dense {
	return mat.NewDense(len(x), 1, nil)
}

type linearBasis struct{}

func (linearBasis) Size(d int) int { return d + 1 }

func (linearBasis) Eval(x []float64) []float64 {
	fx := make([]float64, 1, len(x)+1)
	fx[0] = 1
	return append(fx, x...)
}

func (linearBasis) Jacobian(x []float64) *mat.Dense {
	d := len(x)
	jf := mat.NewDense(d, d+1, nil)
	for r := 0; r < d; r++ {
		jf.Set(r, 1+r, 1)
	}
	return jf
}

type quadraticBasis struct{}

func (quadraticBasis) Size(d int) int { return (d + 1) * (d + 2) / 2 }

// Eval lists the constant, the coordinates and the upper-triangular
// products x_j*x_c for c >= j, in that order.
func (q quadraticBasis) Eval(x []float64) []float64 {
	d := len(x)
	fx := make([]float64, 1, q.Size(d))
	fx[0] = 1
	fx = append(fx, x...)
	for j := 0; j < d; j++ {
		for c := j; c < d; c++ {
			fx = append(fx, x[j]*x[c])
		}
	}
	return fx
}

func (q quadraticBasis) Jacobian(x []float64) *mat.Dense {
	d := len(x)
	jf := mat.NewDense(d, q.Size(d), nil)
	for r := 0; r < d; r++ {
		jf.Set(r, 1+r, 1)
	}
	col := 1 + d
	for j := 0; j < d; j++ {
		for c := j; c < d; c++ {
			for r := 0; r < d; r++ {
				var v float64
				if r == c {
					v += x[j]
				}
				if r == j {
					v += x[c]
				}
				if v != 0 {
					jf.Set(r, col, v)
				}
			}
			col++
		}
	}
	return jf
}
