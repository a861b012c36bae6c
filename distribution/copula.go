// Copyright 2025 Quasar Labs
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

package distribution

import (
	"fmt"
	"math"
)

// Copula couples the uniform marginal probabilities of a bivariate
// distribution. Arguments are marginal cumulative probabilities in (0,1).
type Copula interface {
	// CDF evaluates the copula distribution function C(u,v).
	CDF(u, v float64) float64
	// Density evaluates the copula density c(u,v).
	Density(u, v float64) float64
}

// GumbelCopula models upper-tail dependence between two marginals. The
// dependence parameter delta lies in [1, +inf); delta = 1 degenerates to
// independence.
type GumbelCopula struct {
	delta float64
}

// NewGumbelCopula validates the dependence parameter and returns the
// copula.
func NewGumbelCopula(delta float64) (*GumbelCopula, error) {
	if delta < 1 {
		return nil, fmt.Errorf("NewGumbelCopula: dependence parameter must lie in [1, +inf); got %v", delta)
	}
	return &GumbelCopula{delta: delta}, nil
}

// CDF evaluates C(u,v) = exp(-((-ln u)^d + (-ln v)^d)^(1/d)).
func (g *GumbelCopula) CDF(u, v float64) float64 {
	if g.delta == 1 {
		return u * v
	}
	t := math.Pow(-math.Log(u), g.delta) + math.Pow(-math.Log(v), g.delta)
	return math.Exp(-math.Pow(t, 1/g.delta))
}

// Density evaluates the copula density c(u,v).
func (g *GumbelCopula) Density(u, v float64) float64 {
	if g.delta == 1 {
		return 1
	}
	d := g.delta
	t := math.Pow(-math.Log(u), d) + math.Pow(-math.Log(v), d)
	c := math.Exp(-math.Pow(t, 1/d))
	return c * math.Pow(u*v, -1) * math.Pow(t, -2+2/d) *
		math.Pow(math.Log(u)*math.Log(v), d-1) *
		(1 + (d-1)*math.Pow(t, -1/d))
}
