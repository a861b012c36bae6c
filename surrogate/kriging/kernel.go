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
	"math"
)

// Correlation family names accepted by Fit.
const (
	KernelExponential = "exponential"
	KernelGaussian    = "gaussian"
	KernelLinear      = "linear"
	KernelSpherical   = "spherical"
	KernelCubic       = "cubic"
)

// Kernel is a stationary correlation family over per-axis distances
// with one scale hyperparameter per axis.
type Kernel interface {
	// Corr returns the correlation of points a and b under the scales theta.
	Corr(theta, a, b []float64) float64

	// Deriv returns the correlation together with its derivative with
	// respect to each scale and with respect to each coordinate of a.
	Deriv(theta, a, b []float64) (r float64, drdt, drdx []float64)
}

// NewKernel resolves a correlation family by name.
func NewKernel(name string) (Kernel, error) {
	switch name {
	case KernelExponential:
		return exponentialKernel{}, nil
	case KernelGaussian:
		return gaussianKernel{}, nil
	case KernelLinear:
		return newLinearKernel(), nil
	case KernelSpherical:
		return newSphericalKernel(), nil
	case KernelCubic:
		return newCubicKernel(), nil
	default:
		return nil, fmt.Errorf("NewKernel: unknown correlation family %q; known families are %q, %q, %q, %q and %q",
			name, KernelCubic, KernelExponential, KernelGaussian, KernelLinear, KernelSpherical)
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

type exponentialKernel struct{}

func (exponentialKernel) Corr(theta, a, b []float64) float64 {
	var sum float64
	for k := range theta {
		sum += theta[k] * math.Abs(a[k]-b[k])
	}
	return math.Exp(-sum)
}

func (e exponentialKernel) Deriv(theta, a, b []float64) (float64, []float64, []float64) {
	r := e.Corr(theta, a, b)
	drdt := make([]float64, len(theta))
	drdx := make([]float64, len(theta))
	for k := range theta {
		d := a[k] - b[k]
		drdt[k] = -math.Abs(d) * r
		drdx[k] = -theta[k] * sign(d) * r
	}
	return r, drdt, drdx
}

type gaussianKernel struct{}

func (gaussianKernel) Corr(theta, a, b []float64) float64 {
	var sum float64
	for k := range theta {
		d := a[k] - b[k]
		sum += theta[k] * d * d
	}
	return math.Exp(-sum)
}

func (g gaussianKernel) Deriv(theta, a, b []float64) (float64, []float64, []float64) {
	r := g.Corr(theta, a, b)
	drdt := make([]float64, len(theta))
	drdx := make([]float64, len(theta))
	for k := range theta {
		d := a[k] - b[k]
		drdt[k] = -d * d * r
		// spatial derivative taken on the absolute distance
		drdx[k] = -2 * theta[k] * math.Abs(d) * r
	}
	return r, drdt, drdx
}

// productKernel covers the piecewise families whose correlation is a
// product of per-axis factors vanishing beyond the cutoff theta*|d| >= 1.
// factor maps zeta = min(1, theta*|d|) to the axis factor; dfactor is
// its derivative with respect to zeta, taken as zero at both ends of
// the (0, 1) range so the kink contributes nothing.
type productKernel struct {
	factor  func(zeta float64) float64
	dfactor func(zeta float64) float64
	signed  bool
}

func (p productKernel) Corr(theta, a, b []float64) float64 {
	r := 1.0
	for k := range theta {
		zeta := math.Min(1, theta[k]*math.Abs(a[k]-b[k]))
		r *= p.factor(zeta)
	}
	return r
}

func (p productKernel) Deriv(theta, a, b []float64) (float64, []float64, []float64) {
	n := len(theta)
	factors := make([]float64, n)
	r := 1.0
	for k := range theta {
		zeta := math.Min(1, theta[k]*math.Abs(a[k]-b[k]))
		factors[k] = p.factor(zeta)
		r *= factors[k]
	}
	drdt := make([]float64, n)
	drdx := make([]float64, n)
	for k := range theta {
		d := a[k] - b[k]
		zeta := math.Min(1, theta[k]*math.Abs(d))
		if zeta <= 0 || zeta >= 1 {
			continue
		}
		others := 1.0
		for j := range theta {
			if j != k {
				others *= factors[j]
			}
		}
		df := p.dfactor(zeta)
		drdt[k] = df * math.Abs(d) * others
		if p.signed {
			drdx[k] = df * theta[k] * sign(d) * others
		} else {
			drdx[k] = df * theta[k] * others
		}
	}
	return r, drdt, drdx
}

type linearKernel struct{ productKernel }

func newLinearKernel() linearKernel {
	return linearKernel{productKernel{
		factor:  func(zeta float64) float64 { return 1 - zeta },
		dfactor: func(float64) float64 { return -1 },
		signed:  true,
	}}
}

type sphericalKernel struct{ productKernel }

func newSphericalKernel() sphericalKernel {
	return sphericalKernel{productKernel{
		factor:  func(zeta float64) float64 { return 1 - 1.5*zeta + 0.5*zeta*zeta*zeta },
		dfactor: func(zeta float64) float64 { return -1.5 + 1.5*zeta*zeta },
	}}
}

type cubicKernel struct{ productKernel }

func newCubicKernel() cubicKernel {
	return cubicKernel{productKernel{
		factor:  func(zeta float64) float64 { return 1 - 3*zeta*zeta + 2*zeta*zeta*zeta },
		dfactor: func(zeta float64) float64 { return -6*zeta + 6*zeta*zeta },
	}}
}
