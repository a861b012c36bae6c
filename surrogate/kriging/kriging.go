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

// Package kriging fits Gaussian process surrogates combining a
// polynomial trend with a stationary correlation kernel whose per-axis
// scales are chosen by maximizing the concentrated log-likelihood.
package kriging

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	// DefaultLowerBound and DefaultUpperBound limit the correlation
	// scales during likelihood optimization.
	DefaultLowerBound = 0.001
	DefaultUpperBound = 1e7

	// detFloor is the determinant below which the initial correlation
	// matrix counts as singular and the scales are inflated.
	detFloor = 1e-12

	// maxInflations bounds the scale inflation loop; correlation
	// matrices of coincident sites stay singular for any scale.
	maxInflations = 100
)

// Options configure a fit beyond its defaults.
type Options struct {
	// Theta holds the initial correlation scales, one per axis.
	// Defaults to all ones.
	Theta []float64

	// Lower and Upper bound the scales during optimization. Defaults
	// to DefaultLowerBound and DefaultUpperBound.
	Lower, Upper float64

	// Basis overrides the named regression trend when set.
	Basis Basis

	// Kernel overrides the named correlation family when set.
	Kernel Kernel
}

// Surrogate is a fitted model predicting responses, their mean squared
// error and their gradient at arbitrary points.
type Surrogate struct {
	sites  [][]float64
	dim    int
	out    int
	basis  Basis
	kernel Kernel
	theta  []float64

	beta   *mat.Dense // regression coefficients, one column per response
	gamma  *mat.Dense // correlation weights, one column per response
	sigma2 []float64  // process variance per response
	cInv   *mat.Dense // inverse Cholesky factor of the correlation matrix
	fdash  *mat.Dense // whitened regression design
	g      *mat.Dense // triangular factor of the whitened design
}

// Fit trains a surrogate on the given sites and responses. The
// regression and correlation names select the trend and kernel family;
// opt may be nil to accept all defaults.
func Fit(sites, values [][]float64, regression, correlation string, opt *Options) (*Surrogate, error) {
	if opt == nil {
		opt = &Options{}
	}
	m := len(sites)
	if m == 0 {
		return nil, fmt.Errorf("Fit: at least one training site is required")
	}
	dim := len(sites[0])
	if dim == 0 {
		return nil, fmt.Errorf("Fit: training sites need at least one coordinate")
	}
	for i, row := range sites {
		if len(row) != dim {
			return nil, fmt.Errorf("Fit: site %d has %d coordinates, want %d", i, len(row), dim)
		}
	}
	if len(values) != m {
		return nil, fmt.Errorf("Fit: %d responses for %d sites", len(values), m)
	}
	q := len(values[0])
	if q == 0 {
		return nil, fmt.Errorf("Fit: at least one response column is required")
	}
	for i, row := range values {
		if len(row) != q {
			return nil, fmt.Errorf("Fit: response %d has %d columns, want %d", i, len(row), q)
		}
	}

	basis := opt.Basis
	if basis == nil {
		var err error
		if basis, err = NewBasis(regression); err != nil {
			return nil, fmt.Errorf("Fit: %v", err)
		}
	}
	kernel := opt.Kernel
	if kernel == nil {
		var err error
		if kernel, err = NewKernel(correlation); err != nil {
			return nil, fmt.Errorf("Fit: %v", err)
		}
	}
	p := basis.Size(dim)
	if m < p {
		return nil, fmt.Errorf("Fit: %d training sites cannot identify %d regression functions", m, p)
	}

	theta := make([]float64, dim)
	if opt.Theta == nil {
		for i := range theta {
			theta[i] = 1
		}
	} else {
		if len(opt.Theta) != dim {
			return nil, fmt.Errorf("Fit: %d initial scales for dimension %d", len(opt.Theta), dim)
		}
		for i, v := range opt.Theta {
			if v <= 0 {
				return nil, fmt.Errorf("Fit: initial scale %d is %v, must be positive", i, v)
			}
			theta[i] = v
		}
	}
	lower, upper := opt.Lower, opt.Upper
	if lower == 0 {
		lower = DefaultLowerBound
	}
	if upper == 0 {
		upper = DefaultUpperBound
	}
	if lower <= 0 || upper <= lower {
		return nil, fmt.Errorf("Fit: scale bounds [%v, %v] are not an increasing positive range", lower, upper)
	}

	ownSites := make([][]float64, m)
	fMat := mat.NewDense(m, p, nil)
	yMat := mat.NewDense(m, q, nil)
	for i := 0; i < m; i++ {
		ownSites[i] = append([]float64(nil), sites[i]...)
		fMat.SetRow(i, basis.Eval(ownSites[i]))
		yMat.SetRow(i, values[i])
	}

	// Inflate the scales until the correlation matrix is comfortably
	// positive definite; coincident sites never get there.
	var chol mat.Cholesky
	for i := 0; ; i++ {
		r := corrMatrix(kernel, theta, ownSites)
		if chol.Factorize(r) && chol.Det() >= detFloor {
			break
		}
		if i == maxInflations {
			return nil, fmt.Errorf("Fit: correlation matrix stays singular under scale inflation; training sites may coincide")
		}
		for k := range theta {
			theta[k] *= 1.5
		}
	}
	thetaSafe := append([]float64(nil), theta...)

	st := &fitState{sites: ownSites, kernel: kernel, fMat: fMat, yMat: yMat}
	costPre, _ := st.eval(theta)
	if costPre < math.Inf(1) {
		lo, hi := math.Log(lower), math.Log(upper)
		problem := optimize.Problem{
			Func: func(z []float64) float64 {
				cost, _ := st.eval(clampExp(z, lo, hi))
				return cost
			},
			Grad: func(grad, z []float64) {
				scaled := clampExp(z, lo, hi)
				_, g := st.eval(scaled)
				for i := range grad {
					grad[i] = g[i] * scaled[i]
				}
			},
		}
		z0 := make([]float64, dim)
		for i, v := range theta {
			z0[i] = math.Min(math.Max(math.Log(v), lo), hi)
		}
		// Optimizer failures leave the verified starting scales in place.
		res, _ := optimize.Minimize(problem, z0, &optimize.Settings{MajorIterations: 500}, &optimize.LBFGS{})
		if res != nil && len(res.X) == dim {
			cand := clampExp(res.X, lo, hi)
			if cost, _ := st.eval(cand); cost <= costPre {
				theta = cand
			}
		}
	}

	r := corrMatrix(kernel, theta, ownSites)
	if !chol.Factorize(r) {
		theta = thetaSafe
		r = corrMatrix(kernel, theta, ownSites)
		if !chol.Factorize(r) {
			return nil, fmt.Errorf("Fit: correlation matrix lost positive definiteness after optimization")
		}
	}
	var low mat.TriDense
	chol.LTo(&low)
	var cInv mat.Dense
	if err := cInv.Inverse(&low); err != nil {
		return nil, fmt.Errorf("Fit: inverting the correlation Cholesky factor; %v", err)
	}
	var fdash, ydash mat.Dense
	fdash.Mul(&cInv, fMat)
	ydash.Mul(&cInv, yMat)
	var qr mat.QR
	qr.Factorize(&fdash)
	var qFull, rFull mat.Dense
	qr.QTo(&qFull)
	qr.RTo(&rFull)
	g := mat.DenseCopyOf(rFull.Slice(0, p, 0, p))

	var maxDiag float64
	for i := 0; i < p; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(g.At(i, i)))
	}
	eps := math.Nextafter(1, 2) - 1
	tol := float64(max(m, p)) * eps * maxDiag
	for i := 0; i < p; i++ {
		if math.Abs(g.At(i, i)) <= tol {
			return nil, fmt.Errorf("Fit: regression functions are not sufficiently linearly independent")
		}
	}

	var qty mat.Dense
	qty.Mul(qFull.Slice(0, m, 0, p).T(), &ydash)
	var beta mat.Dense
	if err := beta.Solve(g, &qty); err != nil {
		return nil, fmt.Errorf("Fit: solving for the regression coefficients; %v", err)
	}
	var fb, resid, rInv, gamma mat.Dense
	fb.Mul(fMat, &beta)
	resid.Sub(yMat, &fb)
	rInv.Mul(cInv.T(), &cInv)
	gamma.Mul(&rInv, &resid)

	var fdb, wres mat.Dense
	fdb.Mul(&fdash, &beta)
	wres.Sub(&ydash, &fdb)
	sigma2 := make([]float64, q)
	for l := range q {
		col := mat.Col(nil, l, &wres)
		sigma2[l] = floats.Dot(col, col) / float64(m)
	}

	return &Surrogate{
		sites:  ownSites,
		dim:    dim,
		out:    q,
		basis:  basis,
		kernel: kernel,
		theta:  theta,
		beta:   &beta,
		gamma:  &gamma,
		sigma2: sigma2,
		cInv:   &cInv,
		fdash:  &fdash,
		g:      g,
	}, nil
}

// Dimension returns the number of input coordinates.
func (s *Surrogate) Dimension() int { return s.dim }

// Responses returns the number of output columns.
func (s *Surrogate) Responses() int { return s.out }

// Theta returns the fitted correlation scales.
func (s *Surrogate) Theta() []float64 {
	return append([]float64(nil), s.theta...)
}

// Sigma2 returns the fitted process variance per response.
func (s *Surrogate) Sigma2() []float64 {
	return append([]float64(nil), s.sigma2...)
}

// Interpolate predicts the responses at x.
func (s *Surrogate) Interpolate(x []float64) []float64 {
	s.checkDim(x)
	fx := s.basis.Eval(x)
	rx := s.corrVector(x)
	return s.predict(fx, rx)
}

// InterpolateMSE predicts the responses at x together with the mean
// squared error of each prediction.
func (s *Surrogate) InterpolateMSE(x []float64) (y, mse []float64, err error) {
	s.checkDim(x)
	fx := s.basis.Eval(x)
	rx := s.corrVector(x)
	y = s.predict(fx, rx)

	m := len(s.sites)
	rd := mat.NewVecDense(m, nil)
	rd.MulVec(s.cInv, mat.NewVecDense(m, rx))
	u := mat.NewVecDense(len(fx), nil)
	u.MulVec(s.fdash.T(), rd)
	u.SubVec(u, mat.NewVecDense(len(fx), fx))
	var z mat.VecDense
	if err := z.SolveVec(s.g, u); err != nil {
		return nil, nil, fmt.Errorf("InterpolateMSE: solving against the regression factor; %v", err)
	}
	spread := 1 + mat.Dot(&z, &z) - mat.Dot(rd, rd)
	mse = make([]float64, s.out)
	for l := range mse {
		mse[l] = s.sigma2[l] * spread
	}
	return y, mse, nil
}

// Jacobian returns the gradient of every response at x, one row per
// coordinate and one column per response.
func (s *Surrogate) Jacobian(x []float64) *mat.Dense {
	s.checkDim(x)
	jf := s.basis.Jacobian(x)
	_, drdx := s.corrVectorDeriv(x)
	var grad, g2 mat.Dense
	grad.Mul(jf, s.beta)
	g2.Mul(drdx.T(), s.gamma)
	grad.Add(&grad, &g2)
	return &grad
}

func (s *Surrogate) predict(fx, rx []float64) []float64 {
	out := make([]float64, s.out)
	for l := range out {
		var v float64
		for j, f := range fx {
			v += f * s.beta.At(j, l)
		}
		for j, r := range rx {
			v += r * s.gamma.At(j, l)
		}
		out[l] = v
	}
	return out
}

func (s *Surrogate) corrVector(x []float64) []float64 {
	rx := make([]float64, len(s.sites))
	for j, site := range s.sites {
		rx[j] = s.kernel.Corr(s.theta, x, site)
	}
	return rx
}

func (s *Surrogate) corrVectorDeriv(x []float64) ([]float64, *mat.Dense) {
	m := len(s.sites)
	rx := make([]float64, m)
	drdx := mat.NewDense(m, s.dim, nil)
	for j, site := range s.sites {
		r, _, dx := s.kernel.Deriv(s.theta, x, site)
		rx[j] = r
		drdx.SetRow(j, dx)
	}
	return rx, drdx
}

func (s *Surrogate) checkDim(x []float64) {
	if len(x) != s.dim {
		panic(fmt.Sprintf("kriging: query point has %d coordinates, model has %d", len(x), s.dim))
	}
}

// fitState evaluates the concentrated negative log-likelihood and its
// gradient, memoizing the last point since the optimizer asks for the
// value and the gradient separately.
type fitState struct {
	sites  [][]float64
	kernel Kernel
	fMat   *mat.Dense
	yMat   *mat.Dense

	lastTheta []float64
	lastCost  float64
	lastGrad  []float64
}

func (st *fitState) eval(theta []float64) (float64, []float64) {
	if st.lastTheta != nil && floats.Equal(theta, st.lastTheta) {
		return st.lastCost, st.lastGrad
	}
	cost, grad := st.logLikelihood(theta)
	st.lastTheta = append(st.lastTheta[:0], theta...)
	st.lastCost, st.lastGrad = cost, grad
	return cost, grad
}

// logLikelihood returns the concentrated negative log-likelihood of the
// scales together with its gradient. Any factorization failure yields a
// +Inf cost and a zero gradient so the optimizer steers away instead of
// faulting.
func (st *fitState) logLikelihood(theta []float64) (float64, []float64) {
	dim := len(theta)
	failed := func() (float64, []float64) {
		return math.Inf(1), make([]float64, dim)
	}

	m, _ := st.yMat.Dims()
	_, p := st.fMat.Dims()

	r, dr := corrMatrixDeriv(st.kernel, theta, st.sites)
	var chol mat.Cholesky
	if !chol.Factorize(r) {
		return failed()
	}
	var low mat.TriDense
	chol.LTo(&low)
	var logDiag float64
	for i := 0; i < m; i++ {
		v := low.At(i, i)
		if v <= 0 {
			return failed()
		}
		logDiag += math.Log(v)
	}
	var rInv mat.SymDense
	if err := chol.InverseTo(&rInv); err != nil {
		return failed()
	}
	var fdash, ydash mat.Dense
	if err := fdash.Solve(&low, st.fMat); err != nil {
		return failed()
	}
	if err := ydash.Solve(&low, st.yMat); err != nil {
		return failed()
	}
	var qr mat.QR
	qr.Factorize(&fdash)
	var qFull, rFull mat.Dense
	qr.QTo(&qFull)
	qr.RTo(&rFull)
	var qty mat.Dense
	qty.Mul(qFull.Slice(0, m, 0, p).T(), &ydash)
	var bt mat.Dense
	if err := bt.Solve(rFull.Slice(0, p, 0, p), &qty); err != nil {
		return failed()
	}
	var res mat.Dense
	res.Mul(&fdash, &bt)
	res.Sub(&ydash, &res)
	var alpha mat.Dense
	alpha.Mul(&rInv, &res)
	t4 := sumProduct(&res, &alpha)
	if t4 <= 0 {
		return failed()
	}
	fm := float64(m)
	cost := (logDiag + fm*math.Log(t4/fm) + fm*math.Log(2*math.Pi)) / 2

	// The projector fr and the t2 term do not depend on the axis.
	var ftf mat.Dense
	ftf.Mul(fdash.T(), &fdash)
	ftfSym := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			ftfSym.SetSym(i, j, ftf.At(i, j))
		}
	}
	var cholF mat.Cholesky
	if !cholF.Factorize(ftfSym) {
		return failed()
	}
	var frBar mat.SymDense
	if err := cholF.InverseTo(&frBar); err != nil {
		return failed()
	}
	var fp, fr, frR mat.Dense
	fp.Mul(st.fMat, &frBar)
	fr.Mul(&fp, st.fMat.T())
	frR.Mul(&fr, &rInv)
	var inner mat.Dense
	inner.Mul(&frR, &ydash)
	inner.Sub(&inner, &ydash)
	var t2m, t2v mat.Dense
	t2m.Mul(&frR, &inner)
	t2v.Mul(&rInv, &t2m)
	t2 := 2 * sumProduct(&res, &t2v)
	t3 := t4

	grad := make([]float64, dim)
	var da mat.Dense
	for ax := range dim {
		t1 := symSumProduct(&rInv, dr[ax], m)
		da.Mul(dr[ax], &alpha)
		t4k := sumProduct(&alpha, &da)
		grad[ax] = 0.5 * (t1 - (fm/t3)*(t2-t4k))
	}
	return cost, grad
}

func corrMatrix(k Kernel, theta []float64, sites [][]float64) *mat.SymDense {
	m := len(sites)
	r := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		r.SetSym(i, i, 1)
		for j := i + 1; j < m; j++ {
			r.SetSym(i, j, k.Corr(theta, sites[i], sites[j]))
		}
	}
	return r
}

func corrMatrixDeriv(k Kernel, theta []float64, sites [][]float64) (*mat.SymDense, []*mat.SymDense) {
	m := len(sites)
	dim := len(theta)
	r := mat.NewSymDense(m, nil)
	dr := make([]*mat.SymDense, dim)
	for ax := range dim {
		dr[ax] = mat.NewSymDense(m, nil)
	}
	for i := 0; i < m; i++ {
		r.SetSym(i, i, 1)
		for j := i + 1; j < m; j++ {
			v, dt, _ := k.Deriv(theta, sites[i], sites[j])
			r.SetSym(i, j, v)
			for ax := range dim {
				dr[ax].SetSym(i, j, dt[ax])
			}
		}
	}
	return r, dr
}

// sumProduct sums every entry of the product of the transpose of a
// with b; both must have the same number of rows.
func sumProduct(a, b *mat.Dense) float64 {
	ra, ca := a.Dims()
	_, cb := b.Dims()
	var total float64
	for i := range ra {
		var sa, sb float64
		for l := range ca {
			sa += a.At(i, l)
		}
		for l := range cb {
			sb += b.At(i, l)
		}
		total += sa * sb
	}
	return total
}

// symSumProduct is the trace of the product of two symmetric matrices.
func symSumProduct(a, b *mat.SymDense, n int) float64 {
	var total float64
	for i := range n {
		for j := range n {
			total += a.At(i, j) * b.At(j, i)
		}
	}
	return total
}

func clampExp(z []float64, lo, hi float64) []float64 {
	theta := make([]float64, len(z))
	for i, v := range z {
		theta[i] = math.Exp(math.Min(math.Max(v, lo), hi))
	}
	return theta
}
