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

package stratified

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/quasar-uq/quasar/distribution"
	"github.com/quasar-uq/quasar/surrogate/kriging"
)

// Refinement criteria.
const (
	// ModeRefined splits a stratum of largest weight.
	ModeRefined = "refined"
	// ModeGradient splits the stratum contributing the most estimated
	// response variance.
	ModeGradient = "gradient"
)

// Axis selection among the widest sides of the chosen stratum.
const (
	// CutRandom picks uniformly among the widest axes.
	CutRandom = "random"
	// CutGradient picks the widest axis with the largest response
	// sensitivity.
	CutGradient = "gradient"
)

//go:generate mockgen -source rss.go -destination rss_mock.go -package stratified

// GradientEstimator fits a response surface over design points in the
// unit cube and reports its gradient. The refinement loop refits the
// estimator on growing or windowed designs.
type GradientEstimator interface {
	// Fit trains the estimator on the given sites and responses.
	Fit(sites [][]float64, values []float64) error
	// Gradient evaluates the gradient of the fitted response at x.
	Gradient(x []float64) ([]float64, error)
}

// KrigingGradient backs a GradientEstimator with the kriging
// surrogate. Each fit starts from the correlation scales of the
// previous one.
type KrigingGradient struct {
	// Regression names the trend basis. Defaults to quadratic.
	Regression string
	// Correlation names the correlation family. Defaults to gaussian.
	Correlation string

	theta     []float64
	surrogate *kriging.Surrogate
}

// Fit trains a fresh surrogate on the sites and responses.
func (g *KrigingGradient) Fit(sites [][]float64, values []float64) error {
	regression := g.Regression
	if regression == "" {
		regression = kriging.BasisQuadratic
	}
	correlation := g.Correlation
	if correlation == "" {
		correlation = kriging.KernelGaussian
	}
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	s, err := kriging.Fit(sites, rows, regression, correlation, &kriging.Options{Theta: g.theta})
	if err != nil {
		return err
	}
	g.surrogate = s
	g.theta = s.Theta()
	return nil
}

// Gradient evaluates the fitted surrogate gradient at x.
func (g *KrigingGradient) Gradient(x []float64) ([]float64, error) {
	if g.surrogate == nil {
		return nil, fmt.Errorf("Gradient: the estimator has not been fitted")
	}
	jac := g.surrogate.Jacobian(x)
	out := make([]float64, len(x))
	for k := range out {
		out[k] = jac.At(k, 0)
	}
	return out, nil
}

// RefinerConfig bundles the parameters of a refinement run.
type RefinerConfig struct {
	// Marginals map unit-cube coordinates into physical space, one per
	// axis.
	Marginals []distribution.Univariate
	// Design is the stratified design to refine. Run extends it in
	// place.
	Design *Design
	// Samples is the design size to reach. Must exceed the current
	// size.
	Samples int
	// Mode selects the refinement criterion. Defaults to ModeRefined.
	Mode string
	// Cut selects the split axis among the widest ties. Defaults to
	// CutRandom; CutGradient needs ModeGradient.
	Cut string
	// Model evaluates the response at a physical point. Required in
	// gradient mode.
	Model func(x []float64) float64
	// Estimator fits the response surface behind the sensitivities.
	// Defaults to a quadratic-trend gaussian KrigingGradient.
	Estimator GradientEstimator
	// MinTrainSize is the minimum number of points of a local refit
	// window; once the design grows past it, refits switch from the
	// full design to a window around the newest point. Zero keeps
	// every refit global.
	MinTrainSize int
}

// Refiner grows a stratified design one sample at a time by splitting
// strata and filling the empty halves.
type Refiner struct {
	marginals []distribution.Univariate
	design    *Design
	samples   int
	mode      string
	cut       string
	model     func(x []float64) float64
	estimator GradientEstimator
	minTrain  int
	rg        *rand.Rand

	values []float64
	grads  [][]float64
}

// NewRefiner validates the configuration and returns a refiner.
func NewRefiner(cfg RefinerConfig, rg *rand.Rand) (*Refiner, error) {
	if cfg.Design == nil || cfg.Design.Partition == nil {
		return nil, fmt.Errorf("NewRefiner: a stratified design is required")
	}
	p := cfg.Design.Partition
	if len(cfg.Design.Unit) != p.Size() || len(cfg.Design.Samples) != p.Size() {
		return nil, fmt.Errorf("NewRefiner: the design has %d unit and %d sample points for %d strata",
			len(cfg.Design.Unit), len(cfg.Design.Samples), p.Size())
	}
	if len(cfg.Marginals) != p.Dimension() {
		return nil, fmt.Errorf("NewRefiner: got %d marginals for dimension %d", len(cfg.Marginals), p.Dimension())
	}
	if cfg.Samples <= p.Size() {
		return nil, fmt.Errorf("NewRefiner: target size %d does not exceed the current design size %d",
			cfg.Samples, p.Size())
	}
	if cfg.MinTrainSize < 0 {
		return nil, fmt.Errorf("NewRefiner: minimum training size must not be negative; got %d", cfg.MinTrainSize)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = ModeRefined
	}
	if mode != ModeRefined && mode != ModeGradient {
		return nil, fmt.Errorf("NewRefiner: unknown refinement mode %q; supported modes are %q and %q",
			mode, ModeRefined, ModeGradient)
	}
	cut := cfg.Cut
	if cut == "" {
		cut = CutRandom
	}
	if cut != CutRandom && cut != CutGradient {
		return nil, fmt.Errorf("NewRefiner: unknown cut selection %q; supported selections are %q and %q",
			cut, CutRandom, CutGradient)
	}
	if cut == CutGradient && mode != ModeGradient {
		return nil, fmt.Errorf("NewRefiner: gradient-directed cuts need the gradient refinement mode")
	}

	estimator := cfg.Estimator
	if mode == ModeGradient {
		if cfg.Model == nil {
			return nil, fmt.Errorf("NewRefiner: a response model is required for gradient refinement")
		}
		if estimator == nil {
			estimator = &KrigingGradient{}
		}
	}

	return &Refiner{
		marginals: cfg.Marginals,
		design:    cfg.Design,
		samples:   cfg.Samples,
		mode:      mode,
		cut:       cut,
		model:     cfg.Model,
		estimator: estimator,
		minTrain:  cfg.MinTrainSize,
		rg:        rg,
	}, nil
}

// Run splits strata until the design reaches the target size and
// returns the refined design.
func (r *Refiner) Run() (*Design, error) {
	p := r.design.Partition
	d := p.Dimension()

	if r.mode == ModeGradient {
		if err := r.seedGradients(); err != nil {
			return nil, err
		}
	}

	for len(r.design.Unit) < r.samples {
		bin := r.chooseStratum()
		axis := r.chooseAxis(bin)
		j, err := p.SplitAround(bin, axis, r.design.Unit[bin])
		if err != nil {
			return nil, fmt.Errorf("Run: %v", err)
		}

		u := make([]float64, d)
		x := make([]float64, d)
		for k := range u {
			u[k] = p.Origin(j)[k] + r.rg.Float64()*p.Width(j)[k]
			x[k] = r.marginals[k].ICDF(u[k])
		}
		r.design.Unit = append(r.design.Unit, u)
		r.design.Samples = append(r.design.Samples, x)

		if r.mode == ModeGradient {
			r.values = append(r.values, r.model(x))
			r.grads = append(r.grads, make([]float64, d))
			if err := r.updateGradients(); err != nil {
				return nil, err
			}
		}
	}
	return r.design, nil
}

// chooseStratum picks the stratum to split, uniformly among exact ties
// of the selection score.
func (r *Refiner) chooseStratum() int {
	p := r.design.Partition
	if r.mode == ModeRefined {
		return r.argmaxTie(p.Weights())
	}

	// Delta-method variance contribution: squared sensitivity times
	// the variance of a uniform draw over the cell, times the squared
	// cell weight.
	scores := make([]float64, p.Size())
	for i := range scores {
		weight := p.Weight(i)
		widths := p.Width(i)
		for k, g := range r.grads[i] {
			scores[i] += g * g * (widths[k] * widths[k] / 12) * weight * weight
		}
	}
	return r.argmaxTie(scores)
}

func (r *Refiner) argmaxTie(values []float64) int {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	ties := make([]int, 0, 1)
	for i, v := range values {
		if v == best {
			ties = append(ties, i)
		}
	}
	return ties[r.rg.Intn(len(ties))]
}

// chooseAxis picks the split direction among the widest axes of the
// stratum.
func (r *Refiner) chooseAxis(bin int) int {
	widths := r.design.Partition.Width(bin)
	best := widths[0]
	for _, w := range widths[1:] {
		if w > best {
			best = w
		}
	}
	ties := make([]int, 0, 1)
	for k, w := range widths {
		if w == best {
			ties = append(ties, k)
		}
	}
	if r.cut == CutGradient {
		axis := ties[0]
		for _, k := range ties[1:] {
			if math.Abs(r.grads[bin][k]) > math.Abs(r.grads[bin][axis]) {
				axis = k
			}
		}
		return axis
	}
	return ties[r.rg.Intn(len(ties))]
}

// seedGradients evaluates the model on the initial design and fits the
// first surrogate.
func (r *Refiner) seedGradients() error {
	r.values = make([]float64, len(r.design.Samples))
	for i, x := range r.design.Samples {
		r.values[i] = r.model(x)
	}
	r.grads = make([][]float64, len(r.design.Unit))
	return r.refitGlobal()
}

// updateGradients refits the estimator after a new sample, globally on
// the whole design or locally on a window around the newest point.
func (r *Refiner) updateGradients() error {
	count := len(r.design.Unit)
	if r.minTrain <= 0 || count <= r.minTrain {
		return r.refitGlobal()
	}

	newest := count - 1
	train := r.window(newest, r.minTrain)
	update := r.window(newest, (r.minTrain+1)/2)

	sites := make([][]float64, len(train))
	values := make([]float64, len(train))
	for t, j := range train {
		sites[t] = r.design.Unit[j]
		values[t] = r.values[j]
	}
	if err := r.estimator.Fit(sites, values); err != nil {
		return fmt.Errorf("Run: refitting the gradient estimator failed; %v", err)
	}
	for _, j := range update {
		g, err := r.estimator.Gradient(r.center(j))
		if err != nil {
			return fmt.Errorf("Run: %v", err)
		}
		r.grads[j] = g
	}
	return nil
}

func (r *Refiner) refitGlobal() error {
	if err := r.estimator.Fit(r.design.Unit, r.values); err != nil {
		return fmt.Errorf("Run: fitting the gradient estimator failed; %v", err)
	}
	for i := range r.grads {
		g, err := r.estimator.Gradient(r.center(i))
		if err != nil {
			return fmt.Errorf("Run: %v", err)
		}
		r.grads[i] = g
	}
	return nil
}

// window collects the indices of design points inside a box around the
// given point. The box grows in steps of the largest stratum width
// until it holds at least need points or spans the whole cube.
func (r *Refiner) window(center, need int) []int {
	p := r.design.Partition
	d := p.Dimension()
	span := 0.0
	for i := range p.Size() {
		for _, w := range p.Width(i) {
			if w > span {
				span = w
			}
		}
	}

	at := r.design.Unit[center]
	for ff := 2.0; ; ff++ {
		lo := make([]float64, d)
		hi := make([]float64, d)
		covered := true
		for k := range lo {
			lo[k] = math.Max(at[k]-ff*span, 0)
			hi[k] = math.Min(at[k]+ff*span, 1)
			if lo[k] > 0 || hi[k] < 1 {
				covered = false
			}
		}
		members := make([]int, 0, need)
		for j, u := range r.design.Unit {
			inside := true
			for k := range u {
				if u[k] < lo[k] || u[k] > hi[k] {
					inside = false
					break
				}
			}
			if inside {
				members = append(members, j)
			}
		}
		if len(members) >= need || covered {
			return members
		}
	}
}

// center returns the unit-cube centroid of stratum i.
func (r *Refiner) center(i int) []float64 {
	p := r.design.Partition
	c := make([]float64, p.Dimension())
	for k := range c {
		c[k] = p.Origin(i)[k] + p.Width(i)[k]/2
	}
	return c
}
