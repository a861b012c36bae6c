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

// Package stratified is a generated GoMock package.
package stratified

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockGradientEstimator is a mock of GradientEstimator interface.
type MockGradientEstimator struct {
	ctrl     *gomock.Controller
	recorder *MockGradientEstimatorMockRecorder
	isgomock struct{}
}

// MockGradientEstimatorMockRecorder is the mock recorder for MockGradientEstimator.
type MockGradientEstimatorMockRecorder struct {
	mock *MockGradientEstimator
}

// NewMockGradientEstimator creates a new mock instance.
func NewMockGradientEstimator(ctrl *gomock.Controller) *MockGradientEstimator {
	mock := &MockGradientEstimator{ctrl: ctrl}
	mock.recorder = &MockGradientEstimatorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockGradientEstimator) EXPECT() *MockGradientEstimatorMockRecorder {
	return m.recorder
}

// Fit mocks base method.
func (m *MockGradientEstimator) Fit(sites [][]float64, values []float64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Fit", sites, values)
	ret0, _ := ret[0].(error)
	return ret0
}

// Fit indicates an expected call of Fit.
func (mr *MockGradientEstimatorMockRecorder) Fit(sites, values any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Fit", reflect.TypeOf((*MockGradientEstimator)(nil).Fit), sites, values)
}

// Gradient mocks base method.
func (m *MockGradientEstimator) Gradient(x []float64) ([]float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Gradient", x)
	ret0, _ := ret[0].([]float64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Gradient indicates an expected call of Gradient.
func (mr *MockGradientEstimatorMockRecorder) Gradient(x any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Gradient", reflect.TypeOf((*MockGradientEstimator)(nil).Gradient), x)
}
