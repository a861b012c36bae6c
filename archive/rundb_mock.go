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

// Package archive is a generated GoMock package.
package archive

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockRunDB is a mock of RunDB interface.
type MockRunDB struct {
	ctrl     *gomock.Controller
	recorder *MockRunDBMockRecorder
	isgomock struct{}
}

// MockRunDBMockRecorder is the mock recorder for MockRunDB.
type MockRunDBMockRecorder struct {
	mock *MockRunDB
}

// NewMockRunDB creates a new mock instance.
func NewMockRunDB(ctrl *gomock.Controller) *MockRunDB {
	mock := &MockRunDB{ctrl: ctrl}
	mock.recorder = &MockRunDBMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockRunDB) EXPECT() *MockRunDBMockRecorder {
	return m.recorder
}

// Add mocks base method.
func (m *MockRunDB) Add(sample Sample) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Add", sample)
	ret0, _ := ret[0].(error)
	return ret0
}

// Add indicates an expected call of Add.
func (mr *MockRunDBMockRecorder) Add(sample any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Add", reflect.TypeOf((*MockRunDB)(nil).Add), sample)
}

// AddDiagnostic mocks base method.
func (m *MockRunDB) AddDiagnostic(run int64, name string, value float64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddDiagnostic", run, name, value)
	ret0, _ := ret[0].(error)
	return ret0
}

// AddDiagnostic indicates an expected call of AddDiagnostic.
func (mr *MockRunDBMockRecorder) AddDiagnostic(run, name, value any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddDiagnostic", reflect.TypeOf((*MockRunDB)(nil).AddDiagnostic), run, name, value)
}

// BeginRun mocks base method.
func (m *MockRunDB) BeginRun(method string, dimension int, seed int64, tag string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BeginRun", method, dimension, seed, tag)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// BeginRun indicates an expected call of BeginRun.
func (mr *MockRunDBMockRecorder) BeginRun(method, dimension, seed, tag any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BeginRun", reflect.TypeOf((*MockRunDB)(nil).BeginRun), method, dimension, seed, tag)
}

// Close mocks base method.
func (m *MockRunDB) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockRunDBMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockRunDB)(nil).Close))
}

// DeleteRun mocks base method.
func (m *MockRunDB) DeleteRun(run int64) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteRun", run)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteRun indicates an expected call of DeleteRun.
func (mr *MockRunDBMockRecorder) DeleteRun(run any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteRun", reflect.TypeOf((*MockRunDB)(nil).DeleteRun), run)
}

// Diagnostics mocks base method.
func (m *MockRunDB) Diagnostics(run int64) ([]Diagnostic, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Diagnostics", run)
	ret0, _ := ret[0].([]Diagnostic)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Diagnostics indicates an expected call of Diagnostics.
func (mr *MockRunDBMockRecorder) Diagnostics(run any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Diagnostics", reflect.TypeOf((*MockRunDB)(nil).Diagnostics), run)
}

// Flush mocks base method.
func (m *MockRunDB) Flush() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Flush")
	ret0, _ := ret[0].(error)
	return ret0
}

// Flush indicates an expected call of Flush.
func (mr *MockRunDBMockRecorder) Flush() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Flush", reflect.TypeOf((*MockRunDB)(nil).Flush))
}

// Runs mocks base method.
func (m *MockRunDB) Runs() ([]Run, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Runs")
	ret0, _ := ret[0].([]Run)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Runs indicates an expected call of Runs.
func (mr *MockRunDBMockRecorder) Runs() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Runs", reflect.TypeOf((*MockRunDB)(nil).Runs))
}

// Samples mocks base method.
func (m *MockRunDB) Samples(run int64) ([][]float64, []float64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Samples", run)
	ret0, _ := ret[0].([][]float64)
	ret1, _ := ret[1].([]float64)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// Samples indicates an expected call of Samples.
func (mr *MockRunDBMockRecorder) Samples(run any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Samples", reflect.TypeOf((*MockRunDB)(nil).Samples), run)
}
