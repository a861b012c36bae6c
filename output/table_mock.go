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

// Package output is a generated GoMock package.
package output

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockTableWriter is a mock of TableWriter interface.
type MockTableWriter struct {
	ctrl     *gomock.Controller
	recorder *MockTableWriterMockRecorder
	isgomock struct{}
}

// MockTableWriterMockRecorder is the mock recorder for MockTableWriter.
type MockTableWriterMockRecorder struct {
	mock *MockTableWriter
}

// NewMockTableWriter creates a new mock instance.
func NewMockTableWriter(ctrl *gomock.Controller) *MockTableWriter {
	mock := &MockTableWriter{ctrl: ctrl}
	mock.recorder = &MockTableWriterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTableWriter) EXPECT() *MockTableWriterMockRecorder {
	return m.recorder
}

// Close mocks base method.
func (m *MockTableWriter) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockTableWriterMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockTableWriter)(nil).Close))
}

// WriteComment mocks base method.
func (m *MockTableWriter) WriteComment(text string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteComment", text)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteComment indicates an expected call of WriteComment.
func (mr *MockTableWriterMockRecorder) WriteComment(text any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteComment", reflect.TypeOf((*MockTableWriter)(nil).WriteComment), text)
}

// WriteRow mocks base method.
func (m *MockTableWriter) WriteRow(values ...float64) error {
	m.ctrl.T.Helper()
	varargs := []any{}
	for _, a := range values {
		varargs = append(varargs, a)
	}
	ret := m.ctrl.Call(m, "WriteRow", varargs...)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteRow indicates an expected call of WriteRow.
func (mr *MockTableWriterMockRecorder) WriteRow(values ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteRow", reflect.TypeOf((*MockTableWriter)(nil).WriteRow), values...)
}

// WriteTable mocks base method.
func (m *MockTableWriter) WriteTable(rows [][]float64) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteTable", rows)
	ret0, _ := ret[0].(error)
	return ret0
}

// WriteTable indicates an expected call of WriteTable.
func (mr *MockTableWriterMockRecorder) WriteTable(rows any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteTable", reflect.TypeOf((*MockTableWriter)(nil).WriteTable), rows)
}

// MockWriteBuffer is a mock of WriteBuffer interface.
type MockWriteBuffer struct {
	ctrl     *gomock.Controller
	recorder *MockWriteBufferMockRecorder
	isgomock struct{}
}

// MockWriteBufferMockRecorder is the mock recorder for MockWriteBuffer.
type MockWriteBufferMockRecorder struct {
	mock *MockWriteBuffer
}

// NewMockWriteBuffer creates a new mock instance.
func NewMockWriteBuffer(ctrl *gomock.Controller) *MockWriteBuffer {
	mock := &MockWriteBuffer{ctrl: ctrl}
	mock.recorder = &MockWriteBufferMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockWriteBuffer) EXPECT() *MockWriteBufferMockRecorder {
	return m.recorder
}

// Flush mocks base method.
func (m *MockWriteBuffer) Flush() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Flush")
	ret0, _ := ret[0].(error)
	return ret0
}

// Flush indicates an expected call of Flush.
func (mr *MockWriteBufferMockRecorder) Flush() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Flush", reflect.TypeOf((*MockWriteBuffer)(nil).Flush))
}

// Write mocks base method.
func (m *MockWriteBuffer) Write(p []byte) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Write", p)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Write indicates an expected call of Write.
func (mr *MockWriteBufferMockRecorder) Write(p any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Write", reflect.TypeOf((*MockWriteBuffer)(nil).Write), p)
}

// WriteString mocks base method.
func (m *MockWriteBuffer) WriteString(s string) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WriteString", s)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// WriteString indicates an expected call of WriteString.
func (mr *MockWriteBufferMockRecorder) WriteString(s any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WriteString", reflect.TypeOf((*MockWriteBuffer)(nil).WriteString), s)
}
