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

package output

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/quasar-uq/quasar/sampling/strata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewTableWriter(t *testing.T) {
	fp := t.TempDir() + "samples.txt"
	tw, err := NewTableWriter(fp)
	assert.NoError(t, err)
	assert.NotNil(t, tw)
	_, ok := tw.(*tableWriter)
	assert.True(t, ok)
	require.NoError(t, tw.Close())
	// file exists - factory func should fail
	_, err = NewTableWriter(fp)
	assert.ErrorContains(t, err, "already exists")
}

func TestTableWriter_WritesPlainText(t *testing.T) {
	fp := t.TempDir() + "samples.txt"
	tw, err := NewTableWriter(fp)
	assert.NoError(t, err)
	assert.NoError(t, tw.WriteComment("drawn by montecarlo"))
	assert.NoError(t, tw.WriteRow(0.25, 0.75))
	assert.NoError(t, tw.WriteRow(1))
	assert.NoError(t, tw.Close())

	content, err := os.ReadFile(fp)
	assert.NoError(t, err)
	assert.Equal(t, "# drawn by montecarlo\n0.25 0.75\n1\n", string(content))
}

func TestTableWriter_WritesGzip(t *testing.T) {
	fp := t.TempDir() + "samples.txt.gz"
	tw, err := NewTableWriter(fp)
	assert.NoError(t, err)
	assert.NoError(t, tw.WriteRow(0.5))
	assert.NoError(t, tw.Close())

	file, err := os.Open(fp)
	require.NoError(t, err)
	defer func() { assert.NoError(t, file.Close()) }()
	gz, err := gzip.NewReader(file)
	require.NoError(t, err)
	content, err := io.ReadAll(gz)
	assert.NoError(t, err)
	assert.Equal(t, "0.5\n", string(content))
}

func TestTableWriter_RoundTripsThroughDesignLoader(t *testing.T) {
	fp := t.TempDir() + "design.gz"
	tw, err := NewTableWriter(fp)
	require.NoError(t, err)
	require.NoError(t, tw.WriteComment("origin columns then width columns"))
	require.NoError(t, tw.WriteTable([][]float64{
		{0, 0, 0.5, 1},
		{0.5, 0, 0.5, 1},
	}))
	require.NoError(t, tw.Close())

	p, err := strata.Load(fp)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Dimension())
	assert.Equal(t, 2, p.Size())
	assert.Equal(t, []float64{0.5, 0}, p.Origin(1))
	assert.Equal(t, []float64{0.5, 1}, p.Width(0))
	assert.InDelta(t, 0.5, p.Weight(0), 1e-15)
}

func createNewTableWriter(t *testing.T, buffer *MockWriteBuffer, filepath string) *tableWriter {
	file, err := os.Create(filepath)
	assert.NoError(t, err)

	return &tableWriter{
		buffer:  buffer,
		closers: []io.Closer{gzip.NewWriter(file), file},
	}
}

func TestTableWriter_WriteRow(t *testing.T) {
	fp := t.TempDir() + "samples.gz"
	mockErr := errors.New("mock error")
	tests := []struct {
		name    string
		setup   func(*MockWriteBuffer)
		wantErr error
	}{
		{
			name: "Success",
			setup: func(m *MockWriteBuffer) {
				m.EXPECT().WriteString("0.5 0.7\n").Return(8, nil)
			},
			wantErr: nil,
		},
		{
			name: "WriteError",
			setup: func(m *MockWriteBuffer) {
				m.EXPECT().WriteString("0.5 0.7\n").Return(0, mockErr)
			},
			wantErr: mockErr,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			buffer := NewMockWriteBuffer(ctrl)
			test.setup(buffer)

			tw := createNewTableWriter(t, buffer, fp+test.name)
			err := tw.WriteRow(0.5, 0.7)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTableWriter_WriteRow_NeedsValues(t *testing.T) {
	ctrl := gomock.NewController(t)
	buffer := NewMockWriteBuffer(ctrl)

	tw := &tableWriter{buffer: buffer}
	err := tw.WriteRow()
	assert.ErrorContains(t, err, "needs at least one value")
}

func TestTableWriter_WriteComment(t *testing.T) {
	fp := t.TempDir() + "samples.gz"
	mockErr := errors.New("mock error")
	tests := []struct {
		name    string
		setup   func(*MockWriteBuffer)
		wantErr error
	}{
		{
			name: "Success",
			setup: func(m *MockWriteBuffer) {
				m.EXPECT().WriteString("# header\n").Return(9, nil)
			},
			wantErr: nil,
		},
		{
			name: "WriteError",
			setup: func(m *MockWriteBuffer) {
				m.EXPECT().WriteString("# header\n").Return(0, mockErr)
			},
			wantErr: mockErr,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			buffer := NewMockWriteBuffer(ctrl)
			test.setup(buffer)

			tw := createNewTableWriter(t, buffer, fp+test.name)
			err := tw.WriteComment("header")
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTableWriter_WriteTable_StopsOnRowError(t *testing.T) {
	ctrl := gomock.NewController(t)
	buffer := NewMockWriteBuffer(ctrl)
	mockErr := errors.New("mock error")
	buffer.EXPECT().WriteString("1\n").Return(0, mockErr)

	tw := &tableWriter{buffer: buffer}
	err := tw.WriteTable([][]float64{{1}, {2}})
	assert.ErrorIs(t, err, mockErr)
}

func TestTableWriter_Close(t *testing.T) {
	mockErr := errors.New("mock error")

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		buffer := NewMockWriteBuffer(ctrl)
		buffer.EXPECT().Flush().Return(nil)

		tw := createNewTableWriter(t, buffer, t.TempDir()+"samples.gz")
		assert.NoError(t, tw.Close())
	})

	t.Run("FlushError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		buffer := NewMockWriteBuffer(ctrl)
		buffer.EXPECT().Flush().Return(mockErr)

		tw := createNewTableWriter(t, buffer, t.TempDir()+"samples.gz")
		err := tw.Close()
		assert.ErrorIs(t, err, mockErr)
	})
}
