package grib1

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipped(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, raw []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(raw, nil)
}

func TestOpenContainer(t *testing.T) {
	raw := concat(defaultSpec().encode(), defaultSpec().with(product(ParamHumidRel, LevelAboveGround, 2)).encode())
	tests := []struct {
		name string
		data []byte
	}{
		{"plain", raw},
		{"gzip", gzipped(t, raw)},
		{"zstd", zstded(t, raw)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rs, err := OpenContainer(bytes.NewReader(tc.data))
			require.NoError(t, err)
			got, err := io.ReadAll(rs)
			require.NoError(t, err)
			assert.Equal(t, raw, got)

			_, err = rs.Seek(0, io.SeekStart)
			require.NoError(t, err)
			first, err := Decode(rs, WithReporter(Discard))
			require.NoError(t, err)
			second, err := Decode(rs, WithReporter(Discard))
			require.NoError(t, err)
			assert.Equal(t, ParamTemp, first.DataCode().Type)
			assert.Equal(t, ParamHumidRel, second.DataCode().Type)
		})
	}
}

func TestOpenContainerErrors(t *testing.T) {
	_, err := OpenContainer(bytes.NewReader([]byte{0x1f, 0x8b, 0x00, 0x00}))
	assert.ErrorContains(t, err, "gzip container")

	full := gzipped(t, defaultSpec().encode())
	_, err = OpenContainer(bytes.NewReader(full[:len(full)/2]))
	assert.ErrorContains(t, err, "reading container")
}

func TestOpenContainerEmpty(t *testing.T) {
	rs, err := OpenContainer(bytes.NewReader(nil))
	require.NoError(t, err)
	rec, err := Decode(rs, WithReporter(Discard))
	assert.ErrorIs(t, err, ErrTruncated)
	assert.True(t, rec.EOF())
}
