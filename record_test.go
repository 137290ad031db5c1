package grib1

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneIsDeep(t *testing.T) {
	rec := mustDecode(t, defaultSpec().with(withHoles(3)))
	c := rec.Clone()
	assert.True(t, c.Duplicated())
	assert.False(t, rec.Duplicated())
	assert.True(t, c.OK())
	assert.Equal(t, rec.Grid, c.Grid)
	assert.Equal(t, rec.DataCode(), c.DataCode())
	assertSameFloats(t, rec.Values(), c.Values())

	c.MultiplyAllData(2)
	c.ReverseData(Horizontal)
	assert.Equal(t, 5.0, rec.Value(1, 1))
	assert.False(t, rec.HasValue(3, 0))
	assert.True(t, rec.HasValue(0, 0))
	assert.False(t, c.HasValue(0, 0))
}

func TestMultiplyAllDataSkipsAbsent(t *testing.T) {
	rec := mustDecode(t, defaultSpec().with(withHoles(1)))
	rec.MultiplyAllData(-0.5)
	assert.Equal(t, -2.5, rec.Value(1, 1))
	assert.Equal(t, 0.0, rec.Value(0, 0))
	assert.True(t, IsMissing(rec.Value(1, 0)))
	assert.False(t, rec.HasValue(1, 0))
}

func TestValueOutOfBounds(t *testing.T) {
	rec := mustDecode(t, defaultSpec())
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		assert.True(t, IsMissing(rec.Value(p[0], p[1])), "%v", p)
		assert.False(t, rec.HasValue(p[0], p[1]), "%v", p)
	}

	var empty Record
	assert.True(t, IsMissing(empty.Value(0, 0)))
	assert.False(t, empty.HasValue(0, 0))
	assert.True(t, IsMissing(empty.InterpolatedValue(0, 0, true)))
}

func TestSetters(t *testing.T) {
	rec := mustDecode(t, defaultSpec())
	code := DataCode{ParamTemp, LevelAboveGround, 2}
	rec.SetDataCode(code)
	assert.Equal(t, code, rec.DataCode())
	assert.Equal(t, DataCode{ParamTemp, LevelIsobaric, 850}, rec.Header.RawCode)
	assert.Equal(t, 5.0, rec.ValueFor(code, 1, 1))

	paris := time.FixedZone("CET", 3600)
	rec.SetValidTime(time.Date(2024, 3, 16, 1, 0, 0, 0, paris))
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), rec.Header.ValidTime)
	assert.Equal(t, time.UTC, rec.Header.ValidTime.Location())
}

func TestRecordString(t *testing.T) {
	rec, err := Decode(bytes.NewReader(defaultSpec().encode()), WithID(12))
	require.NoError(t, err)
	s := rec.String()
	assert.Contains(t, s, "GribRecord 12")
	assert.Contains(t, s, "center=7 model=96 grid=0 provider=NOAA_GFS")
	assert.Contains(t, s, "code=11-100-850")
	assert.Contains(t, s, "hour=6 ref=2024-03-15 06:00 valid=2024-03-15 12:00")
	assert.Contains(t, s, "Ni=4 Nj=3")
	assert.Contains(t, s, "ok=true known=true")
}

func TestDataCodeKey(t *testing.T) {
	c := DataCode{ParamWindVX, LevelAboveGround, 10}
	assert.Equal(t, "33-105-10", c.Key())
	assert.Equal(t, c.Key(), c.String())

	got, err := ParseDataCode(c.Key())
	require.NoError(t, err)
	assert.Equal(t, c, got)

	for _, bad := range []string{"", "11-100", "11-100-850-1", "a-100-850"} {
		_, err := ParseDataCode(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestProviderString(t *testing.T) {
	assert.Equal(t, "OTHER_DATA_CENTER", OtherDataCenter.String())
	assert.Equal(t, "NOAA_NCEP_WW3", NoaaNcepWW3.String())
	assert.Equal(t, "NOGAPS", Nogaps.String())
	assert.Equal(t, "Provider(42)", Provider(42).String())
}
