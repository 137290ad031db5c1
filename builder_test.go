package grib1

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordSpec describes a GRIB1 record to encode. Geometry fields are the
// values as transmitted (lat1/lon1 = first point, lat2/lon2 = last point).
type recordSpec struct {
	edition int

	center, model, grid int
	param, levelType    int
	levelValue          int
	year, month, day    int
	hour, minute        int
	timeUnit            int
	p1, p2, timeRange   int
	decimalScale        int
	noGDS               bool

	gridType           int
	ni, nj             int
	lat1, lon1         float64
	lat2, lon2         float64
	di, dj             float64
	resFlags, scanFlag byte

	// bitmap in transmission order; nil means no section 3.
	bitmap          []bool
	bitmapIndicator int

	bdsFlags    byte
	binaryScale int
	reference   float64
	bits        int

	// codes of the present cells, in transmission order.
	codes []uint64

	trailer string
}

// defaultSpec is a 4x3 NOAA GFS temperature field at 850 hPa on a
// 1° grid from (40N, 0E) to (42N, 3E), scanned west to east, south to
// north, with code k at transmitted position k.
func defaultSpec() recordSpec {
	s := recordSpec{
		edition:    1,
		center:     7,
		model:      96,
		grid:       0,
		param:      ParamTemp,
		levelType:  LevelIsobaric,
		levelValue: 850,
		year:       2024,
		month:      3,
		day:        15,
		hour:       6,
		timeUnit:   1,
		p1:         6,
		timeRange:  0,
		ni:         4,
		nj:         3,
		lat1:       40,
		lon1:       0,
		lat2:       42,
		lon2:       3,
		di:         1,
		dj:         1,
		resFlags:   0x80,
		scanFlag:   0x40,
		bits:       8,
		trailer:    "7777",
	}
	for k := 0; k < s.ni*s.nj; k++ {
		s.codes = append(s.codes, uint64(k))
	}
	return s
}

func (s recordSpec) with(tweaks ...func(*recordSpec)) recordSpec {
	for _, f := range tweaks {
		f(&s)
	}
	return s
}

// encode serializes s as one GRIB1 record.
func (s recordSpec) encode() []byte {
	var body bytes.Buffer

	// Section 1
	pds := make([]byte, 28)
	putUint24(pds[0:], 28)
	pds[3] = 2
	pds[4], pds[5], pds[6] = byte(s.center), byte(s.model), byte(s.grid)
	if !s.noGDS {
		pds[7] |= 0x80
	}
	if s.bitmap != nil || s.bitmapIndicator != 0 {
		pds[7] |= 0x40
	}
	pds[8], pds[9] = byte(s.param), byte(s.levelType)
	binary.BigEndian.PutUint16(pds[10:], uint16(s.levelValue))
	century := (s.year-1)/100 + 1
	pds[12] = byte(s.year - (century-1)*100)
	pds[13], pds[14], pds[15], pds[16] = byte(s.month), byte(s.day), byte(s.hour), byte(s.minute)
	pds[17], pds[18], pds[19], pds[20] = byte(s.timeUnit), byte(s.p1), byte(s.p2), byte(s.timeRange)
	pds[24] = byte(century)
	putSignMag16(pds[26:], s.decimalScale)
	body.Write(pds)

	// Section 2
	if !s.noGDS {
		gds := make([]byte, 32)
		putUint24(gds[0:], 32)
		gds[4] = 255
		gds[5] = byte(s.gridType)
		binary.BigEndian.PutUint16(gds[6:], uint16(s.ni))
		binary.BigEndian.PutUint16(gds[8:], uint16(s.nj))
		putSignMag24(gds[10:], milli(s.lat1))
		putSignMag24(gds[13:], milli(s.lon1))
		gds[16] = s.resFlags
		putSignMag24(gds[17:], milli(s.lat2))
		putSignMag24(gds[20:], milli(s.lon2))
		putSignMag16(gds[23:], milli(s.di))
		putSignMag16(gds[25:], milli(s.dj))
		gds[27] = s.scanFlag
		body.Write(gds)
	}

	// Section 3
	if s.bitmap != nil || s.bitmapIndicator != 0 {
		var bits []byte
		if s.bitmapIndicator == 0 {
			bits = packBitmap(s.bitmap)
		}
		bms := make([]byte, 6, 6+len(bits))
		putUint24(bms[0:], 6+len(bits))
		binary.BigEndian.PutUint16(bms[4:], uint16(s.bitmapIndicator))
		body.Write(append(bms, bits...))
	}

	// Section 4
	payload := packCodes(s.codes, s.bits)
	bds := make([]byte, 11, 11+len(payload))
	putUint24(bds[0:], 11+len(payload))
	bds[3] = s.bdsFlags
	putSignMag16(bds[4:], s.binaryScale)
	copy(bds[6:10], encodeIBM(s.reference))
	bds[10] = byte(s.bits)
	body.Write(append(bds, payload...))

	// Section 5
	body.WriteString(s.trailer)

	out := make([]byte, 8, 8+body.Len())
	copy(out, "GRIB")
	putUint24(out[4:], 8+body.Len())
	out[7] = byte(s.edition)
	return append(out, body.Bytes()...)
}

// decodeSpec encodes s and decodes it with diagnostics captured.
func decodeSpec(t *testing.T, s recordSpec) (*Record, []string, error) {
	t.Helper()
	var msgs []string
	rec, err := Decode(bytes.NewReader(s.encode()),
		WithReporter(ReporterFunc(func(m string) { msgs = append(msgs, m) })))
	require.NotNil(t, rec)
	return rec, msgs, err
}

// mustDecode decodes s and requires success.
func mustDecode(t *testing.T, s recordSpec) *Record {
	t.Helper()
	rec, _, err := decodeSpec(t, s)
	require.NoError(t, err)
	require.True(t, rec.OK())
	return rec
}

func milli(v float64) int { return int(math.Round(v * 1000)) }

func putUint24(b []byte, v int) {
	b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
}

func putSignMag16(b []byte, v int) {
	u := uint16(abs(v)) & 0x7FFF
	if v < 0 {
		u |= 0x8000
	}
	binary.BigEndian.PutUint16(b, u)
}

func putSignMag24(b []byte, v int) {
	u := uint32(abs(v)) & 0x7FFFFF
	if v < 0 {
		u |= 0x800000
	}
	putUint24(b, int(u))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// encodeIBM encodes v as an IBM single precision float, truncating the
// mantissa to 24 bits.
func encodeIBM(v float64) []byte {
	out := make([]byte, 4)
	if v == 0 {
		return out
	}
	var sign byte
	if v < 0 {
		sign = 0x80
		v = -v
	}
	exp := 64
	for v >= 1 {
		v /= 16
		exp++
	}
	for v < 1.0/16 {
		v *= 16
		exp--
	}
	out[0] = sign | byte(exp)
	putUint24(out[1:], int(v*(1<<24)))
	return out
}

// packCodes packs codes MSB first at the given width, padded to a byte.
func packCodes(codes []uint64, width int) []byte {
	out := make([]byte, (len(codes)*width+7)/8)
	pos := 0
	for _, c := range codes {
		for b := width - 1; b >= 0; b-- {
			if c>>uint(b)&1 == 1 {
				out[pos/8] |= 0x80 >> uint(pos%8)
			}
			pos++
		}
	}
	return out
}

func packBitmap(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			out[i/8] |= 0x80 >> uint(i%8)
		}
	}
	return out
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// assertSameFloats compares slices bit for bit, so NaN equals NaN.
func assertSameFloats(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.Float64bits(want[i]) != math.Float64bits(got[i]) {
			t.Errorf("[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}
