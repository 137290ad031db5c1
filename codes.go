package grib1

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameter codes (WMO code table 2, with the NCEP wave extensions used by
// WW3 products).
const (
	ParamPressure    = 1
	ParamPressureMSL = 2
	ParamGeopotHgt   = 7
	ParamTemp        = 11
	ParamTempPot     = 13
	ParamTMax        = 15
	ParamTMin        = 16
	ParamDewpoint    = 17
	ParamWindDir     = 31
	ParamWindSpeed   = 32
	ParamWindVX      = 33
	ParamWindVY      = 34
	ParamCurDir      = 47
	ParamCurSpeed    = 48
	ParamCurVX       = 49
	ParamCurVY       = 50
	ParamHumidSpec   = 51
	ParamHumidRel    = 52
	ParamPrecipRate  = 59
	ParamPrecipTot   = 61
	ParamSnowDepth   = 66
	ParamCloudTot    = 71
	ParamCloudLow    = 73
	ParamCloudMid    = 74
	ParamCloudHigh   = 75

	ParamWavSigHt   = 100
	ParamWavWndDir  = 101
	ParamWavWndHt   = 102
	ParamWavWndPer  = 103
	ParamWavSwlDir  = 104
	ParamWavSwlHt   = 105
	ParamWavSwlPer  = 106
	ParamWavPrimDir = 107
	ParamWavPrimPer = 108
	ParamWavScdyDir = 109
	ParamWavScdyPer = 110

	ParamFrzRainCateg = 141
	ParamSnowCateg    = 143
	ParamCIN          = 156
	ParamCAPE         = 157
	ParamWindGust     = 180

	ParamWavMaxDir      = 207
	ParamWavMaxPer      = 208
	ParamWavMaxHt       = 209
	ParamWavWhitcapProb = 210
	ParamNotDefined     = 255
	paramNogapsSeaSurfT = 133
)

// Level types (WMO code table 3, plus NCEP 200).
const (
	LevelGroundSurface = 1
	LevelCloudBase     = 2
	LevelCloudTop      = 3
	LevelIsotherm0     = 4
	LevelTropopause    = 7
	LevelAtmosEntire   = 10
	LevelIsobaric      = 100
	LevelMSL           = 102
	LevelAboveMSL      = 103
	LevelAboveGround   = 105
	LevelSigma         = 107
	LevelAtmosAll      = 200
	LevelOceanAll      = 201
)

// waveParams is the set of parameters that force waveData and a surface
// level after translation.
var waveParams = map[int]bool{
	ParamWavSigHt:       true,
	ParamWavWndDir:      true,
	ParamWavWndHt:       true,
	ParamWavWndPer:      true,
	ParamWavSwlDir:      true,
	ParamWavSwlHt:       true,
	ParamWavSwlPer:      true,
	ParamWavPrimDir:     true,
	ParamWavPrimPer:     true,
	ParamWavScdyDir:     true,
	ParamWavScdyPer:     true,
	ParamWavWhitcapProb: true,
	ParamWavMaxDir:      true,
	ParamWavMaxPer:      true,
	ParamWavMaxHt:       true,
}

// DataCode identifies the canonical product of a record.
// Two codes are equal exactly when their keys are equal.
type DataCode struct {
	Type       int
	LevelType  int
	LevelValue int
}

// Key returns "<type>-<levelType>-<levelValue>", e.g. "11-100-850".
func (c DataCode) Key() string {
	return fmt.Sprintf("%d-%d-%d", c.Type, c.LevelType, c.LevelValue)
}

func (c DataCode) String() string { return c.Key() }

// ParseDataCode parses a key produced by DataCode.Key.
func ParseDataCode(key string) (DataCode, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return DataCode{}, fmt.Errorf("data code %q: want type-level-value", key)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return DataCode{}, fmt.Errorf("data code %q: %w", key, err)
		}
		v[i] = n
	}
	return DataCode{Type: v[0], LevelType: v[1], LevelValue: v[2]}, nil
}

// Provider tags the producing center/model once the quirks table has
// recognized it.
type Provider int

const (
	OtherDataCenter Provider = iota
	NoaaGFS
	NoaaNcepWW3
	NoaaNcepSST
	NorwayMetno
	FnmocWW3Med
	FnmocWW3Eqam
	FnmocWW3Glb
	Skiron
	Nogaps
)

var providerNames = [...]string{
	OtherDataCenter: "OTHER_DATA_CENTER",
	NoaaGFS:         "NOAA_GFS",
	NoaaNcepWW3:     "NOAA_NCEP_WW3",
	NoaaNcepSST:     "NOAA_NCEP_SST",
	NorwayMetno:     "NORWAY_METNO",
	FnmocWW3Med:     "FNMOC_WW3_MED",
	FnmocWW3Eqam:    "FNMOC_WW3_EQAM",
	FnmocWW3Glb:     "FNMOC_WW3_GLB",
	Skiron:          "SKIRON",
	Nogaps:          "NOGAPS",
}

func (p Provider) String() string {
	if p < 0 || int(p) >= len(providerNames) {
		return fmt.Sprintf("Provider(%d)", int(p))
	}
	return providerNames[p]
}
