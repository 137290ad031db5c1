package grib1

// provenance is the (center, model, grid) triple of section 1.
type provenance struct {
	center, model, grid int
}

func (r *Record) provenance() provenance {
	return provenance{r.Header.Center, r.Header.Model, r.Header.GridID}
}

func (p provenance) in(list ...provenance) bool {
	for _, q := range list {
		if p == q {
			return true
		}
	}
	return false
}

func oneOf(v int, set ...int) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}

// quirk is one entry of the translation table: when match accepts a
// record, apply rewrites its provenance tag, codes or values.
type quirk struct {
	name  string
	match func(id provenance) bool
	apply func(r *Record)
}

func ids(list ...provenance) func(provenance) bool {
	return func(id provenance) bool { return id.in(list...) }
}

var scannav = provenance{59, 78, 255} // Meteorem (Scannav)

// quirks is ordered: the first matching entry wins and later entries are
// not consulted, so overlapping triples (7/96/3 is both GFS and Maxsea)
// resolve to the earliest rule.
var quirks = []quirk{
	{
		name: "NOAA GFS",
		match: func(id provenance) bool {
			return id.center == 7 && oneOf(id.model, 96, 81) && oneOf(id.grid, 0, 3, 4, 255)
		},
		apply: func(r *Record) {
			r.provider = NoaaGFS
			rescalePrecipitation(r)
			// GFS reuses the WW3 wave-max codes for unrelated products.
			if r.provenance() == (provenance{7, 81, 3}) &&
				oneOf(r.code.Type, ParamWavMaxDir, ParamWavMaxPer, ParamWavMaxHt) {
				r.code.Type = ParamNotDefined
			}
			if r.code.LevelType == LevelAtmosEntire {
				r.code.LevelType = LevelAtmosAll
			}
		},
	},
	{
		name: "NOAA NCEP WW3",
		match: ids(
			provenance{7, 122, 239}, // akw.all.grb
			provenance{7, 124, 253}, // enp.all.grb
			provenance{7, 123, 244}, // nah.all.grb
			provenance{7, 125, 253}, // nph.all.grb
			provenance{7, 88, 233},  // nwww3.all.grb
			provenance{7, 121, 238}, // wna.all.grb
			provenance{7, 88, 255},  // saildocs
		),
		apply: tag(NoaaNcepWW3),
	},
	{
		name:  "Meteo-France Arome/Arpege",
		match: ids(provenance{84, 204, 255}),
		apply: func(r *Record) {
			c := &r.code
			if c.Type == ParamPressure && c.LevelType == LevelMSL && c.LevelValue == 0 {
				c.Type = ParamPressureMSL
			}
			if c.Type == ParamCloudTot && c.LevelType == LevelGroundSurface && c.LevelValue == 0 {
				c.LevelType = LevelAtmosAll
				c.LevelValue = 0
			}
		},
	},
	{
		name:  "Meteo-France Arpege global",
		match: ids(provenance{84, 211, 255}),
		apply: func(*Record) {},
	},
	{
		name:  "CEP navimail",
		match: ids(provenance{85, 1, 255}),
		apply: tag(NorwayMetno),
	},
	{
		name: "met.no North Europe",
		match: ids(
			provenance{88, 255, 255},
			provenance{88, 230, 255},
			provenance{88, 200, 255},
			provenance{88, 67, 255},
		),
		apply: tag(NorwayMetno),
	},
	{
		name:  "WRF NMM",
		match: ids(provenance{7, 89, 255}),
		apply: rescalePrecipitation,
	},
	{
		name:  "NCEP SST",
		match: ids(provenance{7, 44, 173}, provenance{7, 44, 235}),
		apply: tag(NoaaNcepSST),
	},
	{
		name:  "FNMOC WW3 Mediterranean",
		match: ids(provenance{58, 111, 179}),
		apply: tag(FnmocWW3Med),
	},
	{
		name:  "FNMOC WW3 equatorial America and Europe",
		match: ids(provenance{58, 11, 255}),
		apply: tag(FnmocWW3Eqam),
	},
	{
		name:  "SKIRON",
		match: ids(provenance{7, 31, 255}),
		apply: tag(Skiron),
	},
	{
		name:  "FNMOC WW3 global",
		match: ids(provenance{58, 110, 240}),
		apply: tag(FnmocWW3Glb),
	},
	{
		name:  "Meteorem (Scannav)",
		match: ids(scannav),
		apply: func(r *Record) {
			c := &r.code
			if c.LevelType != LevelMSL || c.LevelValue != 0 {
				return
			}
			switch c.Type {
			case ParamWindVX, ParamWindVY:
				c.LevelType = LevelAboveGround
			case ParamPrecipTot:
				c.LevelType = LevelGroundSurface
			}
		},
	},
	{
		name:  "NOGAPS",
		match: ids(provenance{58, 58, 240}),
		apply: func(r *Record) {
			r.provider = Nogaps
			if r.code.Type == paramNogapsSeaSurfT {
				r.code = DataCode{Type: ParamTemp, LevelType: LevelGroundSurface}
			}
		},
	},
	{
		name: "other recognized providers",
		match: ids(
			provenance{255, 1, 255},   // navcenter.com
			provenance{7, 96, 3},      // Maxsea
			provenance{255, 255, 255}, // Maxsea tide current
			provenance{7, 127, 255},   // Meteoconsult
			provenance{255, 220, 255}, // Actimar
			provenance{7, 45, 255},    // saildocs RTOFS Gulf Stream
			provenance{58, 22, 179},   // COAMPS
			provenance{58, 22, 158},   // COAMPS
			provenance{58, 22, 255},   // COAMPS via saildocs
			provenance{54, 47, 255},   // Canada GEM
		),
		apply: func(*Record) {},
	},
}

func tag(p Provider) func(*Record) {
	return func(r *Record) { r.provider = p }
}

// rescalePrecipitation converts accumulations to mm/h over the P1..P2
// period and precipitation rates from mm/s to mm/h.
func rescalePrecipitation(r *Record) {
	h := &r.Header
	if h.P2 <= h.P1 {
		return
	}
	switch r.code.Type {
	case ParamPrecipTot:
		r.MultiplyAllData(1 / float64(h.P2-h.P1))
	case ParamPrecipRate:
		r.MultiplyAllData(3600)
	}
}

// translateDataType runs the quirks table, then normalizes wave and
// surface levels for recognized providers.
func (r *Record) translateDataType(rep Reporter) {
	r.knownData = true
	id := r.provenance()
	matched := false
	for _, q := range quirks {
		if q.match(id) {
			q.apply(r)
			matched = true
			break
		}
	}
	if !matched {
		if id.center == 74 {
			reportf(rep, r.ID, "UK Met Office, Exeter, England")
		} else {
			r.knownData = false
			reportf(rep, r.ID, "unknown center/model/grid %d/%d/%d", id.center, id.model, id.grid)
			return
		}
	}

	c := &r.code
	r.waveData = waveParams[c.Type]
	if r.waveData {
		c.LevelType = LevelGroundSurface
		c.LevelValue = 0
	}
	if c.LevelType == LevelGroundSurface {
		c.LevelValue = 0
	}
	if c.LevelType == LevelAboveGround && c.LevelValue == 0 {
		c.LevelType = LevelGroundSurface
	}
}
