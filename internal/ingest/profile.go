package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/floatchat-ai/floatchat/internal/model"
)

// ARGO profile variable names, per the Argo user manual.
const (
	varPlatformNumber = "PLATFORM_NUMBER"
	varProjectName    = "PROJECT_NAME"
	varJuld           = "JULD"
	varLatitude       = "LATITUDE"
	varLongitude      = "LONGITUDE"
	varPressure       = "PRES"
	varTemperature    = "TEMP"
	varSalinity       = "PSAL"
)

// juldEpoch is the ARGO reference date: JULD counts days since 1950-01-01.
var juldEpoch = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

// defaultFillValue is the conventional ARGO missing-data sentinel, used
// when a variable carries no _FillValue attribute.
const defaultFillValue = 99999.0

// Profile is the extracted content of one ARGO profile file.
type Profile struct {
	Float        model.FloatMeta
	Measurements []model.Measurement
}

// ExtractProfile pulls float metadata and per-level measurements out of a
// parsed profile file. Fill values become nil; rows where pressure,
// temperature, and salinity are all missing are dropped.
func ExtractProfile(f *File) (*Profile, error) {
	platforms, err := f.Strings(varPlatformNumber)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", varPlatformNumber, err)
	}
	floatID := firstNonEmpty(platforms)
	if floatID == "" {
		return nil, fmt.Errorf("ingest: file carries no platform number")
	}

	project := ""
	if projects, err := f.Strings(varProjectName); err == nil {
		project = firstNonEmpty(projects)
	}

	juld, err := f.Float64s(varJuld)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", varJuld, err)
	}
	lats, err := f.Float64s(varLatitude)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", varLatitude, err)
	}
	lons, err := f.Float64s(varLongitude)
	if err != nil {
		return nil, fmt.Errorf("ingest: %s: %w", varLongitude, err)
	}

	nProf := len(juld)
	if nProf == 0 || len(lats) != nProf || len(lons) != nProf {
		return nil, fmt.Errorf("ingest: inconsistent profile axes (juld=%d lat=%d lon=%d)",
			len(juld), len(lats), len(lons))
	}

	pres := readLevels(f, varPressure, nProf)
	temp := readLevels(f, varTemperature, nProf)
	psal := readLevels(f, varSalinity, nProf)

	nLevels := maxLen(pres, temp, psal) / nProf

	var measurements []model.Measurement
	latestProfile := -1
	latestJuld := math.Inf(-1)

	for i := 0; i < nProf; i++ {
		ts := juldToTime(f, juld[i])
		lat := scrub(f, varLatitude, lats[i])
		lon := scrub(f, varLongitude, lons[i])

		if lat != nil && lon != nil && (ts != nil && juld[i] > latestJuld || latestProfile < 0) {
			if ts != nil {
				latestJuld = juld[i]
			}
			latestProfile = i
		}

		for j := 0; j < nLevels; j++ {
			p := levelValue(f, varPressure, pres, i, nLevels, j)
			t := levelValue(f, varTemperature, temp, i, nLevels, j)
			s := levelValue(f, varSalinity, psal, i, nLevels, j)
			if p == nil && t == nil && s == nil {
				continue
			}
			measurements = append(measurements, model.Measurement{
				FloatID:     floatID,
				Timestamp:   ts,
				Latitude:    lat,
				Longitude:   lon,
				Pressure:    p,
				Temperature: t,
				Salinity:    s,
			})
		}
	}

	meta := model.FloatMeta{FloatID: floatID, ProjectName: project}
	if latestProfile >= 0 {
		meta.LatestLatitude = lats[latestProfile]
		meta.LatestLongitude = lons[latestProfile]
	}

	return &Profile{Float: meta, Measurements: measurements}, nil
}

// readLevels reads a nProf x nLevels variable, or nil when absent.
func readLevels(f *File, name string, nProf int) []float64 {
	vals, err := f.Float64s(name)
	if err != nil || len(vals)%nProf != 0 {
		return nil
	}
	return vals
}

func maxLen(slices ...[]float64) int {
	n := 0
	for _, s := range slices {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

func levelValue(f *File, name string, vals []float64, profile, nLevels, level int) *float64 {
	if vals == nil {
		return nil
	}
	idx := profile*nLevels + level
	if idx >= len(vals) {
		return nil
	}
	return scrub(f, name, vals[idx])
}

// scrub maps fill values, NaN, and infinity to nil.
func scrub(f *File, name string, v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	fill := defaultFillValue
	if fv, ok := fillValue(f, name); ok {
		fill = fv
	}
	if v == fill {
		return nil
	}
	return &v
}

func fillValue(f *File, name string) (float64, bool) {
	v := f.Var(name)
	if v == nil {
		return 0, false
	}
	switch fv := v.Attrs["_FillValue"].(type) {
	case float64:
		return fv, true
	default:
		return 0, false
	}
}

func juldToTime(f *File, juld float64) *time.Time {
	if scrub(f, varJuld, juld) == nil {
		return nil
	}
	t := juldEpoch.Add(time.Duration(juld * 24 * float64(time.Hour)))
	return &t
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
