package model

import (
	"fmt"
	"time"
)

// FloatMeta is per-float metadata extracted from an ARGO profile file.
type FloatMeta struct {
	FloatID         string
	ProjectName     string
	LatestLatitude  float64
	LatestLongitude float64
}

// Measurement is a single per-reading row for argo_measurements.
// Nil pointers map to SQL NULL (missing or fill values in the source file).
type Measurement struct {
	FloatID     string
	Timestamp   *time.Time
	Latitude    *float64
	Longitude   *float64
	Pressure    *float64
	Temperature *float64
	Salinity    *float64
}

// Summary renders the one-sentence float description stored in the
// semantic-summary index.
func (m FloatMeta) Summary() string {
	return fmt.Sprintf(
		"ARGO float with ID %s from the %s project. "+
			"Its latest known position is at latitude %.2f and longitude %.2f. "+
			"This float measures ocean temperature, salinity, and pressure profiles.",
		m.FloatID, m.ProjectName, m.LatestLatitude, m.LatestLongitude,
	)
}
