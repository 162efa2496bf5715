package models

import "time"

// MacroKind identifies one of the macro indicator series.
type MacroKind string

const (
	MacroCPI MacroKind = "cpi"
	MacroFX  MacroKind = "fx"
	MacroPMI MacroKind = "pmi"
	MacroGDP MacroKind = "gdp"
)

// MacroKinds lists every series the aligner consumes.
var MacroKinds = []MacroKind{MacroCPI, MacroFX, MacroPMI, MacroGDP}

// MacroPoint is one observation of a macro series.
type MacroPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// MacroSeries is a chronologically ordered macro indicator series.
type MacroSeries struct {
	Kind   MacroKind    `json:"kind"`
	Points []MacroPoint `json:"points"`
}

// Empty reports whether the series has no observations.
func (m MacroSeries) Empty() bool {
	return len(m.Points) == 0
}

// Latest returns the most recent observation, if any.
func (m MacroSeries) Latest() (MacroPoint, bool) {
	if len(m.Points) == 0 {
		return MacroPoint{}, false
	}
	return m.Points[len(m.Points)-1], true
}

// MacroSnapshot bundles every macro series fetched for a scan run.
// A missing entry means the series could not be fetched and degraded
// to empty rather than failing the run.
type MacroSnapshot struct {
	Series map[MacroKind]MacroSeries `json:"series"`
	AsOf   time.Time                 `json:"as_of"`
}

// Get returns the named series, or an empty one when absent.
func (s MacroSnapshot) Get(kind MacroKind) MacroSeries {
	if s.Series == nil {
		return MacroSeries{Kind: kind}
	}
	if ms, ok := s.Series[kind]; ok {
		return ms
	}
	return MacroSeries{Kind: kind}
}
