package spk

import (
	"fmt"
	"strings"
)

// Code is a NAIF SPICE integer id for a body or barycenter.
type Code int

// Well-known NAIF ids.
// Sourced from https://naif.jpl.nasa.gov/pub/naif/toolkit_docs/C/req/naif_ids.html
const (
	SolarSystemBarycenter Code = 0
	MercuryBarycenter     Code = 1
	VenusBarycenter       Code = 2
	EarthBarycenter       Code = 3
	MarsBarycenter        Code = 4
	JupiterBarycenter     Code = 5
	SaturnBarycenter      Code = 6
	UranusBarycenter      Code = 7
	NeptuneBarycenter     Code = 8
	PlutoBarycenter       Code = 9
	Sun                   Code = 10
	Mercury               Code = 199
	Venus                 Code = 299
	Moon                  Code = 301
	Earth                 Code = 399
	Mars                  Code = 499
	Jupiter               Code = 599
	Saturn                Code = 699
	Uranus                Code = 799
	Neptune               Code = 899
	Pluto                 Code = 999
)

// BodyInfo holds the names of one body. The last name is the display name.
type BodyInfo struct {
	Code  Code
	Names []string
}

// Bodies is the builtin name table: barycenters, planets, major moons and
// the DSN-tracked spacecraft.
var Bodies = []BodyInfo{
	{SolarSystemBarycenter, []string{"SOLAR_SYSTEM_BARYCENTER", "SSB", "SOLAR SYSTEM BARYCENTER"}},
	{MercuryBarycenter, []string{"MERCURY_BARYCENTER", "MERCURY BARYCENTER"}},
	{VenusBarycenter, []string{"VENUS_BARYCENTER", "VENUS BARYCENTER"}},
	{EarthBarycenter, []string{"EARTH_BARYCENTER", "EMB", "EARTH MOON BARYCENTER", "EARTH-MOON BARYCENTER", "EARTH BARYCENTER"}},
	{MarsBarycenter, []string{"MARS_BARYCENTER", "MARS BARYCENTER"}},
	{JupiterBarycenter, []string{"JUPITER_BARYCENTER", "JUPITER BARYCENTER"}},
	{SaturnBarycenter, []string{"SATURN_BARYCENTER", "SATURN BARYCENTER"}},
	{UranusBarycenter, []string{"URANUS_BARYCENTER", "URANUS BARYCENTER"}},
	{NeptuneBarycenter, []string{"NEPTUNE_BARYCENTER", "NEPTUNE BARYCENTER"}},
	{PlutoBarycenter, []string{"PLUTO_BARYCENTER", "PLUTO BARYCENTER"}},
	{Sun, []string{"SUN"}},

	{Mercury, []string{"MERCURY"}},
	{Venus, []string{"VENUS"}},
	{Moon, []string{"MOON"}},
	{Earth, []string{"EARTH"}},
	{401, []string{"PHOBOS"}},
	{402, []string{"DEIMOS"}},
	{Mars, []string{"MARS"}},
	{501, []string{"IO"}},
	{502, []string{"EUROPA"}},
	{503, []string{"GANYMEDE"}},
	{504, []string{"CALLISTO"}},
	{Jupiter, []string{"JUPITER"}},
	{601, []string{"MIMAS"}},
	{602, []string{"ENCELADUS"}},
	{606, []string{"TITAN"}},
	{Saturn, []string{"SATURN"}},
	{701, []string{"ARIEL"}},
	{705, []string{"MIRANDA"}},
	{Uranus, []string{"URANUS"}},
	{801, []string{"TRITON"}},
	{Neptune, []string{"NEPTUNE"}},
	{901, []string{"CHARON"}},
	{Pluto, []string{"PLUTO"}},

	// Interstellar
	{-31, []string{"VGR1", "VOYAGER 1"}},
	{-32, []string{"VGR2", "VOYAGER 2"}},

	// Mars
	{-41, []string{"MEX", "MARS EXPRESS"}},
	{-53, []string{"ODY", "MARS ODYSSEY"}},
	{-74, []string{"MRO", "MARS RECONNAISSANCE ORBITER"}},
	{-76, []string{"MSL", "CURIOSITY"}},
	{-143, []string{"TGO", "EXOMARS TRACE GAS ORBITER"}},
	{-168, []string{"M20", "MARS 2020", "PERSEVERANCE"}},
	{-202, []string{"MVN", "MAVEN"}},
	{-211, []string{"EMM", "HOPE"}},

	// Jupiter and beyond
	{-28, []string{"JUICE"}},
	{-61, []string{"JNO", "JUNO"}},
	{-159, []string{"EURC", "EUROPA CLIPPER"}},
	{-98, []string{"NHPC", "NH", "NEW HORIZONS"}},

	// Small bodies
	{-49, []string{"LUCY"}},
	{-255, []string{"PSYC", "PSYCHE"}},

	// Inner heliosphere
	{-21, []string{"SOHO"}},
	{-96, []string{"SPP", "PSP", "PARKER SOLAR PROBE"}},
	{-121, []string{"BEPI", "BEPICOLOMBO"}},
	{-144, []string{"SOLO", "SOLAR ORBITER"}},
	{-234, []string{"STA", "STEREO AHEAD", "STEREO-A"}},
	{-235, []string{"STB", "STEREO BEHIND", "STEREO-B"}},

	// Lunar
	{-85, []string{"LRO", "LUNAR RECONNAISSANCE ORBITER"}},
	{-155, []string{"KPLO", "DANURI"}},
	{-158, []string{"CH3", "CHANDRAYAAN-3"}},
	{-186, []string{"CAPS", "CAPSTONE"}},

	// Earth orbit, L1 and L2
	{-8, []string{"WIND"}},
	{-48, []string{"HST", "HUBBLE"}},
	{-92, []string{"ACE"}},
	{-95, []string{"TESS"}},
	{-123, []string{"GAIA"}},
	{-146, []string{"DSCO", "DSCOVR"}},
	{-151, []string{"CHDR", "CXO", "CHANDRA"}},
	{-170, []string{"JWST", "WEBB", "JAMES WEBB SPACE TELESCOPE"}},
}

// bodyNames maps codes to builtin names for quick lookup.
var bodyNames = func() map[Code][]string {
	m := make(map[Code][]string, len(Bodies))
	for _, b := range Bodies {
		m[b.Code] = b.Names
	}
	return m
}()

// bodyCodes maps normalized builtin names to codes.
var bodyCodes = func() map[string]Code {
	m := make(map[string]Code, len(Bodies)*3)
	for _, b := range Bodies {
		for _, name := range b.Names {
			m[normalizeName(name)] = b.Code
		}
	}
	return m
}()

// normalizeName folds case and whitespace so "pluto  barycenter" and
// "PLUTO BARYCENTER" match.
func normalizeName(name string) string {
	return strings.ToUpper(strings.Join(strings.Fields(name), " "))
}

// BuiltinNames returns the builtin names for a code, or nil if unknown.
func BuiltinNames(code Code) []string {
	return bodyNames[code]
}

// BuiltinCode returns the code registered for a name (case-insensitive).
func BuiltinCode(name string) (Code, bool) {
	c, ok := bodyCodes[normalizeName(name)]
	return c, ok
}

// DisplayName returns the display name for a code, or "" if unknown.
func DisplayName(code Code) string {
	names := bodyNames[code]
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}

// describe renders a code with its display name, e.g. "399 EARTH".
func describe(code Code) string {
	if name := DisplayName(code); name != "" {
		return fmt.Sprintf("%d %s", code, name)
	}
	return fmt.Sprintf("%d", code)
}
