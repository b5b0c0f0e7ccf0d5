package registry

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownMission indicates a mission name with no registry entry.
var ErrUnknownMission = errors.New("unknown mission")

// Alias is a mission/receiver naming pair under one center's convention.
type Alias struct {
	Mission  string
	Receiver string
}

// Satellite is one receiver satellite with its names under each
// processing-center convention. A center absent from Aliases does not
// carry the satellite.
type Satellite struct {
	// AWS is the canonical naming used throughout this system.
	AWS Alias

	// Aliases maps each contributing center to its own naming.
	Aliases map[Center]Alias
}

// satellites is built once at package init from the per-mission tables
// below.
var satellites []Satellite

func init() {
	// COSMIC-1: six receivers. UCAR keeps them under one mission
	// directory; ROM SAF archives the constellation as "cosmic".
	for i := 1; i <= 6; i++ {
		satellites = append(satellites, Satellite{
			AWS: Alias{"cosmic1", fmt.Sprintf("cosmic1c%d", i)},
			Aliases: map[Center]Alias{
				UCAR:     {"cosmic1", fmt.Sprintf("C%03d", i)},
				ROMSAF:   {"cosmic", fmt.Sprintf("C%03d", i)},
				JPL:      {"cosmic1", fmt.Sprintf("cosmic1c%d", i)},
				EUMETSAT: {"cosmic1", fmt.Sprintf("C%02d", i)},
			},
		})
	}

	// COSMIC-2: six receivers, no ROM SAF or EUMETSAT contribution.
	for i := 1; i <= 6; i++ {
		satellites = append(satellites, Satellite{
			AWS: Alias{"cosmic2", fmt.Sprintf("cosmic2e%d", i)},
			Aliases: map[Center]Alias{
				UCAR: {"cosmic2", fmt.Sprintf("C2E%d", i)},
				JPL:  {"cosmic2", fmt.Sprintf("cosmic2e%d", i)},
			},
		})
	}

	// Metop: UCAR and EUMETSAT split the mission per receiver, ROM SAF
	// and JPL keep one "metop" directory. EUMETSAT receiver IDs are
	// shuffled: Metop-A is M02, Metop-B is M01, Metop-C is M03.
	eumetsatIDs := map[string]string{"a": "M02", "b": "M01", "c": "M03"}
	for _, letter := range []string{"a", "b", "c"} {
		satellites = append(satellites, Satellite{
			AWS: Alias{"metop", "metop" + letter},
			Aliases: map[Center]Alias{
				UCAR:     {"metop" + letter, "MTP" + upper(letter)},
				ROMSAF:   {"metop", "MET" + upper(letter)},
				JPL:      {"metop", "metop" + letter},
				EUMETSAT: {"metop" + letter, eumetsatIDs[letter]},
			},
		})
	}

	// CHAMP: single receiver, UCAR and JPL only.
	satellites = append(satellites, Satellite{
		AWS: Alias{"champ", "champ"},
		Aliases: map[Center]Alias{
			UCAR: {"champ", "CHAM"},
			JPL:  {"champ", "champ"},
		},
	})

	// SAC-C: single receiver, UCAR and JPL only.
	satellites = append(satellites, Satellite{
		AWS: Alias{"sacc", "sacc"},
		Aliases: map[Center]Alias{
			UCAR: {"sacc", "SACC"},
			JPL:  {"sacc", "sacc"},
		},
	})

	// GPS/MET: UCAR archives the prototype mission twice, with and
	// without anti-spoofing encryption ("as").
	for _, rec := range []string{"gpsmet", "gpsmetas"} {
		satellites = append(satellites, Satellite{
			AWS: Alias{"gpsmet", rec},
			Aliases: map[Center]Alias{
				UCAR: {rec, rec},
				JPL:  {"gpsmet", rec},
			},
		})
	}

	// GeoOptics CICERO: six receivers, UCAR and JPL.
	for i := 1; i <= 6; i++ {
		satellites = append(satellites, Satellite{
			AWS: Alias{"geoopt", fmt.Sprintf("geooptG%02d", i)},
			Aliases: map[Center]Alias{
				UCAR: {"geoopt", fmt.Sprintf("GO%02d", i)},
				JPL:  {"geoopt", fmt.Sprintf("geooptG%02d", i)},
			},
		})
	}

	// Commercial constellations delivered through UCAR liveupdate.
	satellites = append(satellites,
		Satellite{
			AWS:     Alias{"spire", "spire"},
			Aliases: map[Center]Alias{UCAR: {"spire", "spire"}},
		},
		Satellite{
			AWS:     Alias{"planetiq", "planetiq"},
			Aliases: map[Center]Alias{UCAR: {"planetiq", "planetiq"}},
		},
	)
}

func upper(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

// ValidMission reports whether name is a known AWS mission.
func ValidMission(name string) bool {
	for _, sat := range satellites {
		if sat.AWS.Mission == name {
			return true
		}
	}
	return false
}

// Missions returns the known AWS mission names, sorted.
func Missions() []string {
	seen := make(map[string]bool)
	var names []string
	for _, sat := range satellites {
		if !seen[sat.AWS.Mission] {
			seen[sat.AWS.Mission] = true
			names = append(names, sat.AWS.Mission)
		}
	}
	sort.Strings(names)
	return names
}

// ReceiverSatellites returns the satellites of an AWS mission.
// Returns ErrUnknownMission for an unregistered name.
func ReceiverSatellites(mission string) ([]Satellite, error) {
	var sats []Satellite
	for _, sat := range satellites {
		if sat.AWS.Mission == mission {
			sats = append(sats, sat)
		}
	}
	if len(sats) == 0 {
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownMission, mission, Missions())
	}
	return sats, nil
}

// CenterMissions returns a center's mission directory names for an AWS
// mission, deduplicated and sorted. The mapping is many-to-one: several
// receiver satellites may share one center mission directory, and one AWS
// mission may fan out to several (metop under UCAR).
func CenterMissions(mission string, c Center) ([]string, error) {
	sats, err := ReceiverSatellites(mission)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, sat := range sats {
		alias, ok := sat.Aliases[c]
		if !ok {
			continue
		}
		if !seen[alias.Mission] {
			seen[alias.Mission] = true
			names = append(names, alias.Mission)
		}
	}
	sort.Strings(names)
	return names, nil
}

// CenterCarriesMission reports whether a center archives any satellite of
// the given AWS mission.
func CenterCarriesMission(mission string, c Center) bool {
	names, err := CenterMissions(mission, c)
	return err == nil && len(names) > 0
}
