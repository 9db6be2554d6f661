package capacity

import "strings"

type AircraftInfo struct {
	Name  string
	Seats int
}

// Typical two/three-class seat counts; individual airline layouts vary.
var aircraftTable = map[string]AircraftInfo{
	"319": {"Airbus A319", 138},
	"320": {"Airbus A320", 174},
	"321": {"Airbus A321", 200},
	"32A": {"Airbus A320 (Sharklets)", 174},
	"32B": {"Airbus A321 (Sharklets)", 200},
	"32N": {"Airbus A320neo", 180},
	"32Q": {"Airbus A321neo", 200},
	"223": {"Airbus A220-300", 148},
	"332": {"Airbus A330-200", 250},
	"333": {"Airbus A330-300", 290},
	"339": {"Airbus A330-900neo", 287},
	"343": {"Airbus A340-300", 279},
	"346": {"Airbus A340-600", 297},
	"359": {"Airbus A350-900", 315},
	"351": {"Airbus A350-1000", 350},
	"388": {"Airbus A380-800", 509},
	"738": {"Boeing 737-800", 186},
	"739": {"Boeing 737-900", 180},
	"7M8": {"Boeing 737 MAX 8", 178},
	"7M9": {"Boeing 737 MAX 9", 193},
	"744": {"Boeing 747-400", 371},
	"748": {"Boeing 747-8", 364},
	"763": {"Boeing 767-300", 211},
	"772": {"Boeing 777-200", 314},
	"77W": {"Boeing 777-300ER", 354},
	"788": {"Boeing 787-8", 242},
	"789": {"Boeing 787-9", 290},
	"78X": {"Boeing 787-10", 318},
	"E90": {"Embraer 190", 100},
	"E95": {"Embraer 195", 120},
	"CR9": {"Bombardier CRJ900", 90},
	"AT7": {"ATR 72", 70},
	"DH4": {"De Havilland Dash 8-400", 78},
}

// LookupAircraft returns the display name and typical seat count for an
// IATA aircraft type code.
func LookupAircraft(code string) (AircraftInfo, bool) {
	info, ok := aircraftTable[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// Economy seat pitch in inches.
var economyPitch = map[string]int{
	"LH": 30,
	"BA": 31,
	"AF": 31,
	"KL": 31,
	"EK": 32,
	"QR": 32,
	"SQ": 32,
	"CX": 32,
	"DL": 31,
	"UA": 31,
	"AA": 31,
	"FR": 30,
	"U2": 29,
	"W6": 30,
	"QF": 31,
	"NH": 34,
	"JL": 33,
}

func EconomySeatPitch(carrierCode string) (int, bool) {
	pitch, ok := economyPitch[strings.ToUpper(carrierCode)]
	return pitch, ok
}
