// Package normalize reduces source-specific result payloads to one canonical
// row shape. Everything here is pure: no I/O, no persistence.
package normalize

// Row is the canonical result row every wire format is normalized into.
// Zero values mean the source did not carry the field; Position is 1-based,
// so 0 always reads as "not yet known".
type Row struct {
	Position    int
	CarNumber   int
	DriverName  string
	TeamName    string
	Laps        int
	ElapsedTime string
	Gap         string
	Status      string
	ClassName   string
}
