package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// flexString decodes a JSON string, number or null into a plain string.
// Timing exports flip between "7" and 7 across seasons.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = flexString(b)
	return nil
}

type jsonClassification struct {
	Classification []jsonEntry `json:"classification"`
}

type jsonEntry struct {
	Position    flexString   `json:"position"`
	Number      flexString   `json:"number"`
	Team        string       `json:"team"`
	Drivers     []jsonDriver `json:"drivers"`
	Laps        flexString   `json:"laps"`
	ElapsedTime string       `json:"elapsed_time"`
	GapFirst    string       `json:"gap_first"`
	Status      string       `json:"status"`
	Class       string       `json:"class"`
}

type jsonDriver struct {
	FirstName string `json:"firstname"`
	Surname   string `json:"surname"`
}

// jsonRows extracts canonical rows from a structured classification payload.
// Entries without a parseable position or car number are dropped.
func jsonRows(raw []byte) ([]Row, error) {
	var payload jsonClassification
	if err := json.Unmarshal(bytes.TrimPrefix(raw, utf8BOM), &payload); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(payload.Classification))
	for _, entry := range payload.Classification {
		pos, err := strconv.Atoi(strings.TrimSpace(string(entry.Position)))
		if err != nil {
			continue
		}
		num, err := strconv.Atoi(strings.TrimSpace(string(entry.Number)))
		if err != nil {
			continue
		}

		name := "Car " + strings.TrimSpace(string(entry.Number))
		if len(entry.Drivers) > 0 {
			full := strings.TrimSpace(strings.TrimSpace(entry.Drivers[0].FirstName) + " " + strings.TrimSpace(entry.Drivers[0].Surname))
			if full != "" {
				name = full
			}
		}

		team := strings.TrimSpace(entry.Team)
		if team == "" {
			team = "Unknown Team"
		}
		status := strings.TrimSpace(entry.Status)
		if status == "" {
			status = "finished"
		}

		laps, _ := strconv.Atoi(strings.TrimSpace(string(entry.Laps)))

		rows = append(rows, Row{
			Position:    pos,
			CarNumber:   num,
			DriverName:  name,
			TeamName:    team,
			Laps:        laps,
			ElapsedTime: strings.TrimSpace(entry.ElapsedTime),
			Gap:         strings.TrimSpace(entry.GapFirst),
			Status:      status,
			ClassName:   strings.TrimSpace(entry.Class),
		})
	}

	return rows, nil
}
