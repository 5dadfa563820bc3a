package normalize

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// csvColumns maps header keywords to column indexes. Exports rename headers
// across seasons, so lookup is case-insensitive and by substring, never by
// fixed index.
type csvColumns struct {
	position  int
	number    int
	team      int
	firstName int
	lastName  int
	driver    int
	laps      int
	time      int
	gap       int
	status    int
	class     int
}

func findColumn(headers []string, match func(h string) bool) int {
	for i, h := range headers {
		if match(strings.ToLower(strings.TrimSpace(h))) {
			return i
		}
	}
	return -1
}

func resolveCSVColumns(headers []string) csvColumns {
	contains := func(kw string) func(string) bool {
		return func(h string) bool { return strings.Contains(h, kw) }
	}
	cols := csvColumns{
		position:  findColumn(headers, contains("pos")),
		number:    findColumn(headers, contains("number")),
		team:      findColumn(headers, contains("team")),
		firstName: findColumn(headers, contains("firstname")),
		laps:      findColumn(headers, contains("laps")),
		gap:       findColumn(headers, contains("gap")),
		status:    findColumn(headers, contains("status")),
		class:     findColumn(headers, contains("class")),
	}
	cols.lastName = findColumn(headers, func(h string) bool {
		return strings.Contains(h, "secondname") || strings.Contains(h, "surname") || strings.Contains(h, "lastname")
	})
	// Legacy era: a single DRIVER or DRIVER_1 column instead of name parts.
	cols.driver = findColumn(headers, func(h string) bool {
		return strings.Contains(h, "driver") && !strings.Contains(h, "name")
	})
	cols.time = findColumn(headers, contains("total_time"))
	if cols.time < 0 {
		cols.time = findColumn(headers, contains("time"))
	}
	return cols
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// csvRows extracts canonical rows from a semicolon-delimited export. A
// payload missing the minimum columns (position, team, driver) yields no
// rows - that is a signal to try the next candidate artifact, not an error.
func csvRows(text string) []Row {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	cols := resolveCSVColumns(records[0])
	if cols.position < 0 || cols.team < 0 || (cols.firstName < 0 && cols.driver < 0) {
		return nil
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		pos, err := strconv.Atoi(cell(record, cols.position))
		if err != nil {
			continue
		}
		num, err := strconv.Atoi(cell(record, cols.number))
		if err != nil {
			continue
		}

		name := ""
		if cols.firstName >= 0 {
			name = strings.TrimSpace(cell(record, cols.firstName) + " " + cell(record, cols.lastName))
		}
		if name == "" && cols.driver >= 0 {
			name = cell(record, cols.driver)
		}
		if name == "" {
			name = "Car " + cell(record, cols.number)
		}

		status := cell(record, cols.status)
		if status == "" {
			status = "Classified"
		}

		laps, _ := strconv.Atoi(cell(record, cols.laps))

		rows = append(rows, Row{
			Position:    pos,
			CarNumber:   num,
			DriverName:  name,
			TeamName:    cell(record, cols.team),
			Laps:        laps,
			ElapsedTime: cell(record, cols.time),
			Gap:         cell(record, cols.gap),
			Status:      status,
			ClassName:   cell(record, cols.class),
		})
	}

	return rows
}
