package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// htmlRows locates a classification table inside a page and extracts
// canonical rows from it. Tables are matched by header keywords (pos, team,
// drivers) because column order and exact header text vary by event. A page
// with no qualifying table yields no rows.
func htmlRows(page string) []Row {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	for _, table := range collectTables(doc) {
		if rows := classificationRows(table); len(rows) > 0 {
			return rows
		}
	}
	return nil
}

// classificationRows converts one table's cells, or nil when its headers do
// not look like a classification.
func classificationRows(table [][]string) []Row {
	if len(table) < 2 {
		return nil
	}

	headers := table[0]
	find := func(kw string) int {
		for i, h := range headers {
			if strings.Contains(strings.ToLower(h), kw) {
				return i
			}
		}
		return -1
	}

	posCol, teamCol, driversCol := find("pos"), find("team"), find("driver")
	if posCol < 0 || teamCol < 0 || driversCol < 0 {
		return nil
	}
	numberCol := find("number")
	if numberCol < 0 {
		numberCol = find("no")
	}
	lapsCol, gapCol, statusCol, classCol := find("laps"), find("gap"), find("status"), find("class")
	timeCol := find("total time")
	if timeCol < 0 {
		timeCol = find("time")
	}

	rows := make([]Row, 0, len(table)-1)
	for _, record := range table[1:] {
		pos, err := strconv.Atoi(cell(record, posCol))
		if err != nil {
			continue
		}

		// WEC-style tables carry the car number as a leading token of the
		// team cell: "50 FERRARI AF CORSE".
		num, team := splitCarNumber(cell(record, teamCol))
		if num == 0 {
			num, _ = strconv.Atoi(cell(record, numberCol))
		}
		if num == 0 {
			continue
		}

		name := cell(record, driversCol)
		if i := strings.Index(name, "/"); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		if name == "" {
			name = "Car " + strconv.Itoa(num)
		}

		status := cell(record, statusCol)
		if status == "" {
			status = "Classified"
		}

		laps, _ := strconv.Atoi(cell(record, lapsCol))

		rows = append(rows, Row{
			Position:    pos,
			CarNumber:   num,
			DriverName:  name,
			TeamName:    team,
			Laps:        laps,
			ElapsedTime: cell(record, timeCol),
			Gap:         cell(record, gapCol),
			Status:      status,
			ClassName:   cell(record, classCol),
		})
	}

	return rows
}

// splitCarNumber peels a leading integer off a team cell. Returns 0 and the
// input unchanged when there is none.
func splitCarNumber(s string) (int, string) {
	first, rest, found := strings.Cut(s, " ")
	if !found {
		return 0, s
	}
	num, err := strconv.Atoi(first)
	if err != nil || num <= 0 {
		return 0, s
	}
	return num, strings.TrimSpace(rest)
}

// collectTables walks the document and returns every table as a cell grid.
func collectTables(doc *html.Node) [][][]string {
	var tables [][][]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if t := tableCells(n); len(t) > 0 {
				tables = append(tables, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return tables
}

func tableCells(table *html.Node) [][]string {
	var grid [][]string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var row []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					row = append(row, nodeText(c))
				}
			}
			if len(row) > 0 {
				grid = append(grid, row)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)

	return grid
}

func nodeText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}
