package normalize

import "sort"

// DerivePositions fills finishing positions from a lap-position trace when
// the source carried none: each car's last-known position is the value at
// its highest recorded lap, and cars are ranked ascending by that position,
// ties broken by car number.
//
// The input is returned unchanged when any row already has a position or
// when the trace is empty - the latter is "insufficient data", recoverable
// on a later sync, not a failure.
func DerivePositions(rows []Row, trace LapTrace) []Row {
	if len(rows) == 0 || len(trace) == 0 {
		return rows
	}
	for _, r := range rows {
		if r.Position != 0 {
			return rows
		}
	}

	type lastKnown struct {
		car int
		pos int
	}
	ranked := make([]lastKnown, 0, len(rows))
	for _, r := range rows {
		laps := trace[r.CarNumber]
		if len(laps) == 0 {
			continue
		}
		highest := 0
		for lap := range laps {
			if lap > highest {
				highest = lap
			}
		}
		ranked = append(ranked, lastKnown{car: r.CarNumber, pos: laps[highest]})
	}
	if len(ranked) == 0 {
		return rows
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].pos != ranked[j].pos {
			return ranked[i].pos < ranked[j].pos
		}
		return ranked[i].car < ranked[j].car
	})

	finishing := make(map[int]int, len(ranked))
	for i, lk := range ranked {
		finishing[lk.car] = i + 1
	}

	out := make([]Row, len(rows))
	copy(out, rows)
	for i := range out {
		if pos, ok := finishing[out[i].CarNumber]; ok {
			out[i].Position = pos
		}
	}
	return out
}
