package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePositions(t *testing.T) {
	rows := []Row{
		{CarNumber: 7, DriverName: "A", TeamName: "T1"},
		{CarNumber: 31, DriverName: "B", TeamName: "T2"},
		{CarNumber: 50, DriverName: "C", TeamName: "T3"},
	}
	trace := LapTrace{
		7:  {1: 3, 2: 2, 3: 1},
		31: {1: 1, 2: 3, 3: 3},
		50: {1: 2, 2: 1, 3: 2},
	}

	out := DerivePositions(rows, trace)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].Position)
	assert.Equal(t, 3, out[1].Position)
	assert.Equal(t, 2, out[2].Position)

	// Input slice must not be mutated.
	assert.Equal(t, 0, rows[0].Position)
}

func TestDerivePositionsTiesByCarNumber(t *testing.T) {
	rows := []Row{
		{CarNumber: 9, DriverName: "A", TeamName: "T"},
		{CarNumber: 2, DriverName: "B", TeamName: "T"},
	}
	// Both cars last seen in second place; the lower number wins the tie.
	trace := LapTrace{9: {5: 2}, 2: {4: 2}}

	out := DerivePositions(rows, trace)
	assert.Equal(t, 2, out[0].Position)
	assert.Equal(t, 1, out[1].Position)
}

func TestDerivePositionsLeavesOfficialResultsAlone(t *testing.T) {
	rows := []Row{
		{CarNumber: 7, Position: 2},
		{CarNumber: 31},
	}
	out := DerivePositions(rows, LapTrace{7: {1: 1}, 31: {1: 2}})
	assert.Equal(t, rows, out)
}

func TestDerivePositionsEmptyTrace(t *testing.T) {
	rows := []Row{{CarNumber: 7}}
	assert.Equal(t, rows, DerivePositions(rows, nil))
	assert.Equal(t, rows, DerivePositions(rows, LapTrace{99: {1: 1}}))
}
