package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRows(t *testing.T) {
	text := "POSITION;NUMBER;STATUS;LAPS;TOTAL_TIME;GAP_FIRST;TEAM;DRIVER1_FIRSTNAME;DRIVER1_SECONDNAME\n" +
		"1;7;Classified;781;24:00:38.019;-;Porsche Penske Motorsport;Felipe;Nasr\n" +
		"2;060;Classified;781;24:01:00.500;+22.481;Meyer Shank Racing;Tom;Blomqvist\n"

	rows, err := Rows(CSVArtifact(text))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 7, rows[0].CarNumber)
	assert.Equal(t, "Felipe Nasr", rows[0].DriverName)
	assert.Equal(t, 60, rows[1].CarNumber, "leading zeros in car numbers are fine")
	assert.Equal(t, "+22.481", rows[1].Gap)
}

func TestCSVRowsLegacySingleDriverColumn(t *testing.T) {
	text := "POSITION;NUMBER;TEAM;DRIVER_1;STATUS;LAPS;TOTAL_TIME;GAP_FIRST\n" +
		"1;10;Konica Minolta Cadillac DPi-V.R;Ricky Taylor;Classified;63;1:40'37.481;-\n"

	rows, err := Rows(CSVArtifact(text))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, 10, rows[0].CarNumber)
	assert.Equal(t, "Ricky Taylor", rows[0].DriverName)
	assert.Equal(t, "Konica Minolta Cadillac DPi-V.R", rows[0].TeamName)
}

func TestCSVRowsHeaderCaseInsensitive(t *testing.T) {
	text := "Pos;Number;Team;Driver;Class\n" +
		"1;50;AF Corse;Antonio Fuoco;Hypercar\n"

	rows, err := Rows(CSVArtifact(text))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "Hypercar", rows[0].ClassName)
	assert.Equal(t, "Classified", rows[0].Status, "status defaults when the column is missing")
}

func TestCSVRowsMissingRequiredColumns(t *testing.T) {
	// No team column: nothing qualifies, but that is not an error.
	text := "POSITION;NUMBER;DRIVER_1\n1;7;Somebody\n"

	rows, err := Rows(CSVArtifact(text))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCSVRowsDropsUnparseable(t *testing.T) {
	text := "POSITION;NUMBER;TEAM;DRIVER_1\n" +
		"DNF;7;T1;A\n" +
		"2;NC;T2;B\n" +
		"3;9;T3;C\n"

	rows, err := Rows(CSVArtifact(text))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 9, rows[0].CarNumber)
}
