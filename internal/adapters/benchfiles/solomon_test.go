package benchfiles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/routing-go/internal/adapters/benchfiles"
)

const solomonC101 = `C101

VEHICLE
NUMBER     CAPACITY
  25         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      40         50          0          0       1236          0
    1      45         68         10        912        967         90
    2      45         70         30        825        870         90
`

func TestSolomonParser_ConvertsMinutesToSeconds(t *testing.T) {
	// Arrange
	parser := benchfiles.NewSolomonParser()

	// Act
	inst, err := parser.Parse("c101.txt", []byte(solomonC101))

	// Assert - header block
	require.NoError(t, err)
	assert.Equal(t, "C101", inst.Name)
	assert.Equal(t, benchfiles.FormatSolomon, inst.Format)
	assert.Equal(t, 25, inst.NumVehicles)
	assert.Equal(t, int64(200), inst.Capacity)
	require.Len(t, inst.Waypoints, 3)
	assert.Equal(t, 0, inst.DepotIndex)
	assert.True(t, inst.Waypoints[0].Depot)

	// Assert - every time field is the file's minute value times 60
	first := inst.Waypoints[1]
	require.NotNil(t, first.TimeWindow)
	assert.Equal(t, int64(912*60), first.TimeWindow.Start)
	assert.Equal(t, int64(967*60), first.TimeWindow.End)
	assert.Equal(t, int64(90*60), first.ServiceTime)

	// Assert - depot window spans the whole horizon of the file
	depotTW := inst.Waypoints[0].TimeWindow
	require.NotNil(t, depotTW)
	assert.Equal(t, int64(0), depotTW.Start)
	assert.Equal(t, int64(1236*60), depotTW.End)
}

func TestSolomonParser_MatrixCarriesScaledDurations(t *testing.T) {
	// Arrange
	parser := benchfiles.NewSolomonParser()

	// Act
	inst, err := parser.Parse("c101.txt", []byte(solomonC101))

	// Assert - travel time is Euclidean distance in minutes, stored in seconds
	require.NoError(t, err)
	require.NotNil(t, inst.Matrix)
	d01 := inst.Matrix.Distances[0][1] // hypot(5, 18) = sqrt(349)
	assert.InDelta(t, 18.6815, d01, 0.001)
	assert.Equal(t, int64(1121), inst.Matrix.Durations[0][1])
	assert.Equal(t, int64(0), inst.Matrix.Durations[0][0])
}

func TestSolomonParser_SwapsInvertedWindows(t *testing.T) {
	// Arrange - customer 1 has due < ready
	input := `bad1

VEHICLE
NUMBER     CAPACITY
   2         100

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      0          0          0          0        100          0
    1      1          1          5         80         20         10
`
	parser := benchfiles.NewSolomonParser()

	// Act
	inst, err := parser.Parse("bad1.txt", []byte(input))

	// Assert
	require.NoError(t, err)
	tw := inst.Waypoints[1].TimeWindow
	require.NotNil(t, tw)
	assert.Equal(t, int64(20*60), tw.Start)
	assert.Equal(t, int64(80*60), tw.End)
}

func TestSolomonParser_RejectsShortRows(t *testing.T) {
	// Arrange
	input := `short

VEHICLE
NUMBER     CAPACITY
   1         10

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      0          0          0
`
	parser := benchfiles.NewSolomonParser()

	// Act
	_, err := parser.Parse("short.txt", []byte(input))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "7 columns")
}
