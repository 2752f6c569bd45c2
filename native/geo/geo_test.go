package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromCoordsRoundTrip(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{40.7128, -74.0060},
		{-33.8688, 151.2093},
		{0, 0},
		{90, 180},
		{-90, -180},
		{0.0000005, -0.0000005},
	}
	for _, tc := range cases {
		loc, err := FromCoords(tc.lat, tc.lon)
		require.NoError(t, err)
		lat, lon := loc.Coords()
		require.InDelta(t, tc.lat, lat, 1e-6)
		require.InDelta(t, tc.lon, lon, 1e-6)
	}
}

func TestFromCoordsRejectsOutOfRange(t *testing.T) {
	cases := []struct{ lat, lon float64 }{
		{90.000001, 0},
		{-90.1, 0},
		{0, 180.5},
		{0, -181},
	}
	for _, tc := range cases {
		_, err := FromCoords(tc.lat, tc.lon)
		require.ErrorIs(t, err, ErrInvalidCoordinates)
	}
}

func TestDistanceSymmetricAndPlausible(t *testing.T) {
	nyc, err := FromCoords(40.7128, -74.0060)
	require.NoError(t, err)
	la, err := FromCoords(34.0522, -118.2437)
	require.NoError(t, err)

	d1 := nyc.DistanceTo(la)
	d2 := la.DistanceTo(nyc)
	require.Equal(t, d1, d2)
	// Great-circle NYC-LA is roughly 3936 km.
	require.InDelta(t, 3_936_000, d1, 20_000)
	require.Zero(t, nyc.DistanceTo(nyc))
	require.GreaterOrEqual(t, d1, 0.0)
}

func TestCellCoordsFloorTowardNegativeInfinity(t *testing.T) {
	south := Location{Latitude: -1, Longitude: -1}
	north := Location{Latitude: 1, Longitude: 1}

	sLat, sLon := south.CellCoords()
	nLat, nLon := north.CellCoords()
	require.Equal(t, int32(-1), sLat)
	require.Equal(t, int32(-1), sLon)
	require.Equal(t, int32(0), nLat)
	require.Equal(t, int32(0), nLon)

	// Exact multiples land on their own cell boundary.
	edge := Location{Latitude: -CellSize, Longitude: CellSize}
	eLat, eLon := edge.CellCoords()
	require.Equal(t, int32(-1), eLat)
	require.Equal(t, int32(1), eLon)
}

func TestCellIDInjective(t *testing.T) {
	coords := []struct{ lat, lon int32 }{
		{0, 0}, {0, -1}, {-1, 0}, {-1, -1},
		{900, 1800}, {-900, -1800}, {1, 0}, {0, 1},
	}
	seen := make(map[uint64]struct{})
	for _, c := range coords {
		id := CellID(c.lat, c.lon)
		_, dup := seen[id]
		require.False(t, dup, "duplicate cell id for (%d,%d)", c.lat, c.lon)
		seen[id] = struct{}{}

		gotLat, gotLon := CellIDCoords(id)
		require.Equal(t, c.lat, gotLat)
		require.Equal(t, c.lon, gotLon)
	}
}

func TestNewCellBoundingBox(t *testing.T) {
	loc, err := FromCoords(40.7128, -74.0060)
	require.NoError(t, err)
	cellLat, cellLon := loc.CellCoords()
	cell := NewCell(cellLat, cellLon)

	require.Equal(t, CellID(cellLat, cellLon), cell.CellID)
	require.LessOrEqual(t, cell.MinLatitude, loc.Latitude)
	require.Greater(t, cell.MaxLatitude, loc.Latitude)
	require.LessOrEqual(t, cell.MinLongitude, loc.Longitude)
	require.Greater(t, cell.MaxLongitude, loc.Longitude)
	require.Equal(t, int32(CellSize), cell.MaxLatitude-cell.MinLatitude)
}

func TestDistanceKnownValue(t *testing.T) {
	// One degree of latitude is ~111.19 km on the 6371km sphere.
	a := Location{}
	b := Location{Latitude: 1 * Precision}
	d := a.DistanceTo(b)
	require.InDelta(t, EarthRadiusMeters*math.Pi/180, d, 1)
}
