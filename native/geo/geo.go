package geo

import (
	"errors"
	"math"
)

// Precision scales degrees into the fixed-point integer representation: one
// unit is 1e-6 degrees.
const Precision = 1_000_000

// CellSize is the grid resolution in fixed-point units (0.1 degrees, roughly
// 11km at the equator).
const CellSize = 100_000

// EarthRadiusMeters is the mean Earth radius used by the haversine distance.
const EarthRadiusMeters = 6_371_000.0

// ErrInvalidCoordinates marks latitude/longitude values outside the
// [-90,90] / [-180,180] ranges.
var ErrInvalidCoordinates = errors.New("geo: coordinates out of range")

// Location is a fixed-point geographic coordinate with optional region
// metadata for coarse filtering.
type Location struct {
	Latitude    int32
	Longitude   int32
	RegionCode  uint16
	CountryCode uint16
	CityHash    uint64
}

// FromCoords converts degree coordinates into the fixed-point representation.
// Round-trip precision loss is bounded below 1e-6 degrees.
func FromCoords(lat, lon float64) (Location, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Location{}, ErrInvalidCoordinates
	}
	return Location{
		Latitude:  int32(math.Round(lat * Precision)),
		Longitude: int32(math.Round(lon * Precision)),
	}, nil
}

// Coords converts the fixed-point representation back to degrees.
func (l Location) Coords() (float64, float64) {
	return float64(l.Latitude) / Precision, float64(l.Longitude) / Precision
}

// DistanceTo computes the great-circle distance to other in meters using the
// haversine formula.
func (l Location) DistanceTo(other Location) float64 {
	lat1, lon1 := l.Coords()
	lat2, lon2 := other.Coords()

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Pow(math.Sin(deltaPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(deltaLambda/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// floorDiv divides flooring toward negative infinity, so cells straddling the
// equator or prime meridian stay distinct. Plain integer division truncates
// toward zero and would merge cell 0 with cell -0.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CellCoords maps the location onto grid-cell coordinates.
func (l Location) CellCoords() (int32, int32) {
	return floorDiv(l.Latitude, CellSize), floorDiv(l.Longitude, CellSize)
}

/// CellID packs grid-cell coordinates into a single 64-bit identifier: high 32
// bits carry the latitude cell, low 32 bits the longitude cell, both as the
// unsigned bit patterns of the signed values. The packing is injective over
// the representable coordinate range.
func CellID(cellLat, cellLon int32) uint64 {
	return uint64(uint32(cellLat))<<32 | uint64(uint32(cellLon))
}

// CellIDCoords unpacks a cell identifier back into grid coordinates.
func CellIDCoords(id uint64) (int32, int32) {
	return int32(uint32(id >> 32)), int32(uint32(id))
}

// Cell is one populated bucket of the spatial index. Cells are created lazily
// when the first promotion lands in them; the counter only increments.
type Cell struct {
	CellID         uint64
	MinLatitude    int32
	MaxLatitude    int32
	MinLongitude   int32
	MaxLongitude   int32
	PromotionCount uint32
}

// NewCell builds the cell record covering the given grid coordinates.
func NewCell(cellLat, cellLon int32) *Cell {
	return &Cell{
		CellID:       CellID(cellLat, cellLon),
		MinLatitude:  cellLat * CellSize,
		MaxLatitude:  cellLat*CellSize + CellSize,
		MinLongitude: cellLon * CellSize,
		MaxLongitude: cellLon*CellSize + CellSize,
	}
}
