// Package geo implements the coordinate validation and bounding-box math
// used by proximity queries.
//
// The bounding box is a deliberate rectangular over-approximation of a
// circular radius search: it is cheap to evaluate against stored rows and
// errs on the side of including points. Callers needing a true circle
// post-filter with Haversine.
package geo

import "math"

// kmPerDegreeLat is the approximate length of one degree of latitude.
// One degree of longitude spans kmPerDegreeLat·cos(latitude) km.
const kmPerDegreeLat = 111.0

const earthRadiusKm = 6371.0

// ValidCoordinates reports whether (lat, lng) is a usable coordinate pair:
// finite and within [-90,90] × [-180,180].
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// BoundingBox is a closed rectangle in degree space.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBoundingBox returns the rectangle covering a radiusKm circle centred
// on (lat, lng), using 1° latitude ≈ 111 km and 1° longitude ≈
// 111·cos(lat) km. Near the poles the longitude span degenerates; the
// delta is clamped to cover the full longitude range instead of dividing
// by a vanishing cosine.
func NewBoundingBox(lat, lng, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	lngDelta := 180.0
	if cosLat > 1e-6 {
		lngDelta = radiusKm / (kmPerDegreeLat * cosLat)
	}

	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

// Contains reports whether (lat, lng) falls inside the box, boundaries
// included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lng >= b.MinLng && lng <= b.MaxLng
}

// Haversine returns the great-circle distance in km between two points.
// Used for exact-radius post-filtering on top of the bounding box.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := math.Pi / 180

	dLat := (lat2 - lat1) * toRad
	dLng := (lng2 - lng1) * toRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*toRad)*math.Cos(lat2*toRad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
