package geo

import (
	"math"
	"testing"
)

func TestValidCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"new york", 40.7, -73.9, true},
		{"north pole", 90, 0, true},
		{"south boundary", -90, 180, true},
		{"latitude too high", 90.1, 0, false},
		{"latitude too low", -91, 0, false},
		{"longitude too high", 0, 180.5, false},
		{"longitude too low", 0, -181, false},
		{"NaN latitude", math.NaN(), 0, false},
		{"infinite longitude", 0, math.Inf(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidCoordinates(tt.lat, tt.lng); got != tt.want {
				t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestBoundingBoxContains(t *testing.T) {
	// 10 km around (40.0, -73.0): Δlat ≈ 0.09°, Δlng ≈ 0.1176°.
	box := NewBoundingBox(40.0, -73.0, 10)

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"center", 40.0, -73.0, true},
		{"5.5 km north", 40.05, -73.0, true},
		{"just inside east edge", 40.0, -72.89, true},
		{"111 km north", 41.0, -73.0, false},
		{"far west", 40.0, -74.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := box.Contains(tt.lat, tt.lng); got != tt.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestBoundingBoxLongitudeWidens(t *testing.T) {
	// At 60°N a degree of longitude is half as long as at the equator,
	// so the same radius must span roughly twice the longitude.
	equator := NewBoundingBox(0, 0, 10)
	north := NewBoundingBox(60, 0, 10)

	equatorSpan := equator.MaxLng - equator.MinLng
	northSpan := north.MaxLng - north.MinLng

	if northSpan <= equatorSpan*1.9 {
		t.Errorf("longitude span at 60N = %v, want roughly 2x equator span %v", northSpan, equatorSpan)
	}
}

func TestBoundingBoxNearPole(t *testing.T) {
	// cos(lat) vanishes at the pole; the box must widen to the full
	// longitude range instead of blowing up.
	box := NewBoundingBox(90, 0, 10)

	if box.MinLng > -180 || box.MaxLng < 180 {
		t.Errorf("polar box should cover all longitudes, got [%v, %v]", box.MinLng, box.MaxLng)
	}
	if math.IsInf(box.MinLng, 0) || math.IsNaN(box.MinLng) {
		t.Errorf("polar box produced a non-finite bound: %v", box.MinLng)
	}
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is ~111 km everywhere.
	d := Haversine(40.0, -73.0, 41.0, -73.0)
	if d < 110 || d > 112 {
		t.Errorf("Haversine over 1 degree latitude = %v km, want ~111", d)
	}

	if d := Haversine(40.0, -73.0, 40.0, -73.0); d != 0 {
		t.Errorf("Haversine of identical points = %v, want 0", d)
	}
}
