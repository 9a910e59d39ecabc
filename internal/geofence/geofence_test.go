package geofence

import (
	"math"
	"testing"
)

// metersPerDegreeLat converts a meter offset into degrees of latitude on the
// spherical model used by Distance.
const metersPerDegreeLat = earthRadiusM * math.Pi / 180

func TestDistance_SamePoint(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{22.3151, 73.1444},
		{-45.5, 170.2},
		{89.9, -179.9},
	}

	for _, p := range points {
		d := Distance(p[0], p[1], p[0], p[1])
		if d != 0 {
			t.Errorf("Distance(%v, %v, same point) = %f, want 0", p[0], p[1], d)
		}
	}
}

func TestDistance_OneDegreeLongitudeAtEquator(t *testing.T) {
	d := Distance(0, 0, 0, 1)
	want := metersPerDegreeLat // equator: 1 deg lon == 1 deg lat

	if math.Abs(d-want) > 1 {
		t.Errorf("Distance(0,0,0,1) = %f, want %f +/- 1m", d, want)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	d1 := Distance(22.3151, 73.1444, 22.32, 73.15)
	d2 := Distance(22.32, 73.15, 22.3151, 73.1444)

	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadius_InsideAndOutside(t *testing.T) {
	// Registered center from the ExamCenter1 scenario.
	centerLat, centerLon := 22.3151, 73.1444

	tests := []struct {
		name    string
		offsetM float64
		radius  float64
		wantOK  bool
		wantDst int64
	}{
		{"well inside", 250, 300, true, 250},
		{"outside", 350, 300, false, 350},
		{"at center", 0, 300, true, 0},
		{"tiny radius", 5, 1, false, 5},
	}

	for _, tc := range tests {
		userLat := centerLat + tc.offsetM/metersPerDegreeLat
		ok, dst := WithinRadius(userLat, centerLon, centerLat, centerLon, tc.radius)
		if ok != tc.wantOK {
			t.Errorf("%s: ok = %v, want %v", tc.name, ok, tc.wantOK)
		}
		if dst != tc.wantDst {
			t.Errorf("%s: distance = %d, want %d", tc.name, dst, tc.wantDst)
		}
	}
}

func TestWithinRadius_BoundaryInclusive(t *testing.T) {
	centerLat, centerLon := 22.3151, 73.1444
	userLat := centerLat + 300/metersPerDegreeLat

	// Radius set to the exact computed distance: the boundary is in.
	d := Distance(userLat, centerLon, centerLat, centerLon)
	ok, _ := WithinRadius(userLat, centerLon, centerLat, centerLon, d)
	if !ok {
		t.Error("point exactly on the boundary should be inside")
	}

	ok, _ = WithinRadius(userLat, centerLon, centerLat, centerLon, d-0.001)
	if ok {
		t.Error("point just past the boundary should be outside")
	}
}

func TestCheckCoordinates(t *testing.T) {
	valid := [][2]float64{
		{0, 0},
		{-90, -180},
		{90, 180},
		{22.3151, 73.1444},
	}
	for _, p := range valid {
		if err := CheckCoordinates(p[0], p[1]); err != nil {
			t.Errorf("CheckCoordinates(%v, %v) = %v, want nil", p[0], p[1], err)
		}
	}

	invalid := [][2]float64{
		{math.NaN(), 0},
		{0, math.NaN()},
		{math.Inf(1), 0},
		{0, math.Inf(-1)},
		{91, 0},
		{-91, 0},
		{0, 181},
		{0, -181},
	}
	for _, p := range invalid {
		if err := CheckCoordinates(p[0], p[1]); err == nil {
			t.Errorf("CheckCoordinates(%v, %v) = nil, want error", p[0], p[1])
		}
	}
}
