package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersKnownFixture(t *testing.T) {
	// Moscow center: Red Square area to the river embankment.
	got := DistanceMeters(55.7558, 37.6173, 55.7520, 37.6175)

	want := 422.0
	if math.Abs(got-want) > want*0.05 {
		t.Fatalf("DistanceMeters = %.1f m, want %.1f m ±5%%", got, want)
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	pairs := [][4]float64{
		{55.7558, 37.6173, 55.7520, 37.6175},
		{0, 0, 0, 1},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1], p[2], p[3])
		ba := DistanceMeters(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	if d := DistanceMeters(55.7558, 37.6173, 55.7558, 37.6173); d != 0 {
		t.Fatalf("expected 0 for identical points, got %f", d)
	}
}

func TestWithinRadius(t *testing.T) {
	// ~422 m apart.
	if WithinRadius(55.7558, 37.6173, 55.7520, 37.6175, 100) {
		t.Error("expected outside 100 m radius")
	}
	if !WithinRadius(55.7558, 37.6173, 55.7520, 37.6175, 500) {
		t.Error("expected inside 500 m radius")
	}
}

func TestWithinRadiusDefault(t *testing.T) {
	// ~11 m apart; radius 0 must fall back to the 100 m default.
	if !WithinRadius(55.7558, 37.6173, 55.7559, 37.6173, 0) {
		t.Error("expected inside default radius")
	}
}
