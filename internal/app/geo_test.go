package app_test

import (
	"math"
	"testing"

	"estate_reco/internal/app"
	"estate_reco/internal/domain"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b domain.Coordinate
		want float64
	}{
		{"same point", domain.Coordinate{Lat: 10.848, Lon: 106.787}, domain.Coordinate{Lat: 10.848, Lon: 106.787}, 0},
		{"few hundred meters", domain.Coordinate{Lat: 10.848, Lon: 106.787}, domain.Coordinate{Lat: 10.85, Lon: 106.79}, 0.396},
		{"just inside 5km", domain.Coordinate{Lat: 10.848, Lon: 106.787}, domain.Coordinate{Lat: 10.89, Lon: 106.787}, 4.670},
		{"just outside 5km", domain.Coordinate{Lat: 10.848, Lon: 106.787}, domain.Coordinate{Lat: 10.9, Lon: 106.787}, 5.782},
		{"hcmc to hanoi", domain.Coordinate{Lat: 10.762622, Lon: 106.660172}, domain.Coordinate{Lat: 21.028511, Lon: 105.804817}, 1145.162},
		{"antipodal", domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 0, Lon: 180}, 20015.087},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := app.Distance(tt.a, tt.b)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("expected %.3f, got %.6f", tt.want, got)
			}
			if back := app.Distance(tt.b, tt.a); back != got {
				t.Errorf("not symmetric: %v vs %v", got, back)
			}
		})
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	for _, c := range []domain.Coordinate{{}, {Lat: -33.9, Lon: 151.2}, {Lat: 89.99, Lon: -179.5}} {
		if d := app.Distance(c, c); d != 0 {
			t.Fatalf("distance(%v, %v) = %v", c, c, d)
		}
	}
}
