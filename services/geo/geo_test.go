package geo

import (
	"math"
	"math/rand"
	"testing"

	"beautycita/models"
)

var (
	nyc    = models.GeoPoint{Lat: 40.7128, Lng: -74.0060}
	la     = models.GeoPoint{Lat: 34.0522, Lng: -118.2437}
	london = models.GeoPoint{Lat: 51.5074, Lng: -0.1278}
)

func TestDistanceSymmetric(t *testing.T) {
	pairs := [][2]models.GeoPoint{{nyc, la}, {la, london}, {nyc, london}, {{Lat: -33.86, Lng: 151.2}, {Lat: 35.68, Lng: 139.69}}}
	for _, p := range pairs {
		ab := DistanceMeters(p[0], p[1])
		ba := DistanceMeters(p[1], p[0])
		if math.Abs(ab-ba) > 1e-6 {
			t.Errorf("distance not symmetric: %f vs %f", ab, ba)
		}
	}
}

func TestDistanceIdentityIsZero(t *testing.T) {
	for _, p := range []models.GeoPoint{nyc, la, london, {}} {
		if d := DistanceMeters(p, p); d != 0 {
			t.Errorf("DistanceMeters(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// NYC to LA is roughly 3,936 km / 2,445 mi.
	km := DistanceKm(nyc, la)
	if km < 3900 || km > 3970 {
		t.Fatalf("NYC-LA km = %f", km)
	}
	mi := DistanceMiles(nyc, la)
	if mi < 2420 || mi > 2470 {
		t.Fatalf("NYC-LA miles = %f", mi)
	}
	if m := DistanceMeters(nyc, la); math.Abs(m/1000-km) > 1e-6 {
		t.Fatalf("metres and km disagree: %f vs %f", m, km)
	}
}

func TestWithinProximity(t *testing.T) {
	near := models.GeoPoint{Lat: nyc.Lat + 0.01, Lng: nyc.Lng}
	if !WithinProximity(nyc, near, 3000) {
		t.Fatalf("expected points ~1.1km apart to be within 3000m")
	}
	if WithinProximity(nyc, la, 3000) {
		t.Fatalf("NYC and LA reported as near")
	}
}

func TestBlurLocationStaysWithinRadius(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	const radius = 100.0
	// Blur offsets are expressed in degrees of 111,111 m; allow for float error only.
	limit := radius / metersPerDegree
	for i := 0; i < 1000; i++ {
		b := BlurLocation(nyc, radius, rnd)
		offset := math.Hypot(b.Lat-nyc.Lat, b.Lng-nyc.Lng)
		if offset > limit+1e-12 {
			t.Fatalf("offset %g exceeds %g degrees", offset, limit)
		}
	}
}

func TestBlurLocationNilRandom(t *testing.T) {
	b := BlurLocation(nyc, 0, nil)
	if b != nyc {
		t.Fatalf("zero radius moved the point: %v", b)
	}
}

func TestDistanceAntipodesStayFinite(t *testing.T) {
	halfCircumference := math.Pi * EarthRadiusMeters
	nan := 0
	for lat := -89.5; lat <= 89.5; lat += 0.5 {
		for lng := -179.0; lng < 0; lng += 1 {
			a := models.GeoPoint{Lat: lat, Lng: lng}
			b := models.GeoPoint{Lat: -lat, Lng: lng + 180}
			d := DistanceMeters(a, b)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				nan++
				continue
			}
			if d > halfCircumference+1 || d < halfCircumference-1 {
				t.Fatalf("antipode of %+v = %.2f m, want %.2f", a, d, halfCircumference)
			}
		}
	}
	if nan != 0 {
		t.Fatalf("%d antipodal pairs produced a non-finite distance", nan)
	}
}
