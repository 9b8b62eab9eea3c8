package geo

import (
	"math"
	"testing"

	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineMeters_ZeroDistance(t *testing.T) {
	p := models.LatLng{Lat: 28.6129, Lng: 77.2295}
	assert.Zero(t, HaversineMeters(p, p))
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Дели -> Мумбаи, ~1150 км по дуге большого круга
	delhi := models.LatLng{Lat: 28.6139, Lng: 77.2090}
	mumbai := models.LatLng{Lat: 19.0760, Lng: 72.8777}

	d := HaversineMeters(delhi, mumbai)
	assert.InDelta(t, 1153000, d, 15000)
}

func TestHaversineMeters_Symmetric(t *testing.T) {
	a := models.LatLng{Lat: 28.6129, Lng: 77.2295}
	b := models.LatLng{Lat: 28.6200, Lng: 77.2400}
	assert.Equal(t, HaversineMeters(a, b), HaversineMeters(b, a))
}

func TestPointInPolygon(t *testing.T) {
	triangle := []models.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 0},
	}

	tests := []struct {
		name  string
		point models.LatLng
		want  bool
	}{
		{"точка внутри", models.LatLng{Lat: 1, Lng: 1}, true},
		{"точка снаружи", models.LatLng{Lat: 20, Lng: 20}, false},
		{"вершина считается внутренней", models.LatLng{Lat: 0, Lng: 0}, true},
		{"точка на ребре считается внутренней", models.LatLng{Lat: 0, Lng: 5}, true},
		{"точка сразу за гипотенузой", models.LatLng{Lat: 5.1, Lng: 5.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointInPolygon(tt.point, triangle))
		})
	}
}

func TestPointInPolygon_DegenerateRing(t *testing.T) {
	// Кольцо из менее чем трёх точек не содержит ни одной точки
	ring := []models.LatLng{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 10}}
	assert.False(t, PointInPolygon(models.LatLng{Lat: 0, Lng: 5}, ring))
	assert.False(t, PointInPolygon(models.LatLng{Lat: 0, Lng: 5}, nil))
}

func TestShapeContains_Circle(t *testing.T) {
	center := models.LatLng{Lat: 28.6129, Lng: 77.2295}
	shape := models.Shape{
		Type:         models.ShapeCircle,
		Center:       &center,
		RadiusMeters: 50,
	}

	// Центр всегда внутри
	assert.True(t, ShapeContains(shape, center))

	// Точка в ~30 м к северу - внутри, в ~60 м - снаружи
	lat30, lng30 := DestinationPoint(center.Lat, center.Lng, 0, 30)
	lat60, lng60 := DestinationPoint(center.Lat, center.Lng, 0, 60)
	assert.True(t, ShapeContains(shape, models.LatLng{Lat: lat30, Lng: lng30}))
	assert.False(t, ShapeContains(shape, models.LatLng{Lat: lat60, Lng: lng60}))
}

func TestShapeContains_InvalidCircle(t *testing.T) {
	p := models.LatLng{Lat: 1, Lng: 1}
	assert.False(t, ShapeContains(models.Shape{Type: models.ShapeCircle}, p))
	assert.False(t, ShapeContains(models.Shape{
		Type:         models.ShapeCircle,
		Center:       &models.LatLng{Lat: 1, Lng: 1},
		RadiusMeters: 0,
	}, p))
}

func TestShapeContains_Polygon(t *testing.T) {
	shape := models.Shape{
		Type: models.ShapePolygon,
		Ring: []models.LatLng{
			{Lat: 0, Lng: 0},
			{Lat: 0, Lng: 10},
			{Lat: 10, Lng: 10},
			{Lat: 10, Lng: 0},
		},
	}
	assert.True(t, ShapeContains(shape, models.LatLng{Lat: 5, Lng: 5}))
	assert.False(t, ShapeContains(shape, models.LatLng{Lat: 15, Lng: 5}))
}

func TestDestinationPoint_RoundTrip(t *testing.T) {
	lat, lng := 28.6129, 77.2295

	// 300 м на восток и 300 м обратно на запад возвращают в исходную точку
	lat2, lng2 := DestinationPoint(lat, lng, 90, 300)
	lat3, lng3 := DestinationPoint(lat2, lng2, 270, 300)

	assert.InDelta(t, lat, lat3, 1e-6)
	assert.InDelta(t, lng, lng3, 1e-6)

	// Фактически пройденное расстояние совпадает с запрошенным
	d := HaversineMeters(models.LatLng{Lat: lat, Lng: lng}, models.LatLng{Lat: lat2, Lng: lng2})
	assert.InDelta(t, 300, d, 1)
}

func TestDestinationPoint_North(t *testing.T) {
	lat, lng := 10.0, 20.0
	lat2, lng2 := DestinationPoint(lat, lng, 0, 1000)

	require.Greater(t, lat2, lat)
	assert.InDelta(t, lng, lng2, 1e-9)
	assert.False(t, math.IsNaN(lat2))
}

func TestCentroid(t *testing.T) {
	points := []models.LatLng{
		{Lat: 0, Lng: 0},
		{Lat: 10, Lng: 0},
		{Lat: 0, Lng: 10},
		{Lat: 10, Lng: 10},
	}
	c := Centroid(points)
	assert.Equal(t, models.LatLng{Lat: 5, Lng: 5}, c)
}

func TestCentroid_Empty(t *testing.T) {
	assert.Equal(t, models.LatLng{}, Centroid(nil))
}
