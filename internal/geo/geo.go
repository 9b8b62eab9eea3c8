package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/shenikar/tourist_safety_system/internal/models"
)

// EarthRadiusMeters - средний радиус Земли в метрах
const EarthRadiusMeters = 6371000.0

// HaversineMeters возвращает расстояние по дуге большого круга между двумя
// точками в метрах. Детерминирована для одинаковых входов.
func HaversineMeters(a, b models.LatLng) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// PointInPolygon проверяет принадлежность точки полигону методом трассировки
// луча (even-odd). Кольцо считается неявно замкнутым. Кольцо из менее чем
// трёх точек не содержит ни одной точки. Точка на вершине или ребре
// считается внутренней.
func PointInPolygon(p models.LatLng, ring []models.LatLng) bool {
	if len(ring) < 3 {
		return false
	}
	if pointOnRing(p, ring) {
		return true
	}
	inside := false
	for i, j := 0, len(ring)-1; i < len(ring); j, i = i, i+1 {
		xi, yi := ring[i].Lng, ring[i].Lat
		xj, yj := ring[j].Lng, ring[j].Lat
		intersect := (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi
		if intersect {
			inside = !inside
		}
	}
	return inside
}

// pointOnRing проверяет, лежит ли точка на вершине или ребре кольца
func pointOnRing(p models.LatLng, ring []models.LatLng) bool {
	const eps = 1e-12
	for i := range ring {
		a := ring[i]
		b := ring[(i+1)%len(ring)]
		if onSegment(p, a, b, eps) {
			return true
		}
	}
	return false
}

func onSegment(p, a, b models.LatLng, eps float64) bool {
	cross := (b.Lng-a.Lng)*(p.Lat-a.Lat) - (b.Lat-a.Lat)*(p.Lng-a.Lng)
	if math.Abs(cross) > eps {
		return false
	}
	dot := (p.Lng-a.Lng)*(b.Lng-a.Lng) + (p.Lat-a.Lat)*(b.Lat-a.Lat)
	if dot < -eps {
		return false
	}
	sq := (b.Lng-a.Lng)*(b.Lng-a.Lng) + (b.Lat-a.Lat)*(b.Lat-a.Lat)
	return dot <= sq+eps
}

// ShapeContains проверяет принадлежность точки фигуре. Граница включается:
// точка ровно на окружности или на ребре полигона считается внутренней.
func ShapeContains(shape models.Shape, p models.LatLng) bool {
	switch shape.Type {
	case models.ShapeCircle:
		if shape.Center == nil || shape.RadiusMeters <= 0 {
			return false
		}
		return HaversineMeters(p, *shape.Center) <= shape.RadiusMeters
	case models.ShapePolygon:
		return PointInPolygon(p, shape.Ring)
	}
	return false
}

// DestinationPoint возвращает точку, отстоящую от исходной на distance метров
// по азимуту bearing (в градусах, 0 - север).
func DestinationPoint(lat, lng, bearing, distance float64) (float64, float64) {
	bearingRad := bearing * math.Pi / 180
	angularDistance := distance / EarthRadiusMeters

	latRad := lat * math.Pi / 180
	lngRad := lng * math.Pi / 180

	lat2 := math.Asin(math.Sin(latRad)*math.Cos(angularDistance) +
		math.Cos(latRad)*math.Sin(angularDistance)*math.Cos(bearingRad))

	lng2 := lngRad + math.Atan2(
		math.Sin(bearingRad)*math.Sin(angularDistance)*math.Cos(latRad),
		math.Cos(angularDistance)-math.Sin(latRad)*math.Sin(lat2))

	return lat2 * 180 / math.Pi, lng2 * 180 / math.Pi
}

// Centroid возвращает геометрический центр набора точек
func Centroid(points []models.LatLng) models.LatLng {
	if len(points) == 0 {
		return models.LatLng{}
	}
	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}
	return models.LatLng{
		Lat: sumLat / float64(len(points)),
		Lng: sumLng / float64(len(points)),
	}
}
