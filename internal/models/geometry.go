package models

// LatLng — географическая точка в градусах (WGS84).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ShapeType - тип геометрической фигуры зоны или границы
type ShapeType string

const (
	ShapeCircle  ShapeType = "circle"
	ShapePolygon ShapeType = "polygon"
)

// Shape описывает геометрию региона: окружность (центр + радиус)
// либо полигон (замкнутое кольцо из >=3 точек).
type Shape struct {
	Type         ShapeType `json:"type"`
	Center       *LatLng   `json:"center,omitempty"`
	RadiusMeters float64   `json:"radius_meters,omitempty"`
	Ring         []LatLng  `json:"ring,omitempty"`
}
