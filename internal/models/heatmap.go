package models

// WeightedPoint - точка тепловой карты с весом плотности [0..1]
type WeightedPoint struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Weight float64 `json:"weight"`
}

// Hotspot - одиночная окружность-индикатор скопления туристов,
// дешёвая альтернатива полной тепловой карте.
type Hotspot struct {
	Center       LatLng  `json:"center"`
	RadiusMeters float64 `json:"radius_meters"`
	Color        string  `json:"color"`
	Count        int     `json:"count"`
}
