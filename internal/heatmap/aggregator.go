package heatmap

import (
	"math"

	"github.com/shenikar/tourist_safety_system/internal/geo"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	ringPoints        = 12
	ringRadiusMeters  = 300.0
	hotspotBaseRadius = 200.0
	hotspotStepRadius = 20.0
)

// Веса плотности по ярусам загруженности
const (
	weightLow    = 0.3
	weightMedium = 0.7
	weightHigh   = 1.0
)

// Aggregator строит поверхность плотности из текущих позиций сессий.
// Вокруг каждой позиции добавляется кольцо синтетических точек, чтобы
// рендер получал непрерывное пятно без настоящей kernel-density оценки -
// осознанный размен точности на простоту и дешевизну отрисовки.
type Aggregator struct {
	mediumThreshold int
	highThreshold   int
	logger          *logrus.Logger
}

func NewAggregator(mediumThreshold, highThreshold int, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		mediumThreshold: mediumThreshold,
		highThreshold:   highThreshold,
		logger:          logger,
	}
}

// Rebuild пересчитывает точки тепловой карты по снапшоту реестра.
// Вес точки определяется общим числом сессий, а не локальной плотностью.
func (a *Aggregator) Rebuild(sessions []models.Session) []models.WeightedPoint {
	total := 0
	for _, s := range sessions {
		if s.HasPosition {
			total++
		}
	}
	weight := a.weightFor(total)

	points := make([]models.WeightedPoint, 0, total*(ringPoints+1))
	for _, s := range sessions {
		if !s.HasPosition {
			continue
		}
		lat, lng := s.Position.Lat, s.Position.Lng
		if math.IsNaN(lat) || math.IsNaN(lng) {
			a.logger.WithField("session_id", s.SessionID).Warn("Skipping session with invalid coordinates in heatmap")
			continue
		}

		points = append(points, models.WeightedPoint{Lat: lat, Lng: lng, Weight: weight})
		for i := 0; i < ringPoints; i++ {
			bearing := float64(i) * 360.0 / ringPoints
			rLat, rLng := geo.DestinationPoint(lat, lng, bearing, ringRadiusMeters)
			points = append(points, models.WeightedPoint{Lat: rLat, Lng: rLng, Weight: weight})
		}
	}
	return points
}

// AutoHotspot строит одиночную окружность-индикатор скопления: центроид
// всех позиций, радиус растёт с числом туристов. Возвращает false, когда
// позиций нет и индикатор надо убрать.
func (a *Aggregator) AutoHotspot(sessions []models.Session) (models.Hotspot, bool) {
	positions := make([]models.LatLng, 0, len(sessions))
	for _, s := range sessions {
		if s.HasPosition {
			positions = append(positions, s.Position)
		}
	}
	if len(positions) == 0 {
		return models.Hotspot{}, false
	}

	count := len(positions)
	color := "yellow"
	if count >= a.highThreshold {
		color = "red"
	} else if count >= a.mediumThreshold {
		color = "orange"
	}

	return models.Hotspot{
		Center:       geo.Centroid(positions),
		RadiusMeters: hotspotBaseRadius + hotspotStepRadius*float64(count),
		Color:        color,
		Count:        count,
	}, true
}

func (a *Aggregator) weightFor(total int) float64 {
	switch {
	case total > a.highThreshold:
		return weightHigh
	case total > a.mediumThreshold:
		return weightMedium
	default:
		return weightLow
	}
}
