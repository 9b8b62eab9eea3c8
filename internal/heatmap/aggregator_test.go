package heatmap

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() *Aggregator {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return NewAggregator(15, 30, logger)
}

// sessionsAt создаёт n сессий с позицией в окрестности заданной точки
func sessionsAt(n int, lat, lng float64) []models.Session {
	out := make([]models.Session, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Session{
			SessionID:   fmt.Sprintf("sess-%d", i),
			Position:    models.LatLng{Lat: lat + float64(i)*0.0001, Lng: lng},
			HasPosition: true,
		})
	}
	return out
}

func TestRebuild_PointsPerSession(t *testing.T) {
	a := newTestAggregator()

	points := a.Rebuild(sessionsAt(3, 28.6129, 77.2295))

	// Центр плюс кольцо из 12 точек на каждую сессию
	assert.Len(t, points, 3*13)
}

func TestRebuild_WeightTiers(t *testing.T) {
	a := newTestAggregator()

	tests := []struct {
		name     string
		sessions int
		want     float64
	}{
		{"низкая загруженность", 10, 0.3},
		{"на пороге среднего яруса", 15, 0.3},
		{"средняя загруженность", 20, 0.7},
		{"высокая загруженность", 35, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := a.Rebuild(sessionsAt(tt.sessions, 28.6129, 77.2295))
			require.NotEmpty(t, points)
			for _, p := range points {
				assert.Equal(t, tt.want, p.Weight)
			}
		})
	}
}

func TestRebuild_SkipsSessionsWithoutPosition(t *testing.T) {
	a := newTestAggregator()

	sessions := sessionsAt(2, 28.6129, 77.2295)
	sessions = append(sessions, models.Session{SessionID: "sess-idle"})

	points := a.Rebuild(sessions)
	assert.Len(t, points, 2*13)
}

func TestRebuild_Empty(t *testing.T) {
	a := newTestAggregator()
	assert.Empty(t, a.Rebuild(nil))
}

func TestAutoHotspot_NoPositions(t *testing.T) {
	a := newTestAggregator()

	_, ok := a.AutoHotspot([]models.Session{{SessionID: "sess-idle"}})
	assert.False(t, ok)
}

func TestAutoHotspot_CenterAndRadius(t *testing.T) {
	a := newTestAggregator()
	sessions := []models.Session{
		{SessionID: "sess-0", Position: models.LatLng{Lat: 10, Lng: 20}, HasPosition: true},
		{SessionID: "sess-1", Position: models.LatLng{Lat: 12, Lng: 22}, HasPosition: true},
	}

	hs, ok := a.AutoHotspot(sessions)
	require.True(t, ok)

	assert.Equal(t, models.LatLng{Lat: 11, Lng: 21}, hs.Center)
	assert.Equal(t, 200.0+20.0*2, hs.RadiusMeters)
	assert.Equal(t, 2, hs.Count)
}

func TestAutoHotspot_ColorTiers(t *testing.T) {
	a := newTestAggregator()

	tests := []struct {
		sessions int
		want     string
	}{
		{5, "yellow"},
		{14, "yellow"},
		{15, "orange"},
		{29, "orange"},
		{30, "red"},
		{40, "red"},
	}

	for _, tt := range tests {
		hs, ok := a.AutoHotspot(sessionsAt(tt.sessions, 28.6129, 77.2295))
		require.True(t, ok)
		assert.Equalf(t, tt.want, hs.Color, "sessions=%d", tt.sessions)
	}
}
