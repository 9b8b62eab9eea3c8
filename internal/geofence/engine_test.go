package geofence

import (
	"testing"

	"github.com/shenikar/tourist_safety_system/internal/catalog"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insidePoint  = models.LatLng{Lat: 28.6129, Lng: 77.2295}
	outsidePoint = models.LatLng{Lat: 28.7000, Lng: 77.4000}
)

func circleZone(id, name string, center models.LatLng, radius float64) models.Zone {
	return models.Zone{
		ID:   id,
		Name: name,
		Risk: models.RiskHigh,
		Shape: models.Shape{
			Type:         models.ShapeCircle,
			Center:       &center,
			RadiusMeters: radius,
		},
	}
}

func kinds(transitions []Transition) []TransitionKind {
	out := make([]TransitionKind, 0, len(transitions))
	for _, tr := range transitions {
		out = append(out, tr.Kind)
	}
	return out
}

func TestEvaluate_ZoneEnterExactlyOnce(t *testing.T) {
	// Подготовка
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	engine := New(cat)

	// Вход в зону порождает ровно один переход
	transitions := engine.Evaluate("sess-1", insidePoint)
	require.Len(t, transitions, 1)
	assert.Equal(t, ZoneEntered, transitions[0].Kind)
	assert.Equal(t, "z-1", transitions[0].Zone.ID)

	// Повторный отчёт из той же точки не порождает переходов
	assert.Empty(t, engine.Evaluate("sess-1", insidePoint))
}

func TestEvaluate_ZoneExit(t *testing.T) {
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	engine := New(cat)

	engine.Evaluate("sess-1", insidePoint)
	transitions := engine.Evaluate("sess-1", outsidePoint)

	require.Len(t, transitions, 1)
	assert.Equal(t, ZoneExited, transitions[0].Kind)
	assert.Equal(t, "Рынок", transitions[0].Zone.Name)
	assert.Empty(t, engine.InsideZones("sess-1"))
}

func TestEvaluate_DeletedZone_ExitKeepsName(t *testing.T) {
	// Подготовка: сессия внутри зоны
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	engine := New(cat)
	engine.Evaluate("sess-1", insidePoint)

	// Действие: зона удалена, сессия никуда не двигалась
	cat.DeleteZone("z-1")
	transitions := engine.Evaluate("sess-1", insidePoint)

	// Проверки: выход зафиксирован и несёт имя удалённой зоны
	require.Len(t, transitions, 1)
	assert.Equal(t, ZoneExited, transitions[0].Kind)
	assert.Equal(t, "Рынок", transitions[0].Zone.Name)
	assert.Empty(t, engine.InsideZones("sess-1"))
}

func TestEvaluate_MultipleOverlappingZones(t *testing.T) {
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	cat.UpsertZone(circleZone("z-2", "Старый город", insidePoint, 500))
	engine := New(cat)

	transitions := engine.Evaluate("sess-1", insidePoint)
	assert.ElementsMatch(t, []TransitionKind{ZoneEntered, ZoneEntered}, kinds(transitions))
	assert.ElementsMatch(t, []string{"z-1", "z-2"}, engine.InsideZones("sess-1"))
}

func TestEvaluate_NoBoundaries_NeverExitsBoundary(t *testing.T) {
	// Без настроенных границ принадлежность вакуумно истинна
	engine := New(catalog.New())
	assert.Empty(t, engine.Evaluate("sess-1", outsidePoint))
}

func TestEvaluate_BoundaryExit_OnFirstReport(t *testing.T) {
	cat := catalog.New()
	cat.UpsertBoundary(models.Boundary{
		ID:   "b-1",
		Name: "Периметр",
		Shape: models.Shape{
			Type:         models.ShapeCircle,
			Center:       &insidePoint,
			RadiusMeters: 1000,
		},
	})
	engine := New(cat)

	// Первый отчёт уже вне границ считается переходом
	transitions := engine.Evaluate("sess-1", outsidePoint)
	require.Len(t, transitions, 1)
	assert.Equal(t, BoundaryExited, transitions[0].Kind)

	// Пока сессия остаётся снаружи, событие не повторяется
	assert.Empty(t, engine.Evaluate("sess-1", outsidePoint))
}

func TestEvaluate_BoundaryExitAndReentry(t *testing.T) {
	cat := catalog.New()
	cat.UpsertBoundary(models.Boundary{
		ID:   "b-1",
		Name: "Периметр",
		Shape: models.Shape{
			Type:         models.ShapeCircle,
			Center:       &insidePoint,
			RadiusMeters: 1000,
		},
	})
	engine := New(cat)

	assert.Empty(t, engine.Evaluate("sess-1", insidePoint))
	assert.Equal(t, []TransitionKind{BoundaryExited}, kinds(engine.Evaluate("sess-1", outsidePoint)))

	// Возврат внутрь не порождает события, но следующий выход - порождает
	assert.Empty(t, engine.Evaluate("sess-1", insidePoint))
	assert.Equal(t, []TransitionKind{BoundaryExited}, kinds(engine.Evaluate("sess-1", outsidePoint)))
}

func TestEvaluate_MultipleBoundaries_OrSemantics(t *testing.T) {
	cat := catalog.New()
	cat.UpsertBoundary(models.Boundary{
		ID: "b-1",
		Shape: models.Shape{
			Type:         models.ShapeCircle,
			Center:       &insidePoint,
			RadiusMeters: 1000,
		},
	})
	cat.UpsertBoundary(models.Boundary{
		ID: "b-2",
		Shape: models.Shape{
			Type:         models.ShapeCircle,
			Center:       &outsidePoint,
			RadiusMeters: 1000,
		},
	})
	engine := New(cat)

	// Внутри хотя бы одной границы - выхода нет
	assert.Empty(t, engine.Evaluate("sess-1", insidePoint))
	assert.Empty(t, engine.Evaluate("sess-1", outsidePoint))
}

func TestForget_ResetsState(t *testing.T) {
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	engine := New(cat)

	engine.Evaluate("sess-1", insidePoint)
	engine.Forget("sess-1")

	// После сброса повторный вход снова порождает переход
	transitions := engine.Evaluate("sess-1", insidePoint)
	require.Len(t, transitions, 1)
	assert.Equal(t, ZoneEntered, transitions[0].Kind)
}

func TestEvaluate_SessionsIndependent(t *testing.T) {
	cat := catalog.New()
	cat.UpsertZone(circleZone("z-1", "Рынок", insidePoint, 100))
	engine := New(cat)

	engine.Evaluate("sess-1", insidePoint)

	// Состояние другой сессии не затронуто
	transitions := engine.Evaluate("sess-2", insidePoint)
	require.Len(t, transitions, 1)
	assert.Equal(t, ZoneEntered, transitions[0].Kind)
}
