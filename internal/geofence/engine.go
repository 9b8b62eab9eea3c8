package geofence

import (
	"sync"

	"github.com/shenikar/tourist_safety_system/internal/catalog"
	"github.com/shenikar/tourist_safety_system/internal/geo"
	"github.com/shenikar/tourist_safety_system/internal/models"
)

// TransitionKind - вид перехода геозоны
type TransitionKind string

const (
	ZoneEntered    TransitionKind = "zone-entered"
	ZoneExited     TransitionKind = "zone-exited"
	BoundaryExited TransitionKind = "boundary-exited"
)

// Transition - зафиксированный переход между последовательными отчётами
// о позиции. Для зонных переходов заполнено поле Zone.
type Transition struct {
	Kind TransitionKind
	Zone models.Zone
}

// membership - эфемерное состояние принадлежности сессии, никогда не
// персистится. Пересчитывается целиком на каждом отчёте о позиции.
// insideZones хранит имя зоны по её идентификатору: имя нужно для отмены
// таймера напоминаний даже после удаления самой зоны из каталога.
type membership struct {
	insideZones       map[string]models.Zone
	insideAnyBoundary bool
	seen              bool
}

// Engine отслеживает переходы принадлежности сессий к зонам и границам.
// Машина состояний на пару (сессия, зона): outside/inside; событие
// порождается только при смене состояния, стоящий на месте турист не
// генерирует шторм алертов.
type Engine struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	state   map[string]*membership
}

func New(cat *catalog.Catalog) *Engine {
	return &Engine{
		catalog: cat,
		state:   make(map[string]*membership),
	}
}

// Evaluate пересчитывает принадлежность сессии по текущему каталогу и
// возвращает список переходов. Полный пересчёт на каждом обновлении:
// удалённая зона выпадает из membership при следующей же оценке.
func (e *Engine) Evaluate(sessionID string, pos models.LatLng) []Transition {
	zones := e.catalog.Zones()
	boundaries := e.catalog.Boundaries()

	e.mu.Lock()
	defer e.mu.Unlock()

	prev, ok := e.state[sessionID]
	if !ok {
		prev = &membership{insideZones: make(map[string]models.Zone)}
		e.state[sessionID] = prev
	}

	var transitions []Transition

	next := make(map[string]models.Zone, len(zones))
	for _, z := range zones {
		if !geo.ShapeContains(z.Shape, pos) {
			continue
		}
		next[z.ID] = z
		if _, was := prev.insideZones[z.ID]; !was {
			transitions = append(transitions, Transition{Kind: ZoneEntered, Zone: z})
		}
	}
	for id, z := range prev.insideZones {
		if _, still := next[id]; !still {
			transitions = append(transitions, Transition{Kind: ZoneExited, Zone: z})
		}
	}
	prev.insideZones = next

	// Принадлежность границам: OR по всем границам, вакуумно true при их
	// отсутствии. Событие только на переходе true -> false; первый отчёт
	// вне границ тоже считается переходом.
	insideAny := len(boundaries) == 0
	for _, b := range boundaries {
		if geo.ShapeContains(b.Shape, pos) {
			insideAny = true
			break
		}
	}
	if !insideAny && (!prev.seen || prev.insideAnyBoundary) {
		transitions = append(transitions, Transition{Kind: BoundaryExited})
	}
	prev.insideAnyBoundary = insideAny
	prev.seen = true

	return transitions
}

// InsideZones возвращает идентификаторы зон, внутри которых находится сессия
func (e *Engine) InsideZones(sessionID string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.state[sessionID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(m.insideZones))
	for id := range m.insideZones {
		out = append(out, id)
	}
	return out
}

// Forget сбрасывает состояние сессии при её отключении
func (e *Engine) Forget(sessionID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.state, sessionID)
}
