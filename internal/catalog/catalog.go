package catalog

import (
	"sync"

	"github.com/shenikar/tourist_safety_system/internal/models"
)

// Catalog - единственный источник истины о зонах и границах.
// Чтения всегда согласованы с последней применённой записью: движок
// геозон не должен видеть удалённую зону.
type Catalog struct {
	mu         sync.RWMutex
	zones      map[string]models.Zone
	boundaries map[string]models.Boundary
}

func New() *Catalog {
	return &Catalog{
		zones:      make(map[string]models.Zone),
		boundaries: make(map[string]models.Boundary),
	}
}

// UpsertZone создаёт или обновляет зону
func (c *Catalog) UpsertZone(z models.Zone) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zones[z.ID] = z
}

// DeleteZone удаляет зону; удаление несуществующей зоны - no-op
func (c *Catalog) DeleteZone(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.zones, id)
}

// UpsertBoundary создаёт или обновляет границу
func (c *Catalog) UpsertBoundary(b models.Boundary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boundaries[b.ID] = b
}

// DeleteBoundary удаляет границу; удаление несуществующей границы - no-op
func (c *Catalog) DeleteBoundary(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.boundaries, id)
}

// Zones возвращает копию всех зон
func (c *Catalog) Zones() []models.Zone {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Zone, 0, len(c.zones))
	for _, z := range c.zones {
		out = append(out, z)
	}
	return out
}

// Boundaries возвращает копию всех границ
func (c *Catalog) Boundaries() []models.Boundary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Boundary, 0, len(c.boundaries))
	for _, b := range c.boundaries {
		out = append(out, b)
	}
	return out
}
