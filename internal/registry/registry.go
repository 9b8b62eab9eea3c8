package registry

import (
	"math"
	"sync"
	"time"

	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Registry хранит подключённые сессии и их последнее известное состояние.
// Все операции потокобезопасны; Snapshot возвращает копию, которую можно
// итерировать параллельно с обновлениями.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	logger   *logrus.Logger
}

func New(logger *logrus.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*models.Session),
		logger:   logger,
	}
}

// Register создаёт запись сессии. Повторный вызов обновляет атрибуты
// туриста, не трогая позицию.
func (r *Registry) Register(sessionID string, identity models.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.Identity = identity
		return
	}
	r.sessions[sessionID] = &models.Session{
		SessionID:   sessionID,
		Identity:    identity,
		ConnectedAt: time.Now(),
	}
}

// UpdatePosition обновляет позицию сессии. Некорректные координаты и
// незарегистрированные сессии молча игнорируются (только лог): сбойный
// отчёт одного клиента не должен ронять цикл обработки.
// Возвращает true, если позиция была применена.
func (r *Registry) UpdatePosition(sessionID string, lat, lng float64, ts time.Time) bool {
	if !isFinite(lat) || !isFinite(lng) {
		r.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"lat":        lat,
			"lng":        lng,
		}).Warn("Dropping position report with non-finite coordinates")
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		r.logger.WithField("session_id", sessionID).Warn("Position report for unregistered session dropped")
		return false
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	s.Position = models.LatLng{Lat: lat, Lng: lng}
	s.Timestamp = ts
	s.HasPosition = true
	return true
}

// Get возвращает копию сессии
func (r *Registry) Get(sessionID string) (models.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return models.Session{}, false
	}
	return *s, true
}

// Unregister удаляет сессию из реестра
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Snapshot возвращает копию всех сессий на момент вызова
func (r *Registry) Snapshot() []models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// Count возвращает число подключённых сессий
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
