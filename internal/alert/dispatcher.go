package alert

import (
	"sync"
	"time"

	"github.com/shenikar/tourist_safety_system/internal/broadcast"
	"github.com/shenikar/tourist_safety_system/internal/geofence"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Publisher - контракт доставки событий дашбордам
type Publisher interface {
	Broadcast(eventType string, payload any)
}

// timerKey идентифицирует таймер напоминаний по туристу и имени зоны
type timerKey struct {
	Subject  string
	ZoneName string
}

// alertIdentity - ключ дедупликации клиентского списка алертов.
// Дедупликация по идентичности, не по времени возникновения.
type alertIdentity struct {
	Kind       models.AlertKind
	Subject    string
	TargetName string
}

type reminder struct {
	stop      chan struct{}
	sessionID string
}

// Dispatcher превращает переходы геозон в алерты: немедленный алерт при
// входе в зону, повторение с фиксированным периодом пока турист внутри,
// отмена при выходе и при отключении сессии. Таблица таймеров - явная,
// с операциями start/cancel/cancelAll; отмена неизвестного ключа - no-op.
type Dispatcher struct {
	mu        sync.Mutex
	interval  time.Duration
	publisher Publisher
	logger    *logrus.Logger
	timers    map[timerKey]*reminder
	bySession map[string]map[timerKey]struct{}
	active    map[alertIdentity]models.Alert
}

func NewDispatcher(interval time.Duration, publisher Publisher, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		interval:  interval,
		publisher: publisher,
		logger:    logger,
		timers:    make(map[timerKey]*reminder),
		bySession: make(map[string]map[timerKey]struct{}),
		active:    make(map[alertIdentity]models.Alert),
	}
}

// HandleTransitions обрабатывает переходы одной сессии в порядке их
// возникновения
func (d *Dispatcher) HandleTransitions(session models.Session, transitions []geofence.Transition) {
	for _, tr := range transitions {
		switch tr.Kind {
		case geofence.ZoneEntered:
			d.zoneEntered(session, tr.Zone)
		case geofence.ZoneExited:
			d.zoneExited(session, tr.Zone)
		case geofence.BoundaryExited:
			d.boundaryExited(session)
		}
	}
}

func (d *Dispatcher) zoneEntered(session models.Session, zone models.Zone) {
	risk := zone.Risk
	if risk == "" {
		risk = models.RiskLow
	}
	a := models.Alert{
		Kind:          models.AlertZone,
		SessionID:     session.SessionID,
		TouristID:     session.Identity.TouristID,
		PersonalID:    session.Identity.PersonalID,
		TargetName:    zone.Name,
		Risk:          risk,
		Position:      session.Position,
		FirstRaisedAt: time.Now(),
	}

	subj := subject(session)
	key := timerKey{Subject: subj, ZoneName: zone.Name}

	d.mu.Lock()
	d.saveLocked(alertIdentity{Kind: models.AlertZone, Subject: subj, TargetName: zone.Name}, a)
	started := d.startLocked(key, session.SessionID, a)
	d.mu.Unlock()

	// Немедленный алерт при первом переходе; повторы - только по таймеру
	d.publisher.Broadcast(broadcast.EventZoneAlert, a)
	if started {
		d.logger.WithFields(logrus.Fields{
			"subject": subj,
			"zone":    zone.Name,
		}).Info("Zone reminder timer started")
	}
}

func (d *Dispatcher) zoneExited(session models.Session, zone models.Zone) {
	subj := subject(session)
	key := timerKey{Subject: subj, ZoneName: zone.Name}

	d.mu.Lock()
	d.cancelLocked(key)
	delete(d.active, alertIdentity{Kind: models.AlertZone, Subject: subj, TargetName: zone.Name})
	d.mu.Unlock()
}

func (d *Dispatcher) boundaryExited(session models.Session) {
	subj := subject(session)
	a := models.Alert{
		Kind:          models.AlertBoundary,
		SessionID:     session.SessionID,
		TouristID:     session.Identity.TouristID,
		PersonalID:    session.Identity.PersonalID,
		TargetName:    "Area",
		Position:      session.Position,
		FirstRaisedAt: time.Now(),
	}

	// Выход за границу отменяет все зонные напоминания сессии; само
	// множество insideZones не трогается и пересчитается на следующем
	// отчёте о позиции.
	d.mu.Lock()
	d.cancelAllLocked(session.SessionID)
	d.saveLocked(alertIdentity{Kind: models.AlertBoundary, Subject: subj, TargetName: a.TargetName}, a)
	d.mu.Unlock()

	d.publisher.Broadcast(broadcast.EventOutsideBoundaryAlert, a)
}

// CancelAll отменяет все таймеры напоминаний сессии. Вызывается каскадно
// из Unregister: после отключения не должно оставаться висящих таймеров.
func (d *Dispatcher) CancelAll(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelAllLocked(sessionID)
}

// ActiveAlerts возвращает снапшот клиентского списка алертов
func (d *Dispatcher) ActiveAlerts() []models.Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]models.Alert, 0, len(d.active))
	for _, a := range d.active {
		out = append(out, a)
	}
	return out
}

// TimerCount возвращает число активных таймеров напоминаний
func (d *Dispatcher) TimerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// saveLocked вставляет алерт в клиентский список, подавляя дубликаты
func (d *Dispatcher) saveLocked(id alertIdentity, a models.Alert) {
	if _, exists := d.active[id]; exists {
		return
	}
	d.active[id] = a
}

// startLocked запускает таймер напоминаний, если его ещё нет для ключа
func (d *Dispatcher) startLocked(key timerKey, sessionID string, a models.Alert) bool {
	if _, exists := d.timers[key]; exists {
		return false
	}

	rem := &reminder{stop: make(chan struct{}), sessionID: sessionID}
	d.timers[key] = rem
	if d.bySession[sessionID] == nil {
		d.bySession[sessionID] = make(map[timerKey]struct{})
	}
	d.bySession[sessionID][key] = struct{}{}

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-rem.stop:
				return
			case <-ticker.C:
				d.publisher.Broadcast(broadcast.EventZoneAlert, a)
			}
		}
	}()
	return true
}

func (d *Dispatcher) cancelLocked(key timerKey) {
	rem, ok := d.timers[key]
	if !ok {
		return
	}
	close(rem.stop)
	delete(d.timers, key)
	if keys, ok := d.bySession[rem.sessionID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(d.bySession, rem.sessionID)
		}
	}
}

func (d *Dispatcher) cancelAllLocked(sessionID string) {
	for key := range d.bySession[sessionID] {
		d.cancelLocked(key)
	}
}

// subject возвращает стабильный идентификатор туриста для ключей таймеров
// и дедупликации: personalId, иначе touristId, иначе идентификатор сессии
func subject(session models.Session) string {
	if session.Identity.PersonalID != "" {
		return session.Identity.PersonalID
	}
	if session.Identity.TouristID != "" {
		return session.Identity.TouristID
	}
	return session.SessionID
}
