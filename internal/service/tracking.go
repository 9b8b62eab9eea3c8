package service

import (
	"time"

	"github.com/shenikar/tourist_safety_system/internal/alert"
	"github.com/shenikar/tourist_safety_system/internal/broadcast"
	"github.com/shenikar/tourist_safety_system/internal/catalog"
	"github.com/shenikar/tourist_safety_system/internal/geofence"
	"github.com/shenikar/tourist_safety_system/internal/heatmap"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/shenikar/tourist_safety_system/internal/registry"
	"github.com/sirupsen/logrus"
)

// HeatmapUpdate - payload события heatmap-update
type HeatmapUpdate struct {
	Points  []models.WeightedPoint `json:"points"`
	Hotspot *models.Hotspot        `json:"hotspot,omitempty"`
}

// TrackingService - конвейер обработки живых данных: отчёт о позиции ->
// реестр сессий -> движок геозон -> диспетчер алертов -> тепловая карта ->
// рассылка. Отчёты одной сессии обрабатываются строго последовательно
// (read-горутина соединения), разные сессии - параллельно.
type TrackingService struct {
	registry   *registry.Registry
	catalog    *catalog.Catalog
	engine     *geofence.Engine
	dispatcher *alert.Dispatcher
	heatmap    *heatmap.Aggregator
	publisher  EventPublisher
	logger     *logrus.Logger
}

func NewTrackingService(
	reg *registry.Registry,
	cat *catalog.Catalog,
	engine *geofence.Engine,
	dispatcher *alert.Dispatcher,
	aggregator *heatmap.Aggregator,
	publisher EventPublisher,
	logger *logrus.Logger,
) *TrackingService {
	return &TrackingService{
		registry:   reg,
		catalog:    cat,
		engine:     engine,
		dispatcher: dispatcher,
		heatmap:    aggregator,
		publisher:  publisher,
		logger:     logger,
	}
}

// Connect досылает новому клиенту текущее состояние каталога: зоны и
// границы, созданные до его подключения
func (s *TrackingService) Connect(sessionID string) {
	for _, z := range s.catalog.Zones() {
		s.publisher.SendTo(sessionID, broadcast.EventZoneChanged, z)
	}
	for _, b := range s.catalog.Boundaries() {
		s.publisher.SendTo(sessionID, broadcast.EventBoundaryChanged, b)
	}
}

// RegisterSession сохраняет атрибуты туриста для сессии
func (s *TrackingService) RegisterSession(sessionID string, identity models.Identity) {
	s.registry.Register(sessionID, identity)
}

// HandlePositionReport - точка входа отчёта о позиции. Обновляет реестр,
// пересчитывает геозоны и тепловую карту, рассылает события. Некорректный
// отчёт отбрасывается внутри реестра и не влияет на другие сессии.
func (s *TrackingService) HandlePositionReport(sessionID string, identity models.Identity, lat, lng float64, ts time.Time) {
	// Живые данные принимаются и без явной регистрации
	s.registry.Register(sessionID, identity)

	if !s.registry.UpdatePosition(sessionID, lat, lng, ts) {
		return
	}

	session, ok := s.registry.Get(sessionID)
	if !ok {
		return
	}

	s.publisher.Broadcast(broadcast.EventPositionUpdate, session)

	transitions := s.engine.Evaluate(sessionID, session.Position)
	s.dispatcher.HandleTransitions(session, transitions)

	s.publishHeatmap()
}

// Disconnect вычищает всё состояние сессии: реестр, membership геозон,
// таймеры напоминаний. После возврата не остаётся ни одного висящего таймера.
func (s *TrackingService) Disconnect(sessionID string) {
	s.registry.Unregister(sessionID)
	s.engine.Forget(sessionID)
	s.dispatcher.CancelAll(sessionID)

	s.publisher.Broadcast(broadcast.EventSessionDisconnected, map[string]string{"session_id": sessionID})
	s.publishHeatmap()
}

// UpsertZone применяет зону к каталогу и оповещает всех клиентов
func (s *TrackingService) UpsertZone(z models.Zone) {
	s.catalog.UpsertZone(z)
	s.publisher.Broadcast(broadcast.EventZoneChanged, z)
}

// DeleteZone удаляет зону; membership сессий очистится при следующей оценке
func (s *TrackingService) DeleteZone(id string) {
	s.catalog.DeleteZone(id)
	s.publisher.Broadcast(broadcast.EventZoneRemoved, map[string]string{"id": id})
}

// UpsertBoundary применяет границу к каталогу и оповещает всех клиентов
func (s *TrackingService) UpsertBoundary(b models.Boundary) {
	s.catalog.UpsertBoundary(b)
	s.publisher.Broadcast(broadcast.EventBoundaryChanged, b)
}

// DeleteBoundary удаляет границу
func (s *TrackingService) DeleteBoundary(id string) {
	s.catalog.DeleteBoundary(id)
	s.publisher.Broadcast(broadcast.EventBoundaryRemoved, map[string]string{"id": id})
}

// ActiveSessions возвращает снапшот всех подключённых сессий
func (s *TrackingService) ActiveSessions() []models.Session {
	return s.registry.Snapshot()
}

// ActiveAlerts возвращает текущий список алертов для дашборда
func (s *TrackingService) ActiveAlerts() []models.Alert {
	return s.dispatcher.ActiveAlerts()
}

func (s *TrackingService) publishHeatmap() {
	sessions := s.registry.Snapshot()
	update := HeatmapUpdate{Points: s.heatmap.Rebuild(sessions)}
	if hotspot, ok := s.heatmap.AutoHotspot(sessions); ok {
		update.Hotspot = &hotspot
	}
	s.publisher.Broadcast(broadcast.EventHeatmapUpdate, update)
}
