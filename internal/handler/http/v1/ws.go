package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shenikar/tourist_safety_system/internal/broadcast"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/sirupsen/logrus"
)

// Виды входящих событий событийного канала
const (
	inRegister            = "register"
	inPositionReport      = "position-report"
	inZoneUpsert          = "zone-upsert"
	inZoneDelete          = "zone-delete"
	inBoundaryUpsert      = "boundary-upsert"
	inBoundaryDelete      = "boundary-delete"
	inIncidentCreate      = "incident-create"
	inIncidentAcknowledge = "incident-acknowledge"
	inIncidentResolve     = "incident-resolve"
	inIncidentEscalate    = "incident-escalate"
	inIncidentSync        = "incident-sync"
	inSessionSync         = "session-sync"
)

// inboundEvent - конверт входящего сообщения
type inboundEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Дашборды и мобильные клиенты приходят с произвольных origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary Event channel
// @Description Upgrade to a bidirectional websocket event channel
// @Tags Events
// @Router /ws [get]
func (h *Handler) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}
	client := h.hub.Attach(conn, h)
	h.logger.WithField("session_id", client.SessionID()).Info("Client connected")
}

// HandleConnect досылает новому клиенту текущие зоны и границы
func (h *Handler) HandleConnect(sessionID string) {
	h.tracking.Connect(sessionID)
}

// HandleDisconnect вычищает состояние отключившейся сессии
func (h *Handler) HandleDisconnect(sessionID string) {
	h.logger.WithField("session_id", sessionID).Info("Client disconnected")
	h.tracking.Disconnect(sessionID)
}

// HandleMessage обрабатывает одно входящее сообщение. Вызывается из
// read-горутины соединения: сообщения одной сессии строго упорядочены.
// Любая ошибка здесь - проблема одного клиента: лог и продолжение работы.
func (h *Handler) HandleMessage(sessionID string, data []byte) {
	log := h.logger.WithField("session_id", sessionID)

	var ev inboundEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		log.WithError(err).Warn("Dropping malformed event envelope")
		return
	}
	log = log.WithField("event", ev.Type)

	switch ev.Type {
	case inRegister:
		var req RegisterRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.RegisterSession(sessionID, identityFromRegister(req))

	case inPositionReport:
		var req PositionReportRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.HandlePositionReport(sessionID, identityFromPosition(req), req.Latitude, req.Longitude, req.Timestamp)

	case inZoneUpsert:
		var req ZoneUpsertRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.UpsertZone(zoneFromDTO(req))

	case inZoneDelete:
		var req DeleteRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.DeleteZone(req.ID)

	case inBoundaryUpsert:
		var req BoundaryUpsertRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.UpsertBoundary(boundaryFromDTO(req))

	case inBoundaryDelete:
		var req DeleteRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		h.tracking.DeleteBoundary(req.ID)

	case inIncidentCreate:
		var req CreateIncidentRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		if _, err := h.incidentService.CreateIncident(h.ctx(), incidentParamsFromDTO(sessionID, req)); err != nil {
			log.WithError(err).Error("Failed to create incident from event channel")
		}

	case inIncidentAcknowledge:
		var req IncidentActionRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		id := uuid.MustParse(req.ID)
		officer := models.Officer{ID: req.OfficerID, Name: req.OfficerName}
		if _, err := h.incidentService.AcknowledgeIncident(h.ctx(), id, officer); err != nil {
			log.WithError(err).Warn("Incident acknowledge ignored")
		}

	case inIncidentResolve:
		var req IncidentActionRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		if _, err := h.incidentService.ResolveIncident(h.ctx(), uuid.MustParse(req.ID), req.Notes); err != nil {
			log.WithError(err).Warn("Incident resolve ignored")
		}

	case inIncidentEscalate:
		var req IncidentActionRequest
		if !h.decode(log, ev.Payload, &req) {
			return
		}
		if _, err := h.incidentService.EscalateIncident(h.ctx(), uuid.MustParse(req.ID)); err != nil {
			log.WithError(err).Warn("Incident escalate ignored")
		}

	case inIncidentSync:
		incidents, err := h.incidentService.ListIncidents(h.ctx())
		if err != nil {
			log.WithError(err).Error("Failed to sync incident list")
			return
		}
		h.hub.SendTo(sessionID, broadcast.EventIncidentList, ModelsToIncidentResponses(incidents))

	case inSessionSync:
		h.hub.SendTo(sessionID, "session-list", h.tracking.ActiveSessions())

	default:
		log.Warn("Dropping event of unknown type")
	}
}

// decode разбирает и валидирует payload; при ошибке событие отбрасывается
func (h *Handler) decode(log *logrus.Entry, payload json.RawMessage, dst any) bool {
	if err := json.Unmarshal(payload, dst); err != nil {
		log.WithError(err).Warn("Dropping event with malformed payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		log.WithError(err).Warn("Dropping event that failed validation")
		return false
	}
	return true
}
