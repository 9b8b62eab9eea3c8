package broadcast

import "encoding/json"

// Виды исходящих событий, рассылаемых подписанным дашбордам
const (
	EventPositionUpdate       = "position-update"
	EventSessionDisconnected  = "session-disconnected"
	EventZoneChanged          = "zone-changed"
	EventZoneRemoved          = "zone-removed"
	EventBoundaryChanged      = "boundary-changed"
	EventBoundaryRemoved      = "boundary-removed"
	EventHeatmapUpdate        = "heatmap-update"
	EventZoneAlert            = "zone-alert"
	EventOutsideBoundaryAlert = "outside-boundary-alert"
	EventIncidentCreated      = "incident-created"
	EventIncidentUpdated      = "incident-updated"
	EventIncidentList         = "incident-list"
	EventSosReceived          = "sos-received"
)

// Event - конверт сообщения событийного канала
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

func (e Event) marshal() ([]byte, bool) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, false
	}
	return data, true
}
