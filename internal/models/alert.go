package models

import "time"

// AlertKind - вид алерта
type AlertKind string

const (
	AlertZone     AlertKind = "zone"
	AlertBoundary AlertKind = "boundary"
)

// Alert - событие безопасности, доставляемое дашбордам. Для пары
// (турист, зона) одновременно существует не более одного зонного алерта.
type Alert struct {
	Kind          AlertKind `json:"kind"`
	SessionID     string    `json:"session_id"`
	TouristID     string    `json:"tourist_id,omitempty"`
	PersonalID    string    `json:"personal_id,omitempty"`
	TargetName    string    `json:"target_name"`
	Risk          RiskLevel `json:"risk,omitempty"`
	Position      LatLng    `json:"position"`
	FirstRaisedAt time.Time `json:"first_raised_at"`
}
