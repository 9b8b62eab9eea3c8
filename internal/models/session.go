package models

import "time"

// Identity - отображаемые атрибуты туриста, все поля опциональны
type Identity struct {
	TouristID   string `json:"tourist_id,omitempty"`
	PersonalID  string `json:"personal_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	Destination string `json:"destination,omitempty"`
}

// Session представляет подключённого клиента с его последней известной
// позицией. Живёт только в памяти: создаётся при подключении, удаляется
// при разрыве соединения.
type Session struct {
	SessionID   string    `json:"session_id"`
	Identity    Identity  `json:"identity"`
	Position    LatLng    `json:"position"`
	Timestamp   time.Time `json:"timestamp"`
	ConnectedAt time.Time `json:"connected_at"`
	HasPosition bool      `json:"has_position"`
}
