package models

// RiskLevel - уровень риска зоны
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Zone - именованный регион риска. Вход туриста в зону порождает алерт.
type Zone struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Risk  RiskLevel `json:"risk"`
	Shape Shape     `json:"shape"`
}

// Boundary - разрешённая область пребывания. Турист, находящийся вне всех
// границ (при наличии хотя бы одной), считается вышедшим за пределы маршрута.
type Boundary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Shape Shape  `json:"shape"`
}
