package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/shenikar/tourist_safety_system/internal/service"
)

// IncidentRepository - pgx-реализация хранилища инцидентов. Вложенные
// структуры (медиа, сотрудник, хронология) хранятся как JSONB.
type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{db: db}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	media, err := json.Marshal(incident.Media)
	if err != nil {
		return fmt.Errorf("failed to marshal incident media: %w", err)
	}
	timeline, err := json.Marshal(incident.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal incident timeline: %w", err)
	}

	var lat, lng *float64
	if incident.Location != nil {
		lat = &incident.Location.Lat
		lng = &incident.Location.Lng
	}

	query := `
		INSERT INTO incidents (id, session_id, tourist_id, tourist_name, tourist_phone, tourist_email,
			latitude, longitude, description, media, severity, status, timeline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at;
	`
	err = r.db.QueryRow(ctx, query,
		incident.ID,
		incident.SessionID,
		incident.TouristID,
		incident.TouristName,
		incident.TouristPhone,
		incident.TouristEmail,
		lat,
		lng,
		incident.Description,
		media,
		incident.Severity,
		incident.Status,
		timeline,
	).Scan(&incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		SELECT id, session_id, tourist_id, tourist_name, tourist_phone, tourist_email,
			latitude, longitude, description, media, severity, status, officer, notes, timeline,
			created_at, updated_at
		FROM incidents
		WHERE id = $1;
	`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// Update сохраняет статус, сотрудника, заметки и хронологию инцидента
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident) error {
	timeline, err := json.Marshal(incident.Timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal incident timeline: %w", err)
	}
	var officer []byte
	if incident.Officer != nil {
		officer, err = json.Marshal(incident.Officer)
		if err != nil {
			return fmt.Errorf("failed to marshal incident officer: %w", err)
		}
	}

	query := `
		UPDATE incidents SET
			status = $1,
			officer = $2,
			notes = $3,
			timeline = $4,
			updated_at = NOW()
		WHERE id = $5;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		incident.Status,
		officer,
		incident.Notes,
		timeline,
		incident.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("incident with id %s not found for update", incident.ID)
	}
	return nil
}

// List возвращает все инциденты, новые первыми
func (r *IncidentRepository) List(ctx context.Context) ([]*models.Incident, error) {
	query := `
		SELECT id, session_id, tourist_id, tourist_name, tourist_phone, tourist_email,
			latitude, longitude, description, media, severity, status, officer, notes, timeline,
			created_at, updated_at
		FROM incidents
		ORDER BY created_at DESC;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*models.Incident
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incident rows: %w", err)
	}
	return incidents, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (*models.Incident, error) {
	incident := &models.Incident{}
	var (
		lat, lng                 *float64
		media, officer, timeline []byte
	)
	err := row.Scan(
		&incident.ID,
		&incident.SessionID,
		&incident.TouristID,
		&incident.TouristName,
		&incident.TouristPhone,
		&incident.TouristEmail,
		&lat,
		&lng,
		&incident.Description,
		&media,
		&incident.Severity,
		&incident.Status,
		&officer,
		&incident.Notes,
		&timeline,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lat != nil && lng != nil {
		incident.Location = &models.LatLng{Lat: *lat, Lng: *lng}
	}
	if len(media) > 0 {
		if err := json.Unmarshal(media, &incident.Media); err != nil {
			return nil, fmt.Errorf("failed to unmarshal incident media: %w", err)
		}
	}
	if len(officer) > 0 {
		incident.Officer = &models.Officer{}
		if err := json.Unmarshal(officer, incident.Officer); err != nil {
			return nil, fmt.Errorf("failed to unmarshal incident officer: %w", err)
		}
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &incident.Timeline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal incident timeline: %w", err)
		}
	}
	return incident, nil
}
