package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/tourist_safety_system/internal/broadcast"
	"github.com/shenikar/tourist_safety_system/internal/config"
	"github.com/shenikar/tourist_safety_system/internal/models"
	"github.com/shenikar/tourist_safety_system/internal/service"
	"github.com/shenikar/tourist_safety_system/internal/service/mocks"
	webhook_mocks "github.com/shenikar/tourist_safety_system/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (service.IncidentService, *mocks.MockIncidentRepository, *mocks.MockEventPublisher, *webhook_mocks.MockWebhookPublisher) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	publisherMock := mocks.NewMockEventPublisher(ctrl)
	webhookMock := webhook_mocks.NewMockWebhookPublisher(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{}

	svc := service.NewIncidentService(repoMock, logger, cfg, publisherMock, webhookMock)
	return svc, repoMock, publisherMock, webhookMock
}

func testCreateParams() service.CreateIncidentParams {
	return service.CreateIncidentParams{
		SessionID:    "sess-1",
		TouristID:    "t-1",
		TouristName:  "Анна",
		TouristPhone: "+7 900 000-00-00",
		Location:     &models.LatLng{Lat: 28.6129, Lng: 77.2295},
		Description:  "Потерялась на рынке",
	}
}

// createIncident — создание инцидента с разрешёнными ожиданиями побочных эффектов.
func createIncident(t *testing.T, svc service.IncidentService, repoMock *mocks.MockIncidentRepository, publisherMock *mocks.MockEventPublisher, webhookMock *webhook_mocks.MockWebhookPublisher) *models.Incident {
	t.Helper()
	ctx := context.Background()

	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentCreated, gomock.Any()).Times(1)
	publisherMock.EXPECT().SendTo("sess-1", broadcast.EventSosReceived, gomock.Any()).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	incident, err := svc.CreateIncident(ctx, testCreateParams())
	require.NoError(t, err)
	return incident
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)

	// Действие
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Проверки
	assert.NotEqual(t, uuid.Nil, incident.ID)
	assert.Equal(t, models.IncidentNew, incident.Status)
	assert.Equal(t, models.SeverityHigh, incident.Severity) // дефолт при пустом severity
	require.Len(t, incident.Timeline, 1)
	assert.Equal(t, "SOS created", incident.Timeline[0].Event)
	assert.Equal(t, "Анна", incident.Timeline[0].Actor)
	assert.False(t, incident.CreatedAt.IsZero())
}

func TestCreateIncident_PersistFailure_StillBroadcasts(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания: отказ хранилища не останавливает доставку события
	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(fmt.Errorf("db: connection refused")).Times(1)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentCreated, gomock.Any()).Times(1)
	publisherMock.EXPECT().SendTo("sess-1", broadcast.EventSosReceived, gomock.Any()).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	incident, err := svc.CreateIncident(ctx, testCreateParams())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentNew, incident.Status)
}

func TestAcknowledgeIncident_Success(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Ожидания
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentUpdated, gomock.Any()).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	updated, err := svc.AcknowledgeIncident(ctx, incident.ID, models.Officer{ID: "o-1", Name: "Сергей"})

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentAcknowledged, updated.Status)
	require.NotNil(t, updated.Officer)
	assert.Equal(t, "Сергей", updated.Officer.Name)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "Incident acknowledged", updated.Timeline[1].Event)
	assert.Equal(t, "Сергей", updated.Timeline[1].Actor)
}

func TestResolveIncident_Success(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Ожидания
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentUpdated, gomock.Any()).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	updated, err := svc.ResolveIncident(ctx, incident.ID, "Туристка найдена")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentResolved, updated.Status)
	assert.Equal(t, "Туристка найдена", updated.Notes)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "Incident resolved", updated.Timeline[1].Event)
}

func TestResolveIncident_Twice_StatusStaysResolved(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Ожидания: два цикла персист + рассылка
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(2)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentUpdated, gomock.Any()).Times(2)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(2)

	// Действие: повторный resolve добавляет ещё одну запись хронологии
	_, err := svc.ResolveIncident(ctx, incident.ID, "Первое закрытие")
	require.NoError(t, err)
	updated, err := svc.ResolveIncident(ctx, incident.ID, "Повторное закрытие")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, models.IncidentResolved, updated.Status)
	assert.Equal(t, "Повторное закрытие", updated.Notes)
	assert.Len(t, updated.Timeline, 3)
}

func TestEscalateIncident_StatusUnchanged(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Ожидания
	repoMock.EXPECT().Update(ctx, gomock.Any()).Return(nil).Times(1)
	publisherMock.EXPECT().Broadcast(broadcast.EventIncidentUpdated, gomock.Any()).Times(1)
	webhookMock.EXPECT().Publish(ctx, gomock.Any()).Return(nil).Times(1)

	// Действие
	updated, err := svc.EscalateIncident(ctx, incident.ID)

	// Проверки: меняется только хронология
	require.NoError(t, err)
	assert.Equal(t, models.IncidentNew, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, "Escalated to emergency services", updated.Timeline[1].Event)
}

func TestAcknowledgeIncident_NotFound(t *testing.T) {
	svc, _, _, _ := newTestIncidentService(t)

	_, err := svc.AcknowledgeIncident(context.Background(), uuid.New(), models.Officer{Name: "Сергей"})

	assert.ErrorIs(t, err, service.ErrIncidentNotFound)
}

func TestGetIncident_Success_FromMemory(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Действие: репозиторий не трогается, инцидент берётся из памяти
	got, err := svc.GetIncident(context.Background(), incident.ID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, incident.ID, got.ID)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	svc, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expected := &models.Incident{ID: incidentID, Status: models.IncidentResolved}

	// Ожидания: промах памяти, попадание в бд
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(expected, nil).Times(1)

	// Действие
	got, err := svc.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestGetIncident_RepositoryError(t *testing.T) {
	svc, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()

	repoMock.EXPECT().GetByID(ctx, incidentID).Return(nil, fmt.Errorf("db: no rows")).Times(1)

	_, err := svc.GetIncident(ctx, incidentID)
	assert.Error(t, err)
}

func TestListIncidents_FromRepository(t *testing.T) {
	svc, repoMock, _, _ := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{{ID: uuid.New()}, {ID: uuid.New()}}

	repoMock.EXPECT().List(ctx).Return(expected, nil).Times(1)

	got, err := svc.ListIncidents(ctx)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestListIncidents_RepositoryError_ServesMemorySnapshot(t *testing.T) {
	// Подготовка
	svc, repoMock, publisherMock, webhookMock := newTestIncidentService(t)
	ctx := context.Background()
	incident := createIncident(t, svc, repoMock, publisherMock, webhookMock)

	// Ожидания: отказ хранилища
	repoMock.EXPECT().List(ctx).Return(nil, fmt.Errorf("db: connection refused")).Times(1)

	// Действие
	got, err := svc.ListIncidents(ctx)

	// Проверки: дашборд получает снапшот из памяти без ошибки
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, incident.ID, got[0].ID)
}
