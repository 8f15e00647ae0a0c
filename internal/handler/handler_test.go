package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"iris-go/internal/haptic"
	"iris-go/internal/model"
	"iris-go/internal/obstacle"
	"iris-go/internal/repository"
	"iris-go/internal/service"
	"iris-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAlerts struct {
	mu     sync.Mutex
	events []*model.AlertEvent
}

func (m *memoryAlerts) Create(event *model.AlertEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *memoryAlerts) GetByID(id string) (*model.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, event := range m.events {
		if event.ID == id {
			return event, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAlerts) List(page, pageSize int) ([]*model.AlertEvent, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, int64(len(m.events)), nil
}

func (m *memoryAlerts) ListSince(since time.Time) ([]*model.AlertEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events, nil
}

type memoryCaretakers struct {
	slots map[string]string
}

func (m *memoryCaretakers) Get(slot string) (*model.Caretaker, error) {
	number, ok := m.slots[slot]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.Caretaker{Slot: slot, Number: number}, nil
}

func (m *memoryCaretakers) Save(slot, number string) error {
	m.slots[slot] = number
	return nil
}

type silentSpeaker struct{}

func (silentSpeaker) Speak(string) {}

type fakeDialer struct{ allowed bool }

func (d fakeDialer) CanCall() bool {
	return d.allowed
}

func (d fakeDialer) Dial(uri string) error {
	return nil
}

type fakeVision struct{}

func (fakeVision) DescribeScene(ctx context.Context, filename string, image []byte) (string, error) {
	return "A bench on the left.", nil
}

func (fakeVision) RecognizeText(ctx context.Context, filename string, image []byte) (string, error) {
	return "", errors.New("ocr offline")
}

type testServer struct {
	engine *gin.Engine
	alerts *memoryAlerts
	slots  *memoryCaretakers
}

func newTestServer(t *testing.T, health map[string]HealthChecker) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	alerts := &memoryAlerts{}
	slots := &memoryCaretakers{slots: map[string]string{}}

	engine := obstacle.NewEngine(obstacle.DefaultObstacleSet(), obstacle.CooldownPeriod)
	analyzer := service.NewFrameAnalyzer(engine, haptic.NewLogActuator(logger), alerts, logger)
	queue := service.NewFrameQueue(analyzer, logger, nil)

	caretakers := service.NewCaretakerService(slots, silentSpeaker{}, fakeDialer{allowed: true}, logger)
	settings := service.NewSettingsService(caretakers, silentSpeaker{}, logger)
	vision := service.NewVisionService(fakeVision{}, silentSpeaker{}, logger)
	voice := service.NewVoiceService(vision, caretakers, silentSpeaker{}, logger)

	router := NewRouter(
		NewFrameHandler(analyzer, queue, logger),
		NewCaretakerHandler(caretakers, settings, logger),
		NewAssistantHandler(voice, vision, logger),
		health,
		logger,
	)

	r := gin.New()
	router.RegisterRoutes(r)
	return &testServer{engine: r, alerts: alerts, slots: slots}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) multipart(t *testing.T, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "frame.jpg")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func frameBody(timestamp int64, labels ...string) models.FrameRequest {
	object := models.DetectedObject{}
	for _, label := range labels {
		object.Labels = append(object.Labels, models.Label{Text: label})
	}
	return models.FrameRequest{Objects: []models.DetectedObject{object}, TimestampMs: &timestamp}
}

func TestAnalyzeFrameEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/frames", frameBody(0, "Person"))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.FrameResponse](t, w)
	assert.True(t, resp.Alert)
	assert.Equal(t, "Person", resp.Obstacle)

	w = s.do(t, http.MethodPost, "/api/v1/frames", frameBody(500, "Car"))
	resp = decode[models.FrameResponse](t, w)
	assert.False(t, resp.Alert)
	assert.True(t, resp.Suppressed)
	assert.Equal(t, "cooling", resp.State)

	w = s.do(t, http.MethodPost, "/api/v1/frames", map[string]interface{}{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.FrameResponse](t, w).Found)

	w = s.do(t, http.MethodPost, "/api/v1/frames", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/alerts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[service.ListAlertsResponse](t, w)
	assert.Equal(t, int64(1), list.Total)
}

func TestEnqueueFrameEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/frames/async", frameBody(0, "Dog"))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["replaced_pending"])

	w = s.do(t, http.MethodPost, "/api/v1/frames/async", frameBody(1, "Door"))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, decode[map[string]interface{}](t, w)["replaced_pending"])
}

func TestFutureFrameRejected(t *testing.T) {
	s := newTestServer(t, nil)
	future := time.Now().Add(time.Hour).UnixMilli()

	w := s.do(t, http.MethodPost, "/api/v1/frames", frameBody(future, "Person"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/frames/async", frameBody(future, "Person"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/frames", frameBody(time.Now().UnixMilli(), "Person"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.FrameResponse](t, w).Alert)
}

func TestGetAlertEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/frames", frameBody(0, "Bed"))
	require.Equal(t, http.StatusOK, w.Code)
	alertID := decode[models.FrameResponse](t, w).AlertID
	require.NotEmpty(t, alertID)

	w = s.do(t, http.MethodGet, "/api/v1/alerts/"+alertID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	event := decode[model.AlertEvent](t, w)
	assert.Equal(t, "Bed", event.Obstacle)
	assert.Equal(t, service.SourceHTTP, event.Source)

	w = s.do(t, http.MethodGet, "/api/v1/alerts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestObstaclesAndStatsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/api/v1/obstacles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	obstacles := decode[service.ObstaclesResponse](t, w)
	assert.Len(t, obstacles.Labels, 14)
	assert.Equal(t, int64(1000), obstacles.CooldownMs)

	w = s.do(t, http.MethodGet, "/api/v1/alerts/stats?window=10m", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 600.0, decode[service.AlertStats](t, w).WindowSeconds)

	w = s.do(t, http.MethodGet, "/api/v1/alerts/stats?window=soon", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCaretakerEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/api/v1/caretakers/call", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/caretakers", models.CaretakerRequest{Number: ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/caretakers/backup", models.CaretakerRequest{Number: "999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	for _, number := range []string{"111", "222"} {
		w = s.do(t, http.MethodPost, "/api/v1/caretakers", models.CaretakerRequest{Number: number})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/v1/caretakers", models.CaretakerRequest{Number: "333"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/caretakers/backup", models.CaretakerRequest{Number: "999"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/caretakers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.CaretakersResponse{Primary: "111", Backup: "999"}, decode[models.CaretakersResponse](t, w))

	w = s.do(t, http.MethodPost, "/api/v1/caretakers/call", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	s.slots.slots[model.SlotPrimary] = "111"
	s.slots.slots[model.SlotBackup] = "222"

	w := s.do(t, http.MethodPost, "/api/v1/settings/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.SettingsResponse](t, w).SessionID
	require.NotEmpty(t, id)

	w = s.do(t, http.MethodPost, "/api/v1/settings/sessions/"+id+"/edit", models.SettingsInputRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[models.SettingsResponse](t, w)
	assert.True(t, resp.Editing)
	assert.Equal(t, "222", resp.Field)

	w = s.do(t, http.MethodPost, "/api/v1/settings/sessions/"+id+"/edit", models.SettingsInputRequest{Input: "777"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[models.SettingsResponse](t, w).Editing)
	assert.Equal(t, "777", s.slots.slots[model.SlotBackup])

	w = s.do(t, http.MethodDelete, "/api/v1/settings/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/settings/sessions/"+id+"/add", models.SettingsInputRequest{Input: "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssistantEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.multipart(t, "/api/v1/voice", map[string]string{"command": "describe"}, []byte("jpeg"))
	require.Equal(t, http.StatusOK, w.Code)
	voice := decode[models.VoiceResponse](t, w)
	assert.Equal(t, service.ActionDescribe, voice.Action)
	assert.Equal(t, "A bench on the left.", voice.Text)

	w = s.multipart(t, "/api/v1/voice", map[string]string{"command": "go to the library"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "google.navigation:q=the+library&mode=w", decode[models.VoiceResponse](t, w).NavigationURI)

	w = s.multipart(t, "/api/v1/voice", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.multipart(t, "/api/v1/describe", nil, []byte("jpeg"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A bench on the left.", decode[map[string]interface{}](t, w)["text"])

	w = s.multipart(t, "/api/v1/describe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.multipart(t, "/api/v1/read-text", nil, []byte("jpeg"))
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	healthy := HealthFunc(func(ctx context.Context) (*models.HealthResponse, error) {
		return &models.HealthResponse{Status: "healthy"}, nil
	})
	broken := HealthFunc(func(ctx context.Context) (*models.HealthResponse, error) {
		return nil, errors.New("down")
	})

	s := newTestServer(t, map[string]HealthChecker{"database": healthy})
	w := s.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	s = newTestServer(t, map[string]HealthChecker{"database": healthy, "vision": broken})
	w = s.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "unhealthy", body["dependencies"].(map[string]interface{})["vision"])
}
