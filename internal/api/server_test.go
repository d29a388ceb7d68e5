package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/compose"
	"github.com/mailward/mailward/internal/config"
	"github.com/mailward/mailward/internal/db"
	"github.com/mailward/mailward/internal/metrics"
	"github.com/mailward/mailward/internal/models"
)

func setupServer(t *testing.T, apiKey string) *Server {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.Migrate(); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	composer := compose.New(database.DB, m, logger)
	cfg := &config.ServerConfig{ListenAddr: ":0", APIKey: apiKey}

	return NewServer(database.DB, composer, m, cfg, logger)
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := setupServer(t, "")

	rec := doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	decode(t, rec, &resp)
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	s := setupServer(t, "secret")

	rec := doRequest(t, s, http.MethodGet, "/api/v1/accounts", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer secret")
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200 with key, got %d", recorder.Code)
	}

	// Health stays open.
	rec = doRequest(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for health, got %d", rec.Code)
	}
}

func TestAccountCRUD(t *testing.T) {
	s := setupServer(t, "")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/accounts", AccountRequest{
		DisplayName:  "Sender",
		EmailAddress: "sender@example.com",
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUsername: "sender",
		SMTPPassword: "hunter2",
		UseTLS:       true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Account
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatal("Expected account id to be set")
	}

	// The password must never appear in responses.
	if bytes.Contains(rec.Body.Bytes(), []byte("hunter2")) {
		t.Error("Password leaked in create response")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	// Update without a password keeps the stored one.
	rec = doRequest(t, s, http.MethodPut, "/api/v1/accounts/"+created.ID, AccountRequest{
		DisplayName:  "Renamed",
		EmailAddress: "sender@example.com",
		SMTPHost:     "smtp2.example.com",
		SMTPPort:     465,
		UseSSL:       true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := s.accounts.GetByID(created.ID)
	if err != nil {
		t.Fatalf("Failed to load account: %v", err)
	}
	if stored.SMTPPassword != "hunter2" {
		t.Errorf("Expected password to be kept, got %q", stored.SMTPPassword)
	}
	if stored.SMTPHost != "smtp2.example.com" || !stored.UseSSL {
		t.Errorf("Update not applied: %+v", stored)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/accounts/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	s := setupServer(t, "")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/accounts", AccountRequest{
		EmailAddress: "sender@example.com",
		SMTPHost:     "smtp.example.com",
		SMTPPort:     0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing port, got %d", rec.Code)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	s := setupServer(t, "")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns", CampaignRequest{
		Name:           "Welcome",
		AccountID:      uuid.New().String(),
		TemplateID:     uuid.New().String(),
		ScheduleType:   models.ScheduleOneTime,
		ScheduleConfig: `{"run_at": "2026-09-01T09:00:00Z"}`,
		TargetTags:     "customer",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var campaign models.Campaign
	decode(t, rec, &campaign)
	if campaign.Active {
		t.Error("Expected campaign to start inactive")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/activate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	decode(t, rec, &campaign)
	if !campaign.Active {
		t.Error("Expected campaign active after activate")
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/deactivate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	decode(t, rec, &campaign)
	if campaign.Active {
		t.Error("Expected campaign inactive after deactivate")
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/campaigns/?active=false", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var campaigns []models.Campaign
	decode(t, rec, &campaigns)
	if len(campaigns) != 1 {
		t.Errorf("Expected 1 inactive campaign, got %d", len(campaigns))
	}
}

func TestCreateCampaignRejectsUnknownScheduleType(t *testing.T) {
	s := setupServer(t, "")

	rec := doRequest(t, s, http.MethodPost, "/api/v1/campaigns", CampaignRequest{
		Name:         "Weekly",
		AccountID:    uuid.New().String(),
		TemplateID:   uuid.New().String(),
		ScheduleType: "weekly",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown schedule type, got %d", rec.Code)
	}
}

func TestQueueRetryAndCancel(t *testing.T) {
	s := setupServer(t, "")

	queue := s.queue
	failed := &models.QueuedMessage{
		ID:           uuid.New().String(),
		AccountID:    uuid.New().String(),
		FromAddress:  "sender@example.com",
		ToAddress:    "a@example.com",
		Subject:      "Hello",
		BodyHTML:     "<p>Hello</p>",
		ScheduledFor: time.Now().UTC(),
		Status:       models.StatusFailed,
		LastError:    "connection refused",
		Source:       models.SourceManual,
	}
	if err := queue.Create(failed); err != nil {
		t.Fatalf("Failed to create message: %v", err)
	}

	rec := doRequest(t, s, http.MethodPost, "/api/v1/queue/"+failed.ID+"/retry", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	msg, err := queue.GetByID(failed.ID)
	if err != nil {
		t.Fatalf("Failed to load message: %v", err)
	}
	if msg.Status != models.StatusQueued {
		t.Errorf("Expected queued after retry, got %q", msg.Status)
	}
	if msg.LastError != "" {
		t.Errorf("Expected last error cleared, got %q", msg.LastError)
	}

	// Retrying again conflicts: the message is no longer failed.
	rec = doRequest(t, s, http.MethodPost, "/api/v1/queue/"+failed.ID+"/retry", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for retry of queued message, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/queue/"+failed.ID+"/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/queue/"+failed.ID+"/cancel", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for cancel of cancelled message, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/v1/queue/?status=cancelled", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var list QueueResponse
	decode(t, rec, &list)
	if len(list.Messages) != 1 {
		t.Errorf("Expected 1 cancelled message, got %d", len(list.Messages))
	}
	if list.Stats.Cancelled != 1 {
		t.Errorf("Expected 1 cancelled in stats, got %d", list.Stats.Cancelled)
	}
}

func TestComposeEndpoint(t *testing.T) {
	s := setupServer(t, "")

	account := &models.Account{
		ID:           uuid.New().String(),
		EmailAddress: "sender@example.com",
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
	}
	if err := s.accounts.Create(account); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	sendAt := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	rec := doRequest(t, s, http.MethodPost, "/api/v1/compose", ComposeRequest{
		AccountID:  account.ID,
		Recipients: []string{"a@example.com", "b@example.com"},
		Subject:    "Hello",
		BodyHTML:   "<p>Hello</p>",
		Steps:      json.RawMessage(`[{"offset_type": "immediate"}, {"offset_type": "days", "offset_value": 2}]`),
		SendAt:     &sendAt,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ComposeResponse
	decode(t, rec, &resp)
	if resp.Enqueued != 4 {
		t.Errorf("Expected 4 messages enqueued, got %d", resp.Enqueued)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/v1/compose", ComposeRequest{
		AccountID:  uuid.New().String(),
		Recipients: []string{"a@example.com"},
		Subject:    "Hello",
		BodyHTML:   "<p>Hello</p>",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown account, got %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s := setupServer(t, "")

	contact := &models.Contact{
		ID:    uuid.New().String(),
		Email: "a@example.com",
	}
	if err := s.contacts.Create(contact); err != nil {
		t.Fatalf("Failed to create contact: %v", err)
	}

	rec := doRequest(t, s, http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp StatsResponse
	decode(t, rec, &resp)
	if resp.Contacts != 1 {
		t.Errorf("Expected 1 contact, got %d", resp.Contacts)
	}
	if resp.Queue == nil || resp.Queue.Total != 0 {
		t.Errorf("Expected empty queue stats, got %+v", resp.Queue)
	}
}
