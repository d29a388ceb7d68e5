package repository

import (
	"testing"
	"time"

	"github.com/mailward/mailward/internal/models"
)

func TestCampaignCRUD(t *testing.T) {
	d := setupTestDB(t)
	repo := NewCampaignRepository(d)
	account := createTestAccount(t, d)
	tmpl := createTestTemplate(t, d)

	c := &models.Campaign{
		Name:           "Spring launch",
		AccountID:      account.ID,
		TemplateID:     tmpl.ID,
		ScheduleType:   models.ScheduleOneTime,
		ScheduleConfig: `{"run_at": "2026-04-01T09:00:00Z"}`,
		TargetTags:     "clients",
		Active:         true,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetByID() returned nil for existing campaign")
	}
	if got.LastRunAt != nil {
		t.Errorf("LastRunAt = %v, want nil for fresh campaign", got.LastRunAt)
	}
	if got.ScheduleType != models.ScheduleOneTime {
		t.Errorf("ScheduleType = %q", got.ScheduleType)
	}
}

// Campaign references are informational: deleting the account or template
// behind a campaign must succeed, leaving the campaign dangling for the
// runner to skip at fire time.
func TestCampaignSurvivesDeletedReferences(t *testing.T) {
	d := setupTestDB(t)
	repo := NewCampaignRepository(d)
	accounts := NewAccountRepository(d)
	templates := NewTemplateRepository(d)
	account := createTestAccount(t, d)
	tmpl := createTestTemplate(t, d)

	c := &models.Campaign{
		Name:         "Orphaned",
		AccountID:    account.ID,
		TemplateID:   tmpl.ID,
		ScheduleType: models.ScheduleOneTime,
		Active:       true,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := accounts.Delete(account.ID); err != nil {
		t.Fatalf("Delete(account) error: %v", err)
	}
	if err := templates.Delete(tmpl.ID); err != nil {
		t.Fatalf("Delete(template) error: %v", err)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got == nil {
		t.Fatal("campaign should survive deletion of its account and template")
	}
	if got.AccountID != account.ID || got.TemplateID != tmpl.ID {
		t.Errorf("dangling references changed: %+v", got)
	}
}

func TestCampaignListActive(t *testing.T) {
	d := setupTestDB(t)
	repo := NewCampaignRepository(d)
	account := createTestAccount(t, d)
	tmpl := createTestTemplate(t, d)

	for _, tc := range []struct {
		name   string
		active bool
	}{
		{"on", true},
		{"off", false},
		{"also-on", true},
	} {
		c := &models.Campaign{
			Name:         tc.name,
			AccountID:    account.ID,
			TemplateID:   tmpl.ID,
			ScheduleType: models.ScheduleOneTime,
			Active:       tc.active,
		}
		if err := repo.Create(c); err != nil {
			t.Fatalf("Create(%s) error: %v", tc.name, err)
		}
	}

	active, err := repo.ListActive()
	if err != nil {
		t.Fatalf("ListActive() error: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("ListActive() returned %d campaigns, want 2", len(active))
	}
	for _, c := range active {
		if !c.Active {
			t.Errorf("ListActive() returned inactive campaign %q", c.Name)
		}
	}
}

func TestCampaignMarkRun(t *testing.T) {
	d := setupTestDB(t)
	repo := NewCampaignRepository(d)
	account := createTestAccount(t, d)
	tmpl := createTestTemplate(t, d)

	c := &models.Campaign{
		Name:         "daily digest",
		AccountID:    account.ID,
		TemplateID:   tmpl.ID,
		ScheduleType: models.ScheduleRecurring,
		Active:       true,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	runAt := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	if err := repo.MarkRun(c.ID, runAt); err != nil {
		t.Fatalf("MarkRun() error: %v", err)
	}

	got, err := repo.GetByID(c.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if got.LastRunAt == nil {
		t.Fatal("LastRunAt is nil after MarkRun")
	}
	if !got.LastRunAt.Equal(runAt) {
		t.Errorf("LastRunAt = %v, want %v", got.LastRunAt, runAt)
	}
}

func TestCampaignSetActive(t *testing.T) {
	d := setupTestDB(t)
	repo := NewCampaignRepository(d)
	account := createTestAccount(t, d)
	tmpl := createTestTemplate(t, d)

	c := &models.Campaign{
		Name:         "toggle me",
		AccountID:    account.ID,
		TemplateID:   tmpl.ID,
		ScheduleType: models.ScheduleOneTime,
		Active:       true,
	}
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := repo.SetActive(c.ID, false); err != nil {
		t.Fatalf("SetActive() error: %v", err)
	}
	got, _ := repo.GetByID(c.ID)
	if got.Active {
		t.Error("campaign still active after SetActive(false)")
	}
}
