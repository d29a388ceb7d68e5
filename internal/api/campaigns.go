package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

// CampaignRequest is the request body for creating or updating a campaign.
type CampaignRequest struct {
	Name           string `json:"name"`
	AccountID      string `json:"account_id"`
	TemplateID     string `json:"template_id"`
	ScheduleType   string `json:"schedule_type"`
	ScheduleConfig string `json:"schedule_config"`
	TargetTags     string `json:"target_tags"`
	Active         bool   `json:"active"`
}

func (req *CampaignRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.AccountID == "" {
		return "account_id is required"
	}
	if req.TemplateID == "" {
		return "template_id is required"
	}
	switch req.ScheduleType {
	case models.ScheduleOneTime, models.ScheduleRecurring:
	default:
		return "schedule_type must be one_time or recurring"
	}
	return ""
}

// handleListCampaigns handles GET /api/v1/campaigns
func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	filter := models.CampaignFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}
	switch r.URL.Query().Get("active") {
	case "true":
		active := true
		filter.Active = &active
	case "false":
		active := false
		filter.Active = &active
	}

	campaigns, err := s.campaigns.List(filter)
	if err != nil {
		s.logger.Error("failed to list campaigns", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list campaigns")
		return
	}
	s.sendJSON(w, http.StatusOK, campaigns)
}

// handleCreateCampaign handles POST /api/v1/campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	campaign := &models.Campaign{
		ID:             uuid.New().String(),
		Name:           req.Name,
		AccountID:      req.AccountID,
		TemplateID:     req.TemplateID,
		ScheduleType:   req.ScheduleType,
		ScheduleConfig: req.ScheduleConfig,
		TargetTags:     req.TargetTags,
		Active:         req.Active,
	}
	if err := s.campaigns.Create(campaign); err != nil {
		s.logger.Error("failed to create campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create campaign")
		return
	}

	s.logger.Info("campaign created", "id", campaign.ID, "name", campaign.Name)
	s.sendJSON(w, http.StatusCreated, campaign)
}

// handleGetCampaign handles GET /api/v1/campaigns/{id}
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := s.campaigns.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("failed to get campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}
	s.sendJSON(w, http.StatusOK, campaign)
}

// handleUpdateCampaign handles PUT /api/v1/campaigns/{id}
func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	var req CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	campaign.Name = req.Name
	campaign.AccountID = req.AccountID
	campaign.TemplateID = req.TemplateID
	campaign.ScheduleType = req.ScheduleType
	campaign.ScheduleConfig = req.ScheduleConfig
	campaign.TargetTags = req.TargetTags
	campaign.Active = req.Active
	if err := s.campaigns.Update(campaign); err != nil {
		s.logger.Error("failed to update campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update campaign")
		return
	}
	s.sendJSON(w, http.StatusOK, campaign)
}

// handleDeleteCampaign handles DELETE /api/v1/campaigns/{id}
// Queued messages produced by the campaign are left untouched.
func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.campaigns.Delete(id); err != nil {
		s.logger.Error("failed to delete campaign", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete campaign")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleActivateCampaign handles POST /api/v1/campaigns/{id}/activate
func (s *Server) handleActivateCampaign(w http.ResponseWriter, r *http.Request) {
	s.setCampaignActive(w, r, true)
}

// handleDeactivateCampaign handles POST /api/v1/campaigns/{id}/deactivate
func (s *Server) handleDeactivateCampaign(w http.ResponseWriter, r *http.Request) {
	s.setCampaignActive(w, r, false)
}

func (s *Server) setCampaignActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "id")
	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get campaign", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get campaign")
		return
	}
	if campaign == nil {
		s.sendError(w, http.StatusNotFound, "Campaign not found")
		return
	}

	if err := s.campaigns.SetActive(id, active); err != nil {
		s.logger.Error("failed to set campaign active", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update campaign")
		return
	}

	campaign.Active = active
	s.logger.Info("campaign active changed", "id", id, "active", active)
	s.sendJSON(w, http.StatusOK, campaign)
}
