package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mailward/mailward/internal/models"
)

// QueueResponse is the response for GET /api/v1/queue
type QueueResponse struct {
	Stats    *models.QueueStats     `json:"stats"`
	Messages []models.QueuedMessage `json:"messages"`
}

// handleListQueue handles GET /api/v1/queue
func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	filter := models.QueueFilter{
		Status:     r.URL.Query().Get("status"),
		CampaignID: r.URL.Query().Get("campaign_id"),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}

	stats, err := s.queue.Stats()
	if err != nil {
		s.logger.Error("failed to get queue stats", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get queue stats")
		return
	}

	messages, err := s.queue.List(filter)
	if err != nil {
		s.logger.Error("failed to list messages", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}

	s.sendJSON(w, http.StatusOK, QueueResponse{
		Stats:    stats,
		Messages: messages,
	})
}

// handleGetMessage handles GET /api/v1/queue/{id}
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.queue.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("failed to get message", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get message")
		return
	}
	if msg == nil {
		s.sendError(w, http.StatusNotFound, "Message not found")
		return
	}
	s.sendJSON(w, http.StatusOK, msg)
}

// handleRetryMessage handles POST /api/v1/queue/{id}/retry.
// Only failed messages can be retried.
func (s *Server) handleRetryMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	retried, err := s.queue.Retry(id, time.Now().UTC())
	if err != nil {
		s.logger.Error("failed to retry message", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to retry message")
		return
	}
	if !retried {
		s.sendError(w, http.StatusConflict, "Message is not in failed state")
		return
	}

	s.logger.Info("message requeued", "id", id)
	s.sendJSON(w, http.StatusOK, map[string]string{"status": models.StatusQueued})
}

// handleCancelMessage handles POST /api/v1/queue/{id}/cancel.
// Only queued messages can be cancelled.
func (s *Server) handleCancelMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cancelled, err := s.queue.Cancel(id)
	if err != nil {
		s.logger.Error("failed to cancel message", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to cancel message")
		return
	}
	if !cancelled {
		s.sendError(w, http.StatusConflict, "Message is not in queued state")
		return
	}

	s.logger.Info("message cancelled", "id", id)
	s.sendJSON(w, http.StatusOK, map[string]string{"status": models.StatusCancelled})
}

// StatsResponse is the response for GET /api/v1/stats
type StatsResponse struct {
	Accounts  int                `json:"accounts"`
	Contacts  int                `json:"contacts"`
	Templates int                `json:"templates"`
	Campaigns int                `json:"campaigns"`
	Queue     *models.QueueStats `json:"queue"`
}

// handleStats handles GET /api/v1/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var resp StatsResponse
	var err error

	if resp.Accounts, err = s.accounts.Count(); err != nil {
		s.logger.Error("failed to count accounts", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	if resp.Contacts, err = s.contacts.Count(); err != nil {
		s.logger.Error("failed to count contacts", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	if resp.Templates, err = s.templates.Count(); err != nil {
		s.logger.Error("failed to count templates", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	if resp.Campaigns, err = s.campaigns.Count(); err != nil {
		s.logger.Error("failed to count campaigns", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	if resp.Queue, err = s.queue.Stats(); err != nil {
		s.logger.Error("failed to get queue stats", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}

	s.sendJSON(w, http.StatusOK, resp)
}
