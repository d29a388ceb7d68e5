package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mailward/mailward/internal/compose"
	"github.com/mailward/mailward/internal/models"
)

// ComposeRequest is the request body for POST /api/v1/compose.
// Steps is an optional JSON array of sequence steps; without it the
// submission is a single immediate send.
type ComposeRequest struct {
	AccountID  string          `json:"account_id"`
	Recipients []string        `json:"recipients"`
	Subject    string          `json:"subject"`
	BodyHTML   string          `json:"body_html"`
	BodyText   string          `json:"body_text,omitempty"`
	Steps      json.RawMessage `json:"steps,omitempty"`
	SendAt     *time.Time      `json:"send_at,omitempty"`
}

// ComposeResponse is the response for POST /api/v1/compose
type ComposeResponse struct {
	Enqueued int                    `json:"enqueued"`
	Messages []models.QueuedMessage `json:"messages"`
}

// handleCompose handles POST /api/v1/compose
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req ComposeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	creq := compose.Request{
		AccountID:  req.AccountID,
		Recipients: req.Recipients,
		Subject:    req.Subject,
		BodyHTML:   req.BodyHTML,
		BodyText:   req.BodyText,
		Steps:      string(req.Steps),
	}
	if req.SendAt != nil {
		creq.SendAt = req.SendAt.UTC()
	}

	created, err := s.composer.Compose(creq)
	switch {
	case err == nil:
	case errors.Is(err, compose.ErrAccountNotFound):
		s.sendError(w, http.StatusNotFound, "Account not found")
		return
	case errors.Is(err, compose.ErrNoRecipients), errors.Is(err, compose.ErrNoContent):
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.logger.Error("failed to compose messages", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to queue messages")
		return
	}

	s.sendJSON(w, http.StatusAccepted, ComposeResponse{
		Enqueued: len(created),
		Messages: created,
	})
}
