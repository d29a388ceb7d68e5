package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

// TemplateRequest is the request body for creating or updating a template.
type TemplateRequest struct {
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text"`
}

func (req *TemplateRequest) validate() string {
	if req.Name == "" {
		return "name is required"
	}
	if req.Subject == "" {
		return "subject is required"
	}
	if req.BodyHTML == "" {
		return "body_html is required"
	}
	return ""
}

// handleListTemplates handles GET /api/v1/templates
func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.templates.List()
	if err != nil {
		s.logger.Error("failed to list templates", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	s.sendJSON(w, http.StatusOK, templates)
}

// handleCreateTemplate handles POST /api/v1/templates
func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	tmpl := &models.Template{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Subject:  req.Subject,
		BodyHTML: req.BodyHTML,
		BodyText: req.BodyText,
	}
	if err := s.templates.Create(tmpl); err != nil {
		s.logger.Error("failed to create template", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}
	s.sendJSON(w, http.StatusCreated, tmpl)
}

// handleGetTemplate handles GET /api/v1/templates/{id}
func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("failed to get template", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	if tmpl == nil {
		s.sendError(w, http.StatusNotFound, "Template not found")
		return
	}
	s.sendJSON(w, http.StatusOK, tmpl)
}

// handleUpdateTemplate handles PUT /api/v1/templates/{id}
func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tmpl, err := s.templates.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get template", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}
	if tmpl == nil {
		s.sendError(w, http.StatusNotFound, "Template not found")
		return
	}

	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	tmpl.Name = req.Name
	tmpl.Subject = req.Subject
	tmpl.BodyHTML = req.BodyHTML
	tmpl.BodyText = req.BodyText
	if err := s.templates.Update(tmpl); err != nil {
		s.logger.Error("failed to update template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}
	s.sendJSON(w, http.StatusOK, tmpl)
}

// handleDeleteTemplate handles DELETE /api/v1/templates/{id}
func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.templates.Delete(id); err != nil {
		s.logger.Error("failed to delete template", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
