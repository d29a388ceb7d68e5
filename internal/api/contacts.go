package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

// ContactRequest is the request body for creating or updating a contact.
type ContactRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Tags  string `json:"tags"`
}

// handleListContacts handles GET /api/v1/contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	filter := models.ContactFilter{
		Search: r.URL.Query().Get("search"),
		Tag:    r.URL.Query().Get("tag"),
		Limit:  queryInt(r, "limit", 100),
		Offset: queryInt(r, "offset", 0),
	}

	contacts, err := s.contacts.List(filter)
	if err != nil {
		s.logger.Error("failed to list contacts", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list contacts")
		return
	}
	s.sendJSON(w, http.StatusOK, contacts)
}

// handleCreateContact handles POST /api/v1/contacts
func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		s.sendError(w, http.StatusBadRequest, "email is required")
		return
	}

	contact := &models.Contact{
		ID:    uuid.New().String(),
		Email: req.Email,
		Name:  req.Name,
		Tags:  req.Tags,
	}
	if err := s.contacts.Create(contact); err != nil {
		s.logger.Error("failed to create contact", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create contact")
		return
	}
	s.sendJSON(w, http.StatusCreated, contact)
}

// handleGetContact handles GET /api/v1/contacts/{id}
func (s *Server) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := s.contacts.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("failed to get contact", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get contact")
		return
	}
	if contact == nil {
		s.sendError(w, http.StatusNotFound, "Contact not found")
		return
	}
	s.sendJSON(w, http.StatusOK, contact)
}

// handleUpdateContact handles PUT /api/v1/contacts/{id}
func (s *Server) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	contact, err := s.contacts.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get contact", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get contact")
		return
	}
	if contact == nil {
		s.sendError(w, http.StatusNotFound, "Contact not found")
		return
	}

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" {
		s.sendError(w, http.StatusBadRequest, "email is required")
		return
	}

	contact.Email = req.Email
	contact.Name = req.Name
	contact.Tags = req.Tags
	if err := s.contacts.Update(contact); err != nil {
		s.logger.Error("failed to update contact", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update contact")
		return
	}
	s.sendJSON(w, http.StatusOK, contact)
}

// handleDeleteContact handles DELETE /api/v1/contacts/{id}
func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.contacts.Delete(id); err != nil {
		s.logger.Error("failed to delete contact", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete contact")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt reads an integer query parameter, falling back on def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
