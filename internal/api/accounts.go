package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mailward/mailward/internal/models"
)

// AccountRequest is the request body for creating or updating an account.
// SMTPPassword is write-only: it is accepted here but never serialized
// back out.
type AccountRequest struct {
	DisplayName  string `json:"display_name"`
	EmailAddress string `json:"email_address"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	UseSSL       bool   `json:"use_ssl"`
	UseTLS       bool   `json:"use_tls"`
}

func (req *AccountRequest) validate() string {
	if req.EmailAddress == "" {
		return "email_address is required"
	}
	if req.SMTPHost == "" {
		return "smtp_host is required"
	}
	if req.SMTPPort <= 0 || req.SMTPPort > 65535 {
		return "smtp_port must be between 1 and 65535"
	}
	return ""
}

// handleListAccounts handles GET /api/v1/accounts
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List()
	if err != nil {
		s.logger.Error("failed to list accounts", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}
	s.sendJSON(w, http.StatusOK, accounts)
}

// handleCreateAccount handles POST /api/v1/accounts
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	account := &models.Account{
		ID:           uuid.New().String(),
		DisplayName:  req.DisplayName,
		EmailAddress: req.EmailAddress,
		SMTPHost:     req.SMTPHost,
		SMTPPort:     req.SMTPPort,
		SMTPUsername: req.SMTPUsername,
		SMTPPassword: req.SMTPPassword,
		UseSSL:       req.UseSSL,
		UseTLS:       req.UseTLS,
	}
	if err := s.accounts.Create(account); err != nil {
		s.logger.Error("failed to create account", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	s.logger.Info("account created", "id", account.ID, "email", account.EmailAddress)
	s.sendJSON(w, http.StatusCreated, account)
}

// handleGetAccount handles GET /api/v1/accounts/{id}
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		s.logger.Error("failed to get account", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get account")
		return
	}
	if account == nil {
		s.sendError(w, http.StatusNotFound, "Account not found")
		return
	}
	s.sendJSON(w, http.StatusOK, account)
}

// handleUpdateAccount handles PUT /api/v1/accounts/{id}
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	account, err := s.accounts.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get account", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to get account")
		return
	}
	if account == nil {
		s.sendError(w, http.StatusNotFound, "Account not found")
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		s.sendError(w, http.StatusBadRequest, msg)
		return
	}

	account.DisplayName = req.DisplayName
	account.EmailAddress = req.EmailAddress
	account.SMTPHost = req.SMTPHost
	account.SMTPPort = req.SMTPPort
	account.SMTPUsername = req.SMTPUsername
	account.UseSSL = req.UseSSL
	account.UseTLS = req.UseTLS
	// An omitted password keeps the stored one.
	if req.SMTPPassword != "" {
		account.SMTPPassword = req.SMTPPassword
	}

	if err := s.accounts.Update(account); err != nil {
		s.logger.Error("failed to update account", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to update account")
		return
	}
	s.sendJSON(w, http.StatusOK, account)
}

// handleDeleteAccount handles DELETE /api/v1/accounts/{id}
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.accounts.Delete(id); err != nil {
		s.logger.Error("failed to delete account", "id", id, "error", err)
		s.sendError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
