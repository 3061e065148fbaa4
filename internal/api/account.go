package api

import (
	"net/http"

	"edpsych-connect/internal/common/errors"
	"edpsych-connect/internal/common/validation"
	"edpsych-connect/internal/contact"
	"edpsych-connect/internal/models"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.writeError(w, r, errors.NewServiceUnavailableError("identity provider"))
		return
	}

	var req models.LoginRequest
	if err := decodeBody(r, validation.LoginSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.deps.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models.LoginResponse{
		Success:      true,
		Message:      "Login successful",
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		s.writeError(w, r, errors.NewServiceUnavailableError("identity provider"))
		return
	}

	var req models.LogoutRequest
	if err := decodeBody(r, validation.LogoutSchema, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.deps.Auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "Logged out"})
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.deps.Contact == nil {
		s.writeError(w, r, errors.NewServiceUnavailableError("contact"))
		return
	}

	var msg contact.Message
	if err := decodeBody(r, validation.ContactSchema, &msg); err != nil {
		s.writeError(w, r, err)
		return
	}

	receipt, err := s.deps.Contact.Submit(r.Context(), msg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, receipt)
}
