package server

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/feedapp/internal/httperr"
	"example.com/feedapp/internal/middleware"
	"example.com/feedapp/internal/models"
	"example.com/feedapp/internal/store"
	"example.com/feedapp/internal/token"
)

// --- Credential flow handlers ---

// signupHandler handles PUT /auth/signup.
// Expects JSON body: {"email": ..., "password": ..., "name": ...}
func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/auth", "Invalid signup request body", err)
		httperr.Write(w, httperr.Validation("Validation failed, entered data is incorrect.", nil))
		return
	}
	defer r.Body.Close()

	email := strings.ToLower(strings.TrimSpace(body.Email))
	pass := strings.TrimSpace(body.Password)
	name := strings.TrimSpace(body.Name)

	var fields []httperr.FieldError
	if _, err := mail.ParseAddress(email); err != nil {
		fields = append(fields, httperr.FieldError{Field: "email", Message: "Please enter a valid email"})
	}
	if len(pass) < 5 {
		fields = append(fields, httperr.FieldError{Field: "password", Message: "Password must be at least 5 characters"})
	}
	if name == "" {
		fields = append(fields, httperr.FieldError{Field: "name", Message: "Name cannot be empty"})
	}
	if len(fields) > 0 {
		logg.Info("http/auth", "Signup validation failed")
		httperr.Write(w, httperr.Validation("Validation failed, entered data is incorrect.", fields))
		return
	}

	existing, err := s.store.GetUserByEmail(email)
	if err != nil {
		logg.Error("http/auth", "Failed to query existing email", err)
		httperr.Write(w, err)
		return
	}
	if existing != nil {
		httperr.Write(w, httperr.Conflict("Email address already exists!"))
		return
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		logg.Error("http/auth", "Failed to hash password", err)
		httperr.Write(w, err)
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       models.DefaultStatus,
		Posts:        []string{},
		Created:      time.Now(),
	}

	// the store enforces uniqueness again, so a racing signup still
	// loses cleanly
	if err := s.store.CreateUser(user); err != nil {
		if err == store.ErrEmailTaken {
			httperr.Write(w, httperr.Conflict("Email address already exists!"))
			return
		}
		logg.Error("http/auth", "Failed to create user", err)
		httperr.Write(w, err)
		return
	}

	logg.Info("http/auth", "User created successfully with user_id="+user.ID)
	respond(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"userId":  user.ID,
	})
}

// loginHandler handles POST /auth/login. An unknown email and a wrong
// password produce byte-identical failures so the endpoint cannot be
// used to enumerate accounts.
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	type req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var body req

	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/auth", "Invalid login request body", err)
		httperr.Write(w, httperr.Unauthenticated("Invalid email or password."))
		return
	}
	defer r.Body.Close()

	email := strings.ToLower(strings.TrimSpace(body.Email))

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		logg.Error("http/auth", "Failed to look up user for login", err)
		httperr.Write(w, err)
		return
	}
	if user == nil {
		httperr.Write(w, httperr.Unauthenticated("Invalid email or password."))
		return
	}

	ok, err := s.hasher.Verify(body.Password, user.PasswordHash)
	if err != nil {
		logg.Error("http/auth", "Failed to verify password", err)
		httperr.Write(w, err)
		return
	}
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Invalid email or password."))
		return
	}

	tok, expiresIn, err := s.tokens.Issue(token.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		logg.Error("http/auth", "Failed to issue token", err)
		httperr.Write(w, err)
		return
	}

	logg.Info("http/auth", "Login succeeded for user_id="+user.ID)
	respond(w, http.StatusOK, map[string]any{
		"token":     tok,
		"userId":    user.ID,
		"expiresIn": expiresIn,
	})
}

// getStatusHandler handles GET /auth/status for the authenticated user.
func (s *Server) getStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Not authenticated."))
		return
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		logg.Error("http/auth", "Failed to load user status", err)
		httperr.Write(w, err)
		return
	}
	if user == nil {
		httperr.Write(w, httperr.NotFound("User not found!"))
		return
	}

	respond(w, http.StatusOK, map[string]any{"status": user.Status})
}

// updateStatusHandler handles PATCH /auth/status. The target record is
// always the caller's own; identity comes from the verified token,
// never from a request parameter.
func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httperr.Write(w, httperr.Unauthenticated("Not authenticated."))
		return
	}

	type req struct {
		Status string `json:"status"`
	}
	var body req
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		logg.Error("http/auth", "Invalid status request body", err)
		httperr.Write(w, httperr.Validation("Validation failed!", nil))
		return
	}
	defer r.Body.Close()

	status := strings.TrimSpace(body.Status)
	var fields []httperr.FieldError
	if status == "" {
		fields = append(fields, httperr.FieldError{Field: "status", Message: "Status cannot be empty!"})
	} else if len(status) > 140 {
		fields = append(fields, httperr.FieldError{Field: "status", Message: "Status must be less than 140 characters"})
	}
	if len(fields) > 0 {
		httperr.Write(w, httperr.Validation("Validation failed!", fields))
		return
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		logg.Error("http/auth", "Failed to load user for status update", err)
		httperr.Write(w, err)
		return
	}
	if user == nil {
		httperr.Write(w, httperr.NotFound("User not found!"))
		return
	}

	if err := s.store.UpdateUserStatus(userID, status); err != nil {
		logg.Error("http/auth", "Failed to update status", err)
		httperr.Write(w, err)
		return
	}

	logg.Info("http/auth", "Status updated for user_id="+userID)
	respond(w, http.StatusOK, map[string]any{
		"message": "User status updated",
		"status":  status,
	})
}
