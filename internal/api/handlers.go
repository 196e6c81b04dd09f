package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"remindly/internal/auth"
	"remindly/internal/domain"
	"remindly/internal/ports"
	"remindly/internal/usecase"

	"github.com/rs/zerolog/log"
)

type handlers struct {
	dispatcher usecase.Dispatcher
	reminders  ports.ReminderStore
	users      ports.UserStore
	tokens     *auth.TokenManager
	tokenTTL   time.Duration
}

type createReminderReq struct {
	Title       string `json:"title"`
	Time        string `json:"time"`
	Description string `json:"description"`
}

func (h *handlers) createReminder(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createReminderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "Title and time are required")
		return
	}

	at, err := time.Parse(time.RFC3339, req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Time must be an RFC 3339 timestamp")
		return
	}

	reminder, err := h.dispatcher.Schedule(r.Context(), usecase.ScheduleInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Time:        at,
	})
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.Is(err, domain.ErrTimeAlreadyPassed):
			writeError(w, http.StatusBadRequest, "Time already passed")
		default:
			log.Ctx(r.Context()).Err(err).Msg("failed to create reminder")
			writeError(w, http.StatusInternalServerError, "Failed to create reminder")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"message":  "Reminder created successfully",
		"reminder": reminder,
	})
}

func (h *handlers) listReminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	reminders, err := h.reminders.ListByUser(r.Context(), userID)
	if err != nil {
		log.Ctx(r.Context()).Err(err).Msg("failed to fetch reminders")
		writeError(w, http.StatusInternalServerError, "Failed to fetch reminders")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"reminders": reminders,
	})
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	u := domain.NewUser(req.Name, req.Email, hash)
	if err := h.users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "User already exists with this email")
			return
		}
		log.Ctx(r.Context()).Err(err).Msg("failed to create user")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.issueSession(w, r, &u, http.StatusCreated, "Signed up successfully")
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	h.issueSession(w, r, u, http.StatusOK, "Logged In Successfully")
}

func (h *handlers) issueSession(w http.ResponseWriter, r *http.Request, u *domain.User, status int, message string) {
	token, err := h.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		log.Ctx(r.Context()).Err(err).Msg("failed to issue token")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokenTTL.Seconds()),
	})

	writeJSON(w, status, map[string]any{
		"success": true,
		"message": message,
		"name":    u.Name,
		"token":   token,
	})
}

func bearerToken(r *http.Request) string {
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
