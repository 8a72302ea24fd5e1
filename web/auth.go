package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/storage"
)

const (
	sessionName   = "salesdash-session"
	sessionUserID = "user_id"

	bcryptCost = 12
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ctxKey int

const userKey ctxKey = iota

type credentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// HashPassword returns the bcrypt hash stored for a new user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// readCredentials accepts a JSON body or a classic form post.
func readCredentials(r *http.Request) (credentials, error) {
	var c credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			return c, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return c, err
		}
		c.Email = r.PostFormValue("email")
		c.Password = r.PostFormValue("password")
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return c, nil
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(c); err != nil {
		respondError(w, http.StatusBadRequest, "a valid email and a password of at least 8 characters are required")
		return
	}

	hash, err := HashPassword(c.Password)
	if err != nil {
		s.Logger.Error("[web] Hash password: %v", err)
		respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	user, err := s.Users.CreateUser(r.Context(), c.Email, hash, models.RoleUser)
	if errors.Is(err, storage.ErrUserExists) {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.Logger.Error("[web] Create user: %v", err)
		respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.Logger.Error("[web] Save session: %v", err)
		respondError(w, http.StatusInternalServerError, "signup failed")
		return
	}
	s.Logger.Info("[web] New user %s", user.Email)
	respondJSON(w, http.StatusCreated, map[string]interface{}{"user": user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil || c.Email == "" || c.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.Users.GetUserByEmail(r.Context(), c.Email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		s.Logger.Error("[web] Load user: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := s.startSession(w, r, user); err != nil {
		s.Logger.Error("[web] Save session: %v", err)
		respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserID)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		s.Logger.Warn("[web] Clear session: %v", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// startSession always issues a new session cookie on authentication;
// values from any cookie presented before login are discarded.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *models.User) error {
	session := sessions.NewSession(s.sessions, sessionName)
	opts := *s.sessions.Options
	session.Options = &opts
	session.Values[sessionUserID] = user.ID
	return session.Save(r, w)
}

// requireLogin resolves the session user and stores it in the request context.
func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.sessions.Get(r, sessionName)
		id, ok := session.Values[sessionUserID].(int64)
		if !ok {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}

		user, err := s.Users.GetUserByID(r.Context(), id)
		if errors.Is(err, storage.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}
		if err != nil {
			s.Logger.Error("[web] Load session user: %v", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin() {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}
