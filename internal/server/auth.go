package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const sessionCookie = "gw_session"

type Viewer struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
}

// Sessions is the identity boundary: one configured operator account, bcrypt
// credential check, uuid tokens held in memory.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]struct{}

	username     string
	passwordHash []byte
	viewer       Viewer
}

func NewSessions(username, password string, viewer Viewer) (*Sessions, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &Sessions{
		tokens:       make(map[string]struct{}),
		username:     username,
		passwordHash: hash,
		viewer:       viewer,
	}, nil
}

func (s *Sessions) SignIn(username, password string) (string, bool) {
	if username != s.username {
		return "", false
	}
	if bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		return "", false
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = struct{}{}
	s.mu.Unlock()
	return token, true
}

func (s *Sessions) SignOut(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

func (s *Sessions) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

func (s *Sessions) Viewer() Viewer {
	return s.viewer
}

// isPublic classifies a path against the configured public list: "/" matches
// the landing page exactly, every other entry by prefix.
func (s *Server) isPublic(path string) bool {
	for _, p := range s.cfg.PublicPaths {
		if p == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// routeGate protects everything outside the public list. Browser requests are
// redirected to the sign-in surface carrying the originally requested path;
// API requests get a plain 401.
func (s *Server) routeGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.isPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if token := s.sessionToken(r); token != "" && s.sessions.Valid(token) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			respondError(w, http.StatusUnauthorized, "Sign in required")
			return
		}

		target := "/sign-in?return_to=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, target, http.StatusFound)
	})
}

func (s *Server) handleSignInPrompt(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message":   "Sign in required",
		"return_to": r.URL.Query().Get("return_to"),
	})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, ok := s.sessions.SignIn(req.Username, req.Password)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed in"})
}

func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	token := s.sessionToken(r)
	if token == "" || !s.sessions.Valid(token) {
		respondJSON(w, http.StatusOK, map[string]interface{}{"signed_in": false})
		return
	}

	viewer := s.sessions.Viewer()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"signed_in": true,
		"name":      viewer.Name,
		"initials":  viewer.Initials,
	})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if token := s.sessionToken(r); token != "" {
		s.sessions.SignOut(token)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}
