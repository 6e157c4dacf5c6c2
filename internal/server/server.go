//go:generate mockgen -source ./server.go -destination=./mocks/server.go -package=server_mocks
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goodworks/donations/internal/donation"
	"github.com/goodworks/donations/internal/store"
)

type DonationStore interface {
	Create(params store.CreateParams) donation.Donation
	ScheduleAutoAdvance(id string)
	Get(id string) (donation.Donation, bool)
	List(filter store.ListFilter) []donation.Donation
	Advance(id string, to donation.Status, note string) (donation.Donation, bool)
	Remove(id string) bool
	Stats() store.Stats
}

type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PublicPaths  []string
}

type Server struct {
	store    DonationStore
	sessions *Sessions
	logger   *zap.Logger
	cfg      Config
	server   *http.Server
}

func New(donations DonationStore, sessions *Sessions, cfg Config, logger *zap.Logger) *Server {
	return &Server{
		store:    donations,
		sessions: sessions,
		logger:   logger,
		cfg:      cfg,
	}
}

func (s *Server) Run() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.logger.Info("Server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.routeGate)

	r.HandleFunc("/", s.handleLanding).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/sign-in", s.handleSignInPrompt).Methods(http.MethodGet)
	r.HandleFunc("/user", s.handleDonorSurface).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", s.handleAdminSurface).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/session", s.handleSignIn).Methods(http.MethodPost)
	api.HandleFunc("/session", s.handleViewer).Methods(http.MethodGet)
	api.HandleFunc("/session", s.handleSignOut).Methods(http.MethodDelete)

	api.HandleFunc("/donations", s.handleCreateDonation).Methods(http.MethodPost)
	api.HandleFunc("/donations/quick", s.handleQuickCreate).Methods(http.MethodPost)
	api.HandleFunc("/donations", s.handleListDonations).Methods(http.MethodGet)
	api.HandleFunc("/donations/{id}", s.handleGetDonation).Methods(http.MethodGet)
	api.HandleFunc("/donations/{id}/pickup", s.handleSchedulePickup).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/donations/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	admin.HandleFunc("/donations/{id}/reject", s.handleReject).Methods(http.MethodPost)
	admin.HandleFunc("/donations/{id}/complete", s.handleComplete).Methods(http.MethodPost)
	admin.HandleFunc("/donations/{id}", s.handleDeleteDonation).Methods(http.MethodDelete)
	admin.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	return r
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"name":    "GoodWorks",
		"message": "Donation platform demo",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDonorSurface backs the donor dashboard: viewer identity plus the
// most recent activity.
func (s *Server) handleDonorSurface(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"viewer":    s.sessions.Viewer(),
		"donations": s.store.List(store.ListFilter{Page: 1, Limit: 5}),
	})
}

// handleAdminSurface backs the admin dashboard: totals plus the full list.
func (s *Server) handleAdminSurface(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats":     s.store.Stats(),
		"donations": s.store.List(store.ListFilter{}),
	})
}

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind      string `json:"kind"`
		Quantity  string `json:"quantity"`
		Recipient string `json:"recipient"`
		Note      string `json:"note"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Quantity == "" {
		respondError(w, http.StatusBadRequest, "Enter quantity or amount")
		return
	}
	if req.Recipient == "" {
		respondError(w, http.StatusBadRequest, "Missing recipient")
		return
	}

	qty, err := donation.ParseQuantity(req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid quantity: "+err.Error())
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = "Other"
	}

	d := s.store.Create(store.CreateParams{
		Kind:      kind,
		Quantity:  qty,
		Recipient: req.Recipient,
		Note:      req.Note,
	})
	s.store.ScheduleAutoAdvance(d.ID)

	respondJSON(w, http.StatusCreated, d)
}

// quickDefaults mirror the one-tap donation tiles.
func quickDefaults(kind string) (donation.Quantity, string) {
	switch kind {
	case "Money":
		return donation.Money(500, "INR"), "Seva Foundation"
	case "Cloth":
		return donation.Count(2, "bags"), "Seva Foundation"
	default:
		return donation.Count(5, "meals"), "Seva Foundation"
	}
}

func (s *Server) handleQuickCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind string `json:"kind"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Kind == "" {
		respondError(w, http.StatusBadRequest, "Missing kind")
		return
	}

	qty, recipient := quickDefaults(req.Kind)
	d := s.store.Create(store.CreateParams{
		Kind:      req.Kind,
		Quantity:  qty,
		Recipient: recipient,
	})
	s.store.ScheduleAutoAdvance(d.ID)

	respondJSON(w, http.StatusCreated, d)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	filter := store.ListFilter{
		Category: store.Category(r.URL.Query().Get("category")),
		Query:    r.URL.Query().Get("q"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if !donation.Status(status).Valid() {
			respondError(w, http.StatusBadRequest, "Invalid value for 'status' parameter")
			return
		}
		filter.Status = donation.Status(status)
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'page' parameter")
			return
		}
		filter.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'limit' parameter")
			return
		}
		filter.Limit = limit
	}

	donations := s.store.List(filter)
	if donations == nil {
		donations = []donation.Donation{}
	}
	respondJSON(w, http.StatusOK, donations)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	d, ok := s.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Donation not found")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleSchedulePickup(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	d, ok := s.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Donation not found")
		return
	}
	if d.Status != donation.StatusCreated && d.Status != donation.StatusAccepted {
		respondError(w, http.StatusBadRequest, "Pickup can only be scheduled before it starts")
		return
	}

	updated, ok := s.store.Advance(id, donation.StatusInProgress, "Pickup scheduled")
	if !ok {
		respondError(w, http.StatusBadRequest, "Donation can no longer be updated")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, donation.StatusAccepted, "Approved", donation.StatusCreated)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, donation.StatusRejected, "Rejected", donation.StatusCreated)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	s.adminTransition(w, r, donation.StatusCompleted, "Marked complete")
}

// adminTransition applies an operator status change. When from statuses are
// given, the donation must currently be in one of them.
func (s *Server) adminTransition(w http.ResponseWriter, r *http.Request, to donation.Status, note string, from ...donation.Status) {
	id := mux.Vars(r)["id"]

	d, ok := s.store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Donation not found")
		return
	}

	if len(from) > 0 {
		allowed := false
		for _, f := range from {
			if d.Status == f {
				allowed = true
				break
			}
		}
		if !allowed {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("Donation is not in '%s' status", from[0]))
			return
		}
	}

	updated, ok := s.store.Advance(id, to, note)
	if !ok {
		respondError(w, http.StatusBadRequest, "Donation can no longer be updated")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDonation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, ok := s.store.Get(id); !ok {
		respondError(w, http.StatusNotFound, "Donation not found")
		return
	}

	s.store.Remove(id)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Donation deleted",
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.Stats())
}
