// Package api exposes the booking core over HTTP for the UI layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/config"
	"salonbook/internal/database"
	"salonbook/internal/domain"
	"salonbook/internal/export"
	"salonbook/internal/metrics"
	"salonbook/internal/models"
	"salonbook/internal/wizard"

	"github.com/rs/zerolog"
)

// HTTPServer is the transport layer over the BookingService facade and
// the booking wizard.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	catalog  domain.CatalogService
	wiz      *wizard.Controller
	exporter *export.Exporter
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, bookings domain.BookingService, catalog domain.CatalogService, wiz *wizard.Controller, exporter *export.Exporter, states domain.StateRepository, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		catalog:  catalog,
		wiz:      wiz,
		exporter: exporter,
		auth:     NewHTTPAuth(cfg, states),
		logger:   logger,
	}

	mux.HandleFunc("/api/v1/slots", srv.handleSlots)
	mux.HandleFunc("/api/v1/dates", srv.handleDates)
	mux.HandleFunc("/api/v1/services", srv.handleServices)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/wizard/", srv.handleWizard)
	mux.HandleFunc("/api/v1/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GET /api/v1/slots?provider_id=...&date=YYYY-MM-DD&service_id=...
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if providerID == "" || serviceID == "" || dateStr == "" {
		writeError(w, http.StatusBadRequest, "provider_id, service_id and date are required")
		return
	}

	date, err := time.Parse(models.DateFormat, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	result, err := s.bookings.GetAvailableSlots(r.Context(), providerID, date, serviceID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider_id": providerID,
		"date":        dateStr,
		"slots":       result,
	})
}

// GET /api/v1/dates?provider_id=...&days=N
func (s *HTTPServer) handleDates(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("dates")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		days, _ = strconv.Atoi(v)
	}

	dates, err := s.bookings.GetSelectableDates(r.Context(), providerID, days)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, d.Format(models.DateFormat))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"provider_id": providerID,
		"dates":       formatted,
	})
}

// GET /api/v1/services?provider_id=...
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	services, err := s.catalog.ListServices(r.Context(), providerID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"services": services})
}

// POST /api/v1/bookings submits a draft.
// GET  /api/v1/bookings?provider_id=...&from=...&to=... lists bookings.
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type createBookingRequest struct {
	ProviderID     string `json:"provider_id"`
	ServiceID      string `json:"service_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	ClientName     string `json:"client_name"`
	ClientPhone    string `json:"client_phone"`
	ClientEmail    string `json:"client_email"`
	Notes          string `json:"notes"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	date, err := time.Parse(models.DateFormat, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	b, err := s.bookings.SubmitBooking(r.Context(), models.BookingDraft{
		ProviderID:     req.ProviderID,
		ServiceID:      req.ServiceID,
		Date:           date,
		StartTime:      req.StartTime,
		ClientName:     req.ClientName,
		ClientPhone:    req.ClientPhone,
		ClientEmail:    req.ClientEmail,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.bookings.GetProviderBookings(r.Context(), providerID, start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": list})
}

type statusChangeRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

// GET  /api/v1/bookings/{id}
// POST /api/v1/bookings/{id}/status
func (s *HTTPServer) handleBookingByID(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("booking")
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/bookings/")

	if r.Method == http.MethodGet && !strings.Contains(rest, "/") {
		b, err := s.bookings.GetBooking(r.Context(), rest)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}

	id, ok := strings.CutSuffix(rest, "/status")
	if !ok || id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req statusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	actor := booking.Actor(req.Actor)
	if actor != booking.ActorClient && actor != booking.ActorProvider {
		writeError(w, http.StatusBadRequest, "actor must be client or provider")
		return
	}

	if err := s.bookings.ChangeBookingStatus(r.Context(), id, req.Status, actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

type wizardRequest struct {
	ClientID    string `json:"client_id"`
	SalonMode   bool   `json:"salon_mode"`
	ProviderID  string `json:"provider_id"`
	ServiceID   string `json:"service_id"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
	ClientEmail string `json:"client_email"`
	Notes       string `json:"notes"`
}

// handleWizard routes /api/v1/wizard/{action}. The wizard keeps its own
// session state, so every call only carries the client ID plus the data
// for the current step.
func (s *HTTPServer) handleWizard(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("wizard")
	if s.wiz == nil {
		writeError(w, http.StatusNotImplemented, "wizard is not configured")
		return
	}

	action := strings.TrimPrefix(r.URL.Path, "/api/v1/wizard/")

	if r.Method == http.MethodGet {
		clientID := strings.TrimSpace(r.URL.Query().Get("client_id"))
		if clientID == "" {
			writeError(w, http.StatusBadRequest, "client_id is required")
			return
		}
		switch action {
		case "session":
			session, err := s.wiz.Session(r.Context(), clientID)
			if err != nil {
				s.writeWizardError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, session)
		case "slots":
			date, err := time.Parse(models.DateFormat, r.URL.Query().Get("date"))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
				return
			}
			result, err := s.wiz.Slots(r.Context(), clientID, date)
			if err != nil {
				s.writeWizardError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"slots": result})
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req wizardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	switch action {
	case "start":
		session, err := s.wiz.Start(r.Context(), req.ClientID, req.SalonMode, req.ProviderID)
		s.writeWizardResult(w, session, err)
	case "service":
		session, err := s.wiz.SelectService(r.Context(), req.ClientID, req.ServiceID)
		s.writeWizardResult(w, session, err)
	case "provider":
		session, err := s.wiz.SelectProvider(r.Context(), req.ClientID, req.ProviderID)
		s.writeWizardResult(w, session, err)
	case "datetime":
		date, err := time.Parse(models.DateFormat, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		session, err := s.wiz.SelectDateTime(r.Context(), req.ClientID, date, req.StartTime)
		s.writeWizardResult(w, session, err)
	case "submit":
		b, err := s.wiz.Submit(r.Context(), req.ClientID, req.ClientName, req.ClientPhone, req.ClientEmail, req.Notes)
		if err != nil {
			s.writeWizardError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	case "back":
		session, err := s.wiz.Back(r.Context(), req.ClientID)
		s.writeWizardResult(w, session, err)
	case "reset":
		if err := s.wiz.Reset(r.Context(), req.ClientID); err != nil {
			s.writeWizardError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) writeWizardResult(w http.ResponseWriter, session *models.WizardSession, err error) {
	if err != nil {
		s.writeWizardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) writeWizardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, wizard.ErrNoSession):
		writeError(w, http.StatusNotFound, "no active wizard session")
	case errors.Is(err, wizard.ErrWrongStep):
		writeError(w, http.StatusConflict, "action does not match the current wizard step")
	default:
		s.writeServiceError(w, err)
	}
}

// GET /api/v1/export?provider_id=...&from=...&to=...
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, "export is not configured")
		return
	}

	providerID := strings.TrimSpace(r.URL.Query().Get("provider_id"))
	if providerID == "" {
		writeError(w, http.StatusBadRequest, "provider_id is required")
		return
	}

	start, end, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	path, err := s.exporter.ExportBookings(r.Context(), providerID, start, end)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	now := time.Now()
	start := now.AddDate(0, 0, -7)
	end := now.AddDate(0, 0, 30)

	var err error
	if from != "" {
		start, err = time.Parse(models.DateFormat, from)
		if err != nil {
			return start, end, fmt.Errorf("invalid from date; expected YYYY-MM-DD")
		}
	}
	if to != "" {
		end, err = time.Parse(models.DateFormat, to)
		if err != nil {
			return start, end, fmt.Errorf("invalid to date; expected YYYY-MM-DD")
		}
	}
	return start, end, nil
}

func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":      "slot is no longer available",
			"retry":      true,
			"retry_hint": "re-fetch slots and choose another time",
		})
	case errors.Is(err, booking.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid status transition")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "booking was modified concurrently, re-fetch and retry")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrValidation), errors.Is(err, database.ErrPastDate),
		errors.Is(err, database.ErrDateTooFar), errors.Is(err, wizard.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store unavailable, retry later")
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
