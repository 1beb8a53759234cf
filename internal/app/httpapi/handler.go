package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	app "github.com/zerium/propertyd/internal/app"
	"github.com/zerium/propertyd/internal/app/domain/property"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/services/contracts"
	"github.com/zerium/propertyd/internal/app/services/documents"
	"github.com/zerium/propertyd/internal/app/services/payments"
	"github.com/zerium/propertyd/internal/app/services/properties"
	"github.com/zerium/propertyd/internal/app/services/tickets"
	"github.com/zerium/propertyd/internal/app/services/users"
	svcerr "github.com/zerium/propertyd/internal/errors"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	audit *auditLog
}

// Options tunes the handler beyond its defaults.
type Options struct {
	AuditMax  int
	AuditSink AuditSink
}

// NewHandler returns the REST API handler with request auditing attached.
func NewHandler(application *app.Application) http.Handler {
	return NewHandlerWithOptions(application, Options{})
}

// NewHandlerWithOptions builds the handler with explicit audit settings.
func NewHandlerWithOptions(application *app.Application, opts Options) http.Handler {
	h := &handler{app: application, audit: newAuditLog(opts.AuditMax, opts.AuditSink)}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", h.login)
	mux.HandleFunc("/auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("/auth/reset-password", h.resetPassword)
	mux.HandleFunc("/users", h.users)
	mux.HandleFunc("/users/me", h.me)
	mux.HandleFunc("/properties", h.properties)
	mux.HandleFunc("/properties/units/", h.propertyUnit)
	mux.HandleFunc("/contracts", h.contracts)
	mux.HandleFunc("/contracts/", h.contractResources)
	mux.HandleFunc("/payments", h.payments)
	mux.HandleFunc("/payments/contract/", h.contractPayments)
	mux.HandleFunc("/tickets", h.tickets)
	mux.HandleFunc("/tickets/", h.ticketResource)
	mux.HandleFunc("/documents", h.documents)
	mux.HandleFunc("/documents/", h.documentResources)
	mux.HandleFunc("/audit", h.auditEntries)
	mux.HandleFunc("/dashboard/stats", h.dashboardStats)
	mux.HandleFunc("/healthz", h.health)

	return h.auditWrapper(mux)
}

// principal resolves the bearer token into a user. Handlers for protected
// routes call this first and bail out when it reports false.
func (h *handler) principal(w http.ResponseWriter, r *http.Request) (user.User, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		writeServiceError(w, svcerr.Unauthorized("missing Authorization header"))
		return user.User{}, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		writeServiceError(w, svcerr.Unauthorized("invalid Authorization header format"))
		return user.User{}, false
	}

	u, err := h.app.Auth.Authenticate(r.Context(), parts[1])
	if err != nil {
		writeServiceError(w, err)
		return user.User{}, false
	}
	recordPrincipal(r, u)
	return u, true
}

// --- auth -------------------------------------------------------------------

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeServiceError(w, svcerr.Validation("invalid form body"))
		return
	}

	pair, err := h.app.Auth.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	if err := h.app.Auth.ForgotPassword(r.Context(), payload.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	if err := h.app.Auth.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// --- users ------------------------------------------------------------------

func (h *handler) users(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Email       string `json:"email"`
			Password    string `json:"password"`
			FullName    string `json:"full_name"`
			PhoneNumber string `json:"phone_number"`
			Role        string `json:"role"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}

		created, err := h.app.Users.Register(r.Context(), users.RegisterInput{
			Email:       payload.Email,
			Password:    payload.Password,
			FullName:    payload.FullName,
			PhoneNumber: payload.PhoneNumber,
			Role:        payload.Role,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		actor, ok := h.principal(w, r)
		if !ok {
			return
		}
		list, err := h.app.Users.List(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, actor)

	case http.MethodPut:
		var payload struct {
			FullName    string `json:"full_name"`
			PhoneNumber string `json:"phone_number"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}
		updated, err := h.app.Users.UpdateProfile(r.Context(), actor, payload.FullName, payload.PhoneNumber)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// --- properties -------------------------------------------------------------

func (h *handler) properties(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			Name        string  `json:"name"`
			Type        string  `json:"type"`
			Address     string  `json:"address"`
			City        string  `json:"city"`
			Description string  `json:"description"`
			Latitude    float64 `json:"latitude"`
			Longitude   float64 `json:"longitude"`
			Units       []struct {
				UnitNumber string  `json:"unit_number"`
				Type       string  `json:"type"`
				Floor      int     `json:"floor"`
				Bedrooms   int     `json:"bedrooms"`
				Bathrooms  int     `json:"bathrooms"`
				AreaM2     float64 `json:"area_m2"`
				BasePrice  float64 `json:"base_price"`
				Status     string  `json:"status"`
			} `json:"units"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}

		units := make([]property.Unit, 0, len(payload.Units))
		for _, u := range payload.Units {
			units = append(units, property.Unit{
				UnitNumber: u.UnitNumber,
				Type:       u.Type,
				Floor:      u.Floor,
				Bedrooms:   u.Bedrooms,
				Bathrooms:  u.Bathrooms,
				AreaM2:     u.AreaM2,
				BasePrice:  u.BasePrice,
				Status:     property.UnitStatus(u.Status),
			})
		}

		created, err := h.app.Properties.Create(r.Context(), actor, property.Property{
			Name:        payload.Name,
			Type:        payload.Type,
			Address:     payload.Address,
			City:        payload.City,
			Description: payload.Description,
			Latitude:    payload.Latitude,
			Longitude:   payload.Longitude,
		}, units)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Properties.ListMine(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) propertyUnit(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	unitID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/properties/units"), "/")
	if unitID == "" || strings.Contains(unitID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		UnitNumber *string  `json:"unit_number"`
		Type       *string  `json:"type"`
		Floor      *int     `json:"floor"`
		Bedrooms   *int     `json:"bedrooms"`
		Bathrooms  *int     `json:"bathrooms"`
		AreaM2     *float64 `json:"area_m2"`
		BasePrice  *float64 `json:"base_price"`
		Status     *string  `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	updated, err := h.app.Properties.UpdateUnit(r.Context(), actor, unitID, properties.UnitUpdate{
		UnitNumber: payload.UnitNumber,
		Type:       payload.Type,
		Floor:      payload.Floor,
		Bedrooms:   payload.Bedrooms,
		Bathrooms:  payload.Bathrooms,
		AreaM2:     payload.AreaM2,
		BasePrice:  payload.BasePrice,
		Status:     payload.Status,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- contracts --------------------------------------------------------------

func (h *handler) contracts(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			UnitID     string  `json:"unit_id"`
			TenantID   string  `json:"tenant_id"`
			StartDate  string  `json:"start_date"`
			EndDate    string  `json:"end_date"`
			PaymentDay int     `json:"payment_day"`
			Amount     float64 `json:"amount"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}

		start, err := parseDate(payload.StartDate)
		if err != nil {
			writeServiceError(w, svcerr.Validation("start_date must be YYYY-MM-DD"))
			return
		}
		end, err := parseDate(payload.EndDate)
		if err != nil {
			writeServiceError(w, svcerr.Validation("end_date must be YYYY-MM-DD"))
			return
		}

		created, err := h.app.Contracts.Create(r.Context(), actor, contracts.CreateInput{
			UnitID:     payload.UnitID,
			TenantID:   payload.TenantID,
			StartDate:  start,
			EndDate:    end,
			PaymentDay: payload.PaymentDay,
			Amount:     payload.Amount,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Contracts.ListForUser(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) contractResources(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/contracts"), "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) == 0 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	contractID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		c, err := h.app.Contracts.Get(r.Context(), actor, contractID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
		return
	}

	if len(parts) != 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var (
		c   interface{}
		err error
	)
	switch parts[1] {
	case "sign":
		c, err = h.app.Contracts.Sign(r.Context(), actor, contractID)
	case "finalize":
		c, err = h.app.Contracts.Finalize(r.Context(), actor, contractID)
	case "terminate":
		c, err = h.app.Contracts.Terminate(r.Context(), actor, contractID)
	case "reject":
		c, err = h.app.Contracts.Reject(r.Context(), actor, contractID)
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// --- payments ---------------------------------------------------------------

func (h *handler) payments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		ContractID  string  `json:"contract_id"`
		Amount      float64 `json:"amount"`
		Method      string  `json:"method"`
		Notes       string  `json:"notes"`
		PaymentDate string  `json:"payment_date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	var paymentDate time.Time
	if payload.PaymentDate != "" {
		parsed, err := parseDate(payload.PaymentDate)
		if err != nil {
			writeServiceError(w, svcerr.Validation("payment_date must be YYYY-MM-DD"))
			return
		}
		paymentDate = parsed
	}

	recorded, err := h.app.Payments.Apply(r.Context(), actor, payments.ApplyInput{
		ContractID:  payload.ContractID,
		Amount:      payload.Amount,
		Method:      payload.Method,
		Notes:       payload.Notes,
		PaymentDate: paymentDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

func (h *handler) contractPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	contractID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/payments/contract"), "/")
	if contractID == "" || strings.Contains(contractID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	list, err := h.app.Payments.ListByContract(r.Context(), actor, contractID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- tickets ----------------------------------------------------------------

func (h *handler) tickets(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var payload struct {
			PropertyID  string `json:"property_id"`
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}

		created, err := h.app.Tickets.Create(r.Context(), actor, tickets.CreateInput{
			PropertyID:  payload.PropertyID,
			Title:       payload.Title,
			Description: payload.Description,
			Priority:    payload.Priority,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)

	case http.MethodGet:
		list, err := h.app.Tickets.ListForUser(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *handler) ticketResource(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	ticketID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/tickets"), "/")
	if ticketID == "" || strings.Contains(ticketID, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		Status   *string `json:"status"`
		Priority *string `json:"priority"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	updated, err := h.app.Tickets.Update(r.Context(), actor, ticketID, tickets.UpdateInput{
		Status:   payload.Status,
		Priority: payload.Priority,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- documents --------------------------------------------------------------

func (h *handler) documents(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload struct {
		DocumentType string `json:"document_type"`
		FileURL      string `json:"file_url"`
		PublicID     string `json:"public_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeServiceError(w, svcerr.Validation("invalid request body"))
		return
	}

	created, err := h.app.Documents.Register(r.Context(), actor, documents.RegisterInput{
		DocumentType: payload.DocumentType,
		FileURL:      payload.FileURL,
		PublicID:     payload.PublicID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// documentResources dispatches /documents/my, /documents/user/{id} and
// /documents/{id}/status.
func (h *handler) documentResources(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/documents"), "/")
	parts := strings.Split(trimmed, "/")

	switch {
	case len(parts) == 1 && parts[0] == "my" && r.Method == http.MethodGet:
		list, err := h.app.Documents.ListMine(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	case len(parts) == 2 && parts[0] == "user" && parts[1] != "" && r.Method == http.MethodGet:
		list, err := h.app.Documents.ListForUser(r.Context(), actor, parts[1])
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)

	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPatch:
		var payload struct {
			Status          string `json:"status"`
			RejectionReason string `json:"rejection_reason"`
		}
		if err := decodeJSON(r.Body, &payload); err != nil {
			writeServiceError(w, svcerr.Validation("invalid request body"))
			return
		}
		updated, err := h.app.Documents.SetStatus(r.Context(), actor, parts[0], payload.Status, payload.RejectionReason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// --- dashboard, audit, health ----------------------------------------------

func (h *handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.app.Dashboard.StatsFor(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *handler) auditEntries(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.principal(w, r)
	if !ok {
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if actor.Role != user.RoleAdmin {
		writeServiceError(w, svcerr.Forbidden("only admins may read the audit log"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil {
			writeServiceError(w, svcerr.Validation("limit must be an integer"))
			return
		}
	}
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := map[string]string{"status": "ok"}
	if h.app.DB != nil {
		if err := h.app.DB.PingContext(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["database"] = "ok"
	}
	writeJSON(w, http.StatusOK, status)
}

// --- helpers ----------------------------------------------------------------

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError renders a ServiceError with its mapped HTTP status.
// Anything else is reported as an internal error without leaking details.
func writeServiceError(w http.ResponseWriter, err error) {
	se := svcerr.GetServiceError(err)
	if se == nil {
		se = svcerr.Internal("internal server error", err)
	}

	body := map[string]interface{}{"error": se.Message, "code": se.Code}
	if len(se.Details) > 0 {
		body["details"] = se.Details
	}
	writeJSON(w, se.HTTPStatus, body)
}
