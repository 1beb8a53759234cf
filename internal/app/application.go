package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zerium/propertyd/internal/app/services/auth"
	"github.com/zerium/propertyd/internal/app/services/contracts"
	"github.com/zerium/propertyd/internal/app/services/dashboard"
	"github.com/zerium/propertyd/internal/app/services/documents"
	"github.com/zerium/propertyd/internal/app/services/mail"
	"github.com/zerium/propertyd/internal/app/services/payments"
	"github.com/zerium/propertyd/internal/app/services/properties"
	"github.com/zerium/propertyd/internal/app/services/tickets"
	"github.com/zerium/propertyd/internal/app/services/users"
	"github.com/zerium/propertyd/internal/app/storage"
	"github.com/zerium/propertyd/internal/app/storage/memory"
	"github.com/zerium/propertyd/internal/app/system"
	"github.com/zerium/propertyd/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users      storage.UserStore
	Properties storage.PropertyStore
	Contracts  storage.ContractStore
	Payments   storage.PaymentStore
	Tickets    storage.TicketStore
	Documents  storage.DocumentStore
}

// AuthConfig carries the settings the auth service needs.
type AuthConfig struct {
	Secret   string
	TokenTTL time.Duration
	ResetURL string
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	// DB, when set, backs the health endpoint's reachability probe.
	DB *sql.DB

	Auth       *auth.Service
	Users      *users.Service
	Properties *properties.Service
	Contracts  *contracts.Service
	Payments   *payments.Service
	Tickets    *tickets.Service
	Documents  *documents.Service
	Dashboard  *dashboard.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, authCfg AuthConfig, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}
	if strings.TrimSpace(authCfg.Secret) == "" {
		return nil, fmt.Errorf("auth secret required")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Properties == nil {
		stores.Properties = mem
	}
	if stores.Contracts == nil {
		stores.Contracts = mem
	}
	if stores.Payments == nil {
		stores.Payments = mem
	}
	if stores.Tickets == nil {
		stores.Tickets = mem
	}
	if stores.Documents == nil {
		stores.Documents = mem
	}

	manager := system.NewManager()

	authService := auth.New(stores.Users, authCfg.Secret, log)
	authService.SetTokenTTL(authCfg.TokenTTL)
	userService := users.New(stores.Users, log)
	propService := properties.New(stores.Properties, log)
	contractService := contracts.New(stores.Contracts, stores.Properties, stores.Documents, log)
	paymentService := payments.New(stores.Payments, stores.Contracts, contractService, log)
	ticketService := tickets.New(stores.Tickets, stores.Properties, log)
	documentService := documents.New(stores.Documents, log)
	dashboardService := dashboard.New(stores.Properties, stores.Contracts, stores.Tickets)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	if apiKey := strings.TrimSpace(os.Getenv("MAIL_API_KEY")); apiKey != "" {
		mailer, err := mail.New(httpClient, os.Getenv("MAIL_API_URL"), apiKey, os.Getenv("MAIL_FROM"), log)
		if err != nil {
			log.WithError(err).Warn("configure mailer")
		} else {
			authService.AttachMailer(mailer, authCfg.ResetURL)
		}
	} else {
		log.Warn("MAIL_API_KEY not set; password reset email disabled")
	}

	for _, name := range []string{"auth", "users", "properties", "contracts", "payments", "tickets", "documents"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:    manager,
		log:        log,
		Auth:       authService,
		Users:      userService,
		Properties: propService,
		Contracts:  contractService,
		Payments:   paymentService,
		Tickets:    ticketService,
		Documents:  documentService,
		Dashboard:  dashboardService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
