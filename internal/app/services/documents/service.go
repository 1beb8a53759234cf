package documents

import (
	"context"
	"strings"

	"github.com/zerium/propertyd/internal/app/domain/document"
	"github.com/zerium/propertyd/internal/app/domain/user"
	"github.com/zerium/propertyd/internal/app/storage"
	svcerr "github.com/zerium/propertyd/internal/errors"
	"github.com/zerium/propertyd/pkg/logger"
)

// Service manages identity documents and their verification workflow.
type Service struct {
	store storage.DocumentStore
	log   *logger.Logger
}

// New constructs a document service.
func New(store storage.DocumentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("documents")
	}
	return &Service{store: store, log: log}
}

// RegisterInput carries the metadata of an uploaded document. The file itself
// is stored by the upload service; only its URL and public identifier are
// kept here.
type RegisterInput struct {
	DocumentType string
	FileURL      string
	PublicID     string
}

// Register records a newly uploaded document in pending state.
func (s *Service) Register(ctx context.Context, actor user.User, in RegisterInput) (document.Document, error) {
	if strings.TrimSpace(in.DocumentType) == "" {
		return document.Document{}, svcerr.Validation("document_type is required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return document.Document{}, svcerr.Validation("file_url is required")
	}

	created, err := s.store.CreateDocument(ctx, document.Document{
		UserID:       actor.ID,
		DocumentType: strings.TrimSpace(in.DocumentType),
		FileURL:      in.FileURL,
		PublicID:     in.PublicID,
		Status:       document.StatusPending,
	})
	if err != nil {
		return document.Document{}, svcerr.Internal("register document", err)
	}

	s.log.WithFields(map[string]interface{}{"document_id": created.ID, "user_id": actor.ID}).Info("document registered")
	return created, nil
}

// ListMine returns the actor's own documents.
func (s *Service) ListMine(ctx context.Context, actor user.User) ([]document.Document, error) {
	return s.store.ListDocumentsByUser(ctx, actor.ID)
}

// ListForUser returns another user's documents. Owners review tenant
// documents before contracts are signed, so owners and admins may look.
func (s *Service) ListForUser(ctx context.Context, actor user.User, userID string) ([]document.Document, error) {
	if actor.Role != user.RoleOwner && actor.Role != user.RoleAdmin {
		return nil, svcerr.Forbidden("only owners may review documents")
	}
	return s.store.ListDocumentsByUser(ctx, userID)
}

// SetStatus verifies or rejects a document. Owners and admins only; a
// rejection may carry a reason.
func (s *Service) SetStatus(ctx context.Context, actor user.User, id, status, reason string) (document.Document, error) {
	if actor.Role != user.RoleOwner && actor.Role != user.RoleAdmin {
		return document.Document{}, svcerr.Forbidden("only owners may verify documents")
	}

	parsed, err := document.ParseStatus(status)
	if err != nil || parsed == document.StatusPending {
		return document.Document{}, svcerr.Validation("status must be verified or rejected")
	}

	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return document.Document{}, svcerr.NotFound("document %s not found", id)
	}

	doc.Status = parsed
	doc.RejectionReason = ""
	if parsed == document.StatusRejected {
		doc.RejectionReason = strings.TrimSpace(reason)
	}

	updated, err := s.store.UpdateDocument(ctx, doc)
	if err != nil {
		return document.Document{}, svcerr.Internal("update document", err)
	}

	s.log.WithFields(map[string]interface{}{"document_id": id, "status": parsed}).Info("document reviewed")
	return updated, nil
}
