package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/zerium/propertyd/internal/app/domain/user"
)

// AuditEntry is one recorded API request.
type AuditEntry struct {
	Time       time.Time `json:"time"`
	UserID     string    `json:"user_id,omitempty"`
	Role       string    `json:"role,omitempty"`
	Path       string    `json:"path"`
	Method     string    `json:"method"`
	Status     int       `json:"status"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// AuditSink persists audit entries beyond the in-memory ring.
type AuditSink interface {
	Write(entry AuditEntry) error
}

type auditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	max     int
	sink    AuditSink
}

func newAuditLog(max int, sink AuditSink) *auditLog {
	if max <= 0 {
		max = 200
	}
	return &auditLog{max: max, sink: sink}
}

func (l *auditLog) add(entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	if l.sink != nil {
		// Best-effort persistence; ignore errors to avoid impacting request flow.
		_ = l.sink.Write(entry)
	}
}

func (l *auditLog) list() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *auditLog) listLimit(limit int) []AuditEntry {
	if limit <= 0 || limit > l.max {
		limit = l.max
	}
	all := l.list()
	if len(all) <= limit {
		return all
	}
	return all[len(all)-limit:]
}

// principalRef is placed in the request context by the audit wrapper so the
// auth step deeper in the stack can report who the request belonged to.
type principalRef struct {
	mu   sync.Mutex
	user user.User
	set  bool
}

type principalKey struct{}

func recordPrincipal(r *http.Request, u user.User) {
	ref, ok := r.Context().Value(principalKey{}).(*principalRef)
	if !ok {
		return
	}
	ref.mu.Lock()
	ref.user = u
	ref.set = true
	ref.mu.Unlock()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *handler) auditWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ref := &principalRef{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), principalKey{}, ref)))

		entry := AuditEntry{
			Time:       time.Now().UTC(),
			Path:       r.URL.Path,
			Method:     r.Method,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		}
		ref.mu.Lock()
		if ref.set {
			entry.UserID = ref.user.ID
			entry.Role = string(ref.user.Role)
		}
		ref.mu.Unlock()
		h.audit.add(entry)
	})
}

// FileAuditSink appends audit entries as JSONL.
type FileAuditSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileAuditSink opens (or creates) the JSONL audit file at path. An empty
// path yields a nil sink.
func NewFileAuditSink(path string) (*FileAuditSink, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileAuditSink{file: f}, nil
}

func (s *FileAuditSink) Write(entry AuditEntry) error {
	if s == nil || s.file == nil {
		return nil
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}

// PostgresAuditSink inserts audit entries into the audit_logs table.
type PostgresAuditSink struct {
	db *sql.DB
}

// NewPostgresAuditSink builds a sink over an open database handle.
func NewPostgresAuditSink(db *sql.DB) *PostgresAuditSink {
	if db == nil {
		return nil
	}
	return &PostgresAuditSink{db: db}
}

func (s *PostgresAuditSink) Write(entry AuditEntry) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.Exec(`
		INSERT INTO audit_logs (created_at, user_id, role, path, method, status, remote_addr, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.Time, entry.UserID, entry.Role, entry.Path, entry.Method, entry.Status, entry.RemoteAddr, entry.UserAgent)
	return err
}
