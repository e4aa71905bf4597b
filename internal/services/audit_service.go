package services

import (
	"context"
	"net/netip"

	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
)

// Actor identifies who performs an operation, for permission checks and
// audit entries
type Actor struct {
	UserID    uuid.UUID
	Role      string
	IP        string
	UserAgent string
}

// SystemActor is used by background jobs
var SystemActor = Actor{Role: "system"}

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry. Failures are logged and never returned: an
// audit write must not fail the operation being audited.
func (s *AuditService) Log(ctx context.Context, actor Actor, action, entityType string, entityID *uuid.UUID, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		IPAddress:  AnonymizeIP(actor.IP),
		UserAgent:  truncate(actor.UserAgent, 255),
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		entry.UserID = &id
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]interface{}{}
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Warn("Failed to write audit log", "action", action, "entity_type", entityType, "error", err)
	}
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, query)
}

// AnonymizeIP drops the host part of an address: the last octet of IPv4 and
// everything past /48 for IPv6. Unparseable input is discarded.
func AnonymizeIP(ip string) string {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return ""
	}
	addr = addr.Unmap()
	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return ""
	}
	return prefix.Addr().String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
