package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents an append-only audit entry
type AuditLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     *uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`      // vote.cast, election.create, voters.import...
	EntityType string            `gorm:"size:64;not null;index" json:"entity_type"` // election, voting_point, slate...
	EntityID   *uuid.UUID        `gorm:"type:uuid" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	IPAddress  string            `gorm:"size:45" json:"ip_address"`
	UserAgent  string            `gorm:"size:255" json:"user_agent"`
	CreatedAt  time.Time         `json:"created_at"`

	// Associations
	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreate       = "create"
	AuditActionUpdate       = "update"
	AuditActionDelete       = "delete"
	AuditActionToggle       = "toggle_active"
	AuditActionVoteCast     = "vote.cast"
	AuditActionVotersImport = "voters.import"
	AuditActionAssign       = "assign"
	AuditActionLogin        = "login"
	AuditActionCleanup      = "cleanup"
)

// Audit entity type constants
const (
	EntityElection    = "election"
	EntityVotingPoint = "voting_point"
	EntityCandidate   = "candidate"
	EntitySlate       = "slate"
	EntityVoter       = "voter"
	EntityVote        = "vote"
	EntityProfile     = "profile"
	EntityUser        = "user"
)
