package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity record used for authentication. Every user is expected
// to own exactly one Profile with the same ID.
type User struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email             string     `gorm:"uniqueIndex;not null" json:"email"`
	EncryptedPassword string     `gorm:"column:encrypted_password;not null" json:"-"`
	LastSignInAt      *time.Time `json:"last_sign_in_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// Associations
	Profile *Profile `gorm:"foreignKey:ID;references:ID" json:"profile,omitempty"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// Profile holds the personal data and role of a user
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Document  string    `gorm:"uniqueIndex;not null" json:"document"`
	Role      string    `gorm:"not null;default:voter;index" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:ID;references:ID" json:"user,omitempty"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate hook for setting defaults
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.Role == "" {
		p.Role = RoleVoter
	}
	p.Document = strings.TrimSpace(p.Document)
	return nil
}

// IsAdmin returns true if profile has admin role
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsDelegate returns true if profile has delegate role
func (p *Profile) IsDelegate() bool {
	return p.Role == RoleDelegate
}

// IsVoter returns true if profile has voter role
func (p *Profile) IsVoter() bool {
	return p.Role == RoleVoter
}

// Role constants
const (
	RoleAdmin    = "admin"
	RoleDelegate = "delegate"
	RoleVoter    = "voter"
)

// ValidRole reports whether role is one of the known roles
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleDelegate, RoleVoter:
		return true
	}
	return false
}

// NormalizeDocument canonicalizes an identity document for duplicate detection:
// upper-cased, without spaces, dots or dashes.
func NormalizeDocument(document string) string {
	r := strings.NewReplacer(" ", "", ".", "", "-", "", "\t", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(document)))
}

// ProfileResponse is the JSON response format for profiles
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Document  string    `json:"document"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ToResponse converts Profile to ProfileResponse
func (p *Profile) ToResponse() ProfileResponse {
	resp := ProfileResponse{
		ID:        p.ID,
		FullName:  p.FullName,
		Document:  p.Document,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
	if p.User != nil {
		resp.Email = p.User.Email
	}
	return resp
}
