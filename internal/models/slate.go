package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlankVoteName is the name of the protected system candidate and slate
// created with every voting point.
const BlankVoteName = "Voto en Blanco"

// Candidate represents a person running at a voting point
type Candidate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VotingPointID uuid.UUID `gorm:"type:uuid;not null;index" json:"voting_point_id"`
	FullName      string    `gorm:"not null" json:"full_name"`
	Document      *string   `json:"document"`
	Position      string    `json:"position"`
	IsSystem      bool      `gorm:"not null;default:false" json:"is_system"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	VotingPoint VotingPoint `gorm:"foreignKey:VotingPointID" json:"-"`
}

// TableName specifies the table name for Candidate
func (Candidate) TableName() string {
	return "candidates"
}

// BeforeCreate hook for setting defaults
func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsProtected reports whether the candidate is the blank vote system entry
func (c *Candidate) IsProtected() bool {
	return c.IsSystem || c.FullName == BlankVoteName
}

// Slate is a ballot option grouping candidates of one voting point
type Slate struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VotingPointID uuid.UUID `gorm:"type:uuid;not null;index" json:"voting_point_id"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	LogoPath      *string   `json:"logo_path"`
	VoteCount     int64     `gorm:"not null;default:0" json:"vote_count"`
	IsSystem      bool      `gorm:"not null;default:false" json:"is_system"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	VotingPoint VotingPoint   `gorm:"foreignKey:VotingPointID" json:"voting_point,omitempty"`
	Members     []SlateMember `gorm:"foreignKey:SlateID" json:"members,omitempty"`
}

// TableName specifies the table name for Slate
func (Slate) TableName() string {
	return "slates"
}

// BeforeCreate hook for setting defaults
func (s *Slate) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// IsProtected reports whether the slate is the blank vote system entry
func (s *Slate) IsProtected() bool {
	return s.IsSystem || s.Name == BlankVoteName
}

// SlateMember links a candidate to a slate
type SlateMember struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SlateID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slate_member" json:"slate_id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slate_member" json:"candidate_id"`
	Role        string    `json:"role"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time `json:"created_at"`

	// Associations
	Candidate Candidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
}

// TableName specifies the table name for SlateMember
func (SlateMember) TableName() string {
	return "slate_members"
}

// CandidateResponse is the JSON response format for candidates
type CandidateResponse struct {
	ID            uuid.UUID `json:"id"`
	VotingPointID uuid.UUID `json:"voting_point_id"`
	FullName      string    `json:"full_name"`
	Document      *string   `json:"document"`
	Position      string    `json:"position"`
	IsSystem      bool      `json:"is_system"`
}

// ToResponse converts Candidate to CandidateResponse
func (c *Candidate) ToResponse() CandidateResponse {
	return CandidateResponse{
		ID:            c.ID,
		VotingPointID: c.VotingPointID,
		FullName:      c.FullName,
		Document:      c.Document,
		Position:      c.Position,
		IsSystem:      c.IsSystem,
	}
}

// SlateMemberResponse is the JSON response format for slate members
type SlateMemberResponse struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	FullName    string    `json:"full_name"`
	Role        string    `json:"role"`
	Position    int       `json:"position"`
}

// SlateResponse is the JSON response format for slates
type SlateResponse struct {
	ID            uuid.UUID             `json:"id"`
	VotingPointID uuid.UUID             `json:"voting_point_id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	LogoPath      *string               `json:"logo_path"`
	VoteCount     *int64                `json:"vote_count,omitempty"`
	IsSystem      bool                  `json:"is_system"`
	Members       []SlateMemberResponse `json:"members"`
}

// ToResponse converts Slate to SlateResponse including the vote count
func (s *Slate) ToResponse() SlateResponse {
	resp := s.ToBallotResponse()
	count := s.VoteCount
	resp.VoteCount = &count
	return resp
}

// ToBallotResponse converts Slate to SlateResponse without the vote count,
// for views shown to voters.
func (s *Slate) ToBallotResponse() SlateResponse {
	members := make([]SlateMemberResponse, 0, len(s.Members))
	for _, m := range s.Members {
		members = append(members, SlateMemberResponse{
			CandidateID: m.CandidateID,
			FullName:    m.Candidate.FullName,
			Role:        m.Role,
			Position:    m.Position,
		})
	}
	return SlateResponse{
		ID:            s.ID,
		VotingPointID: s.VotingPointID,
		Name:          s.Name,
		Description:   s.Description,
		LogoPath:      s.LogoPath,
		IsSystem:      s.IsSystem,
		Members:       members,
	}
}
