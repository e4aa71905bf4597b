package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Voter links a profile to the voting point where it may vote
type Voter struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:voters_profile_point_key" json:"profile_id"`
	VotingPointID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:voters_profile_point_key;index" json:"voting_point_id"`
	ElectionID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"election_id"`
	HasVoted      bool       `gorm:"not null;default:false;index" json:"has_voted"`
	VotedAt       *time.Time `json:"voted_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Associations
	Profile     Profile     `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	VotingPoint VotingPoint `gorm:"foreignKey:VotingPointID" json:"voting_point,omitempty"`
}

// TableName specifies the table name for Voter
func (Voter) TableName() string {
	return "voters"
}

// BeforeCreate hook for setting defaults
func (v *Voter) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Vote is an append-only ballot record. Its existence implies has_voted on
// the referenced voter.
type Vote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:votes_voter_id_key" json:"voter_id"`
	SlateID   uuid.UUID `gorm:"type:uuid;not null;index" json:"slate_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Vote
func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate hook for setting defaults
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VoterResponse is the JSON response format for voters
type VoterResponse struct {
	ID            uuid.UUID  `json:"id"`
	ProfileID     uuid.UUID  `json:"profile_id"`
	VotingPointID uuid.UUID  `json:"voting_point_id"`
	FullName      string     `json:"full_name"`
	Document      string     `json:"document"`
	Email         string     `json:"email,omitempty"`
	HasVoted      bool       `json:"has_voted"`
	VotedAt       *time.Time `json:"voted_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToResponse converts Voter to VoterResponse
func (v *Voter) ToResponse() VoterResponse {
	resp := VoterResponse{
		ID:            v.ID,
		ProfileID:     v.ProfileID,
		VotingPointID: v.VotingPointID,
		FullName:      v.Profile.FullName,
		Document:      v.Profile.Document,
		HasVoted:      v.HasVoted,
		VotedAt:       v.VotedAt,
		CreatedAt:     v.CreatedAt,
	}
	if v.Profile.User != nil {
		resp.Email = v.Profile.User.Email
	}
	return resp
}
