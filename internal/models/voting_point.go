package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VotingPoint is a polling location that groups voters, candidates and slates
// under one election
type VotingPoint struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ElectionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"election_id"`
	DelegateID *uuid.UUID `gorm:"type:uuid;uniqueIndex:voting_points_delegate_id_key,where:delegate_id IS NOT NULL" json:"delegate_id"`
	Name       string     `gorm:"not null" json:"name"`
	Location   string     `json:"location"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Associations
	Election   Election    `gorm:"foreignKey:ElectionID" json:"election,omitempty"`
	Delegate   *Profile    `gorm:"foreignKey:DelegateID" json:"delegate,omitempty"`
	Candidates []Candidate `gorm:"foreignKey:VotingPointID" json:"candidates,omitempty"`
	Slates     []Slate     `gorm:"foreignKey:VotingPointID" json:"slates,omitempty"`
	Voters     []Voter     `gorm:"foreignKey:VotingPointID" json:"voters,omitempty"`
}

// TableName specifies the table name for VotingPoint
func (VotingPoint) TableName() string {
	return "voting_points"
}

// BeforeCreate hook for setting defaults
func (v *VotingPoint) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// VotingPointResponse is the JSON response format for voting points
type VotingPointResponse struct {
	ID          uuid.UUID         `json:"id"`
	ElectionID  uuid.UUID         `json:"election_id"`
	Name        string            `json:"name"`
	Location    string            `json:"location"`
	Delegate    *ProfileResponse  `json:"delegate"`
	Election    *ElectionResponse `json:"election,omitempty"`
	VotersCount int64             `json:"voters_count"`
	VotedCount  int64             `json:"voted_count"`
	SlatesCount int               `json:"slates_count"`
	CreatedAt   time.Time         `json:"created_at"`
}

// ToResponse converts VotingPoint to VotingPointResponse
func (v *VotingPoint) ToResponse() VotingPointResponse {
	resp := VotingPointResponse{
		ID:          v.ID,
		ElectionID:  v.ElectionID,
		Name:        v.Name,
		Location:    v.Location,
		SlatesCount: len(v.Slates),
		CreatedAt:   v.CreatedAt,
	}
	if v.Delegate != nil {
		d := v.Delegate.ToResponse()
		resp.Delegate = &d
	}
	if v.Election.ID != uuid.Nil {
		e := v.Election.ToResponse()
		resp.Election = &e
	}
	for _, voter := range v.Voters {
		resp.VotersCount++
		if voter.HasVoted {
			resp.VotedCount++
		}
	}
	return resp
}
