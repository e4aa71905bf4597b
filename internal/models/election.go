package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Election represents a voting process with a fixed time window
type Election struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate     time.Time  `gorm:"not null;index" json:"end_date"`
	IsActive    bool       `gorm:"not null;default:false;index" json:"is_active"`
	CreatedBy   *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	VotingPoints []VotingPoint `gorm:"foreignKey:ElectionID" json:"voting_points,omitempty"`
}

// TableName specifies the table name for Election
func (Election) TableName() string {
	return "elections"
}

// BeforeCreate hook for setting defaults
func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Election phase constants. The phase is derived from the dates and the
// is_active flag, it is never stored.
const (
	ElectionPhaseScheduled = "scheduled"
	ElectionPhaseOpen      = "open"
	ElectionPhasePaused    = "paused"
	ElectionPhaseFinished  = "finished"
)

// HasStarted reports whether the election start date has been reached.
// Once started, only is_active may change.
func (e *Election) HasStarted(now time.Time) bool {
	return !now.Before(e.StartDate)
}

// HasEnded reports whether the election end date has passed
func (e *Election) HasEnded(now time.Time) bool {
	return now.After(e.EndDate)
}

// IsOpen reports whether votes can be cast right now
func (e *Election) IsOpen(now time.Time) bool {
	return e.IsActive && e.HasStarted(now) && !e.HasEnded(now)
}

// Phase returns the lifecycle phase at the given instant
func (e *Election) Phase(now time.Time) string {
	switch {
	case e.HasEnded(now):
		return ElectionPhaseFinished
	case !e.HasStarted(now):
		return ElectionPhaseScheduled
	case e.IsActive:
		return ElectionPhaseOpen
	default:
		return ElectionPhasePaused
	}
}

// ElectionResponse is the JSON response format for elections
type ElectionResponse struct {
	ID                uuid.UUID `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	IsActive          bool      `json:"is_active"`
	Phase             string    `json:"phase"`
	Locked            bool      `json:"locked"`
	VotingPointsCount int       `json:"voting_points_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ToResponse converts Election to ElectionResponse
func (e *Election) ToResponse() ElectionResponse {
	now := time.Now()
	return ElectionResponse{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		IsActive:          e.IsActive,
		Phase:             e.Phase(now),
		Locked:            e.HasStarted(now),
		VotingPointsCount: len(e.VotingPoints),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
