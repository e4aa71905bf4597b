package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/jobs"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/pkg/logger"
	"gorm.io/gorm"
)

// MaxImportRows bounds a single bulk import
const MaxImportRows = 5000

// JobQueue runs work in the background
type JobQueue interface {
	Enqueue(job jobs.Job)
}

type VoterService struct {
	repo        repository.VoterRepository
	pointRepo   repository.VotingPointRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	audit       *AuditService
	email       *EmailService
	queue       JobQueue
	validate    *validator.Validate
	generatePIN func() (string, error)
	hash        func(string) (string, error)
}

func NewVoterService(repo repository.VoterRepository, pointRepo repository.VotingPointRepository, userRepo repository.UserRepository, profileRepo repository.ProfileRepository, audit *AuditService, email *EmailService, queue JobQueue) *VoterService {
	return &VoterService{
		repo:        repo,
		pointRepo:   pointRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		audit:       audit,
		email:       email,
		queue:       queue,
		validate:    validator.New(),
		generatePIN: GeneratePIN,
		hash:        HashPassword,
	}
}

// ListByVotingPoint lists voters of a point. Delegates only see their own.
func (s *VoterService) ListByVotingPoint(ctx context.Context, actor Actor, votingPointID uuid.UUID, query *repository.ListQuery) ([]models.Voter, int64, error) {
	point, err := s.pointRepo.FindByID(ctx, votingPointID)
	if err != nil {
		return nil, 0, notFound(err, "punto de votación no encontrado")
	}
	if actor.Role == models.RoleDelegate && (point.DelegateID == nil || *point.DelegateID != actor.UserID) {
		return nil, 0, fmt.Errorf("%w: solo puedes consultar tu punto de votación", ErrForbidden)
	}
	return s.repo.ListByVotingPoint(ctx, votingPointID, query)
}

// Assign links an existing voter profile to a voting point
func (s *VoterService) Assign(ctx context.Context, actor Actor, votingPointID, profileID uuid.UUID) (*models.Voter, error) {
	point, err := s.pointRepo.FindByID(ctx, votingPointID)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	profile, err := s.profileRepo.FindByID(ctx, profileID)
	if err != nil {
		return nil, notFound(err, "perfil no encontrado")
	}
	if !profile.IsVoter() {
		return nil, fmt.Errorf("%w: solo perfiles con rol votante pueden asignarse", ErrValidation)
	}

	// A profile votes once per election, so it gets one voting point in it
	existing, err := s.electionLink(ctx, profile.ID, point.ElectionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.VotingPointID == point.ID {
			return nil, fmt.Errorf("%w: el votante ya está asignado a este punto de votación", ErrConflict)
		}
		return nil, linkedElsewhere(existing)
	}

	voter := &models.Voter{ProfileID: profile.ID, VotingPointID: point.ID, ElectionID: point.ElectionID}
	if err := s.repo.Create(ctx, voter); err != nil {
		// Lost a race against a concurrent assignment
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, duplicateDetail(err))
		}
		return nil, err
	}

	s.audit.Log(ctx, actor, models.AuditActionAssign, models.EntityVoter, uuidPtr(voter.ID), map[string]interface{}{
		"profile_id":      profile.ID.String(),
		"voting_point_id": point.ID.String(),
	})
	if profile.User != nil {
		s.notifyRegistered(profile.FullName, profile.User.Email, point)
	}

	voter.Profile = *profile
	return voter, nil
}

// electionLink returns the profile's voter link in the election, or nil
func (s *VoterService) electionLink(ctx context.Context, profileID, electionID uuid.UUID) (*models.Voter, error) {
	existing, err := s.repo.FindInElection(ctx, profileID, electionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func linkedElsewhere(existing *models.Voter) error {
	return fmt.Errorf("%w: el votante ya está asignado a otro punto de votación de esta elección (%s)", ErrConflict, existing.VotingPoint.Name)
}

// Remove deletes a voter link that has not been used to vote
func (s *VoterService) Remove(ctx context.Context, actor Actor, voterID uuid.UUID) error {
	voter, err := s.repo.FindByID(ctx, voterID)
	if err != nil {
		return notFound(err, "votante no encontrado")
	}
	if voter.HasVoted {
		return fmt.Errorf("%w: el votante ya votó y no puede eliminarse", ErrConflict)
	}

	if err := s.repo.Delete(ctx, voterID); err != nil {
		return err
	}

	s.audit.Log(ctx, actor, models.AuditActionDelete, models.EntityVoter, uuidPtr(voterID), map[string]interface{}{
		"profile_id":      voter.ProfileID.String(),
		"voting_point_id": voter.VotingPointID.String(),
	})
	return nil
}

// ImportRow is one voter of a bulk import
type ImportRow struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Document string `json:"document" validate:"required,max=32"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// ImportCreated reports a new voter account. PIN is the plaintext login PIN;
// it only exists in this response.
type ImportCreated struct {
	Row      int    `json:"row"`
	FullName string `json:"full_name"`
	Document string `json:"document"`
	Email    string `json:"email"`
	PIN      string `json:"pin"`
}

// ImportSkipped reports a row whose document already had a profile
type ImportSkipped struct {
	Row      int    `json:"row"`
	FullName string `json:"full_name"`
	Document string `json:"document"`
	Linked   bool   `json:"linked"`
}

// ImportError reports a failed row
type ImportError struct {
	Row      int    `json:"row"`
	Document string `json:"document"`
	Error    string `json:"error"`
}

// ImportSummary counts the outcome of an import
type ImportSummary struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ImportResult is the per-row outcome of a bulk import
type ImportResult struct {
	Created []ImportCreated `json:"created"`
	Skipped []ImportSkipped `json:"skipped"`
	Errors  []ImportError   `json:"errors"`
	Summary ImportSummary   `json:"summary"`
}

// Import creates or links voters of a voting point row by row. A failing row
// is reported and the import continues; nothing is rolled back.
func (s *VoterService) Import(ctx context.Context, actor Actor, votingPointID uuid.UUID, rows []ImportRow) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no hay filas para importar", ErrValidation)
	}
	if len(rows) > MaxImportRows {
		return nil, fmt.Errorf("%w: máximo %d filas por importación", ErrValidation, MaxImportRows)
	}

	point, err := s.pointRepo.FindByID(ctx, votingPointID)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}

	result := &ImportResult{
		Created: []ImportCreated{},
		Skipped: []ImportSkipped{},
		Errors:  []ImportError{},
	}
	seen := make(map[string]int, len(rows))

	for i, row := range rows {
		// Normalize and validate the row
		rowNum := i + 1
		row.FullName = strings.TrimSpace(row.FullName)
		row.Document = strings.TrimSpace(row.Document)
		row.Email = strings.ToLower(strings.TrimSpace(row.Email))

		if err := s.validate.Struct(row); err != nil {
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Document: row.Document, Error: describeValidation(err)})
			continue
		}

		// Documents repeated inside the file fail after the first
		key := models.NormalizeDocument(row.Document)
		if first, dup := seen[key]; dup {
			result.Errors = append(result.Errors, ImportError{
				Row:      rowNum,
				Document: row.Document,
				Error:    fmt.Sprintf("documento duplicado en el archivo (fila %d)", first),
			})
			continue
		}
		seen[key] = rowNum

		if err := s.importRow(ctx, point, rowNum, row, result); err != nil {
			logger.Warn("Voter import row failed", "row", rowNum, "voting_point_id", point.ID, "error", err)
			result.Errors = append(result.Errors, ImportError{Row: rowNum, Document: row.Document, Error: importErrorMessage(err)})
		}
	}

	result.Summary = ImportSummary{
		Total:   len(rows),
		Created: len(result.Created),
		Skipped: len(result.Skipped),
		Failed:  len(result.Errors),
	}

	s.audit.Log(ctx, actor, models.AuditActionVotersImport, models.EntityVotingPoint, uuidPtr(point.ID), map[string]interface{}{
		"total":   result.Summary.Total,
		"created": result.Summary.Created,
		"skipped": result.Summary.Skipped,
		"failed":  result.Summary.Failed,
	})
	return result, nil
}

func (s *VoterService) importRow(ctx context.Context, point *models.VotingPoint, rowNum int, row ImportRow, result *ImportResult) error {
	existing, err := s.profileRepo.FindByDocument(ctx, row.Document)
	if err == nil {
		// Admin and delegate profiles can never cast a vote
		if !existing.IsVoter() {
			return fmt.Errorf("%w: el documento pertenece a un perfil que no es votante", ErrValidation)
		}

		// Already linked here is a no-op; linked elsewhere in the election fails the row
		link, err := s.electionLink(ctx, existing.ID, point.ElectionID)
		if err != nil {
			return err
		}
		if link != nil && link.VotingPointID != point.ID {
			return linkedElsewhere(link)
		}

		linked, err := s.repo.LinkIgnoreDuplicates(ctx, existing.ID, point)
		if err != nil {
			return err
		}
		result.Skipped = append(result.Skipped, ImportSkipped{
			Row:      rowNum,
			FullName: existing.FullName,
			Document: existing.Document,
			Linked:   linked,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// New voter: generate the login PIN and create the account
	pin, err := s.generatePIN()
	if err != nil {
		return err
	}
	hash, err := s.hash(pin)
	if err != nil {
		return err
	}

	user := &models.User{Email: row.Email, EncryptedPassword: hash}
	profile := &models.Profile{FullName: row.FullName, Document: row.Document, Role: models.RoleVoter}
	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		return err
	}
	if _, err := s.repo.LinkIgnoreDuplicates(ctx, profile.ID, point); err != nil {
		return err
	}

	result.Created = append(result.Created, ImportCreated{
		Row:      rowNum,
		FullName: profile.FullName,
		Document: profile.Document,
		Email:    user.Email,
		PIN:      pin,
	})
	s.notifyRegistered(profile.FullName, user.Email, point)
	return nil
}

func (s *VoterService) notifyRegistered(name, email string, point *models.VotingPoint) {
	if s.queue == nil || s.email == nil || email == "" {
		return
	}
	p := *point
	s.queue.Enqueue(func(ctx context.Context) error {
		return s.email.SendVoterRegistered(ctx, name, email, &p)
	})
}

// GeneratePIN returns a uniformly random 6-digit numeric PIN
func GeneratePIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Field() {
		case "FullName":
			field = "full_name"
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" es obligatorio")
		case "email":
			msgs = append(msgs, "email inválido")
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s excede %s caracteres", field, fe.Param()))
		default:
			msgs = append(msgs, field+" inválido")
		}
	}
	return strings.Join(msgs, "; ")
}

func importErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), repository.IsUniqueViolation(err):
		return duplicateDetail(err)
	}
	return "error interno al registrar el votante"
}

// duplicateDetail strips the sentinel prefix from a wrapped error message
func duplicateDetail(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return "registro duplicado"
}
