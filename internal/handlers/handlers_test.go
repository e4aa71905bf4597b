package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/middleware"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/voxpopuly/voxpopuly-api/internal/services"
	"gorm.io/gorm"
)

type mockAuditRepo struct {
	repository.AuditRepository
	entries []*models.AuditLog
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type mockElectionRepo struct {
	repository.ElectionRepository
	elections map[uuid.UUID]*models.Election
}

func newMockElectionRepo() *mockElectionRepo {
	return &mockElectionRepo{elections: map[uuid.UUID]*models.Election{}}
}

func (m *mockElectionRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Election, error) {
	e, ok := m.elections[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockElectionRepo) Create(ctx context.Context, election *models.Election) error {
	if election.ID == uuid.Nil {
		election.ID = uuid.New()
	}
	cp := *election
	m.elections[election.ID] = &cp
	return nil
}

func (m *mockElectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.elections, id)
	return nil
}

type mockVoterRepo struct {
	repository.VoterRepository
	voter *models.Voter
}

func (m *mockVoterRepo) FindByProfile(ctx context.Context, profileID uuid.UUID) (*models.Voter, error) {
	if m.voter == nil || m.voter.ProfileID != profileID {
		return nil, gorm.ErrRecordNotFound
	}
	return m.voter, nil
}

// withActor stands in for the Auth middleware
func withActor(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("%w: detalle", services.ErrForbidden), http.StatusForbidden},
		{services.ErrValidation, http.StatusBadRequest},
		{services.ErrInvalidState, http.StatusBadRequest},
		{services.ErrElectionStarted, http.StatusBadRequest},
		{services.ErrProtectedEntity, http.StatusBadRequest},
		{fmt.Errorf("%w: elección", services.ErrNotFound), http.StatusNotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound},
		{services.ErrConflict, http.StatusConflict},
		{services.ErrAlreadyVoted, http.StatusConflict},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, statusForError(tt.err))
		})
	}
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "error interno del servidor", resp.Error)
}

func TestListQueryFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3&per_page=500&search=ana&sort_by=full_name&sort_dir=desc", nil)

	query := listQueryFrom(c)
	assert.Equal(t, 3, query.Page)
	assert.Equal(t, 100, query.PerPage)
	assert.Equal(t, "ana", query.Search)
	assert.Equal(t, "full_name", query.SortBy)
	assert.Equal(t, "desc", query.SortDir)

	// gin caches parsed query values per context
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=-1&per_page=abc", nil)
	query = listQueryFrom(c)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 20, query.PerPage)
}

func newElectionRouter(repo *mockElectionRepo, audits *mockAuditRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewElectionHandler(services.NewElectionService(repo, services.NewAuditService(audits), nil))

	r := gin.New()
	r.Use(withActor(uuid.New(), models.RoleAdmin))
	r.GET("/elections/:election_id", h.Show)
	r.POST("/elections", h.Create)
	r.DELETE("/elections/:election_id", h.Delete)
	return r
}

func TestElectionHandler_Create(t *testing.T) {
	repo, audits := newMockElectionRepo(), &mockAuditRepo{}
	router := newElectionRouter(repo, audits)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	w := doJSON(router, http.MethodPost, "/elections", gin.H{
		"election": gin.H{
			"title":      "Consejo Estudiantil",
			"start_date": start,
			"end_date":   start.Add(8 * time.Hour),
		},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Elección creada", resp.Message)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Consejo Estudiantil", data["title"])
	assert.Equal(t, models.ElectionPhaseScheduled, data["phase"])
	assert.Len(t, repo.elections, 1)
	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionCreate, audits.entries[0].Action)
}

func TestElectionHandler_CreateRejectsInvalidInput(t *testing.T) {
	router := newElectionRouter(newMockElectionRepo(), &mockAuditRepo{})
	start := time.Now().Add(24 * time.Hour)

	w := doJSON(router, http.MethodPost, "/elections", gin.H{"description": "sin título"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/elections", gin.H{
		"title":      "Fechas invertidas",
		"start_date": start,
		"end_date":   start.Add(-time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "la fecha de inicio debe ser anterior")
}

func TestElectionHandler_ShowAndDelete(t *testing.T) {
	repo := newMockElectionRepo()
	router := newElectionRouter(repo, &mockAuditRepo{})

	started := &models.Election{Title: "En curso", StartDate: time.Now().Add(-time.Hour), EndDate: time.Now().Add(time.Hour), IsActive: true}
	require.NoError(t, repo.Create(context.Background(), started))

	w := doJSON(router, http.MethodGet, "/elections/"+started.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w).Data.(map[string]interface{})
	assert.Equal(t, models.ElectionPhaseOpen, data["phase"])
	assert.Equal(t, true, data["locked"])

	w = doJSON(router, http.MethodDelete, "/elections/"+started.ID.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, repo.elections, 1)

	w = doJSON(router, http.MethodGet, "/elections/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/elections/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "identificador inválido")
}

func TestVoteHandler_Cast(t *testing.T) {
	gin.SetMode(gin.TestMode)
	profileID := uuid.New()
	voters := &mockVoterRepo{voter: &models.Voter{ID: uuid.New(), ProfileID: profileID, HasVoted: true}}
	voteSvc := services.NewVoteService(voters, nil, nil, services.NewAuditService(&mockAuditRepo{}), nil)
	h := NewVoteHandler(voteSvc, nil)

	r := gin.New()
	r.POST("/vote", withActor(profileID, models.RoleVoter), h.Cast)

	w := doJSON(r, http.MethodPost, "/vote", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/vote", gin.H{"slate_id": uuid.New()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.ErrAlreadyVoted.Error(), decode(t, w).Error)

	other := gin.New()
	other.POST("/vote", withActor(uuid.New(), models.RoleVoter), h.Cast)
	w = doJSON(other, http.MethodPost, "/vote", gin.H{"slate_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
