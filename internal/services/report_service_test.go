package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

type mockStatisticsRepo struct {
	repository.StatisticsRepository
	mockTurnout func(ctx context.Context, electionID uuid.UUID) ([]repository.VotingPointTurnout, error)
	mockResults func(ctx context.Context, electionID uuid.UUID) ([]repository.SlateResult, error)
	votes       int64
}

func (m *mockStatisticsRepo) VotingPointTurnout(ctx context.Context, electionID uuid.UUID) ([]repository.VotingPointTurnout, error) {
	return m.mockTurnout(ctx, electionID)
}

func (m *mockStatisticsRepo) SlateResults(ctx context.Context, electionID uuid.UUID) ([]repository.SlateResult, error) {
	return m.mockResults(ctx, electionID)
}

func (m *mockStatisticsRepo) CountVotes(ctx context.Context, electionID uuid.UUID) (int64, error) {
	return m.votes, nil
}

// statsFixture seeds an election with two voting points and fixed results
func statsFixture(t *testing.T) (*fixture, *models.Election, *StatisticsService) {
	t.Helper()
	f := newFixture(t)
	election := f.election()

	north, south := uuid.New(), uuid.New()
	statsRepo := &mockStatisticsRepo{
		mockTurnout: func(ctx context.Context, electionID uuid.UUID) ([]repository.VotingPointTurnout, error) {
			return []repository.VotingPointTurnout{
				{VotingPointID: north, Name: "Mesa Norte", Location: "Bloque A", DelegateName: "Ana", TotalVoters: 4, TotalVoted: 3},
				{VotingPointID: south, Name: "Mesa Sur", Location: "Bloque B", TotalVoters: 2, TotalVoted: 0},
			}, nil
		},
		mockResults: func(ctx context.Context, electionID uuid.UUID) ([]repository.SlateResult, error) {
			return []repository.SlateResult{
				{SlateID: uuid.New(), VotingPointID: north, Name: "Plancha Azul", VoteCount: 2},
				{SlateID: uuid.New(), VotingPointID: north, Name: models.BlankVoteName, IsSystem: true, VoteCount: 1},
				{SlateID: uuid.New(), VotingPointID: south, Name: models.BlankVoteName, IsSystem: true},
			}, nil
		},
		votes: 3,
	}

	repos := f.store.repositories()
	svc := NewStatisticsService(statsRepo, repos.Election, repos.VotingPoint, repos.Profile, repos.Voter, repos.Vote, repos.Slate, nil)
	svc.now = func() time.Time { return f.now }
	return f, election, svc
}

func TestStatisticsService_ElectionStatistics(t *testing.T) {
	f, election, svc := statsFixture(t)

	stats, err := svc.ElectionStatistics(f.ctx, election.ID)
	require.NoError(t, err)

	assert.Equal(t, election.Title, stats.Title)
	assert.Equal(t, models.ElectionPhaseScheduled, stats.Phase)
	assert.EqualValues(t, 6, stats.TotalVoters)
	assert.EqualValues(t, 3, stats.TotalVoted)
	assert.EqualValues(t, 3, stats.TotalVotes)
	assert.Equal(t, 50.0, stats.Turnout)

	require.Len(t, stats.VotingPoints, 2)
	north := stats.VotingPoints[0]
	assert.Equal(t, 75.0, north.Turnout)
	require.Len(t, north.Slates, 2)
	assert.Equal(t, 66.67, north.Slates[0].Percentage)
	assert.Equal(t, 33.33, north.Slates[1].Percentage)

	south := stats.VotingPoints[1]
	assert.Equal(t, 0.0, south.Turnout)
	require.Len(t, south.Slates, 1)
	assert.Equal(t, 0.0, south.Slates[0].Percentage)

	_, err = svc.ElectionStatistics(f.ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportService_Export(t *testing.T) {
	f, election, svc := statsFixture(t)
	exports := NewExportService(svc)

	t.Run("csv", func(t *testing.T) {
		file, err := exports.Export(f.ctx, election.ID, "CSV")
		require.NoError(t, err)
		assert.Equal(t, "text/csv", file.ContentType)
		assert.True(t, strings.HasPrefix(file.Filename, "estadisticas_consejo_estudiantil_"))
		assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

		reader := csv.NewReader(bytes.NewReader(file.Data))
		reader.FieldsPerRecord = -1
		records, err := reader.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Estadísticas de Elección", election.Title}, records[0])
		assert.Contains(t, string(file.Data), "Mesa Norte,Ana,4,3,75.00%,Plancha Azul,2,66.67%")
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := exports.Export(f.ctx, election.ID, ExportFormatXLSX)
		require.NoError(t, err)

		book, err := excelize.OpenReader(bytes.NewReader(file.Data))
		require.NoError(t, err)
		defer book.Close()

		title, err := book.GetCellValue("Resumen", "A1")
		require.NoError(t, err)
		assert.Equal(t, election.Title, title)

		rows, err := book.GetRows("Resultados")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
		assert.Equal(t, "Mesa Norte", rows[1][0])
	})

	t.Run("pdf", func(t *testing.T) {
		file, err := exports.Export(f.ctx, election.ID, ExportFormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
	})

	t.Run("json by default", func(t *testing.T) {
		file, err := exports.Export(f.ctx, election.ID, "")
		require.NoError(t, err)
		assert.Equal(t, "application/json", file.ContentType)
		assert.Contains(t, string(file.Data), `"total_voters": 6`)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := exports.Export(f.ctx, election.ID, "docx")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestReportService_RenderResultsCertificate(t *testing.T) {
	f, election, svc := statsFixture(t)
	reports := NewReportService(svc, nil, nil)

	html, err := reports.RenderResultsCertificate(f.ctx, election.ID)
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "Consejo Estudiantil")
	assert.Contains(t, body, "Programada")
	assert.Contains(t, body, "Mesa Norte")
	assert.Contains(t, body, "Plancha Azul")
}

func TestReportService_GenerateVotersCSV(t *testing.T) {
	f := newFixture(t)
	election := f.election()
	delegate := f.store.addProfile("Delegada", "D-1", "d1@example.com", models.RoleDelegate)
	point := f.votingPoint(election.ID, &delegate.ID)
	other := f.votingPoint(election.ID, nil)
	slate := f.slate(point.ID, "Plancha Azul")
	ana, _ := f.voter(point.ID, "A-1")
	f.voter(point.ID, "B-2")

	f.openElection(election.ID)
	_, err := f.votes.Cast(f.ctx, voterActor(ana.ID), slate.ID)
	require.NoError(t, err)

	repos := f.store.repositories()
	reports := NewReportService(nil, repos.VotingPoint, repos.Voter)

	actor := Actor{UserID: delegate.ID, Role: models.RoleDelegate}
	buf, err := reports.GenerateVotersCSV(f.ctx, actor, point.ID)
	require.NoError(t, err)

	records, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Nombre", "Documento", "Correo", "Votó", "Fecha de voto"}, records[0])
	assert.Equal(t, []string{"Votante A-1", "A-1", "A-1@example.com", "Sí", f.now.Format("2006-01-02 15:04")}, records[1])
	assert.Equal(t, "No", records[2][3])
	assert.Equal(t, "", records[2][4])

	_, err = reports.GenerateVotersCSV(f.ctx, actor, other.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
