package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"fmt"
	"html/template"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/google/uuid"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/voxpopuly/voxpopuly-api/internal/repository"
)

//go:embed templates/reports/*.html
var reportTemplates embed.FS

var phaseLabels = map[string]string{
	models.ElectionPhaseScheduled: "Programada",
	models.ElectionPhaseOpen:      "Abierta",
	models.ElectionPhasePaused:    "Pausada",
	models.ElectionPhaseFinished:  "Finalizada",
}

type ReportService struct {
	statsSvc  *StatisticsService
	pointRepo repository.VotingPointRepository
	voterRepo repository.VoterRepository
}

func NewReportService(
	statsSvc *StatisticsService,
	pointRepo repository.VotingPointRepository,
	voterRepo repository.VoterRepository,
) *ReportService {
	return &ReportService{
		statsSvc:  statsSvc,
		pointRepo: pointRepo,
		voterRepo: voterRepo,
	}
}

// GenerateVotersCSV lists every voter of a voting point with their status.
// Delegates may only export their own point.
func (s *ReportService) GenerateVotersCSV(ctx context.Context, actor Actor, votingPointID uuid.UUID) (*bytes.Buffer, error) {
	point, err := s.pointRepo.FindByID(ctx, votingPointID)
	if err != nil {
		return nil, notFound(err, "punto de votación no encontrado")
	}
	if actor.Role == models.RoleDelegate && (point.DelegateID == nil || *point.DelegateID != actor.UserID) {
		return nil, fmt.Errorf("%w: solo puedes exportar tu punto de votación", ErrForbidden)
	}

	// Unpaginated
	query := repository.NewListQuery()
	query.PerPage = 0
	voters, _, err := s.voterRepo.ListByVotingPoint(ctx, votingPointID, query)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)
	// Write header
	_ = w.Write([]string{"Nombre", "Documento", "Correo", "Votó", "Fecha de voto"})

	// Write data
	for i := range voters {
		v := voters[i].ToResponse()
		voted, votedAt := "No", ""
		if v.HasVoted {
			voted = "Sí"
		}
		if v.VotedAt != nil {
			votedAt = v.VotedAt.Format("2006-01-02 15:04")
		}
		_ = w.Write([]string{v.FullName, v.Document, v.Email, voted, votedAt})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b, nil
}

// certificateData is the view model of the results certificate
type certificateData struct {
	*models.ElectionStatistics
	Phase       string
	StartDate   string
	EndDate     string
	GeneratedAt string
}

// RenderResultsCertificate renders the HTML results certificate of an election
func (s *ReportService) RenderResultsCertificate(ctx context.Context, electionID uuid.UUID) ([]byte, error) {
	stats, err := s.statsSvc.ElectionStatistics(ctx, electionID)
	if err != nil {
		return nil, err
	}
	return renderCertificate(stats)
}

func renderCertificate(stats *models.ElectionStatistics) ([]byte, error) {
	data := certificateData{
		ElectionStatistics: stats,
		Phase:              phaseLabels[stats.Phase],
		StartDate:          stats.StartDate.Format("02/01/2006 15:04"),
		EndDate:            stats.EndDate.Format("02/01/2006 15:04"),
		GeneratedAt:        stats.GeneratedAt.Format(time.RFC1123),
	}
	return renderReport("results_certificate.html", data)
}

// GenerateResultsCertificatePDF renders the results certificate to PDF
func (s *ReportService) GenerateResultsCertificatePDF(ctx context.Context, electionID uuid.UUID) (*bytes.Buffer, error) {
	html, err := s.RenderResultsCertificate(ctx, electionID)
	if err != nil {
		return nil, err
	}
	return generatePDF(html)
}

func renderReport(name string, data interface{}) ([]byte, error) {
	tmpl, err := template.ParseFS(reportTemplates, "templates/reports/"+name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// generatePDF converts rendered HTML to PDF with wkhtmltopdf
func generatePDF(html []byte) (*bytes.Buffer, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	// Set global options
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
