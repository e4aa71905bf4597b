package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/voxpopuly/voxpopuly-api/internal/models"
	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatPDF  = "pdf"
)

// ExportFile is a rendered export ready to be served
type ExportFile struct {
	Data        []byte
	Filename    string
	ContentType string
}

type ExportService struct {
	statsSvc *StatisticsService
}

func NewExportService(statsSvc *StatisticsService) *ExportService {
	return &ExportService{statsSvc: statsSvc}
}

// Export renders the statistics of an election in the requested format
func (s *ExportService) Export(ctx context.Context, electionID uuid.UUID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatJSON
	}

	stats, err := s.statsSvc.ElectionStatistics(ctx, electionID)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("estadisticas_%s_%s", slugify(stats.Title), stats.GeneratedAt.Format("2006-01-02"))
	var (
		data        []byte
		contentType string
	)
	switch format {
	case ExportFormatJSON:
		data, err = json.MarshalIndent(stats, "", "  ")
		contentType = "application/json"
	case ExportFormatCSV:
		data, err = s.ExportCSV(stats)
		contentType = "text/csv"
	case ExportFormatXLSX:
		data, err = s.ExportXLSX(stats)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		data, err = s.ExportPDF(stats)
		contentType = "application/pdf"
	default:
		return nil, fmt.Errorf("%w: formato no soportado: %s", ErrValidation, format)
	}
	if err != nil {
		return nil, err
	}

	return &ExportFile{Data: data, Filename: base + "." + format, ContentType: contentType}, nil
}

func (s *ExportService) ExportCSV(stats *models.ElectionStatistics) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	// Header
	_ = writer.Write([]string{"Estadísticas de Elección", stats.Title})
	_ = writer.Write([]string{"Generado", stats.GeneratedAt.Format("2006-01-02 15:04")})
	_ = writer.Write([]string{""})

	// Summary
	_ = writer.Write([]string{"Métrica", "Valor"})
	_ = writer.Write([]string{"Votantes", fmt.Sprintf("%d", stats.TotalVoters)})
	_ = writer.Write([]string{"Votaron", fmt.Sprintf("%d", stats.TotalVoted)})
	_ = writer.Write([]string{"Votos", fmt.Sprintf("%d", stats.TotalVotes)})
	_ = writer.Write([]string{"Participación", fmt.Sprintf("%.2f%%", stats.Turnout)})
	_ = writer.Write([]string{""})

	// Results
	_ = writer.Write([]string{"Punto de votación", "Delegado", "Votantes", "Votaron", "Participación", "Plancha", "Votos", "Porcentaje"})
	for _, p := range stats.VotingPoints {
		for _, sl := range p.Slates {
			_ = writer.Write([]string{
				p.Name,
				p.DelegateName,
				fmt.Sprintf("%d", p.TotalVoters),
				fmt.Sprintf("%d", p.TotalVoted),
				fmt.Sprintf("%.2f%%", p.Turnout),
				sl.Name,
				fmt.Sprintf("%d", sl.VoteCount),
				fmt.Sprintf("%.2f%%", sl.Percentage),
			})
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) ExportXLSX(stats *models.ElectionStatistics) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Resumen"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	// Summary sheet
	_ = f.SetCellValue(sheet, "A1", stats.Title)
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", "Generado")
	_ = f.SetCellValue(sheet, "B2", stats.GeneratedAt.Format("2006-01-02 15:04"))

	_ = f.SetCellValue(sheet, "A4", "Votantes")
	_ = f.SetCellValue(sheet, "B4", stats.TotalVoters)
	_ = f.SetCellValue(sheet, "A5", "Votaron")
	_ = f.SetCellValue(sheet, "B5", stats.TotalVoted)
	_ = f.SetCellValue(sheet, "A6", "Votos")
	_ = f.SetCellValue(sheet, "B6", stats.TotalVotes)
	_ = f.SetCellValue(sheet, "A7", "Participación")
	_ = f.SetCellValue(sheet, "B7", fmt.Sprintf("%.2f%%", stats.Turnout))

	// One row per slate on the results sheet
	results := "Resultados"
	if _, err := f.NewSheet(results); err != nil {
		return nil, err
	}
	columns := []string{"Punto de votación", "Ubicación", "Delegado", "Votantes", "Votaron", "Participación %", "Plancha", "Votos", "Porcentaje %"}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(results, cell, col)
	}
	_ = f.SetCellStyle(results, "A1", "I1", headerStyle)

	row := 2
	for _, p := range stats.VotingPoints {
		for _, sl := range p.Slates {
			values := []interface{}{p.Name, p.Location, p.DelegateName, p.TotalVoters, p.TotalVoted, p.Turnout, sl.Name, sl.VoteCount, sl.Percentage}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(results, cell, v)
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ExportService) ExportPDF(stats *models.ElectionStatistics) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr("Estadísticas: "+stats.Title))
	pdf.Ln(12)

	// Summary
	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"Generado:", stats.GeneratedAt.Format("2006-01-02 15:04")},
		{"Votantes:", fmt.Sprintf("%d", stats.TotalVoters)},
		{"Votaron:", fmt.Sprintf("%d", stats.TotalVoted)},
		{"Votos:", fmt.Sprintf("%d", stats.TotalVotes)},
		{"Participación:", fmt.Sprintf("%.2f%%", stats.Turnout)},
	}
	for _, line := range summary {
		pdf.Cell(60, 10, tr(line[0]))
		pdf.Cell(40, 10, tr(line[1]))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	// Results table per voting point
	for _, p := range stats.VotingPoints {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(40, 10, tr(p.Name))
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(60, 8, tr(fmt.Sprintf("Delegado: %s", p.DelegateName)))
		pdf.Cell(60, 8, tr(fmt.Sprintf("Participación: %d/%d (%.2f%%)", p.TotalVoted, p.TotalVoters, p.Turnout)))
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(100, 7, "Plancha", "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, "Votos", "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, "%", "1", 0, "R", false, 0, "")
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, sl := range p.Slates {
			pdf.CellFormat(100, 7, tr(sl.Name), "1", 0, "", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%d", sl.VoteCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", sl.Percentage), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "eleccion"
	}
	return b.String()
}
