package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var importColumns = map[string]string{
	"full_name":       "full_name",
	"nombre":          "full_name",
	"nombre_completo": "full_name",
	"document":        "document",
	"documento":       "document",
	"cedula":          "document",
	"cédula":          "document",
	"email":           "email",
	"correo":          "email",
}

// ParseVoterCSV reads bulk import rows from a CSV file with a header row.
// Both comma and semicolon separators are accepted.
func ParseVoterCSV(r io.Reader) ([]ImportRow, error) {
	data, err := io.ReadAll(io.LimitReader(r, 10<<20+1))
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer el archivo", ErrValidation)
	}
	if len(data) > 10<<20 {
		return nil, fmt.Errorf("%w: el archivo excede 10MB", ErrValidation)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: el archivo está vacío", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CSV inválido: %v", ErrValidation, err)
	}

	index := map[string]int{}
	for i, col := range header {
		if name, ok := importColumns[strings.ToLower(strings.TrimSpace(col))]; ok {
			index[name] = i
		}
	}
	for _, required := range []string{"full_name", "document", "email"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: falta la columna %s", ErrValidation, required)
		}
	}

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: CSV inválido: %v", ErrValidation, err)
		}
		rows = append(rows, ImportRow{
			FullName: field(record, index["full_name"]),
			Document: field(record, index["document"]),
			Email:    field(record, index["email"]),
		})
	}
	return rows, nil
}

func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func field(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
