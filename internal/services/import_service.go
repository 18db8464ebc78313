package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jobdeck/jobdeck/internal/logger"
	"github.com/jobdeck/jobdeck/internal/models"
	"github.com/jobdeck/jobdeck/internal/store"
)

// ImportService bulk-loads records from CSV. Column names are matched
// case-insensitively; rows without both a company and a role are skipped,
// and an unrecognized status is treated as absent so the store applies its
// default.
type ImportService struct {
	records *store.RecordStore
	log     logger.Logger
}

func NewImportService(records *store.RecordStore, log logger.Logger) *ImportService {
	return &ImportService{records: records, log: log}
}

// ImportResult reports how the file was consumed.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *ImportService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	cols := columnIndex(header)

	var result ImportResult
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read csv row: %w", err)
		}

		input, ok := rowToInput(row, cols)
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := s.records.Add(ctx, input); err != nil {
			return result, fmt.Errorf("import row: %w", err)
		}
		result.Imported++
	}

	s.log.Info("csv import finished",
		logger.Int("imported", result.Imported),
		logger.Int("skipped", result.Skipped))
	return result, nil
}

// columnIndex maps recognized column names (lowercased, separators ignored)
// to their positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "")
		key = strings.ReplaceAll(key, "_", "")
		cols[key] = i
	}
	return cols
}

func rowToInput(row []string, cols map[string]int) (store.RecordInput, bool) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	input := store.RecordInput{
		Company:     get("company"),
		Role:        get("role"),
		AppliedDate: get("applieddate"),
	}
	if input.Company == "" || input.Role == "" {
		return store.RecordInput{}, false
	}

	if status, ok := models.ParseStatus(strings.ToLower(get("status"))); ok {
		input.Status = status
	}
	if note := get("note"); note != "" {
		input.Notes = []string{note}
	}
	return input, true
}
