package stores

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/filestorages"
)

var (
	ErrReportAlreadyExists = errors.New("report already exists")
	ErrReportNotFound      = errors.New("report not found")
	ErrTemplateNotFound    = errors.New("report template not found")
)

// ReportStore publishes rendered reports into the report directory. Publish never replaces an
// existing report: the rendered page is written to a temp file and linked into place, so a
// concurrent run for the same date fails with ErrReportAlreadyExists and readers never observe
// a partially written report.
//
//go:generate mockgen -source=report_store.go -destination=./mocks/report_store_mock.go -package=mocks
type ReportStore interface {
	Exists(ctx context.Context, date time.Time) (bool, error)
	// Publish renders rows into the report template and stores the page for date.
	Publish(ctx context.Context, date time.Time, rows []models.ReportRow) (string, error)
	Get(ctx context.Context, date time.Time) (io.ReadCloser, error)
	// List returns the published reports, most recent first.
	List(ctx context.Context) ([]models.ReportInfo, error)
}

type reportStore struct {
	reportStorage   filestorages.FileStorage
	templateStorage filestorages.FileStorage
	templateKey     string
}

func NewReportStore(reportStorage filestorages.FileStorage, templateStorage filestorages.FileStorage, templateKey string) ReportStore {
	return &reportStore{
		reportStorage:   reportStorage,
		templateStorage: templateStorage,
		templateKey:     templateKey,
	}
}

func (s *reportStore) Exists(ctx context.Context, date time.Time) (bool, error) {
	exists, err := s.reportStorage.Exists(ctx, models.ReportKey(date))
	if err != nil {
		return false, fmt.Errorf("failed to check report: %w", err)
	}
	return exists, nil
}

func (s *reportStore) Publish(ctx context.Context, date time.Time, rows []models.ReportRow) (string, error) {
	page, err := s.render(ctx, rows)
	if err != nil {
		return "", err
	}

	key := models.ReportKey(date)
	_, err = s.reportStorage.Put(ctx, key, strings.NewReader(page), filestorages.PutOptions{AllowOverwrite: false})
	if err != nil {
		if errors.Is(err, filestorages.ErrFileAlreadyExists) {
			return "", ErrReportAlreadyExists
		}
		return "", fmt.Errorf("failed to put report: %w", err)
	}
	return key, nil
}

func (s *reportStore) Get(ctx context.Context, date time.Time) (io.ReadCloser, error) {
	readCloser, err := s.reportStorage.Get(ctx, models.ReportKey(date))
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return readCloser, nil
}

func (s *reportStore) List(ctx context.Context) ([]models.ReportInfo, error) {
	names, err := s.reportStorage.List(ctx)
	if err != nil {
		if errors.Is(err, filestorages.ErrRootDirNotFound) {
			return []models.ReportInfo{}, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]models.ReportInfo, 0, len(names))
	for _, name := range names {
		date, ok := models.ParseReportKey(name)
		if !ok {
			continue
		}
		reports = append(reports, models.NewReportInfo(date))
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Date.After(reports[j].Date)
	})
	return reports, nil
}

// render substitutes the JSON encoded rows for $table_json (or ${table_json}) in the template.
// "$$" collapses to a literal "$"; any other placeholder is left untouched.
func (s *reportStore) render(ctx context.Context, rows []models.ReportRow) (string, error) {
	readCloser, err := s.templateStorage.Get(ctx, s.templateKey)
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, s.templateKey)
		}
		return "", fmt.Errorf("failed to open report template: %w", err)
	}
	defer readCloser.Close()

	var template bytes.Buffer
	if _, err := io.Copy(&template, readCloser); err != nil {
		return "", fmt.Errorf("failed to read report template: %w", err)
	}

	if rows == nil {
		rows = []models.ReportRow{}
	}
	tableJSON, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report rows: %w", err)
	}

	replacer := strings.NewReplacer(
		"$$", "$",
		"${table_json}", string(tableJSON),
		"$table_json", string(tableJSON),
	)
	return replacer.Replace(template.String()), nil
}
