package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/klauspost/compress/gzip"

	"log-analyzer/internal/models"
	"log-analyzer/internal/shared/filestorages"
)

var (
	ErrLogFileNotFound = errors.New("no log file found")
)

const logDateLayout = "20060102"

var logNameRe = regexp.MustCompile(`^nginx-access-ui\.log-(\d{8})(\.gz)?$`)

// LogSource finds and opens nginx access logs stored under one directory. Only files named
// nginx-access-ui.log-YYYYMMDD, optionally gzip compressed with a .gz suffix, are considered.
//
//go:generate mockgen -source=log_source.go -destination=./mocks/log_source_mock.go -package=mocks
type LogSource interface {
	// Latest returns the log file with the most recent date in its name.
	Latest(ctx context.Context) (*models.LogFile, error)
	// Open returns a reader over the decompressed content of file.
	Open(ctx context.Context, file *models.LogFile) (io.ReadCloser, error)
}

type logSource struct {
	fileStorage filestorages.FileStorage
}

func NewLogSource(fileStorage filestorages.FileStorage) LogSource {
	return &logSource{fileStorage: fileStorage}
}

func (s *logSource) Latest(ctx context.Context) (*models.LogFile, error) {
	names, err := s.fileStorage.List(ctx)
	if err != nil {
		if errors.Is(err, filestorages.ErrRootDirNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrLogFileNotFound, err)
		}
		return nil, fmt.Errorf("failed to list log directory: %w", err)
	}

	var latest *models.LogFile
	for _, name := range names {
		date, ok := parseLogDate(name)
		if !ok {
			continue
		}
		// names are sorted, so a plain file wins over its .gz twin of the same date
		if latest == nil || date.After(latest.Date) {
			latest = &models.LogFile{Name: name, Date: date}
		}
	}

	if latest == nil {
		return nil, ErrLogFileNotFound
	}
	return latest, nil
}

func (s *logSource) Open(ctx context.Context, file *models.LogFile) (io.ReadCloser, error) {
	readCloser, err := s.fileStorage.Get(ctx, file.Name)
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLogFileNotFound, file.Name)
		}
		return nil, fmt.Errorf("failed to open log file %s: %w", file.Name, err)
	}

	if !file.IsGzip() {
		return readCloser, nil
	}

	gzipReader, err := gzip.NewReader(readCloser)
	if err != nil {
		_ = readCloser.Close()
		return nil, fmt.Errorf("failed to read gzip header of %s: %w", file.Name, err)
	}
	return &gzipReadCloser{Reader: gzipReader, file: readCloser}, nil
}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	*gzip.Reader
	file io.Closer
}

func (r *gzipReadCloser) Close() error {
	return errors.Join(r.Reader.Close(), r.file.Close())
}

// parseLogDate extracts the date of a log file name; names that do not follow the log naming
// scheme or carry an impossible date are rejected.
func parseLogDate(name string) (time.Time, bool) {
	match := logNameRe.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, false
	}
	date, err := time.Parse(logDateLayout, match[1])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}
