package stores

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"log-analyzer/internal/shared/filestorages"
)

const timestampKey = "log_analyzer.ts"

var (
	ErrTimestampNotFound = errors.New("timestamp not found")
)

// TimestampStore records the completion time of the last successful run, for monitoring.
// The file holds the unix time in seconds with a fractional part.
//
//go:generate mockgen -source=timestamp_store.go -destination=./mocks/timestamp_store_mock.go -package=mocks
type TimestampStore interface {
	Put(ctx context.Context, at time.Time) error
	Get(ctx context.Context) (time.Time, error)
}

type timestampStore struct {
	fileStorage filestorages.FileStorage
}

func NewTimestampStore(fileStorage filestorages.FileStorage) TimestampStore {
	return &timestampStore{fileStorage: fileStorage}
}

func (s *timestampStore) Put(ctx context.Context, at time.Time) error {
	seconds := float64(at.UnixMicro()) / 1e6
	value := strconv.FormatFloat(seconds, 'f', -1, 64)
	_, err := s.fileStorage.Put(ctx, timestampKey, strings.NewReader(value), filestorages.PutOptions{AllowOverwrite: true})
	if err != nil {
		return fmt.Errorf("failed to put timestamp: %w", err)
	}
	return nil
}

func (s *timestampStore) Get(ctx context.Context) (time.Time, error) {
	readCloser, err := s.fileStorage.Get(ctx, timestampKey)
	if err != nil {
		if errors.Is(err, filestorages.ErrFileNotFound) {
			return time.Time{}, ErrTimestampNotFound
		}
		return time.Time{}, fmt.Errorf("failed to get timestamp: %w", err)
	}
	defer readCloser.Close()

	data, err := io.ReadAll(readCloser)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read timestamp: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(math.Round(frac*1e6))*int64(time.Microsecond)).UTC(), nil
}
