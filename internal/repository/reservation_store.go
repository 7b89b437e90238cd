package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iliyamo/festival-registration/internal/model"
)

// ReservationStore persists the whole reservation collection as one unit.
// Callers read everything, mutate their copy and write everything back; the
// store itself performs no locking or conflict detection.
type ReservationStore interface {
	Ensure(ctx context.Context) error
	ReadAll(ctx context.Context) ([]model.Reservation, error)
	WriteAll(ctx context.Context, list []model.Reservation) error
}

// reservationDocument is the on-disk container.
type reservationDocument struct {
	Reservations []model.Reservation `json:"reservations"`
}

// JSONFileStore keeps reservations in a single JSON document on disk.
type JSONFileStore struct {
	path string
}

// ReservationsFile is the document name inside the data directory.
const ReservationsFile = "reservations.json"

func NewJSONFileStore(dataDir string) *JSONFileStore {
	return &JSONFileStore{path: filepath.Join(dataDir, ReservationsFile)}
}

// Path returns the location of the backing document.
func (s *JSONFileStore) Path() string { return s.path }

// Ensure creates the data directory and an empty document when the file does
// not exist yet.  An existing file is left untouched.
func (s *JSONFileStore) Ensure(ctx context.Context) error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return s.WriteAll(ctx, nil)
}

// ReadAll parses the full document.  A missing file reads as an empty
// collection; a malformed one is an error.
func (s *JSONFileStore) ReadAll(ctx context.Context) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.Reservation{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reservations: %w", err)
	}
	var doc reservationDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse reservations: %w", err)
	}
	if doc.Reservations == nil {
		doc.Reservations = []model.Reservation{}
	}
	return doc.Reservations, nil
}

// WriteAll overwrites the document with list in a single write call.
func (s *JSONFileStore) WriteAll(ctx context.Context, list []model.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if list == nil {
		list = []model.Reservation{}
	}
	b, err := json.MarshalIndent(reservationDocument{Reservations: list}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode reservations: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("write reservations: %w", err)
	}
	return nil
}
