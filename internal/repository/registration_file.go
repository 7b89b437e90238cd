package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/iliyamo/festival-registration/internal/model"
)

// RegistrationsFile is the known-emails document used without a database.
const RegistrationsFile = "registrations.json"

type emailDocument struct {
	Emails []string `json:"emails"`
}

// FileRegistrationStore is the degraded RegistrationStore used when no
// database is configured.  Only the lower-cased email of each registration is
// kept, so List yields email-only rows and GetByNumber never matches.
type FileRegistrationStore struct {
	path string
	mu   sync.Mutex
}

func NewFileRegistrationStore(dataDir string) *FileRegistrationStore {
	return &FileRegistrationStore{path: filepath.Join(dataDir, RegistrationsFile)}
}

func (s *FileRegistrationStore) load() ([]string, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registrations: %w", err)
	}
	var doc emailDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse registrations: %w", err)
	}
	return doc.Emails, nil
}

func (s *FileRegistrationStore) save(emails []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if emails == nil {
		emails = []string{}
	}
	b, err := json.MarshalIndent(emailDocument{Emails: emails}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func contains(emails []string, email string) bool {
	for _, e := range emails {
		if normalizeEmail(e) == email {
			return true
		}
	}
	return false
}

func (s *FileRegistrationStore) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emails, err := s.load()
	if err != nil {
		return false, err
	}
	return contains(emails, normalizeEmail(email)), nil
}

func (s *FileRegistrationStore) Create(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	emails, err := s.load()
	if err != nil {
		return err
	}
	reg.Email = normalizeEmail(reg.Email)
	if contains(emails, reg.Email) {
		return ErrEmailExists
	}
	return s.save(append(emails, reg.Email))
}

func (s *FileRegistrationStore) List(ctx context.Context) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	emails, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Registration, 0, len(emails))
	for _, e := range emails {
		out = append(out, model.Registration{Email: e})
	}
	return out, nil
}

func (s *FileRegistrationStore) GetByNumber(ctx context.Context, number string) (model.Registration, error) {
	return model.Registration{}, ErrNotFound
}
