package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/festival-registration/internal/document"
	"github.com/iliyamo/festival-registration/internal/model"
	"github.com/iliyamo/festival-registration/internal/repository"
	"github.com/iliyamo/festival-registration/internal/utils"
)

// ErrAlreadyRegistered is returned when the email is already present in the
// active registration store.
var ErrAlreadyRegistered = errors.New("email already registered")

// RegistrationInput is the public registration form.  Validation tags are
// enforced by the HTTP layer's validator.
type RegistrationInput struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Phone           string `json:"phone" validate:"omitempty,max=50"`
	City            string `json:"city" validate:"omitempty,max=100"`
	VehicleMake     string `json:"vehicleMake" validate:"required,max=100"`
	VehicleModel    string `json:"vehicleModel" validate:"required,max=100"`
	VehicleYear     int    `json:"vehicleYear" validate:"omitempty,min=1900,max=2100"`
	VehicleCategory string `json:"vehicleCategory" validate:"omitempty,max=50"`
	PlateNumber     string `json:"plateNumber" validate:"omitempty,max=32"`
	Notes           string `json:"notes" validate:"omitempty,max=2000"`
}

// RegistrationResult is returned to the participant.
type RegistrationResult struct {
	RegistrationNumber string `json:"registrationNumber"`
	EmailsSent         bool   `json:"emailsSent"`
}

// RegistrationService dedupes by email, persists to the single active store
// and emails a PDF confirmation.
type RegistrationService struct {
	Store     repository.RegistrationStore
	Notify    *Notifier
	EventName string
	Now       func() time.Time
	Log       echo.Logger
}

func (s *RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates a registration.  The duplicate check and the insert are
// separate steps; the store's own uniqueness guarantee closes the gap.
func (s *RegistrationService) Register(ctx context.Context, in RegistrationInput) (RegistrationResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.Store.EmailExists(ctx, email)
	if err != nil {
		return RegistrationResult{}, err
	}
	if exists {
		return RegistrationResult{}, ErrAlreadyRegistered
	}

	now := s.now()
	reg := model.Registration{
		ID:                 uuid.NewString(),
		RegistrationNumber: utils.NewRegistrationNumber(now),
		FirstName:          strings.TrimSpace(in.FirstName),
		LastName:           strings.TrimSpace(in.LastName),
		Email:              email,
		Phone:              strings.TrimSpace(in.Phone),
		City:               strings.TrimSpace(in.City),
		VehicleMake:        strings.TrimSpace(in.VehicleMake),
		VehicleModel:       strings.TrimSpace(in.VehicleModel),
		VehicleYear:        in.VehicleYear,
		VehicleCategory:    strings.ToLower(strings.TrimSpace(in.VehicleCategory)),
		PlateNumber:        strings.ToUpper(strings.TrimSpace(in.PlateNumber)),
		Notes:              strings.TrimSpace(in.Notes),
		CreatedAt:          now,
	}
	if err := s.create(ctx, &reg, now); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return RegistrationResult{}, ErrAlreadyRegistered
		}
		return RegistrationResult{}, err
	}

	pdf, err := document.RegistrationPDF(reg, s.EventName)
	if err != nil {
		s.Log.Errorf("registration %s: pdf: %v", reg.RegistrationNumber, err)
		pdf = nil
	}
	s.Notify.RegistrationConfirmed(ctx, reg, pdf, document.AttachmentName(reg))

	return RegistrationResult{RegistrationNumber: reg.RegistrationNumber, EmailsSent: s.Notify.Configured()}, nil
}

// numberAttempts bounds retries after a registration number collision.
const numberAttempts = 3

// create inserts reg, drawing a fresh registration number when the store
// reports the current one is taken.
func (s *RegistrationService) create(ctx context.Context, reg *model.Registration, now time.Time) error {
	var err error
	for i := 0; i < numberAttempts; i++ {
		if i > 0 {
			reg.RegistrationNumber = utils.NewRegistrationNumber(now)
		}
		if err = s.Store.Create(ctx, reg); !errors.Is(err, repository.ErrDuplicateNumber) {
			return err
		}
	}
	return fmt.Errorf("registration number: %w", err)
}

// List returns every registration in the active store.
func (s *RegistrationService) List(ctx context.Context) ([]model.Registration, error) {
	return s.Store.List(ctx)
}

// PDF re-renders the confirmation for number.
func (s *RegistrationService) PDF(ctx context.Context, number string) ([]byte, string, error) {
	reg, err := s.Store.GetByNumber(ctx, number)
	if err != nil {
		return nil, "", err
	}
	b, err := document.RegistrationPDF(reg, s.EventName)
	if err != nil {
		return nil, "", err
	}
	return b, document.AttachmentName(reg), nil
}
