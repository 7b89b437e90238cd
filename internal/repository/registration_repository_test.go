package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/suite"

	"github.com/iliyamo/festival-registration/internal/model"
)

type RegistrationRepoSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo *RegistrationRepo
	ctx  context.Context
}

func (s *RegistrationRepoSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db, s.mock = db, mock
	s.repo = NewRegistrationRepo(db)
	s.ctx = context.Background()
}

func (s *RegistrationRepoSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func (s *RegistrationRepoSuite) TestEmailExistsIsCaseInsensitive() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registrations WHERE email=?")).
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	ok, err := s.repo.EmailExists(s.ctx, "  Jane@X.com ")
	s.NoError(err)
	s.True(ok)
}

func (s *RegistrationRepoSuite) TestEmailExistsNoRows() {
	s.mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM registrations")).
		WithArgs("new@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	ok, err := s.repo.EmailExists(s.ctx, "new@x.com")
	s.NoError(err)
	s.False(ok)
}

func (s *RegistrationRepoSuite) TestCreateLowercasesEmail() {
	reg := &model.Registration{ID: "u1", RegistrationNumber: "AF-2025-ABC123", FirstName: "Jane",
		LastName: "Doe", Email: "JANE@X.COM", VehicleMake: "Toyota", VehicleModel: "Hilux",
		CreatedAt: time.Now().UTC()}
	s.mock.ExpectExec("INSERT INTO registrations").
		WithArgs("u1", "AF-2025-ABC123", "Jane", "Doe", "jane@x.com", "", "", "Toyota", "Hilux",
			0, "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	s.NoError(s.repo.Create(s.ctx, reg))
	s.Equal("jane@x.com", reg.Email)
}

func (s *RegistrationRepoSuite) TestCreateDuplicateMapsToErrEmailExists() {
	s.mock.ExpectExec("INSERT INTO registrations").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := s.repo.Create(s.ctx, &model.Registration{Email: "jane@x.com"})
	s.ErrorIs(err, ErrEmailExists)
}

func (s *RegistrationRepoSuite) TestCreateNumberCollisionIsNotAnEmailConflict() {
	for _, msg := range []string{
		"Duplicate entry 'AF-2025-ABC123' for key 'registrations.registration_number'",
		"Duplicate entry 'AF-2025-ABC123' for key 'registration_number'",
	} {
		s.mock.ExpectExec("INSERT INTO registrations").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: msg})

		err := s.repo.Create(s.ctx, &model.Registration{Email: "jane@x.com", RegistrationNumber: "AF-2025-ABC123"})
		s.ErrorIs(err, ErrDuplicateNumber)
		s.NotErrorIs(err, ErrEmailExists)
	}

	s.mock.ExpectExec("INSERT INTO registrations").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'jane@x.com' for key 'registrations.email'"})
	s.ErrorIs(s.repo.Create(s.ctx, &model.Registration{Email: "jane@x.com"}), ErrEmailExists)
}

func (s *RegistrationRepoSuite) TestCreateOtherErrorPassesThrough() {
	s.mock.ExpectExec("INSERT INTO registrations").WillReturnError(errors.New("connection reset"))

	err := s.repo.Create(s.ctx, &model.Registration{Email: "jane@x.com"})
	s.Error(err)
	s.NotErrorIs(err, ErrEmailExists)
}

func registrationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "registration_number", "first_name", "last_name", "email",
		"phone", "city", "vehicle_make", "vehicle_model", "vehicle_year", "vehicle_category",
		"plate_number", "notes", "created_at"})
}

func (s *RegistrationRepoSuite) TestList() {
	now := time.Now().UTC()
	s.mock.ExpectQuery("SELECT (.+) FROM registrations ORDER BY created_at DESC").
		WillReturnRows(registrationRows().
			AddRow("u2", "AF-2025-000002", "John", "Roe", "john@x.com", "", "Arusha", "Nissan", "Patrol", 1998, "classic", "T123", "", now).
			AddRow("u1", "AF-2025-000001", "Jane", "Doe", "jane@x.com", "+255", "Dar", "Toyota", "Hilux", 2020, "4x4", "", "", now))

	list, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("AF-2025-000002", list[0].RegistrationNumber)
	s.Equal(1998, list[0].VehicleYear)
	s.Equal("4x4", list[1].VehicleCategory)
}

func (s *RegistrationRepoSuite) TestGetByNumberNotFound() {
	s.mock.ExpectQuery("SELECT (.+) FROM registrations WHERE registration_number=\\?").
		WithArgs("AF-2025-NOPE00").
		WillReturnRows(registrationRows())

	_, err := s.repo.GetByNumber(s.ctx, "AF-2025-NOPE00")
	s.ErrorIs(err, ErrNotFound)
}

func TestRegistrationRepoSuite(t *testing.T) {
	suite.Run(t, new(RegistrationRepoSuite))
}
