package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	weekFrom = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	weekTo   = weekFrom.AddDate(0, 0, 6)
)

func sessionFixture(day int) *domain.TherapySession {
	return &domain.TherapySession{
		TherapistID:     "carlos.lopez1",
		TherapyType:     domain.Fisioterapia,
		StartDateTime:   weekFrom.AddDate(0, 0, day).Add(9 * time.Hour),
		DurationMinutes: 60,
	}
}

func TestReplaceSessionsByPatientAndRange_Commits(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	sessions := []*domain.TherapySession{sessionFixture(0), sessionFixture(2)}

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM sesion`).
		WithArgs(int64(1), weekFrom, weekTo).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO sesion`).
		WithArgs(int64(1), sessions[0].TherapistID, sessions[0].TherapyType, sessions[0].StartDateTime, sessions[0].DurationMinutes).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery(`INSERT INTO sesion`).
		WithArgs(int64(1), sessions[1].TherapistID, sessions[1].TherapyType, sessions[1].StartDateTime, sessions[1].DurationMinutes).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	err := repo.ReplaceSessionsByPatientAndRange(1, weekFrom, weekTo, sessions)

	require.NoError(t, err)
	assert.Equal(t, int64(100), sessions[0].ID)
	assert.Equal(t, int64(101), sessions[1].ID)
	assert.Equal(t, int64(1), sessions[0].PatientID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSessionsByPatientAndRange_RollsBackOnInsertError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	sessions := []*domain.TherapySession{sessionFixture(0), sessionFixture(2)}

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM sesion`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO sesion`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	// la segunda insercion falla: no debe quedar ni la primera
	mock.ExpectQuery(`INSERT INTO sesion`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceSessionsByPatientAndRange(1, weekFrom, weekTo, sessions)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceSessionsByPatientAndRange_EmptySetClearsWeek(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`pg_advisory_xact_lock`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM sesion`).
		WithArgs(int64(1), weekFrom, weekTo).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectCommit()

	err := repo.ReplaceSessionsByPatientAndRange(1, weekFrom, weekTo, nil)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionsByPatientAndRange(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	start := weekFrom.Add(9 * time.Hour)
	mock.ExpectQuery(`FROM sesion`).
		WithArgs(int64(1), weekFrom, weekTo).
		WillReturnRows(sqlmock.NewRows([]string{"id", "paciente_id", "terapeuta", "tipo_terapia", "fecha_hora", "duracion"}).
			AddRow(int64(100), int64(1), "carlos.lopez1", "Fisioterapia", start, 60))

	sessions, err := repo.GetSessionsByPatientAndRange(1, weekFrom, weekTo)

	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.Fisioterapia, sessions[0].TherapyType)
	assert.Equal(t, 60, sessions[0].DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionsByTherapistAndDate(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM sesion`).
		WithArgs("carlos.lopez1", weekFrom).
		WillReturnRows(sqlmock.NewRows([]string{"id", "paciente_id", "terapeuta", "tipo_terapia", "fecha_hora", "duracion"}))

	sessions, err := repo.GetSessionsByTherapistAndDate("carlos.lopez1", weekFrom)

	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
