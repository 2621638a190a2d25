package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Repository) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return db, mock, NewRepository(cfg, db)
}

// un solo tipo de terapia para que el orden de insercion de los
// detalles sea deterministico
func planFixture() *domain.TreatmentPlan {
	return &domain.TreatmentPlan{
		PatientID:    1,
		StartDate:    time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		Status:       domain.PlanActivo,
		Observations: "post ACV",
		RequiredWeeklyHours: map[domain.TherapyType]int{
			domain.Fisioterapia: 4,
		},
	}
}

func TestCreateTreatmentPlan_CommitsPlanAndDetails(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	plan := planFixture()
	createdAt := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO plan_tratamiento`).
		WithArgs(plan.PatientID, plan.StartDate, plan.EndDate, plan.Status, plan.Observations).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(7), createdAt, int32(1)))
	mock.ExpectExec(`INSERT INTO plan_detalle`).
		WithArgs(int64(7), domain.Fisioterapia, 4).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.CreateTreatmentPlan(plan)

	require.NoError(t, err)
	assert.Equal(t, int64(7), plan.ID)
	assert.Equal(t, int32(1), plan.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTreatmentPlan_RollsBackOnDetailError(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	plan := planFixture()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO plan_tratamiento`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(7), time.Now(), int32(1)))
	mock.ExpectExec(`INSERT INTO plan_detalle`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.CreateTreatmentPlan(plan)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTreatmentPlan_ReplacesDetails(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	plan := planFixture()
	plan.ID = 7
	plan.Version = 1
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{domain.Psicologia: 2}

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE plan_tratamiento`).
		WithArgs(plan.StartDate, plan.EndDate, plan.Status, plan.Observations, plan.ID, int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(int32(2)))
	// reemplazo total del detalle: se borra todo y se reinserta el mapa
	mock.ExpectExec(`DELETE FROM plan_detalle`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO plan_detalle`).
		WithArgs(int64(7), domain.Psicologia, 2).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.UpdateTreatmentPlan(plan)

	require.NoError(t, err)
	assert.Equal(t, int32(2), plan.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTreatmentPlan_VersionConflict(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	plan := planFixture()
	plan.ID = 7
	plan.Version = 2

	mock.ExpectBegin()
	// otra transaccion ya incremento la version: el UPDATE no devuelve filas
	mock.ExpectQuery(`UPDATE plan_tratamiento`).
		WithArgs(plan.StartDate, plan.EndDate, plan.Status, plan.Observations, plan.ID, plan.Version).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.UpdateTreatmentPlan(plan)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveTreatmentPlanByPatient(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	createdAt := time.Now()
	startDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM plan_tratamiento pt`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fecha_inicio", "fecha_fin", "estado", "observaciones", "created_at", "version", "nombre"}).
			AddRow(int64(7), startDate, endDate, "Activo", "post ACV", createdAt, int32(1), "Ana Garcia"))
	mock.ExpectQuery(`FROM plan_detalle`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"tipo_terapia", "horas_semanales"}).
			AddRow("Fisioterapia", 4).
			AddRow("Terapia Ocupacional", 2))

	plan, err := repo.GetActiveTreatmentPlanByPatient(1)

	require.NoError(t, err)
	assert.Equal(t, int64(7), plan.ID)
	assert.Equal(t, "Ana Garcia", plan.PatientName)
	assert.Equal(t, domain.PlanActivo, plan.Status)
	assert.Equal(t, map[domain.TherapyType]int{
		domain.Fisioterapia:       4,
		domain.TerapiaOcupacional: 2,
	}, plan.RequiredWeeklyHours)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActiveTreatmentPlanByPatient_NotFound(t *testing.T) {
	db, mock, repo := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM plan_tratamiento pt`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetActiveTreatmentPlanByPatient(1)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
