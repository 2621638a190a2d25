package scheduler

import (
	"database/sql"
	"testing"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPlanStore struct {
	mock.Mock
}

func (m *mockPlanStore) GetActiveTreatmentPlanByPatient(patientID int64) (*domain.TreatmentPlan, error) {
	args := m.Called(patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TreatmentPlan), args.Error(1)
}

type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) GetSessionsByPatientAndRange(patientID int64, from, to time.Time) ([]*domain.TherapySession, error) {
	args := m.Called(patientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TherapySession), args.Error(1)
}

func (m *mockSessionStore) ReplaceSessionsByPatientAndRange(patientID int64, from, to time.Time, sessions []*domain.TherapySession) error {
	args := m.Called(patientID, from, to, sessions)
	return args.Error(0)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) NotifyScheduleChanged(patientID int64, patientName string, therapistIDs []string, weekStart time.Time) error {
	args := m.Called(patientID, patientName, therapistIDs, weekStart)
	return args.Error(0)
}

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // lunes

func testPlan() *domain.TreatmentPlan {
	return &domain.TreatmentPlan{
		ID:          10,
		PatientID:   1,
		PatientName: "Ana Garcia",
		StartDate:   monday.AddDate(0, 0, -7),
		EndDate:     monday.AddDate(0, 0, 60),
		Status:      domain.PlanActivo,
		RequiredWeeklyHours: map[domain.TherapyType]int{
			domain.Fisioterapia:       4,
			domain.TerapiaOcupacional: 3,
		},
	}
}

func session(therapyType domain.TherapyType, day, minutes int) *domain.TherapySession {
	return &domain.TherapySession{
		PatientID:       1,
		TherapistID:     "carlos.lopez1",
		TherapyType:     therapyType,
		StartDateTime:   monday.AddDate(0, 0, day).Add(9 * time.Hour),
		DurationMinutes: minutes,
	}
}

func newEngine(t *testing.T) (*Engine, *mockPlanStore, *mockSessionStore, *mockDispatcher) {
	t.Helper()
	plans := &mockPlanStore{}
	sessions := &mockSessionStore{}
	dispatcher := &mockDispatcher{}
	return New(plans, sessions, dispatcher), plans, sessions, dispatcher
}

func TestPlanWeek_NoActivePlan(t *testing.T) {
	engine, plans, sessions, _ := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(nil, sql.ErrNoRows)

	report, err := engine.PlanWeek(1, monday, nil)

	assert.Nil(t, report)
	assert.ErrorIs(t, err, ErrPlanNotFound)
	sessions.AssertNotCalled(t, "ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanWeek_EmptyProposal(t *testing.T) {
	engine, plans, sessions, _ := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(testPlan(), nil)

	report, err := engine.PlanWeek(1, monday, nil)

	require.NoError(t, err)
	assert.False(t, report.Committed)
	assert.Len(t, report.Alerts, 2)
	for _, alert := range report.Alerts {
		assert.Equal(t, domain.SeverityCritical, alert.Severity)
	}
	// el reporte es consultivo: no se toca el cronograma
	sessions.AssertNotCalled(t, "ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanWeek_ExactCoverage(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(testPlan(), nil)

	proposed := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 120),
		session(domain.Fisioterapia, 2, 120),
		session(domain.TerapiaOcupacional, 1, 90),
		session(domain.TerapiaOcupacional, 3, 90),
	}

	sunday := monday.AddDate(0, 0, 6)
	sessions.On("ReplaceSessionsByPatientAndRange", int64(1), monday, sunday, proposed).Return(nil)
	dispatcher.On("NotifyScheduleChanged", int64(1), "Ana Garcia", []string{"carlos.lopez1"}, monday).Return(nil)

	report, err := engine.PlanWeek(1, monday, proposed)

	require.NoError(t, err)
	assert.True(t, report.Committed)
	assert.Empty(t, report.Alerts)
	assert.Equal(t, 4, report.AssignedHoursByType[domain.Fisioterapia])
	assert.Equal(t, 3, report.AssignedHoursByType[domain.TerapiaOcupacional])
	sessions.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestPlanWeek_PartialCoverageWarns(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(testPlan(), nil)

	// fisioterapia completa, terapia ocupacional 2 de 3 horas
	proposed := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 240),
		session(domain.TerapiaOcupacional, 1, 120),
	}

	sessions.On("ReplaceSessionsByPatientAndRange", int64(1), monday, monday.AddDate(0, 0, 6), proposed).Return(nil)
	dispatcher.On("NotifyScheduleChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := engine.PlanWeek(1, monday, proposed)

	require.NoError(t, err)
	// las advertencias no impiden guardar
	assert.True(t, report.Committed)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.SeverityWarning, report.Alerts[0].Severity)
	assert.Equal(t, domain.TerapiaOcupacional, report.Alerts[0].TherapyType)
}

func TestPlanWeek_SurplusIsInfo(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plan := testPlan()
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{domain.Fisioterapia: 2}
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(plan, nil)

	proposed := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 120),
		session(domain.Fisioterapia, 4, 60),
	}

	sessions.On("ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dispatcher.On("NotifyScheduleChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := engine.PlanWeek(1, monday, proposed)

	require.NoError(t, err)
	assert.True(t, report.Committed)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.SeverityInfo, report.Alerts[0].Severity)
}

func TestPlanWeek_UnrequiredTypeNoAlert(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plan := testPlan()
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{domain.Fisioterapia: 1}
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(plan, nil)

	// hidroterapia no esta en el plan: no restringe ni alerta
	proposed := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 60),
		session(domain.Hidroterapia, 2, 60),
	}

	sessions.On("ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dispatcher.On("NotifyScheduleChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := engine.PlanWeek(1, monday, proposed)

	require.NoError(t, err)
	assert.True(t, report.Committed)
	assert.Empty(t, report.Alerts)
}

func TestPlanWeek_SessionOutsideWeekRejectsBatch(t *testing.T) {
	engine, plans, sessions, _ := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(testPlan(), nil)

	proposed := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 240),
		session(domain.TerapiaOcupacional, 7, 180), // lunes siguiente
	}

	report, err := engine.PlanWeek(1, monday, proposed)

	assert.Nil(t, report)
	var rangeErr *OutOfWeekRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, monday.AddDate(0, 0, 7), rangeErr.Date)
	sessions.AssertNotCalled(t, "ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanWeek_AcceptsSessionWithOtherOffset(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plan := testPlan()
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{domain.Fisioterapia: 1}
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(plan, nil)

	// domingo de la semana, expresado en otro huso horario: la
	// pertenencia se decide por la fecha calendario de la sesion
	lima := time.FixedZone("-05", -5*60*60)
	proposed := []*domain.TherapySession{{
		PatientID:       1,
		TherapistID:     "carlos.lopez1",
		TherapyType:     domain.Fisioterapia,
		StartDateTime:   time.Date(2026, 3, 8, 20, 0, 0, 0, lima),
		DurationMinutes: 60,
	}}

	sessions.On("ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dispatcher.On("NotifyScheduleChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	report, err := engine.PlanWeek(1, monday, proposed)

	require.NoError(t, err)
	assert.True(t, report.Committed)
	assert.Empty(t, report.Alerts)
	sessions.AssertExpectations(t)
}

func TestPlanWeek_UncataloguedRequiredTypeStillAlerts(t *testing.T) {
	engine, plans, sessions, _ := newEngine(t)
	plan := testPlan()
	// un tipo persistido fuera del catalogo sigue exigiendo horas
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{
		domain.TherapyType("Musicoterapia"): 2,
	}
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(plan, nil)

	report, err := engine.PlanWeek(1, monday, nil)

	require.NoError(t, err)
	assert.False(t, report.Committed)
	require.Len(t, report.Alerts, 1)
	assert.Equal(t, domain.SeverityCritical, report.Alerts[0].Severity)
	assert.Equal(t, domain.TherapyType("Musicoterapia"), report.Alerts[0].TherapyType)
	sessions.AssertNotCalled(t, "ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanWeek_NotifyFailureDoesNotFail(t *testing.T) {
	engine, plans, sessions, dispatcher := newEngine(t)
	plan := testPlan()
	plan.RequiredWeeklyHours = map[domain.TherapyType]int{domain.Fisioterapia: 1}
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(plan, nil)

	proposed := []*domain.TherapySession{session(domain.Fisioterapia, 0, 60)}

	sessions.On("ReplaceSessionsByPatientAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dispatcher.On("NotifyScheduleChanged", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	report, err := engine.PlanWeek(1, monday, proposed)

	// la notificacion es fire-and-forget: el commit ya ocurrio
	require.NoError(t, err)
	assert.True(t, report.Committed)
}

func TestPlanWeek_NormalizesWeekStart(t *testing.T) {
	engine, plans, _, _ := newEngine(t)
	plans.On("GetActiveTreatmentPlanByPatient", int64(1)).Return(testPlan(), nil)

	// un jueves cualquiera de esa semana produce el mismo rango
	thursday := monday.AddDate(0, 0, 3)
	report, err := engine.PlanWeek(1, thursday, nil)

	require.NoError(t, err)
	assert.False(t, report.Committed)
}

func TestAssignedHoursByType_TruncatesMinutes(t *testing.T) {
	sessions := []*domain.TherapySession{
		session(domain.Fisioterapia, 0, 25),
		session(domain.Fisioterapia, 1, 25),
		session(domain.Fisioterapia, 2, 25),
		session(domain.Psicologia, 3, 59),
	}

	hours := AssignedHoursByType(sessions)

	// 75 minutos son 1 hora: el resto se descarta
	assert.Equal(t, 1, hours[domain.Fisioterapia])
	assert.Equal(t, 0, hours[domain.Psicologia])
}

func TestWeekMonday(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{monday, monday},
		{monday.Add(15 * time.Hour), monday},
		{monday.AddDate(0, 0, 3), monday},                  // jueves
		{monday.AddDate(0, 0, 6), monday},                  // domingo
		{monday.AddDate(0, 0, 7), monday.AddDate(0, 0, 7)}, // lunes siguiente
	}

	for _, c := range cases {
		assert.Equal(t, c.want, WeekMonday(c.in), "entrada: %s", c.in)
	}
}

func TestGetWeekSessions_UsesNormalizedRange(t *testing.T) {
	engine, _, sessions, _ := newEngine(t)

	stored := []*domain.TherapySession{session(domain.Fisioterapia, 0, 60)}
	sessions.On("GetSessionsByPatientAndRange", int64(1), monday, monday.AddDate(0, 0, 6)).Return(stored, nil)

	got, err := engine.GetWeekSessions(1, monday.AddDate(0, 0, 5))

	require.NoError(t, err)
	assert.Equal(t, stored, got)
	sessions.AssertExpectations(t)
}
