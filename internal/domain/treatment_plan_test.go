package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validPlan() *TreatmentPlan {
	return &TreatmentPlan{
		PatientID: 1,
		StartDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		Status:    PlanActivo,
		RequiredWeeklyHours: map[TherapyType]int{
			Fisioterapia:       4,
			TerapiaOcupacional: 2,
		},
	}
}

func TestTreatmentPlan_TotalWeeklyHours(t *testing.T) {
	plan := validPlan()
	assert.Equal(t, 6, plan.TotalWeeklyHours())

	plan.RequiredWeeklyHours = map[TherapyType]int{}
	assert.Equal(t, 0, plan.TotalWeeklyHours())
}

func TestTreatmentPlan_IsValid(t *testing.T) {
	assert.True(t, validPlan().IsValid())

	// sin tipos de terapia
	plan := validPlan()
	plan.RequiredWeeklyHours = map[TherapyType]int{}
	assert.False(t, plan.IsValid())

	// fecha de fin anterior a la de inicio
	plan = validPlan()
	plan.EndDate = plan.StartDate.AddDate(0, 0, -1)
	assert.False(t, plan.IsValid())

	// fechas sin definir
	plan = validPlan()
	plan.StartDate = time.Time{}
	assert.False(t, plan.IsValid())

	// un solo dia de vigencia es valido
	plan = validPlan()
	plan.EndDate = plan.StartDate
	assert.True(t, plan.IsValid())
}

func TestParseTherapyType(t *testing.T) {
	therapyType, err := ParseTherapyType("Terapia Ocupacional")
	assert.NoError(t, err)
	assert.Equal(t, TerapiaOcupacional, therapyType)

	_, err = ParseTherapyType("Quiropraxia")
	assert.Error(t, err)
}

func TestWeeklyComplianceReport_HasCriticalAlerts(t *testing.T) {
	report := &WeeklyComplianceReport{
		Alerts: []Alert{
			{Severity: SeverityWarning, TherapyType: Fisioterapia},
			{Severity: SeverityInfo, TherapyType: Psicologia},
		},
	}
	assert.False(t, report.HasCriticalAlerts())

	report.Alerts = append(report.Alerts, Alert{Severity: SeverityCritical, TherapyType: Hidroterapia})
	assert.True(t, report.HasCriticalAlerts())
}

func TestRecipientForRole(t *testing.T) {
	assert.Equal(t, RecipientMedico, RecipientForRole(RoleMedico))
	assert.Equal(t, RecipientTerapeuta, RecipientForRole(RoleTerapeuta))
	assert.Equal(t, RecipientAdmin, RecipientForRole(RoleAdministrador))
	assert.Equal(t, RecipientTodos, RecipientForRole(Role("otro")))
}
