package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUsernameFromName(t *testing.T) {
	username := GenerateUsernameFromName("Ana Garcia")
	assert.Regexp(t, regexp.MustCompile(`^ana\.garcia\d{1,3}$`), username)
}

func TestGenerateRandomOTP(t *testing.T) {
	otp := GenerateRandomOTP()
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp)
}

func TestGenerateRandomPassword(t *testing.T) {
	assert.Len(t, GenerateRandomPassword(12), 12)
}

func TestGenerateRandomTreatmentPlan_IsValid(t *testing.T) {
	patient := GenerateRandomPatient()
	patient.ID = 1

	for i := 0; i < 20; i++ {
		plan := GenerateRandomTreatmentPlan(patient)
		assert.True(t, plan.IsValid())
		assert.Equal(t, patient.ID, plan.PatientID)
	}
}

func TestGenerateWeekSessions_CoversRequiredHours(t *testing.T) {
	patient := GenerateRandomPatient()
	patient.ID = 1
	plan := GenerateRandomTreatmentPlan(patient)

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	sessions := GenerateWeekSessions(plan, []string{"ana.garcia1", "luis.perez2"}, monday)

	// las sesiones generadas cubren exactamente las horas del plan
	minutes := map[domain.TherapyType]int{}
	for _, session := range sessions {
		require.False(t, session.StartDateTime.Before(monday))
		require.True(t, session.StartDateTime.Before(monday.AddDate(0, 0, 7)))
		minutes[session.TherapyType] += session.DurationMinutes
	}

	for therapyType, hours := range plan.RequiredWeeklyHours {
		assert.Equal(t, hours*60, minutes[therapyType], "tipo: %s", therapyType)
	}
}
