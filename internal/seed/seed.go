// Package seed carga un conjunto de datos de demostracion coherente:
// terapeutas, pacientes con plan activo y el cronograma de la semana
// actual ya planificado.
package seed

import (
	"log/slog"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/sigcr-dev/rehab-manager/backend/internal/repository"
	"github.com/sigcr-dev/rehab-manager/backend/internal/scheduler"
	"github.com/sigcr-dev/rehab-manager/backend/internal/utils"
)

const demoPatients = 8

func SeedDemoData(repo *repository.Repository, seedPassword string) {
	// terapeutas de demostracion
	therapistIDs := []string{}
	for i := 0; i < 5; i++ {
		user, err := utils.GenerateRandomUser(seedPassword, "sigcr.local")
		if err != nil {
			slog.Error("no se pudo generar el terapeuta", "error", err)
			return
		}
		user.Role = domain.RoleTerapeuta

		if err := repo.CreateUser(user); err != nil {
			slog.Error("no se pudo insertar el terapeuta", "error", err)
			continue
		}
		therapistIDs = append(therapistIDs, user.Username)
	}
	if len(therapistIDs) == 0 {
		slog.Error("no quedo ningun terapeuta insertado")
		return
	}

	monday := scheduler.WeekMonday(time.Now())

	inserted := 0
	for i := 0; i < demoPatients; i++ {
		patient := utils.GenerateRandomPatient()
		if err := repo.CreatePatient(patient); err != nil {
			slog.Error("no se pudo insertar el paciente", "error", err)
			continue
		}

		plan := utils.GenerateRandomTreatmentPlan(patient)
		if err := repo.CreateTreatmentPlan(plan); err != nil {
			slog.Error("no se pudo insertar el plan", "patientID", patient.ID, "error", err)
			continue
		}

		sessions := utils.GenerateWeekSessions(plan, therapistIDs, monday)
		if err := repo.ReplaceSessionsByPatientAndRange(patient.ID, monday, monday.AddDate(0, 0, 6), sessions); err != nil {
			slog.Error("no se pudo insertar el cronograma", "patientID", patient.ID, "error", err)
			continue
		}

		inserted++
	}

	slog.Info("datos de demostracion cargados", "patients", inserted, "therapists", len(therapistIDs))
}
