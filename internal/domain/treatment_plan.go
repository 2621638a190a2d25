package domain

import "time"

type PlanStatus string

const (
	PlanActivo     PlanStatus = "Activo"
	PlanCompletado PlanStatus = "Completado"
	PlanSuspendido PlanStatus = "Suspendido"
)

func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanActivo, PlanCompletado, PlanSuspendido:
		return true
	}
	return false
}

// TreatmentPlan define las horas semanales requeridas por tipo de
// terapia para un paciente. RequiredWeeklyHours no tiene identidad
// propia: se persiste y se reemplaza siempre junto con el plan.
type TreatmentPlan struct {
	ID                  int64               `json:"id"`
	PatientID           int64               `json:"patientID"`
	PatientName         string              `json:"patientName"` // copia desnormalizada para visualizacion
	StartDate           time.Time           `json:"startDate"`
	EndDate             time.Time           `json:"endDate"`
	Status              PlanStatus          `json:"status"`
	Observations        string              `json:"observations"`
	RequiredWeeklyHours map[TherapyType]int `json:"requiredWeeklyHours"`
	CreatedAt           time.Time           `json:"createdAt"`
	Version             int32               `json:"-"`
}

// TotalWeeklyHours suma las horas semanales de todos los tipos de
// terapia del plan.
func (p *TreatmentPlan) TotalWeeklyHours() int {
	total := 0
	for _, hours := range p.RequiredWeeklyHours {
		total += hours
	}
	return total
}

// IsValid indica si el plan puede persistirse: al menos un tipo de
// terapia, total de horas positivo y rango de fechas coherente.
func (p *TreatmentPlan) IsValid() bool {
	return len(p.RequiredWeeklyHours) > 0 &&
		p.TotalWeeklyHours() > 0 &&
		!p.StartDate.IsZero() &&
		!p.EndDate.IsZero() &&
		!p.EndDate.Before(p.StartDate)
}
