package domain

import "time"

// TherapySession es una sesion individual de terapia. En la ruta de
// planificacion las sesiones solo se crean como parte del reemplazo de
// una semana completa, nunca de a una.
type TherapySession struct {
	ID              int64       `json:"id"`
	PatientID       int64       `json:"patientID"`
	TherapistID     string      `json:"therapistID"`
	TherapyType     TherapyType `json:"therapyType"`
	StartDateTime   time.Time   `json:"startDateTime"`
	DurationMinutes int         `json:"durationMinutes"`
}
