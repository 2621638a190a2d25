package domain

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityInfo     AlertSeverity = "INFO"
)

// Alert describe el cumplimiento de un tipo de terapia dentro de un
// reporte semanal. Las alertas son datos, no errores: la llamada que
// las produce termina con exito aunque existan alertas criticas.
type Alert struct {
	Severity    AlertSeverity `json:"severity"`
	TherapyType TherapyType   `json:"therapyType"`
	Text        string        `json:"text"`
}

// WeeklyComplianceReport es el resultado derivado de comparar horas
// asignadas contra horas requeridas para una semana de un paciente.
// Se genera en cada llamada y nunca se persiste.
type WeeklyComplianceReport struct {
	RequiredHoursByType map[TherapyType]int `json:"requiredHoursByType"`
	AssignedHoursByType map[TherapyType]int `json:"assignedHoursByType"`
	Sessions            []*TherapySession   `json:"sessions"`
	Alerts              []Alert             `json:"alerts"`
	Committed           bool                `json:"committed"`
}

func (r *WeeklyComplianceReport) HasCriticalAlerts() bool {
	for _, alert := range r.Alerts {
		if alert.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
