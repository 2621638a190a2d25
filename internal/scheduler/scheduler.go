// Package scheduler implementa la planificacion semanal de cronogramas
// terapeuticos: valida las sesiones propuestas contra el plan de
// tratamiento activo del paciente, clasifica el cumplimiento de horas
// por tipo de terapia y, si no hay alertas criticas, reemplaza de
// forma atomica el cronograma de la semana.
package scheduler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

// PlanStore resuelve el plan de tratamiento activo de un paciente.
type PlanStore interface {
	GetActiveTreatmentPlanByPatient(patientID int64) (*domain.TreatmentPlan, error)
}

// SessionStore lee y reemplaza las sesiones de un paciente por rango
// de fechas. El reemplazo debe ser atomico: todas las sesiones nuevas
// o ninguna.
type SessionStore interface {
	GetSessionsByPatientAndRange(patientID int64, from, to time.Time) ([]*domain.TherapySession, error)
	ReplaceSessionsByPatientAndRange(patientID int64, from, to time.Time, sessions []*domain.TherapySession) error
}

// Dispatcher recibe el aviso de cronograma modificado tras un commit
// exitoso. Es fire-and-forget: sus errores no revierten el commit.
type Dispatcher interface {
	NotifyScheduleChanged(patientID int64, patientName string, therapistIDs []string, weekStart time.Time) error
}

type Engine struct {
	plans      PlanStore
	sessions   SessionStore
	dispatcher Dispatcher
}

func New(plans PlanStore, sessions SessionStore, dispatcher Dispatcher) *Engine {
	return &Engine{
		plans:      plans,
		sessions:   sessions,
		dispatcher: dispatcher,
	}
}

// PlanWeek valida y clasifica la propuesta de sesiones para la semana
// del paciente y, si no hay alertas criticas, reemplaza el cronograma
// completo de esa semana. weekStart puede ser cualquier fecha: se
// normaliza al lunes de su semana.
func (e *Engine) PlanWeek(patientID int64, weekStart time.Time, proposed []*domain.TherapySession) (*domain.WeeklyComplianceReport, error) {
	monday := WeekMonday(weekStart)
	sunday := monday.AddDate(0, 0, 6)

	plan, err := e.plans.GetActiveTreatmentPlanByPatient(patientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("no se pudo resolver el plan activo: %w", err)
	}

	// todo o nada: una sola sesion fuera de rango rechaza el lote.
	// La pertenencia se decide por fecha calendario, no por instante:
	// una sesion con otro offset horario cuenta por su propia fecha.
	for _, session := range proposed {
		y, m, d := session.StartDateTime.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, monday.Location())
		if day.Before(monday) || day.After(sunday) {
			return nil, &OutOfWeekRangeError{Date: day, WeekStart: monday}
		}
	}

	assigned := AssignedHoursByType(proposed)

	report := &domain.WeeklyComplianceReport{
		RequiredHoursByType: plan.RequiredWeeklyHours,
		AssignedHoursByType: assigned,
		Sessions:            proposed,
		Alerts:              classifyCompliance(plan.RequiredWeeklyHours, assigned),
	}

	if report.HasCriticalAlerts() {
		// reporte consultivo: no se persiste nada
		return report, nil
	}

	if err := e.sessions.ReplaceSessionsByPatientAndRange(patientID, monday, sunday, proposed); err != nil {
		return nil, fmt.Errorf("no se pudo reemplazar el cronograma de la semana: %w", err)
	}
	report.Committed = true

	if err := e.dispatcher.NotifyScheduleChanged(patientID, plan.PatientName, distinctTherapists(proposed), monday); err != nil {
		slog.Error("no se pudo notificar el cambio de cronograma", "patientID", patientID, "error", err)
	}

	return report, nil
}

// GetWeekSessions devuelve el cronograma vigente de la semana que
// contiene a weekStart.
func (e *Engine) GetWeekSessions(patientID int64, weekStart time.Time) ([]*domain.TherapySession, error) {
	monday := WeekMonday(weekStart)
	return e.sessions.GetSessionsByPatientAndRange(patientID, monday, monday.AddDate(0, 0, 6))
}

// AssignedHoursByType agrupa las sesiones por tipo de terapia y
// convierte los minutos totales a horas enteras truncando: los minutos
// que no completan una hora se descartan, no se redondean.
func AssignedHoursByType(sessions []*domain.TherapySession) map[domain.TherapyType]int {
	minutes := make(map[domain.TherapyType]int)
	for _, session := range sessions {
		minutes[session.TherapyType] += session.DurationMinutes
	}

	hours := make(map[domain.TherapyType]int, len(minutes))
	for therapyType, total := range minutes {
		hours[therapyType] = total / 60
	}
	return hours
}

// classifyCompliance genera una alerta por cada tipo de terapia
// requerido que no quede exactamente cubierto. Los tipos propuestos
// que el plan no exige no generan alerta: el plan simplemente no los
// restringe. Se recorren las claves del plan (ordenadas) y no el
// catalogo, para que un tipo persistido fuera del catalogo tambien
// quede evaluado.
func classifyCompliance(required, assigned map[domain.TherapyType]int) []domain.Alert {
	alerts := []domain.Alert{}

	requiredTypes := make([]domain.TherapyType, 0, len(required))
	for therapyType := range required {
		requiredTypes = append(requiredTypes, therapyType)
	}
	slices.Sort(requiredTypes)

	for _, therapyType := range requiredTypes {
		requiredHours := required[therapyType]
		assignedHours := assigned[therapyType]

		switch {
		case requiredHours > 0 && assignedHours == 0:
			alerts = append(alerts, domain.Alert{
				Severity:    domain.SeverityCritical,
				TherapyType: therapyType,
				Text:        fmt.Sprintf("No se asignaron sesiones de %s (requeridas: %d horas)", therapyType, requiredHours),
			})
		case assignedHours > 0 && assignedHours < requiredHours:
			alerts = append(alerts, domain.Alert{
				Severity:    domain.SeverityWarning,
				TherapyType: therapyType,
				Text:        fmt.Sprintf("%s tiene %d horas asignadas de %d requeridas", therapyType, assignedHours, requiredHours),
			})
		case assignedHours > requiredHours:
			alerts = append(alerts, domain.Alert{
				Severity:    domain.SeverityInfo,
				TherapyType: therapyType,
				Text:        fmt.Sprintf("%s tiene %d horas asignadas, %d mas de las requeridas", therapyType, assignedHours, assignedHours-requiredHours),
			})
		}
	}

	return alerts
}

// WeekMonday devuelve el lunes de la semana que contiene a t, sin
// componente horario.
func WeekMonday(t time.Time) time.Time {
	day := dateOnly(t)
	// time.Weekday usa domingo = 0
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func distinctTherapists(sessions []*domain.TherapySession) []string {
	seen := make(map[string]bool)
	therapists := []string{}
	for _, session := range sessions {
		if seen[session.TherapistID] {
			continue
		}
		seen[session.TherapistID] = true
		therapists = append(therapists, session.TherapistID)
	}
	return therapists
}
