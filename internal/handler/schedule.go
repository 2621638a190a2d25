package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/sigcr-dev/rehab-manager/backend/internal/scheduler"
)

// PlanWeek recibe la propuesta de sesiones de una semana, la valida
// contra el plan de tratamiento activo y reemplaza el cronograma si no
// hay alertas criticas. El reporte de cumplimiento se devuelve siempre,
// con committed indicando si la semana quedo persistida.
func (h *Handler) PlanWeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeekStart string `json:"weekStart" validate:"required,datetime=2006-01-02"`
		Sessions  []struct {
			TherapistID     string `json:"therapistID" validate:"required"`
			TherapyType     string `json:"therapyType" validate:"required"`
			StartDateTime   string `json:"startDateTime" validate:"required"`
			DurationMinutes int    `json:"durationMinutes" validate:"required,gt=0"`
		} `json:"sessions" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	weekStart, _ := time.Parse("2006-01-02", req.WeekStart)

	proposed := make([]*domain.TherapySession, 0, len(req.Sessions))
	for _, s := range req.Sessions {
		therapyType, err := domain.ParseTherapyType(s.TherapyType)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}

		startDateTime, err := time.Parse(time.RFC3339, s.StartDateTime)
		if err != nil {
			h.badRequest(w, r, errors.New("startDateTime debe tener formato RFC 3339"))
			return
		}

		proposed = append(proposed, &domain.TherapySession{
			PatientID:       patient.ID,
			TherapistID:     s.TherapistID,
			TherapyType:     therapyType,
			StartDateTime:   startDateTime,
			DurationMinutes: s.DurationMinutes,
		})
	}

	report, err := h.engine.PlanWeek(patient.ID, weekStart, proposed)
	if err != nil {
		var rangeErr *scheduler.OutOfWeekRangeError
		switch {
		case errors.Is(err, scheduler.ErrPlanNotFound):
			h.errorResponse(w, r, "El paciente no tiene un plan de tratamiento activo")
		case errors.As(err, &rangeErr):
			h.errorResponse(w, r, rangeErr.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if !report.Committed {
		h.successResponse(w, r, "El cronograma no se guardo: hay alertas criticas de cumplimiento", report)
		return
	}

	h.successResponse(w, r, "Cronograma de la semana guardado", report)
}

func (h *Handler) GetWeekSessions(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	weekStartParam := r.URL.Query().Get("weekStart")
	weekStart, err := time.Parse("2006-01-02", weekStartParam)
	if err != nil {
		h.errorResponse(w, r, "weekStart debe tener formato AAAA-MM-DD")
		return
	}

	sessions, err := h.engine.GetWeekSessions(patient.ID, weekStart)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Cronograma de la semana obtenido", sessions)
}

// GetTherapistAgenda devuelve las sesiones de un terapeuta para un dia,
// de todos sus pacientes.
func (h *Handler) GetTherapistAgenda(w http.ResponseWriter, r *http.Request) {
	therapistID := chi.URLParam(r, "therapistID")

	dateParam := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		h.errorResponse(w, r, "date debe tener formato AAAA-MM-DD")
		return
	}

	sessions, err := h.repository.GetSessionsByTherapistAndDate(therapistID, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Agenda del terapeuta obtenida", sessions)
}
