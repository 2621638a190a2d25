package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

// parseRequiredHours valida el mapa de horas requeridas contra el
// catalogo cerrado de tipos de terapia.
func parseRequiredHours(raw map[string]int) (map[domain.TherapyType]int, error) {
	hours := make(map[domain.TherapyType]int, len(raw))
	for name, value := range raw {
		therapyType, err := domain.ParseTherapyType(name)
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			return nil, errors.New("Las horas semanales de cada terapia deben ser positivas")
		}
		hours[therapyType] = value
	}
	return hours, nil
}

func (h *Handler) CreateTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate           string         `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate             string         `json:"endDate" validate:"required,datetime=2006-01-02"`
		Observations        string         `json:"observations"`
		RequiredWeeklyHours map[string]int `json:"requiredWeeklyHours" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	requiredHours, err := parseRequiredHours(req.RequiredWeeklyHours)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, _ := time.Parse("2006-01-02", req.StartDate)
	endDate, _ := time.Parse("2006-01-02", req.EndDate)

	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	if patient.Status != domain.PatientActivo {
		h.errorResponse(w, r, "Solo los pacientes activos pueden recibir un plan de tratamiento")
		return
	}

	plan := &domain.TreatmentPlan{
		PatientID:           patient.ID,
		PatientName:         patient.Name,
		StartDate:           startDate,
		EndDate:             endDate,
		Status:              domain.PlanActivo,
		Observations:        req.Observations,
		RequiredWeeklyHours: requiredHours,
	}

	if !plan.IsValid() {
		h.errorResponse(w, r, "El plan de tratamiento es invalido: revise fechas y horas requeridas")
		return
	}

	if err := h.repository.CreateTreatmentPlan(plan); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.dispatcher.NotifyPlanCreated(patient.ID, patient.Name, plan.TotalWeeklyHours()); err != nil {
		slog.Error("no se pudo notificar la creacion del plan", "patientID", patient.ID, "error", err)
	}

	h.successResponse(w, r, "Plan de tratamiento creado", plan)
}

func (h *Handler) GetTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TreatmentPlanCtx).(*domain.TreatmentPlan)
	h.successResponse(w, r, "Plan de tratamiento obtenido", plan)
}

func (h *Handler) GetActiveTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	plan, err := h.repository.GetActiveTreatmentPlanByPatient(patient.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "El paciente no tiene un plan de tratamiento activo")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Plan de tratamiento activo obtenido", plan)
}

func (h *Handler) GetTreatmentPlansForPatient(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	plans, err := h.repository.GetTreatmentPlansByPatient(patient.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Planes de tratamiento del paciente obtenidos", plans)
}

func (h *Handler) GetAllActiveTreatmentPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllActiveTreatmentPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Planes de tratamiento activos obtenidos", plans)
}

func (h *Handler) UpdateTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate           *string        `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
		EndDate             *string        `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		Observations        *string        `json:"observations"`
		RequiredWeeklyHours map[string]int `json:"requiredWeeklyHours" validate:"omitempty,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := r.Context().Value(TreatmentPlanCtx).(*domain.TreatmentPlan)

	if req.StartDate != nil {
		plan.StartDate, _ = time.Parse("2006-01-02", *req.StartDate)
	}
	if req.EndDate != nil {
		plan.EndDate, _ = time.Parse("2006-01-02", *req.EndDate)
	}
	if req.Observations != nil {
		plan.Observations = *req.Observations
	}
	if req.RequiredWeeklyHours != nil {
		requiredHours, err := parseRequiredHours(req.RequiredWeeklyHours)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		plan.RequiredWeeklyHours = requiredHours
	}

	if !plan.IsValid() {
		h.errorResponse(w, r, "El plan de tratamiento es invalido: revise fechas y horas requeridas")
		return
	}

	if err := h.repository.UpdateTreatmentPlan(plan); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el plan, intente nuevamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// avisar a los medicos para que revisen el cronograma vigente
	if err := h.dispatcher.NotifyPlanUpdated(plan.PatientID, plan.PatientName, "horas semanales o vigencia del plan"); err != nil {
		slog.Error("no se pudo notificar la actualizacion del plan", "patientID", plan.PatientID, "error", err)
	}

	h.successResponse(w, r, "Plan de tratamiento actualizado", plan)
}

func (h *Handler) UpdateTreatmentPlanStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required,oneof=Activo Completado Suspendido"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := r.Context().Value(TreatmentPlanCtx).(*domain.TreatmentPlan)
	plan.Status = domain.PlanStatus(req.Status)

	if err := h.repository.UpdateTreatmentPlan(plan); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el plan, intente nuevamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Estado del plan actualizado", plan)
}

func (h *Handler) DeleteTreatmentPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(TreatmentPlanCtx).(*domain.TreatmentPlan)

	if err := h.repository.DeleteTreatmentPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Plan de tratamiento eliminado", nil)
}
