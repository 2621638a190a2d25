package handler

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name" validate:"required"`
		Document  string `json:"document" validate:"required"`
		BirthDate string `json:"birthDate" validate:"required,datetime=2006-01-02"`
		Diagnosis string `json:"diagnosis" validate:"required"`
		Room      string `json:"room"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	patient := &domain.Patient{
		Name:      req.Name,
		Document:  req.Document,
		BirthDate: birthDate,
		Diagnosis: req.Diagnosis,
		Room:      req.Room,
		Status:    domain.PatientActivo,
	}

	if err := h.repository.CreatePatient(patient); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "paciente_documento_key":
			h.badRequest(w, r, errors.New("Ya existe un paciente con ese documento"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// avisar a los medicos que hay un paciente sin plan
	if err := h.dispatcher.NotifyPatientCreated(patient.ID, patient.Name); err != nil {
		slog.Error("no se pudo notificar el alta del paciente", "patientID", patient.ID, "error", err)
	}

	h.successResponse(w, r, "Paciente registrado", patient)
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)
	h.successResponse(w, r, "Informacion del paciente obtenida", patient)
}

func (h *Handler) GetAllPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.repository.GetAllPatients()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lista de pacientes obtenida", patients)
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      *string `json:"name"`
		Diagnosis *string `json:"diagnosis"`
		Room      *string `json:"room"`
		Status    *string `json:"status" validate:"omitempty,oneof=Activo Alta Baja"`
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
	previousStatus := patient.Status

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Diagnosis != nil {
		patient.Diagnosis = *req.Diagnosis
	}
	if req.Room != nil {
		patient.Room = *req.Room
	}
	if req.Status != nil {
		patient.Status = domain.PatientStatus(*req.Status)
	}

	if err := h.repository.UpdatePatient(patient); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "No se pudo actualizar el paciente, intente nuevamente")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	// la baja dispara la cancelacion de sesiones pendientes
	if previousStatus != domain.PatientBaja && patient.Status == domain.PatientBaja {
		if err := h.dispatcher.NotifyPatientDischarged(patient.ID, patient.Name); err != nil {
			slog.Error("no se pudo notificar la baja del paciente", "patientID", patient.ID, "error", err)
		}
	}

	h.successResponse(w, r, "Paciente actualizado", patient)
}
