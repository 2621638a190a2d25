package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

func (h *Handler) recipientRole(r *http.Request) domain.RecipientRole {
	roleCtx := r.Context().Value(RoleCtxKey).(string)
	return domain.RecipientForRole(domain.Role(roleCtx))
}

func (h *Handler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	onlyUnread := r.URL.Query().Get("unread") == "true"

	notifications, err := h.repository.GetNotificationsByRole(h.recipientRole(r), onlyUnread)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notificaciones obtenidas", notifications)
}

// GetPatientNotifications devuelve el historial de avisos asociados a
// un paciente, sin filtrar por rol.
func (h *Handler) GetPatientNotifications(w http.ResponseWriter, r *http.Request) {
	patient := r.Context().Value(PatientCtx).(*domain.Patient)

	notifications, err := h.repository.GetNotificationsByPatient(patient.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notificaciones del paciente obtenidas", notifications)
}

func (h *Handler) CountMyUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	count, err := h.repository.CountUnreadNotifications(h.recipientRole(r))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Cantidad de notificaciones sin leer obtenida", map[string]int{"count": count})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "ID de notificacion invalido")
		return
	}

	if _, err := h.repository.GetNotificationByID(id); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "La notificacion no existe")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.repository.MarkNotificationRead(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Notificacion marcada como leida", nil)
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.MarkAllNotificationsRead(h.recipientRole(r)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Todas las notificaciones quedaron marcadas como leidas", nil)
}

func (h *Handler) CleanupOldNotifications(w http.ResponseWriter, r *http.Request) {
	limit := time.Now().AddDate(0, 0, -h.config.Notifications.CleanupDays)

	deleted, err := h.repository.DeleteNotificationsBefore(limit)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, fmt.Sprintf("Se eliminaron %d notificaciones antiguas", deleted), nil)
}
