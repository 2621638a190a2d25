package domain

import "time"

type NotificationType string

const (
	NotificationPacienteCreado      NotificationType = "PACIENTE_CREADO"
	NotificationPacienteActualizado NotificationType = "PACIENTE_ACTUALIZADO"
	NotificationPacienteBaja        NotificationType = "PACIENTE_BAJA"
	NotificationPlanCreado          NotificationType = "PLAN_CREADO"
	NotificationPlanActualizado     NotificationType = "PLAN_ACTUALIZADO"
	NotificationCronogramaCambio    NotificationType = "CRONOGRAMA_CAMBIO"
	NotificationGeneral             NotificationType = "GENERAL"

	// tipos que solo viajan por la cola de correo, nunca se persisten
	NotificationCuentaCreada  NotificationType = "CUENTA_CREADA"
	NotificationResetPassword NotificationType = "RESET_PASSWORD"
)

type RecipientRole string

const (
	RecipientMedico    RecipientRole = "MEDICO"
	RecipientTerapeuta RecipientRole = "TERAPEUTA"
	RecipientAdmin     RecipientRole = "ADMIN"
	RecipientTodos     RecipientRole = "TODOS"
)

// RecipientForRole traduce el rol de un usuario a su rol destinatario
// de notificaciones. Un rol desconocido recibe solo las generales.
func RecipientForRole(r Role) RecipientRole {
	switch r {
	case RoleMedico:
		return RecipientMedico
	case RoleTerapeuta:
		return RecipientTerapeuta
	case RoleAdministrador:
		return RecipientAdmin
	}
	return RecipientTodos
}

// Notification es la notificacion persistida que consultan los
// usuarios segun su rol.
type Notification struct {
	ID            int64            `json:"id"`
	PatientID     *int64           `json:"patientID"`
	Message       string           `json:"message"`
	CreatedAt     time.Time        `json:"createdAt"`
	Read          bool             `json:"read"`
	Type          NotificationType `json:"type"`
	RecipientRole RecipientRole    `json:"recipientRole"`
}

// NotificationMessage es el mensaje que viaja por la cola hacia el
// worker de correo. To lleva las direcciones ya resueltas: el worker
// no consulta la base de datos.
type NotificationMessage struct {
	Type NotificationType `json:"type"`
	To   []string         `json:"to"`
	Data any              `json:"data"`
}

type ScheduleChangedData struct {
	PatientID    int64    `json:"patientID"`
	PatientName  string   `json:"patientName"`
	TherapistIDs []string `json:"therapistIDs"`
	WeekStart    string   `json:"weekStart"`
}

type PlanCreatedData struct {
	PatientID   int64  `json:"patientID"`
	PatientName string `json:"patientName"`
	TotalHours  int    `json:"totalHours"`
}

type PlanUpdatedData struct {
	PatientID   int64  `json:"patientID"`
	PatientName string `json:"patientName"`
	Changes     string `json:"changes"`
}

type CreateUserMailData struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ResetPasswordMailData struct {
	FullName   string `json:"fullName"`
	OTP        string `json:"otp"`
	Expiration int    `json:"expiration"`
}
