// Package notifier publica los avisos del sistema: persiste la
// notificacion para su consulta en linea y encola el mensaje que el
// worker de correo entrega a los afectados.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sigcr-dev/rehab-manager/backend/internal/config"
	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
	"github.com/sigcr-dev/rehab-manager/backend/internal/repository"
)

const QueueName = "notification_queue"

type Dispatcher struct {
	cfg        *config.Config
	repository *repository.Repository
	channel    *amqp.Channel
}

func NewDispatcher(cfg *config.Config, repo *repository.Repository, channel *amqp.Channel) *Dispatcher {
	return &Dispatcher{
		cfg:        cfg,
		repository: repo,
		channel:    channel,
	}
}

// NotifyScheduleChanged registra el cambio de cronograma y avisa por
// correo a los terapeutas afectados.
func (d *Dispatcher) NotifyScheduleChanged(patientID int64, patientName string, therapistIDs []string, weekStart time.Time) error {
	message := fmt.Sprintf(
		"Cronograma modificado para %s (semana del %s). Terapeutas afectados: %s",
		patientName, weekStart.Format("2006-01-02"), strings.Join(therapistIDs, ", "),
	)
	notification := &domain.Notification{
		PatientID:     &patientID,
		Message:       message,
		Type:          domain.NotificationCronogramaCambio,
		RecipientRole: domain.RecipientTerapeuta,
	}
	if err := d.repository.CreateNotification(notification); err != nil {
		return err
	}

	therapists, err := d.repository.GetUsersByUsernames(therapistIDs)
	if err != nil {
		return err
	}
	to := make([]string, 0, len(therapists))
	for _, therapist := range therapists {
		to = append(to, therapist.Email)
	}

	return d.publish(domain.NotificationMessage{
		Type: domain.NotificationCronogramaCambio,
		To:   to,
		Data: domain.ScheduleChangedData{
			PatientID:    patientID,
			PatientName:  patientName,
			TherapistIDs: therapistIDs,
			WeekStart:    weekStart.Format("2006-01-02"),
		},
	})
}

// NotifyPlanCreated avisa a los terapeutas que un paciente tiene plan
// de tratamiento nuevo.
func (d *Dispatcher) NotifyPlanCreated(patientID int64, patientName string, totalHours int) error {
	message := fmt.Sprintf("Plan de tratamiento creado para %s. Total: %d horas semanales.", patientName, totalHours)
	notification := &domain.Notification{
		PatientID:     &patientID,
		Message:       message,
		Type:          domain.NotificationPlanCreado,
		RecipientRole: domain.RecipientTerapeuta,
	}
	return d.repository.CreateNotification(notification)
}

// NotifyPlanUpdated avisa que el plan de un paciente cambio y hay que
// revisar las asignaciones de cronograma.
func (d *Dispatcher) NotifyPlanUpdated(patientID int64, patientName string, changes string) error {
	message := fmt.Sprintf("Paciente %s actualizado. Cambios: %s", patientName, changes)
	notification := &domain.Notification{
		PatientID:     &patientID,
		Message:       message,
		Type:          domain.NotificationPlanActualizado,
		RecipientRole: domain.RecipientMedico,
	}
	return d.repository.CreateNotification(notification)
}

// NotifyPatientCreated avisa a los medicos que un paciente nuevo
// requiere plan terapeutico.
func (d *Dispatcher) NotifyPatientCreated(patientID int64, patientName string) error {
	message := fmt.Sprintf("Nuevo paciente registrado: %s. Requiere asignacion de plan terapeutico.", patientName)
	notification := &domain.Notification{
		PatientID:     &patientID,
		Message:       message,
		Type:          domain.NotificationPacienteCreado,
		RecipientRole: domain.RecipientMedico,
	}
	return d.repository.CreateNotification(notification)
}

// NotifyPatientDischarged avisa a todos que se deben cancelar las
// sesiones pendientes del paciente.
func (d *Dispatcher) NotifyPatientDischarged(patientID int64, patientName string) error {
	message := fmt.Sprintf("Paciente %s dado de baja. Cancelar sesiones pendientes.", patientName)
	notification := &domain.Notification{
		PatientID:     &patientID,
		Message:       message,
		Type:          domain.NotificationPacienteBaja,
		RecipientRole: domain.RecipientTodos,
	}
	return d.repository.CreateNotification(notification)
}

// PublishMail encola un mensaje de correo directo (altas de usuario,
// OTP de reset) sin registrar notificacion persistida.
func (d *Dispatcher) PublishMail(message domain.NotificationMessage) error {
	return d.publish(message)
}

func (d *Dispatcher) publish(message domain.NotificationMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(d.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return d.channel.PublishWithContext(
		ctx,
		"",
		QueueName,
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
