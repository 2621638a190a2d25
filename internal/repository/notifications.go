package repository

import (
	"context"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

const notificationColumns = `id, paciente_id, mensaje, fecha_hora, leida, tipo, destinatario_rol`

func (r *Repository) CreateNotification(notification *domain.Notification) error {
	query := `
		INSERT INTO notificacion (paciente_id, mensaje, tipo, destinatario_rol)
		VALUES ($1, $2, $3, $4)
		RETURNING id, fecha_hora, leida
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{notification.PatientID, notification.Message, notification.Type, notification.RecipientRole}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&notification.ID, &notification.CreatedAt, &notification.Read); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetNotificationByID(id int64) (*domain.Notification, error) {
	query := `
		SELECT paciente_id, mensaje, fecha_hora, leida, tipo, destinatario_rol
		FROM notificacion WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	notification := &domain.Notification{
		ID: id,
	}

	dst := []any{&notification.PatientID, &notification.Message, &notification.CreatedAt, &notification.Read, &notification.Type, &notification.RecipientRole}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return notification, nil
}

// GetNotificationsByRole devuelve las notificaciones dirigidas a un
// rol, incluyendo las generales dirigidas a TODOS.
func (r *Repository) GetNotificationsByRole(role domain.RecipientRole, onlyUnread bool) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notificacion
		WHERE (destinatario_rol = $1 OR destinatario_rol = 'TODOS')
	`
	if onlyUnread {
		query += ` AND leida = FALSE`
	}
	query += ` ORDER BY fecha_hora DESC`

	return r.queryNotifications(query, role)
}

func (r *Repository) GetNotificationsByPatient(patientID int64) ([]*domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notificacion
		WHERE paciente_id = $1
		ORDER BY fecha_hora DESC
	`

	return r.queryNotifications(query, patientID)
}

func (r *Repository) CountUnreadNotifications(role domain.RecipientRole) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notificacion
		WHERE (destinatario_rol = $1 OR destinatario_rol = 'TODOS') AND leida = FALSE
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var count int
	if err := r.dbpool.QueryRowContext(ctx, query, role).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) MarkNotificationRead(id int64) error {
	query := `UPDATE notificacion SET leida = TRUE WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) MarkAllNotificationsRead(role domain.RecipientRole) error {
	query := `
		UPDATE notificacion SET leida = TRUE
		WHERE destinatario_rol = $1 OR destinatario_rol = 'TODOS'
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, role); err != nil {
		return err
	}

	return nil
}

// DeleteNotificationsBefore elimina notificaciones anteriores al
// limite y devuelve cuantas filas se borraron.
func (r *Repository) DeleteNotificationsBefore(limit time.Time) (int64, error) {
	query := `DELETE FROM notificacion WHERE fecha_hora < $1`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	result, err := r.dbpool.ExecContext(ctx, query, limit)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *Repository) queryNotifications(query string, args ...any) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []*domain.Notification{}
	for rows.Next() {
		var notification domain.Notification
		dst := []any{
			&notification.ID,
			&notification.PatientID,
			&notification.Message,
			&notification.CreatedAt,
			&notification.Read,
			&notification.Type,
			&notification.RecipientRole,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		notifications = append(notifications, &notification)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notifications, nil
}
