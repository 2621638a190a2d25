package repository

import (
	"context"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

const sessionColumns = `id, paciente_id, terapeuta, tipo_terapia, fecha_hora, duracion`

func (r *Repository) CreateSession(session *domain.TherapySession) error {
	query := `
		INSERT INTO sesion (paciente_id, terapeuta, tipo_terapia, fecha_hora, duracion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{session.PatientID, session.TherapistID, session.TherapyType, session.StartDateTime, session.DurationMinutes}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&session.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateSession(session *domain.TherapySession) error {
	query := `
		UPDATE sesion
		SET terapeuta = $1, tipo_terapia = $2, fecha_hora = $3, duracion = $4
		WHERE id = $5
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{session.TherapistID, session.TherapyType, session.StartDateTime, session.DurationMinutes, session.ID}
	if _, err := r.dbpool.ExecContext(ctx, query, params...); err != nil {
		return err
	}

	return nil
}

// GetSessionsByPatientAndRange devuelve las sesiones de un paciente
// cuya fecha (sin hora) cae dentro de [from, to].
func (r *Repository) GetSessionsByPatientAndRange(patientID int64, from, to time.Time) ([]*domain.TherapySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sesion
		WHERE paciente_id = $1 AND fecha_hora::date BETWEEN $2 AND $3
		ORDER BY fecha_hora
	`

	return r.querySessions(query, patientID, from, to)
}

// GetSessionsByRange devuelve todas las sesiones del sistema en el
// rango dado; se usa para reportes.
func (r *Repository) GetSessionsByRange(from, to time.Time) ([]*domain.TherapySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sesion
		WHERE fecha_hora::date BETWEEN $1 AND $2
		ORDER BY fecha_hora
	`

	return r.querySessions(query, from, to)
}

// GetSessionsByTherapistAndDate devuelve la agenda diaria de un
// terapeuta.
func (r *Repository) GetSessionsByTherapistAndDate(therapistID string, date time.Time) ([]*domain.TherapySession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sesion
		WHERE terapeuta = $1 AND fecha_hora::date = $2
		ORDER BY fecha_hora
	`

	return r.querySessions(query, therapistID, date)
}

func (r *Repository) DeleteSessionsByPatientAndRange(patientID int64, from, to time.Time) error {
	query := `
		DELETE FROM sesion
		WHERE paciente_id = $1 AND fecha_hora::date BETWEEN $2 AND $3
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, patientID, from, to); err != nil {
		return err
	}

	return nil
}

// ReplaceSessionsByPatientAndRange reemplaza en una sola transaccion
// todas las sesiones del paciente dentro del rango por el conjunto
// recibido: o quedan exactamente las nuevas, o no cambia nada. El
// advisory lock por paciente serializa a dos escritores concurrentes
// del mismo paciente aunque sus semanas se superpongan.
func (r *Repository) ReplaceSessionsByPatientAndRange(patientID int64, from, to time.Time, sessions []*domain.TherapySession) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, patientID); err != nil {
		return err
	}

	query := `
		DELETE FROM sesion
		WHERE paciente_id = $1 AND fecha_hora::date BETWEEN $2 AND $3
	`
	if _, err := tx.ExecContext(ctx, query, patientID, from, to); err != nil {
		return err
	}

	query = `
		INSERT INTO sesion (paciente_id, terapeuta, tipo_terapia, fecha_hora, duracion)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for _, session := range sessions {
		params := []any{patientID, session.TherapistID, session.TherapyType, session.StartDateTime, session.DurationMinutes}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&session.ID); err != nil {
			return err
		}
		session.PatientID = patientID
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) querySessions(query string, args ...any) ([]*domain.TherapySession, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*domain.TherapySession{}
	for rows.Next() {
		var session domain.TherapySession
		dst := []any{
			&session.ID,
			&session.PatientID,
			&session.TherapistID,
			&session.TherapyType,
			&session.StartDateTime,
			&session.DurationMinutes,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		sessions = append(sessions, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}
