package repository

import (
	"context"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

func (r *Repository) CreatePatient(patient *domain.Patient) error {
	query := `
		INSERT INTO paciente (nombre, documento, fecha_nacimiento, diagnostico, habitacion, estado)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{patient.Name, patient.Document, patient.BirthDate, patient.Diagnosis, patient.Room, patient.Status}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&patient.ID, &patient.CreatedAt, &patient.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetPatientByID(id int64) (*domain.Patient, error) {
	query := `
		SELECT nombre, documento, fecha_nacimiento, diagnostico, habitacion, estado, created_at, version
		FROM paciente WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	patient := &domain.Patient{
		ID: id,
	}

	dst := []any{&patient.Name, &patient.Document, &patient.BirthDate, &patient.Diagnosis, &patient.Room, &patient.Status, &patient.CreatedAt, &patient.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return patient, nil
}

func (r *Repository) GetAllPatients() ([]*domain.Patient, error) {
	query := `
		SELECT id, nombre, documento, fecha_nacimiento, diagnostico, habitacion, estado, created_at, version
		FROM paciente
		ORDER BY nombre
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []*domain.Patient{}
	for rows.Next() {
		var patient domain.Patient
		dst := []any{
			&patient.ID,
			&patient.Name,
			&patient.Document,
			&patient.BirthDate,
			&patient.Diagnosis,
			&patient.Room,
			&patient.Status,
			&patient.CreatedAt,
			&patient.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		patients = append(patients, &patient)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return patients, nil
}

func (r *Repository) UpdatePatient(patient *domain.Patient) error {
	query := `
		UPDATE paciente
		SET
			nombre = $1,
			documento = $2,
			fecha_nacimiento = $3,
			diagnostico = $4,
			habitacion = $5,
			estado = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{patient.Name, patient.Document, patient.BirthDate, patient.Diagnosis, patient.Room, patient.Status, patient.ID, patient.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&patient.Version); err != nil {
		return err
	}

	return nil
}
