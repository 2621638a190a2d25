package repository

import (
	"context"
	"time"

	"github.com/sigcr-dev/rehab-manager/backend/internal/domain"
)

// CreateTreatmentPlan inserta el plan y todas sus filas de detalle
// (tipo de terapia, horas semanales) en una sola transaccion. Si algo
// falla no queda ni el plan ni ningun detalle.
func (r *Repository) CreateTreatmentPlan(plan *domain.TreatmentPlan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO plan_tratamiento (paciente_id, fecha_inicio, fecha_fin, estado, observaciones)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{plan.PatientID, plan.StartDate, plan.EndDate, plan.Status, plan.Observations}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&plan.ID, &plan.CreatedAt, &plan.Version); err != nil {
		return err
	}

	if err := insertPlanDetails(ctx, tx, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateTreatmentPlan actualiza los campos escalares y reemplaza por
// completo las filas de detalle dentro de la misma transaccion. Es un
// reemplazo total: un tipo de terapia quitado del mapa desaparece de
// la base de datos.
func (r *Repository) UpdateTreatmentPlan(plan *domain.TreatmentPlan) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE plan_tratamiento
		SET
			fecha_inicio = $1,
			fecha_fin = $2,
			estado = $3,
			observaciones = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`
	params := []any{plan.StartDate, plan.EndDate, plan.Status, plan.Observations, plan.ID, plan.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&plan.Version); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_detalle WHERE plan_id = $1`, plan.ID); err != nil {
		return err
	}

	if err := insertPlanDetails(ctx, tx, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetActiveTreatmentPlanByPatient devuelve el plan Activo del
// paciente. Si existe mas de uno gana el de fecha de inicio mas
// reciente; esa politica viene documentada, no es un invariante.
func (r *Repository) GetActiveTreatmentPlanByPatient(patientID int64) (*domain.TreatmentPlan, error) {
	query := `
		SELECT pt.id, pt.fecha_inicio, pt.fecha_fin, pt.estado, pt.observaciones, pt.created_at, pt.version,
			p.nombre
		FROM plan_tratamiento pt
		JOIN paciente p ON pt.paciente_id = p.id
		WHERE pt.paciente_id = $1 AND pt.estado = 'Activo'
		ORDER BY pt.fecha_inicio DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan := &domain.TreatmentPlan{
		PatientID: patientID,
	}

	dst := []any{&plan.ID, &plan.StartDate, &plan.EndDate, &plan.Status, &plan.Observations, &plan.CreatedAt, &plan.Version, &plan.PatientName}
	if err := r.dbpool.QueryRowContext(ctx, query, patientID).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadPlanDetails(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *Repository) GetTreatmentPlanByID(id int64) (*domain.TreatmentPlan, error) {
	query := `
		SELECT pt.paciente_id, pt.fecha_inicio, pt.fecha_fin, pt.estado, pt.observaciones, pt.created_at, pt.version,
			p.nombre
		FROM plan_tratamiento pt
		JOIN paciente p ON pt.paciente_id = p.id
		WHERE pt.id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan := &domain.TreatmentPlan{
		ID: id,
	}

	dst := []any{&plan.PatientID, &plan.StartDate, &plan.EndDate, &plan.Status, &plan.Observations, &plan.CreatedAt, &plan.Version, &plan.PatientName}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadPlanDetails(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (r *Repository) GetAllActiveTreatmentPlans() ([]*domain.TreatmentPlan, error) {
	query := `
		SELECT pt.id, pt.paciente_id, pt.fecha_inicio, pt.fecha_fin, pt.estado, pt.observaciones, pt.created_at, pt.version,
			p.nombre
		FROM plan_tratamiento pt
		JOIN paciente p ON pt.paciente_id = p.id
		WHERE pt.estado = 'Activo'
		ORDER BY p.nombre
	`

	return r.queryPlans(query)
}

func (r *Repository) GetTreatmentPlansByPatient(patientID int64) ([]*domain.TreatmentPlan, error) {
	query := `
		SELECT pt.id, pt.paciente_id, pt.fecha_inicio, pt.fecha_fin, pt.estado, pt.observaciones, pt.created_at, pt.version,
			p.nombre
		FROM plan_tratamiento pt
		JOIN paciente p ON pt.paciente_id = p.id
		WHERE pt.paciente_id = $1
		ORDER BY pt.fecha_inicio DESC
	`

	return r.queryPlans(query, patientID)
}

// DeleteTreatmentPlan elimina en cascada los detalles y luego el plan,
// dentro de una transaccion.
func (r *Repository) DeleteTreatmentPlan(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_detalle WHERE plan_id = $1`, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_tratamiento WHERE id = $1`, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) queryPlans(query string, args ...any) ([]*domain.TreatmentPlan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.TreatmentPlan{}
	for rows.Next() {
		var plan domain.TreatmentPlan
		dst := []any{
			&plan.ID,
			&plan.PatientID,
			&plan.StartDate,
			&plan.EndDate,
			&plan.Status,
			&plan.Observations,
			&plan.CreatedAt,
			&plan.Version,
			&plan.PatientName,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		plans = append(plans, &plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		if err := r.loadPlanDetails(ctx, plan); err != nil {
			return nil, err
		}
	}

	return plans, nil
}

func (r *Repository) loadPlanDetails(ctx context.Context, plan *domain.TreatmentPlan) error {
	query := `SELECT tipo_terapia, horas_semanales FROM plan_detalle WHERE plan_id = $1`

	rows, err := r.dbpool.QueryContext(ctx, query, plan.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	plan.RequiredWeeklyHours = make(map[domain.TherapyType]int)
	for rows.Next() {
		var therapyType domain.TherapyType
		var hours int
		if err := rows.Scan(&therapyType, &hours); err != nil {
			return err
		}
		plan.RequiredWeeklyHours[therapyType] = hours
	}

	return rows.Err()
}

func insertPlanDetails(ctx context.Context, tx txExecutor, plan *domain.TreatmentPlan) error {
	query := `
		INSERT INTO plan_detalle (plan_id, tipo_terapia, horas_semanales)
		VALUES ($1, $2, $3)
	`
	for therapyType, hours := range plan.RequiredWeeklyHours {
		if _, err := tx.ExecContext(ctx, query, plan.ID, therapyType, hours); err != nil {
			return err
		}
	}
	return nil
}
