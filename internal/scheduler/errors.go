package scheduler

import (
	"errors"
	"fmt"
	"time"
)

// ErrPlanNotFound indica que el paciente no tiene plan de tratamiento
// activo; la planificacion aborta sin producir reporte.
var ErrPlanNotFound = errors.New("no existe un plan de tratamiento activo para el paciente")

// OutOfWeekRangeError indica que al menos una sesion propuesta cae
// fuera de la semana a planificar. Una sola sesion invalida rechaza el
// lote completo.
type OutOfWeekRangeError struct {
	Date      time.Time
	WeekStart time.Time
}

func (e *OutOfWeekRangeError) Error() string {
	return fmt.Sprintf(
		"la sesion del %s no esta dentro de la semana del %s",
		e.Date.Format("2006-01-02"),
		e.WeekStart.Format("2006-01-02"),
	)
}
