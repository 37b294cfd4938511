package entity

import "time"

// Estados de ejecución del pipeline por día.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// ShiftRun último resultado de un paso del pipeline para un día de turno.
// Los dashboards lo leen para mostrar "fallido / no calculado" en vez de cifras viejas.
type ShiftRun struct {
	ShiftDay   string
	Step       string
	Status     string
	ErrorKind  string
	Error      string
	FinishedAt time.Time
}
