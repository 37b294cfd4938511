// Package shift define el "día de turno" del restaurante: la jornada operativa
// no empieza a medianoche sino a las 03:00 hora local del negocio.
//
// Es la única fuente de verdad para agrupar hechos por día; ningún otro paquete
// debe reimplementar el corte.
package shift

import (
	"fmt"
	"time"
)

const (
	// DefaultUTCOffsetHours zona horaria fija del negocio (UTC+7).
	DefaultUTCOffsetHours = 7
	// DefaultCutoffHour hora local a la que empieza un nuevo día de turno.
	DefaultCutoffHour = 3

	// KeyLayout formato canónico de la clave de partición.
	KeyLayout = "2006-01-02"
)

// Day representa un día de turno (fecha de calendario sin hora).
// El valor cero no es un día válido.
type Day struct {
	date time.Time // medianoche UTC de la fecha
}

// NewDay construye un Day a partir de año, mes y día (normaliza desbordes, ej. 32 de enero).
func NewDay(year int, month time.Month, day int) Day {
	return Day{date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDay interpreta una clave YYYY-MM-DD.
func ParseDay(key string) (Day, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return Day{}, fmt.Errorf("día de turno inválido %q: %w", key, err)
	}
	return Day{date: t}, nil
}

// MustParseDay igual que ParseDay pero entra en pánico; solo para constantes y tests.
func MustParseDay(key string) Day {
	d, err := ParseDay(key)
	if err != nil {
		panic(err)
	}
	return d
}

// Key devuelve la clave canónica YYYY-MM-DD.
func (d Day) Key() string { return d.date.Format(KeyLayout) }

// String implementa fmt.Stringer.
func (d Day) String() string { return d.Key() }

// IsZero indica si el día no fue inicializado.
func (d Day) IsZero() bool { return d.date.IsZero() }

// Date devuelve la fecha de calendario (medianoche UTC).
func (d Day) Date() time.Time { return d.date }

// Next día de turno siguiente.
func (d Day) Next() Day { return Day{date: d.date.AddDate(0, 0, 1)} }

// Prev día de turno anterior.
func (d Day) Prev() Day { return Day{date: d.date.AddDate(0, 0, -1)} }

// Before compara cronológicamente.
func (d Day) Before(o Day) bool { return d.date.Before(o.date) }

// After compara cronológicamente.
func (d Day) After(o Day) bool { return d.date.After(o.date) }

// Equal indica si ambos días son la misma fecha.
func (d Day) Equal(o Day) bool { return d.date.Equal(o.date) }

// Range devuelve los días de start a end, ambos inclusive. Vacío si end < start.
func Range(start, end Day) []Day {
	var days []Day
	for d := start; !d.After(end); d = d.Next() {
		days = append(days, d)
	}
	return days
}

// Resolver mapea instantes a días de turno.
type Resolver struct {
	loc    *time.Location
	cutoff time.Duration
}

// NewResolver construye un resolver con zona horaria fija (offset en horas) y hora de corte.
func NewResolver(utcOffsetHours, cutoffHour int) *Resolver {
	name := fmt.Sprintf("UTC%+d", utcOffsetHours)
	return &Resolver{
		loc:    time.FixedZone(name, utcOffsetHours*3600),
		cutoff: time.Duration(cutoffHour) * time.Hour,
	}
}

// Default resolver del negocio: UTC+7, corte a las 03:00.
var Default = NewResolver(DefaultUTCOffsetHours, DefaultCutoffHour)

// Location zona horaria del negocio.
func (r *Resolver) Location() *time.Location { return r.loc }

// Resolve devuelve el día de turno de ts. Antes de la hora de corte local el
// registro pertenece a la fecha anterior; exactamente en el corte ya es el día nuevo.
func (r *Resolver) Resolve(ts time.Time) Day {
	local := ts.In(r.loc).Add(-r.cutoff)
	return NewDay(local.Year(), local.Month(), local.Day())
}

// ToDateKey devuelve la clave YYYY-MM-DD del día de turno de ts.
func (r *Resolver) ToDateKey(ts time.Time) string {
	return r.Resolve(ts).Key()
}

// Window devuelve el intervalo semiabierto [from, to) de instantes que pertenecen a d.
func (r *Resolver) Window(d Day) (from, to time.Time) {
	from = time.Date(d.date.Year(), d.date.Month(), d.date.Day(), 0, 0, 0, 0, r.loc).Add(r.cutoff)
	next := d.Next().date
	to = time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, r.loc).Add(r.cutoff)
	return from, to
}

// RangeWindow intervalo [from, to) que cubre de start a end inclusive.
func (r *Resolver) RangeWindow(start, end Day) (from, to time.Time) {
	from, _ = r.Window(start)
	_, to = r.Window(end)
	return from, to
}

// ResolveShiftDay resuelve ts con el resolver por defecto.
func ResolveShiftDay(ts time.Time) Day { return Default.Resolve(ts) }

// ToShiftDateKey clave YYYY-MM-DD del día de turno de ts con el resolver por defecto.
func ToShiftDateKey(ts time.Time) string { return Default.ToDateKey(ts) }
