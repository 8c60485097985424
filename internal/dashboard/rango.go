package dashboard

import (
	"time"

	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// Rango names a reporting window. All windows are resolved to half-open
// [desde, hasta) intervals on calendar-day boundaries in the reporting zone.
type Rango string

const (
	RangoUltimos7Dias  Rango = "ultimos_7_dias"
	RangoUltimos30Dias Rango = "ultimos_30_dias"
	RangoMesActual     Rango = "mes_actual"
	RangoMesAnterior   Rango = "mes_anterior"
	RangoPersonalizado Rango = "personalizado"
)

// Ventana is a resolved reporting window.
type Ventana struct {
	Desde time.Time
	Hasta time.Time
}

// Dias returns the number of calendar days the window spans.
func (v Ventana) Dias() int {
	return int(v.Hasta.Sub(v.Desde).Hours() / 24)
}

// ResolverRango turns a named range into a concrete window anchored at ahora.
// An empty rango defaults to the last seven days. personalizado requires both
// explicit dates; hasta is inclusive at day granularity.
func ResolverRango(rango Rango, ahora time.Time, loc *time.Location, fechaInicio, fechaFin *time.Time) (Ventana, error) {
	hoy := truncarDia(ahora.In(loc), loc)
	manana := hoy.AddDate(0, 0, 1)

	switch rango {
	case "", RangoUltimos7Dias:
		return Ventana{Desde: hoy.AddDate(0, 0, -6), Hasta: manana}, nil
	case RangoUltimos30Dias:
		return Ventana{Desde: hoy.AddDate(0, 0, -29), Hasta: manana}, nil
	case RangoMesActual:
		inicio := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, loc)
		return Ventana{Desde: inicio, Hasta: manana}, nil
	case RangoMesAnterior:
		inicioActual := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, loc)
		return Ventana{Desde: inicioActual.AddDate(0, -1, 0), Hasta: inicioActual}, nil
	case RangoPersonalizado:
		if fechaInicio == nil || fechaFin == nil {
			return Ventana{}, pkgerrors.New(pkgerrors.CodeValidation, "el rango personalizado requiere fecha_inicio y fecha_fin")
		}
		desde := truncarDia(fechaInicio.In(loc), loc)
		hasta := truncarDia(fechaFin.In(loc), loc).AddDate(0, 0, 1)
		if !desde.Before(hasta) {
			return Ventana{}, pkgerrors.New(pkgerrors.CodeValidation, "fecha_inicio debe ser anterior o igual a fecha_fin")
		}
		return Ventana{Desde: desde, Hasta: hasta}, nil
	default:
		return Ventana{}, pkgerrors.New(pkgerrors.CodeValidation, "rango invalido")
	}
}

func truncarDia(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
