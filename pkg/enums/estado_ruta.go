package enums

import "fmt"

// EstadoRuta tracks a delivery route's lifecycle. Only the start and finish
// transitions are guarded; intermediate states are operator hints.
type EstadoRuta string

const (
	EstadoRutaPlanificada EstadoRuta = "planificada"
	EstadoRutaAsignada    EstadoRuta = "asignada"
	EstadoRutaEnProgreso  EstadoRuta = "en_progreso"
	EstadoRutaEnTransito  EstadoRuta = "en_transito"
	EstadoRutaEntregando  EstadoRuta = "entregando"
	EstadoRutaCompletada  EstadoRuta = "completada"
	EstadoRutaCancelada   EstadoRuta = "cancelada"
)

var validEstadosRuta = []EstadoRuta{
	EstadoRutaPlanificada,
	EstadoRutaAsignada,
	EstadoRutaEnProgreso,
	EstadoRutaEnTransito,
	EstadoRutaEntregando,
	EstadoRutaCompletada,
	EstadoRutaCancelada,
}

// String implements fmt.Stringer.
func (e EstadoRuta) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EstadoRuta.
func (e EstadoRuta) IsValid() bool {
	for _, candidate := range validEstadosRuta {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsActiva reports whether the route still has pending work.
func (e EstadoRuta) IsActiva() bool {
	switch e {
	case EstadoRutaCompletada, EstadoRutaCancelada:
		return false
	}
	return true
}

// ParseEstadoRuta converts raw input into an EstadoRuta.
func ParseEstadoRuta(value string) (EstadoRuta, error) {
	for _, candidate := range validEstadosRuta {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid estado de ruta %q", value)
}
