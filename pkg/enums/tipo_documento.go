package enums

import "fmt"

// TipoDocumentoVehiculo classifies vehicle paperwork with an expiry date.
type TipoDocumentoVehiculo string

const (
	DocumentoSeguro             TipoDocumentoVehiculo = "seguro"
	DocumentoInspeccion         TipoDocumentoVehiculo = "inspeccion"
	DocumentoLicencia           TipoDocumentoVehiculo = "licencia"
	DocumentoTarjetaCirculacion TipoDocumentoVehiculo = "tarjeta_circulacion"
)

var validTiposDocumento = []TipoDocumentoVehiculo{
	DocumentoSeguro,
	DocumentoInspeccion,
	DocumentoLicencia,
	DocumentoTarjetaCirculacion,
}

// String implements fmt.Stringer.
func (t TipoDocumentoVehiculo) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TipoDocumentoVehiculo.
func (t TipoDocumentoVehiculo) IsValid() bool {
	for _, candidate := range validTiposDocumento {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTipoDocumentoVehiculo converts raw input into a TipoDocumentoVehiculo.
func ParseTipoDocumentoVehiculo(value string) (TipoDocumentoVehiculo, error) {
	for _, candidate := range validTiposDocumento {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tipo de documento %q", value)
}
