package enums

import "fmt"

// TipoPago identifies how the customer pays for an order.
type TipoPago string

const (
	TipoPagoTransferencia TipoPago = "transferencia"
	TipoPagoContraEntrega TipoPago = "contra_entrega"
	TipoPagoEfectivo      TipoPago = "efectivo"
	TipoPagoTarjeta       TipoPago = "tarjeta"
)

var validTiposPago = []TipoPago{
	TipoPagoTransferencia,
	TipoPagoContraEntrega,
	TipoPagoEfectivo,
	TipoPagoTarjeta,
}

// String implements fmt.Stringer.
func (t TipoPago) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TipoPago.
func (t TipoPago) IsValid() bool {
	for _, candidate := range validTiposPago {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTipoPago converts raw input into a TipoPago.
func ParseTipoPago(value string) (TipoPago, error) {
	for _, candidate := range validTiposPago {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tipo de pago %q", value)
}
