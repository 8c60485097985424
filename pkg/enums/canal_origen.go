package enums

import "fmt"

// CanalOrigen records the channel an order arrived through.
type CanalOrigen string

const (
	CanalOrigenTelefono   CanalOrigen = "telefono"
	CanalOrigenWhatsApp   CanalOrigen = "whatsapp"
	CanalOrigenPresencial CanalOrigen = "presencial"
	CanalOrigenAppMovil   CanalOrigen = "app_movil"
	CanalOrigenWeb        CanalOrigen = "web"
)

var validCanalesOrigen = []CanalOrigen{
	CanalOrigenTelefono,
	CanalOrigenWhatsApp,
	CanalOrigenPresencial,
	CanalOrigenAppMovil,
	CanalOrigenWeb,
}

// String implements fmt.Stringer.
func (c CanalOrigen) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CanalOrigen.
func (c CanalOrigen) IsValid() bool {
	for _, candidate := range validCanalesOrigen {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCanalOrigen converts raw input into a CanalOrigen.
func ParseCanalOrigen(value string) (CanalOrigen, error) {
	for _, candidate := range validCanalesOrigen {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid canal de origen %q", value)
}
