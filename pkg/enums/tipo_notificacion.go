package enums

import "fmt"

// TipoNotificacion classifies in-app notifications.
type TipoNotificacion string

const (
	NotificacionPedidoConfirmado TipoNotificacion = "pedido_confirmado"
	NotificacionCambioEstado     TipoNotificacion = "cambio_estado"
	NotificacionRutaAsignada     TipoNotificacion = "ruta_asignada"
	NotificacionEntregaRealizada TipoNotificacion = "entrega_realizada"
	NotificacionStockBajo        TipoNotificacion = "stock_bajo"
	NotificacionSistema          TipoNotificacion = "sistema"
)

var validTiposNotificacion = []TipoNotificacion{
	NotificacionPedidoConfirmado,
	NotificacionCambioEstado,
	NotificacionRutaAsignada,
	NotificacionEntregaRealizada,
	NotificacionStockBajo,
	NotificacionSistema,
}

// String implements fmt.Stringer.
func (t TipoNotificacion) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TipoNotificacion.
func (t TipoNotificacion) IsValid() bool {
	for _, candidate := range validTiposNotificacion {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTipoNotificacion converts raw input into a TipoNotificacion.
func ParseTipoNotificacion(value string) (TipoNotificacion, error) {
	for _, candidate := range validTiposNotificacion {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tipo de notificacion %q", value)
}
