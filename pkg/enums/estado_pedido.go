package enums

import "fmt"

// EstadoPedido tracks an order's position in the fulfillment workflow.
type EstadoPedido string

const (
	EstadoPedidoRecibido      EstadoPedido = "recibido"
	EstadoPedidoConfirmado    EstadoPedido = "confirmado"
	EstadoPedidoEnPreparacion EstadoPedido = "en_preparacion"
	EstadoPedidoListoEntrega  EstadoPedido = "listo_entrega"
	EstadoPedidoEnRuta        EstadoPedido = "en_ruta"
	EstadoPedidoEntregado     EstadoPedido = "entregado"
	EstadoPedidoCancelado     EstadoPedido = "cancelado"
)

var validEstadosPedido = []EstadoPedido{
	EstadoPedidoRecibido,
	EstadoPedidoConfirmado,
	EstadoPedidoEnPreparacion,
	EstadoPedidoListoEntrega,
	EstadoPedidoEnRuta,
	EstadoPedidoEntregado,
	EstadoPedidoCancelado,
}

// String implements fmt.Stringer.
func (e EstadoPedido) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EstadoPedido.
func (e EstadoPedido) IsValid() bool {
	for _, candidate := range validEstadosPedido {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can no longer change state.
func (e EstadoPedido) IsTerminal() bool {
	return e == EstadoPedidoEntregado || e == EstadoPedidoCancelado
}

// ParseEstadoPedido converts raw input into an EstadoPedido.
func ParseEstadoPedido(value string) (EstadoPedido, error) {
	for _, candidate := range validEstadosPedido {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid estado de pedido %q", value)
}
