package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/internal/codigos"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
	"github.com/agriconecta/backend/pkg/logger"
)

const comentarioCreacion = "Pedido creado"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type codeGenerator interface {
	Next(ctx context.Context, tx *gorm.DB, prefijo string, now time.Time) (string, error)
}

type notifier interface {
	NotificarCambioEstado(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string, nuevo enums.EstadoPedido) error
	NotificarEntrega(ctx context.Context, tx *gorm.DB, usuarioID, pedidoID uuid.UUID, codigo string) error
	NotificarStockBajo(ctx context.Context, tx *gorm.DB, usuarioIDs []uuid.UUID, variedad string, stock, minimo int) error
}

// Service defines the order workflow operations.
type Service interface {
	Crear(ctx context.Context, actor Actor, req CrearPedidoRequest) (*PedidoDTO, error)
	List(ctx context.Context, actor Actor, filter ListFilter) ([]PedidoDTO, error)
	MisPedidos(ctx context.Context, actor Actor) ([]PedidoDTO, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*PedidoDTO, error)
	CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, req CambiarEstadoRequest) (*PedidoDTO, error)
	Cancelar(ctx context.Context, actor Actor, id uuid.UUID, req CancelarRequest) (*PedidoDTO, error)
	Calificar(ctx context.Context, actor Actor, id uuid.UUID, req CalificarRequest) (*PedidoDTO, error)
	Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error
}

type service struct {
	repo     Repository
	tx       txRunner
	codigos  codeGenerator
	notifier notifier
	log      *logger.Logger
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo     Repository
	TxRunner txRunner
	Codigos  codeGenerator
	Notifier notifier
	Logger   *logger.Logger
	Now      func() time.Time
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Codigos == nil {
		return nil, fmt.Errorf("code generator is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.TxRunner,
		codigos:  params.Codigos,
		notifier: params.Notifier,
		log:      params.Logger,
		now:      now,
	}, nil
}

func (s *service) Crear(ctx context.Context, actor Actor, req CrearPedidoRequest) (*PedidoDTO, error) {
	if len(req.Detalles) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "el pedido debe tener al menos un detalle")
	}

	usuarioID := actor.UsuarioID
	if req.UsuarioID != "" {
		if !actor.EsStaff() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede crear pedidos para otros usuarios")
		}
		parsed, err := uuid.Parse(req.UsuarioID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "usuario_id invalido")
		}
		usuarioID = parsed
	}

	pedido := &models.Pedido{
		UsuarioID:            usuarioID,
		Estado:               enums.EstadoPedidoRecibido,
		DireccionEntrega:     req.DireccionEntrega,
		ReferenciaEntrega:    req.ReferenciaEntrega,
		CentroPoblado:        req.CentroPoblado,
		NombreContacto:       req.NombreContacto,
		TelefonoContacto:     req.TelefonoContacto,
		NombresCliente:       req.NombresCliente,
		ApellidosCliente:     req.ApellidosCliente,
		NitFacturacion:       req.NitFacturacion,
		NombreFacturacion:    req.NombreFacturacion,
		DireccionFacturacion: req.DireccionFacturacion,
		ComentarioPago:       req.ComentarioPago,
		FechaEntregaEstimada: req.FechaEntregaEstimada,
		Observaciones:        req.Observaciones,
		TipoPago:             enums.TipoPagoEfectivo,
		CanalOrigen:          enums.CanalOrigenWeb,
		Activo:               true,
	}
	if req.TipoPago != "" {
		tipoPago, err := enums.ParseTipoPago(req.TipoPago)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tipo_pago invalido")
		}
		pedido.TipoPago = tipoPago
	}
	if req.CanalOrigen != "" {
		canal, err := enums.ParseCanalOrigen(req.CanalOrigen)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "canal_origen invalido")
		}
		pedido.CanalOrigen = canal
	}

	descuento := decimal.Zero
	if req.Descuento != "" {
		parsed, err := decimal.NewFromString(req.Descuento)
		if err != nil || parsed.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "descuento invalido")
		}
		descuento = parsed
	}

	var municipio *models.Municipio
	if req.MunicipioEntregaID != nil && *req.MunicipioEntregaID != "" {
		municipioID, err := uuid.Parse(*req.MunicipioEntregaID)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "municipio_entrega_id invalido")
		}
		municipio, err = s.repo.FindMunicipio(ctx, municipioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "el municipio de entrega no existe")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar municipio")
		}
		pedido.MunicipioEntregaID = &municipio.ID
	}
	pedido.DireccionCompuesta = componerDireccion(req.DireccionEntrega, req.CentroPoblado, municipio, req.ReferenciaEntrega)

	type alertaStock struct {
		variedad string
		stock    int
		minimo   int
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		codigo, err := s.codigos.Next(ctx, tx, codigos.PrefijoPedido, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "generar codigo de seguimiento")
		}
		pedido.CodigoSeguimiento = codigo

		total := decimal.Zero
		var alertas []alertaStock
		for _, linea := range req.Detalles {
			pilonID, err := uuid.Parse(linea.PilonID)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "pilon_id invalido")
			}
			if linea.Cantidad <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "la cantidad debe ser mayor a cero")
			}

			pilon, err := repo.FindPilonForUpdate(ctx, pilonID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "el pilon solicitado no existe")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar pilon")
			}
			if !pilon.Activo {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("la variedad %s no esta disponible", pilon.NombreVariedad))
			}
			if pilon.Stock < linea.Cantidad {
				return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf(
					"Stock insuficiente para %s. Disponible: %d, Solicitado: %d",
					pilon.NombreVariedad, pilon.Stock, linea.Cantidad,
				))
			}

			precio := pilon.PrecioUnitario
			if linea.PrecioUnitario != "" {
				override, err := decimal.NewFromString(linea.PrecioUnitario)
				if err != nil || override.IsNegative() {
					return pkgerrors.New(pkgerrors.CodeValidation, "precio_unitario invalido")
				}
				precio = override
			}

			subtotal := precio.Mul(decimal.NewFromInt(int64(linea.Cantidad)))
			total = total.Add(subtotal)
			pedido.Detalles = append(pedido.Detalles, models.DetallePedido{
				PilonID:        pilon.ID,
				Cantidad:       linea.Cantidad,
				PrecioUnitario: precio,
				Subtotal:       subtotal,
			})

			restante := pilon.Stock - linea.Cantidad
			if err := repo.UpdatePilonStock(ctx, pilon.ID, restante); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "descontar stock")
			}
			if pilon.Stock > pilon.StockMinimo && restante <= pilon.StockMinimo {
				alertas = append(alertas, alertaStock{variedad: pilon.NombreVariedad, stock: restante, minimo: pilon.StockMinimo})
			}
		}

		if descuento.GreaterThan(total) {
			return pkgerrors.New(pkgerrors.CodeValidation, "el descuento no puede superar el total")
		}
		pedido.Descuento = descuento
		pedido.Total = total.Sub(descuento)

		if err := repo.Create(ctx, pedido); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear pedido")
		}
		if err := repo.AddHistorial(ctx, &models.HistorialEstadoPedido{
			PedidoID:        pedido.ID,
			EstadoNuevo:     enums.EstadoPedidoRecibido,
			UsuarioCambioID: &actor.UsuarioID,
			Comentario:      comentarioCreacion,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registrar historial")
		}

		if len(alertas) > 0 {
			staff, err := repo.ListStaffIDs(ctx)
			if err != nil {
				s.warn(ctx, "listar personal para alertas de stock", err)
				return nil
			}
			for _, alerta := range alertas {
				if err := s.notifier.NotificarStockBajo(ctx, tx, staff, alerta.variedad, alerta.stock, alerta.minimo); err != nil {
					s.warn(ctx, "notificar stock bajo", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, pedido.ID)
}

func (s *service) List(ctx context.Context, actor Actor, filter ListFilter) ([]PedidoDTO, error) {
	if !actor.EsStaff() {
		filter.UsuarioID = &actor.UsuarioID
	}
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar pedidos")
	}
	out := make([]PedidoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, pedidoFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) MisPedidos(ctx context.Context, actor Actor) ([]PedidoDTO, error) {
	rows, err := s.repo.List(ctx, ListFilter{UsuarioID: &actor.UsuarioID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar mis pedidos")
	}
	out := make([]PedidoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, pedidoFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*PedidoDTO, error) {
	pedido, err := s.findPedido(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.EsStaff() && pedido.UsuarioID != actor.UsuarioID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido no encontrado")
	}
	dto := pedidoFromModel(pedido)
	return &dto, nil
}

// CambiarEstado moves an order to any workflow state. Jumps are not
// restricted: dispatch staff correct mislabeled orders by moving them
// backwards, so every transition is allowed and audited in the trail.
func (s *service) CambiarEstado(ctx context.Context, actor Actor, id uuid.UUID, req CambiarEstadoRequest) (*PedidoDTO, error) {
	if !actor.EsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede cambiar el estado")
	}
	nuevo, err := enums.ParseEstadoPedido(req.Estado)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "estado invalido")
	}

	pedido, err := s.findPedido(ctx, id)
	if err != nil {
		return nil, err
	}

	anterior := pedido.Estado
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pedido.Estado = nuevo
		if nuevo == enums.EstadoPedidoEntregado && pedido.FechaEntregaReal == nil {
			entregado := s.now()
			pedido.FechaEntregaReal = &entregado
		}
		if err := repo.Save(ctx, pedido); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar pedido")
		}
		if err := repo.AddHistorial(ctx, &models.HistorialEstadoPedido{
			PedidoID:        pedido.ID,
			EstadoAnterior:  &anterior,
			EstadoNuevo:     nuevo,
			UsuarioCambioID: &actor.UsuarioID,
			Comentario:      req.Comentario,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registrar historial")
		}

		if nuevo == enums.EstadoPedidoEntregado {
			err = s.notifier.NotificarEntrega(ctx, tx, pedido.UsuarioID, pedido.ID, pedido.CodigoSeguimiento)
		} else {
			err = s.notifier.NotificarCambioEstado(ctx, tx, pedido.UsuarioID, pedido.ID, pedido.CodigoSeguimiento, nuevo)
		}
		if err != nil {
			s.warn(ctx, "notificar cambio de estado", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, pedido.ID)
}

func (s *service) Cancelar(ctx context.Context, actor Actor, id uuid.UUID, req CancelarRequest) (*PedidoDTO, error) {
	pedido, err := s.findPedido(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.EsStaff() && pedido.UsuarioID != actor.UsuarioID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido no encontrado")
	}
	if pedido.Estado.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf(
			"no se puede cancelar un pedido en estado %s", pedido.Estado,
		))
	}

	anterior := pedido.Estado
	comentario := req.Motivo
	if comentario == "" {
		comentario = "Pedido cancelado"
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pedido.Estado = enums.EstadoPedidoCancelado
		if err := repo.Save(ctx, pedido); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancelar pedido")
		}
		if err := repo.AddHistorial(ctx, &models.HistorialEstadoPedido{
			PedidoID:        pedido.ID,
			EstadoAnterior:  &anterior,
			EstadoNuevo:     enums.EstadoPedidoCancelado,
			UsuarioCambioID: &actor.UsuarioID,
			Comentario:      comentario,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registrar historial")
		}
		if err := s.notifier.NotificarCambioEstado(ctx, tx, pedido.UsuarioID, pedido.ID, pedido.CodigoSeguimiento, enums.EstadoPedidoCancelado); err != nil {
			s.warn(ctx, "notificar cancelacion", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, actor, pedido.ID)
}

func (s *service) Calificar(ctx context.Context, actor Actor, id uuid.UUID, req CalificarRequest) (*PedidoDTO, error) {
	if req.Calificacion < 1 || req.Calificacion > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "la calificacion debe estar entre 1 y 5")
	}

	pedido, err := s.findPedido(ctx, id)
	if err != nil {
		return nil, err
	}
	if pedido.UsuarioID != actor.UsuarioID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido no encontrado")
	}
	if pedido.Estado != enums.EstadoPedidoEntregado {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "solo se pueden calificar pedidos entregados")
	}

	pedido.Calificacion = &req.Calificacion
	pedido.ComentarioCalificacion = req.Comentario
	if err := s.repo.Save(ctx, pedido); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "guardar calificacion")
	}

	return s.Get(ctx, actor, pedido.ID)
}

func (s *service) Eliminar(ctx context.Context, actor Actor, id uuid.UUID) error {
	if !actor.EsStaff() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "solo el personal puede eliminar pedidos")
	}
	if _, err := s.findPedido(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar pedido")
	}
	return nil
}

func (s *service) findPedido(ctx context.Context, id uuid.UUID) (*models.Pedido, error) {
	pedido, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar pedido")
	}
	if !pedido.Activo {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pedido no encontrado")
	}
	return pedido, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.log != nil {
		s.log.Error(ctx, msg, err)
	}
}
