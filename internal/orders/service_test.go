package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

type fakeRepo struct {
	pedidos    map[uuid.UUID]*models.Pedido
	historial  []*models.HistorialEstadoPedido
	pilones    map[uuid.UUID]*models.CatalogoPilon
	municipios map[uuid.UUID]*models.Municipio
	staffIDs   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		pedidos:    make(map[uuid.UUID]*models.Pedido),
		pilones:    make(map[uuid.UUID]*models.CatalogoPilon),
		municipios: make(map[uuid.UUID]*models.Municipio),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, pedido *models.Pedido) error {
	if pedido.ID == uuid.Nil {
		pedido.ID = uuid.New()
	}
	f.pedidos[pedido.ID] = pedido
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Pedido, error) {
	pedido, ok := f.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *pedido
	for _, h := range f.historial {
		if h.PedidoID == id {
			copia.Historial = append(copia.Historial, *h)
		}
	}
	return &copia, nil
}

func (f *fakeRepo) List(_ context.Context, filter ListFilter) ([]models.Pedido, error) {
	out := []models.Pedido{}
	for _, p := range f.pedidos {
		if !p.Activo {
			continue
		}
		if filter.UsuarioID != nil && p.UsuarioID != *filter.UsuarioID {
			continue
		}
		if filter.Estado != nil && p.Estado != *filter.Estado {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRepo) Save(_ context.Context, pedido *models.Pedido) error {
	f.pedidos[pedido.ID] = pedido
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := f.pedidos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (f *fakeRepo) AddHistorial(_ context.Context, entry *models.HistorialEstadoPedido) error {
	f.historial = append(f.historial, entry)
	return nil
}

func (f *fakeRepo) FindPilonForUpdate(_ context.Context, id uuid.UUID) (*models.CatalogoPilon, error) {
	pilon, ok := f.pilones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *pilon
	return &copia, nil
}

func (f *fakeRepo) UpdatePilonStock(_ context.Context, id uuid.UUID, stock int) error {
	if p, ok := f.pilones[id]; ok {
		p.Stock = stock
	}
	return nil
}

func (f *fakeRepo) FindMunicipio(_ context.Context, id uuid.UUID) (*models.Municipio, error) {
	m, ok := f.municipios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListStaffIDs(_ context.Context) ([]uuid.UUID, error) {
	return f.staffIDs, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeGenerator struct {
	n int
}

func (g *fakeGenerator) Next(_ context.Context, _ *gorm.DB, prefijo string, now time.Time) (string, error) {
	g.n++
	return fmt.Sprintf("%s-%s-%04d", prefijo, now.Format("20060102"), g.n), nil
}

type notificacionRegistrada struct {
	tipo      enums.TipoNotificacion
	usuarioID uuid.UUID
}

type fakeNotifier struct {
	enviadas []notificacionRegistrada
}

func (f *fakeNotifier) NotificarCambioEstado(_ context.Context, _ *gorm.DB, usuarioID, _ uuid.UUID, _ string, _ enums.EstadoPedido) error {
	f.enviadas = append(f.enviadas, notificacionRegistrada{tipo: enums.NotificacionCambioEstado, usuarioID: usuarioID})
	return nil
}

func (f *fakeNotifier) NotificarEntrega(_ context.Context, _ *gorm.DB, usuarioID, _ uuid.UUID, _ string) error {
	f.enviadas = append(f.enviadas, notificacionRegistrada{tipo: enums.NotificacionEntregaRealizada, usuarioID: usuarioID})
	return nil
}

func (f *fakeNotifier) NotificarStockBajo(_ context.Context, _ *gorm.DB, usuarioIDs []uuid.UUID, _ string, _, _ int) error {
	for _, id := range usuarioIDs {
		f.enviadas = append(f.enviadas, notificacionRegistrada{tipo: enums.NotificacionStockBajo, usuarioID: id})
	}
	return nil
}

type testEnv struct {
	repo     *fakeRepo
	notifier *fakeNotifier
	svc      Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newFakeRepo()
	notifier := &fakeNotifier{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		TxRunner: fakeTx{},
		Codigos:  &fakeGenerator{},
		Notifier: notifier,
		Now:      func() time.Time { return time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{repo: repo, notifier: notifier, svc: svc}
}

func (e *testEnv) conPilon(t *testing.T, variedad string, stock, minimo int, precio string) *models.CatalogoPilon {
	t.Helper()
	monto, err := decimal.NewFromString(precio)
	if err != nil {
		t.Fatalf("precio %q: %v", precio, err)
	}
	pilon := &models.CatalogoPilon{
		ID:             uuid.New(),
		NombreVariedad: variedad,
		Stock:          stock,
		StockMinimo:    minimo,
		PrecioUnitario: monto,
		Activo:         true,
	}
	e.repo.pilones[pilon.ID] = pilon
	return pilon
}

func agricultor() Actor {
	return Actor{UsuarioID: uuid.New(), Roles: enums.NewRolSet(enums.RolAgricultor)}
}

func personalVivero() Actor {
	return Actor{UsuarioID: uuid.New(), Roles: enums.NewRolSet(enums.RolPersonalVivero)}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error with code %s, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCrearPedidoCalculaTotalesYDescuentaStock(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	chile := env.conPilon(t, "Chile Pimiento", 50, 10, "2.00")
	actor := agricultor()

	dto, err := env.svc.Crear(context.Background(), actor, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Descuento:        "5",
		Detalles: []CrearDetalleRequest{
			{PilonID: tomate.ID.String(), Cantidad: 20},
			{PilonID: chile.ID.String(), Cantidad: 10, PrecioUnitario: "1.75"},
		},
	})
	if err != nil {
		t.Fatalf("crear pedido: %v", err)
	}

	// 20*1.50 + 10*1.75 - 5 = 42.50
	if !dto.Total.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("unexpected total %s", dto.Total)
	}
	if dto.CodigoSeguimiento != "PED-20250614-0001" {
		t.Fatalf("unexpected codigo %s", dto.CodigoSeguimiento)
	}
	if dto.Estado != "recibido" {
		t.Fatalf("unexpected estado %s", dto.Estado)
	}
	if env.repo.pilones[tomate.ID].Stock != 80 {
		t.Fatalf("tomate stock should drop to 80, got %d", env.repo.pilones[tomate.ID].Stock)
	}
	if env.repo.pilones[chile.ID].Stock != 40 {
		t.Fatalf("chile stock should drop to 40, got %d", env.repo.pilones[chile.ID].Stock)
	}
	if len(env.repo.historial) != 1 || env.repo.historial[0].Comentario != "Pedido creado" {
		t.Fatalf("expected initial history entry, got %+v", env.repo.historial)
	}
	if env.repo.historial[0].EstadoAnterior != nil {
		t.Fatalf("initial history must have no previous state")
	}
}

func TestCrearPedidoRechazaStockInsuficiente(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 5, 10, "1.50")

	_, err := env.svc.Crear(context.Background(), agricultor(), CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 8}},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	want := "Stock insuficiente para Tomate Rio Grande. Disponible: 5, Solicitado: 8"
	if pkgerrors.As(err).Message() != want {
		t.Fatalf("unexpected message %q", pkgerrors.As(err).Message())
	}
	if env.repo.pilones[tomate.ID].Stock != 5 {
		t.Fatalf("stock must be untouched on rejection")
	}
}

func TestCrearPedidoNotificaStockBajoAlCruzarMinimo(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 12, 10, "1.50")
	staff := uuid.New()
	env.repo.staffIDs = []uuid.UUID{staff}

	_, err := env.svc.Crear(context.Background(), agricultor(), CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 4}},
	})
	if err != nil {
		t.Fatalf("crear pedido: %v", err)
	}

	if len(env.notifier.enviadas) != 1 {
		t.Fatalf("expected one low-stock notification, got %d", len(env.notifier.enviadas))
	}
	enviada := env.notifier.enviadas[0]
	if enviada.tipo != enums.NotificacionStockBajo || enviada.usuarioID != staff {
		t.Fatalf("unexpected notification %+v", enviada)
	}
}

func TestCrearPedidoNoRepiteAlertaBajoMinimo(t *testing.T) {
	env := newTestEnv(t)
	// Already under the minimum: no crossing, no alert.
	tomate := env.conPilon(t, "Tomate Rio Grande", 8, 10, "1.50")
	env.repo.staffIDs = []uuid.UUID{uuid.New()}

	_, err := env.svc.Crear(context.Background(), agricultor(), CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 2}},
	})
	if err != nil {
		t.Fatalf("crear pedido: %v", err)
	}
	if len(env.notifier.enviadas) != 0 {
		t.Fatalf("expected no notification, got %d", len(env.notifier.enviadas))
	}
}

func TestCrearPedidoRequiereDetalles(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Crear(context.Background(), agricultor(), CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCrearPedidoParaOtroUsuarioRequiereStaff(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")

	_, err := env.svc.Crear(context.Background(), agricultor(), CrearPedidoRequest{
		UsuarioID:        uuid.NewString(),
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})
	assertCode(t, err, pkgerrors.CodeForbidden)

	cliente := uuid.New()
	dto, err := env.svc.Crear(context.Background(), personalVivero(), CrearPedidoRequest{
		UsuarioID:        cliente.String(),
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})
	if err != nil {
		t.Fatalf("crear para otro usuario: %v", err)
	}
	if dto.UsuarioID != cliente {
		t.Fatalf("order must belong to the named user")
	}
}

func TestCambiarEstadoRegistraHistorialYNotifica(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, err := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})
	if err != nil {
		t.Fatalf("crear pedido: %v", err)
	}

	staff := personalVivero()
	dto, err := env.svc.CambiarEstado(context.Background(), staff, creado.ID, CambiarEstadoRequest{
		Estado:     "confirmado",
		Comentario: "Revisado en vivero",
	})
	if err != nil {
		t.Fatalf("cambiar estado: %v", err)
	}
	if dto.Estado != "confirmado" {
		t.Fatalf("unexpected estado %s", dto.Estado)
	}

	ultima := env.repo.historial[len(env.repo.historial)-1]
	if ultima.EstadoAnterior == nil || *ultima.EstadoAnterior != enums.EstadoPedidoRecibido {
		t.Fatalf("history must record the previous state")
	}
	if ultima.EstadoNuevo != enums.EstadoPedidoConfirmado {
		t.Fatalf("history must record the new state")
	}

	enviada := env.notifier.enviadas[len(env.notifier.enviadas)-1]
	if enviada.tipo != enums.NotificacionCambioEstado || enviada.usuarioID != cliente.UsuarioID {
		t.Fatalf("owner must be notified of the state change, got %+v", enviada)
	}
}

func TestCambiarEstadoEntregadoFijaFechaRealYNotificaEntrega(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	// Direct jump recibido -> entregado is allowed.
	dto, err := env.svc.CambiarEstado(context.Background(), personalVivero(), creado.ID, CambiarEstadoRequest{Estado: "entregado"})
	if err != nil {
		t.Fatalf("cambiar estado: %v", err)
	}
	if dto.FechaEntregaReal == nil {
		t.Fatalf("delivered order must get fecha_entrega_real")
	}
	enviada := env.notifier.enviadas[len(env.notifier.enviadas)-1]
	if enviada.tipo != enums.NotificacionEntregaRealizada {
		t.Fatalf("expected delivery notification, got %+v", enviada)
	}
}

func TestCambiarEstadoRequiereStaff(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	_, err := env.svc.CambiarEstado(context.Background(), cliente, creado.ID, CambiarEstadoRequest{Estado: "confirmado"})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestCancelarPedidoEntregadoFalla(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})
	if _, err := env.svc.CambiarEstado(context.Background(), personalVivero(), creado.ID, CambiarEstadoRequest{Estado: "entregado"}); err != nil {
		t.Fatalf("entregar: %v", err)
	}

	_, err := env.svc.Cancelar(context.Background(), cliente, creado.ID, CancelarRequest{Motivo: "ya no lo necesito"})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelarGuardaMotivoEnHistorial(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	dto, err := env.svc.Cancelar(context.Background(), cliente, creado.ID, CancelarRequest{Motivo: "cambio de cultivo"})
	if err != nil {
		t.Fatalf("cancelar: %v", err)
	}
	if dto.Estado != "cancelado" {
		t.Fatalf("unexpected estado %s", dto.Estado)
	}
	ultima := env.repo.historial[len(env.repo.historial)-1]
	if ultima.Comentario != "cambio de cultivo" {
		t.Fatalf("motivo must land in the history trail, got %q", ultima.Comentario)
	}
}

func TestCalificarExigeEntregaYPropietario(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	_, err := env.svc.Calificar(context.Background(), cliente, creado.ID, CalificarRequest{Calificacion: 5})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if _, err := env.svc.CambiarEstado(context.Background(), personalVivero(), creado.ID, CambiarEstadoRequest{Estado: "entregado"}); err != nil {
		t.Fatalf("entregar: %v", err)
	}

	_, err = env.svc.Calificar(context.Background(), agricultor(), creado.ID, CalificarRequest{Calificacion: 5})
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = env.svc.Calificar(context.Background(), cliente, creado.ID, CalificarRequest{Calificacion: 6})
	assertCode(t, err, pkgerrors.CodeValidation)

	dto, err := env.svc.Calificar(context.Background(), cliente, creado.ID, CalificarRequest{Calificacion: 4})
	if err != nil {
		t.Fatalf("calificar: %v", err)
	}
	if dto.Calificacion == nil || *dto.Calificacion != 4 {
		t.Fatalf("rating must persist")
	}
}

func TestListScopesToOwnerUnlessStaff(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	primero := agricultor()
	segundo := agricultor()
	for _, actor := range []Actor{primero, segundo} {
		if _, err := env.svc.Crear(context.Background(), actor, CrearPedidoRequest{
			DireccionEntrega: "Aldea El Paraiso",
			Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
		}); err != nil {
			t.Fatalf("crear pedido: %v", err)
		}
	}

	propios, err := env.svc.List(context.Background(), primero, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(propios) != 1 {
		t.Fatalf("farmer must only see own orders, got %d", len(propios))
	}

	todos, err := env.svc.List(context.Background(), personalVivero(), ListFilter{})
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("staff must see all orders, got %d", len(todos))
	}
}

func TestGetOcultaPedidosAjenos(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	_, err := env.svc.Get(context.Background(), agricultor(), creado.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)

	if _, err := env.svc.Get(context.Background(), personalVivero(), creado.ID); err != nil {
		t.Fatalf("staff get: %v", err)
	}
}

func TestEliminarEsSoft(t *testing.T) {
	env := newTestEnv(t)
	tomate := env.conPilon(t, "Tomate Rio Grande", 100, 10, "1.50")
	cliente := agricultor()
	creado, _ := env.svc.Crear(context.Background(), cliente, CrearPedidoRequest{
		DireccionEntrega: "Aldea El Paraiso",
		Detalles:         []CrearDetalleRequest{{PilonID: tomate.ID.String(), Cantidad: 1}},
	})

	if err := env.svc.Eliminar(context.Background(), cliente, creado.ID); err == nil {
		t.Fatalf("farmer must not hard-manage orders")
	}
	if err := env.svc.Eliminar(context.Background(), personalVivero(), creado.ID); err != nil {
		t.Fatalf("eliminar: %v", err)
	}
	if env.repo.pedidos[creado.ID].Activo {
		t.Fatalf("order must be inactive")
	}
	if _, ok := env.repo.pedidos[creado.ID]; !ok {
		t.Fatalf("row must not be deleted")
	}

	_, err := env.svc.Get(context.Background(), personalVivero(), creado.ID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}
