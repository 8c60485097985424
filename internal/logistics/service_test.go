package logistics

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
	rutas     map[uuid.UUID]*models.RutaEntrega
	pedidos   map[uuid.UUID]*models.Pedido
	vehiculos map[uuid.UUID]*models.Vehiculo
	historial []*models.HistorialEstadoPedido
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rutas:     make(map[uuid.UUID]*models.RutaEntrega),
		pedidos:   make(map[uuid.UUID]*models.Pedido),
		vehiculos: make(map[uuid.UUID]*models.Vehiculo),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateRuta(_ context.Context, ruta *models.RutaEntrega) error {
	if ruta.ID == uuid.Nil {
		ruta.ID = uuid.New()
	}
	for i := range ruta.Paradas {
		if ruta.Paradas[i].ID == uuid.Nil {
			ruta.Paradas[i].ID = uuid.New()
		}
		ruta.Paradas[i].RutaID = ruta.ID
	}
	f.rutas[ruta.ID] = ruta
	return nil
}

func (f *fakeRepo) FindRuta(_ context.Context, id uuid.UUID) (*models.RutaEntrega, error) {
	ruta, ok := f.rutas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *ruta
	return &copia, nil
}

func (f *fakeRepo) ListRutas(_ context.Context, filter ListFilter) ([]models.RutaEntrega, error) {
	out := []models.RutaEntrega{}
	for _, r := range f.rutas {
		if filter.TecnicoCampoID != nil && r.TecnicoCampoID != *filter.TecnicoCampoID {
			continue
		}
		if filter.Estado != nil && r.Estado != *filter.Estado {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) SaveRuta(_ context.Context, ruta *models.RutaEntrega) error {
	existing, ok := f.rutas[ruta.ID]
	if ok {
		paradas := existing.Paradas
		copia := *ruta
		copia.Paradas = paradas
		f.rutas[ruta.ID] = &copia
		return nil
	}
	f.rutas[ruta.ID] = ruta
	return nil
}

func (f *fakeRepo) DeleteRuta(_ context.Context, id uuid.UUID) error {
	delete(f.rutas, id)
	return nil
}

func (f *fakeRepo) FindParada(_ context.Context, rutaID, pedidoID uuid.UUID) (*models.PedidoRuta, error) {
	ruta, ok := f.rutas[rutaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range ruta.Paradas {
		if ruta.Paradas[i].PedidoID == pedidoID {
			copia := ruta.Paradas[i]
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) SaveParada(_ context.Context, parada *models.PedidoRuta) error {
	ruta, ok := f.rutas[parada.RutaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range ruta.Paradas {
		if ruta.Paradas[i].ID == parada.ID {
			ruta.Paradas[i] = *parada
			return nil
		}
	}
	ruta.Paradas = append(ruta.Paradas, *parada)
	return nil
}

func (f *fakeRepo) FindPedido(_ context.Context, id uuid.UUID) (*models.Pedido, error) {
	pedido, ok := f.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *pedido
	return &copia, nil
}

func (f *fakeRepo) SavePedido(_ context.Context, pedido *models.Pedido) error {
	f.pedidos[pedido.ID] = pedido
	return nil
}

func (f *fakeRepo) AddHistorialPedido(_ context.Context, entry *models.HistorialEstadoPedido) error {
	f.historial = append(f.historial, entry)
	return nil
}

func (f *fakeRepo) FindVehiculo(_ context.Context, id uuid.UUID) (*models.Vehiculo, error) {
	v, ok := f.vehiculos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (f *fakeRepo) CountRutasActivas(_ context.Context) (int64, error) {
	var count int64
	for _, r := range f.rutas {
		if r.Estado != enums.EstadoRutaCompletada && r.Estado != enums.EstadoRutaCancelada {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountPedidosSinAsignar(_ context.Context) (int64, error) {
	asignados := map[uuid.UUID]bool{}
	for _, r := range f.rutas {
		for _, p := range r.Paradas {
			asignados[p.PedidoID] = true
		}
	}
	var count int64
	for _, p := range f.pedidos {
		if p.Activo && p.Estado == enums.EstadoPedidoListoEntrega && !asignados[p.ID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountEntregasEntre(_ context.Context, desde, hasta time.Time) (int64, error) {
	var count int64
	for _, p := range f.pedidos {
		if p.FechaEntregaReal != nil && !p.FechaEntregaReal.Before(desde) && p.FechaEntregaReal.Before(hasta) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) CountVehiculos(_ context.Context) (int64, int64, error) {
	var total int64
	for _, v := range f.vehiculos {
		if v.Activo {
			total++
		}
	}
	enRuta := map[uuid.UUID]bool{}
	for _, r := range f.rutas {
		if r.VehiculoID == nil {
			continue
		}
		switch r.Estado {
		case enums.EstadoRutaEnProgreso, enums.EstadoRutaEnTransito, enums.EstadoRutaEntregando:
			enRuta[*r.VehiculoID] = true
		}
	}
	return total, int64(len(enRuta)), nil
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

func (f *fakeNotifier) NotificarRutaAsignada(_ context.Context, _ *gorm.DB, usuarioID, _ uuid.UUID, _ string) error {
	f.enviadas = append(f.enviadas, notificacionRegistrada{tipo: enums.NotificacionRutaAsignada, usuarioID: usuarioID})
	return nil
}

func (f *fakeNotifier) NotificarEntrega(_ context.Context, _ *gorm.DB, usuarioID, _ uuid.UUID, _ string) error {
	f.enviadas = append(f.enviadas, notificacionRegistrada{tipo: enums.NotificacionEntregaRealizada, usuarioID: usuarioID})
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
		TimeZone: "America/Guatemala",
		Now:      func() time.Time { return time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &testEnv{repo: repo, notifier: notifier, svc: svc}
}

func (e *testEnv) conPedido(estado enums.EstadoPedido) *models.Pedido {
	pedido := &models.Pedido{
		ID:                uuid.New(),
		UsuarioID:         uuid.New(),
		CodigoSeguimiento: "PED-20250614-0001",
		Estado:            estado,
		Activo:            true,
	}
	e.repo.pedidos[pedido.ID] = pedido
	return pedido
}

func staff() Actor {
	return Actor{UsuarioID: uuid.New(), Roles: enums.NewRolSet(enums.RolPersonalVivero)}
}

func tecnico(id uuid.UUID) Actor {
	return Actor{UsuarioID: id, Roles: enums.NewRolSet(enums.RolTecnicoCampo)}
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

func TestCrearRutaNumeraParadasYSaltaPedidosInexistentes(t *testing.T) {
	env := newTestEnv(t)
	primero := env.conPedido(enums.EstadoPedidoListoEntrega)
	segundo := env.conPedido(enums.EstadoPedidoListoEntrega)
	tecnicoID := uuid.New()

	dto, err := env.svc.Crear(context.Background(), staff(), CrearRutaRequest{
		NombreRuta:       "Ruta Oriente",
		TecnicoCampoID:   tecnicoID.String(),
		FechaPlanificada: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		PedidosIDs:       []string{primero.ID.String(), uuid.NewString(), segundo.ID.String()},
	})
	if err != nil {
		t.Fatalf("crear ruta: %v", err)
	}
	if dto.CodigoRuta != "RUT-20250614-0001" {
		t.Fatalf("unexpected codigo %s", dto.CodigoRuta)
	}
	if len(dto.Paradas) != 2 {
		t.Fatalf("missing order ids must be skipped, got %d stops", len(dto.Paradas))
	}
	if dto.Paradas[0].OrdenEntrega != 1 || dto.Paradas[1].OrdenEntrega != 2 {
		t.Fatalf("stops must be numbered 1..n, got %d/%d", dto.Paradas[0].OrdenEntrega, dto.Paradas[1].OrdenEntrega)
	}

	if len(env.notifier.enviadas) != 1 {
		t.Fatalf("technician must be notified once, got %d", len(env.notifier.enviadas))
	}
	enviada := env.notifier.enviadas[0]
	if enviada.tipo != enums.NotificacionRutaAsignada || enviada.usuarioID != tecnicoID {
		t.Fatalf("unexpected notification %+v", enviada)
	}
}

func TestCrearRutaConEstimacionesDeCarga(t *testing.T) {
	env := newTestEnv(t)
	primero := env.conPedido(enums.EstadoPedidoListoEntrega)
	segundo := env.conPedido(enums.EstadoPedidoListoEntrega)
	vehiculo := &models.Vehiculo{
		ID:               uuid.New(),
		Placa:            "C123ABC",
		CapacidadCargaKg: decimal.RequireFromString("1"),
		Activo:           true,
	}
	env.repo.vehiculos[vehiculo.ID] = vehiculo
	vehiculoID := vehiculo.ID.String()

	dto, err := env.svc.Crear(context.Background(), staff(), CrearRutaRequest{
		NombreRuta:       "Ruta Oriente",
		TecnicoCampoID:   uuid.NewString(),
		VehiculoID:       &vehiculoID,
		FechaPlanificada: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Paradas: []ParadaRequest{
			{PedidoID: primero.ID.String(), Prioridad: 1, PesoKg: decimal.RequireFromString("120"), VolumenM3: decimal.RequireFromString("0.8")},
			{PedidoID: segundo.ID.String(), PesoKg: decimal.RequireFromString("80"), VolumenM3: decimal.RequireFromString("0.4")},
		},
	})
	if err != nil {
		t.Fatalf("crear ruta: %v", err)
	}
	if len(dto.Paradas) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(dto.Paradas))
	}
	if !dto.Paradas[0].PesoKg.Equal(decimal.RequireFromString("120")) || dto.Paradas[0].Prioridad != 1 {
		t.Fatalf("stop estimates must be stored, got %+v", dto.Paradas[0])
	}
	if !dto.PesoTotalKg.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("expected peso_total_kg 200, got %s", dto.PesoTotalKg)
	}
	if !dto.VolumenTotalM3.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("expected volumen_total_m3 1.2, got %s", dto.VolumenTotalM3)
	}

	result, err := env.svc.ValidarCapacidad(context.Background(), staff(), dto.ID)
	if err != nil {
		t.Fatalf("validar capacidad: %v", err)
	}
	if result.OK {
		t.Fatalf("200kg over a 1kg vehicle must not be ok")
	}
	if len(result.Excedentes) != 1 || result.Excedentes[0].Dimension != "peso" {
		t.Fatalf("expected peso exceeded, got %+v", result.Excedentes)
	}
}

func TestCrearRutaRechazaEstimacionesNegativas(t *testing.T) {
	env := newTestEnv(t)
	pedido := env.conPedido(enums.EstadoPedidoListoEntrega)

	_, err := env.svc.Crear(context.Background(), staff(), CrearRutaRequest{
		NombreRuta:       "Ruta Oriente",
		TecnicoCampoID:   uuid.NewString(),
		FechaPlanificada: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Paradas: []ParadaRequest{
			{PedidoID: pedido.ID.String(), PesoKg: decimal.RequireFromString("-5")},
		},
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCrearRutaRequiereStaff(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Crear(context.Background(), tecnico(uuid.New()), CrearRutaRequest{
		NombreRuta:     "Ruta Oriente",
		TecnicoCampoID: uuid.NewString(),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestActualizarParadaRecalculaTotales(t *testing.T) {
	env := newTestEnv(t)
	primero := env.conPedido(enums.EstadoPedidoListoEntrega)
	segundo := env.conPedido(enums.EstadoPedidoListoEntrega)
	ruta := &models.RutaEntrega{
		ID:             uuid.New(),
		TecnicoCampoID: uuid.New(),
		Estado:         enums.EstadoRutaPlanificada,
		PesoTotalKg:    decimal.RequireFromString("150"),
		VolumenTotalM3: decimal.RequireFromString("1.0"),
		Paradas: []models.PedidoRuta{
			{ID: uuid.New(), PedidoID: primero.ID, OrdenEntrega: 1, PesoKg: decimal.RequireFromString("100"), VolumenM3: decimal.RequireFromString("0.6")},
			{ID: uuid.New(), PedidoID: segundo.ID, OrdenEntrega: 2, PesoKg: decimal.RequireFromString("50"), VolumenM3: decimal.RequireFromString("0.4")},
		},
	}
	ruta.Paradas[0].RutaID = ruta.ID
	ruta.Paradas[1].RutaID = ruta.ID
	env.repo.rutas[ruta.ID] = ruta

	peso := decimal.RequireFromString("300")
	prioridad := 5
	dto, err := env.svc.ActualizarParada(context.Background(), staff(), ruta.ID, primero.ID, ActualizarParadaRequest{
		Prioridad: &prioridad,
		PesoKg:    &peso,
	})
	if err != nil {
		t.Fatalf("actualizar parada: %v", err)
	}
	if !dto.Paradas[0].PesoKg.Equal(peso) || dto.Paradas[0].Prioridad != 5 {
		t.Fatalf("stop must carry the new estimate, got %+v", dto.Paradas[0])
	}
	if !dto.Paradas[0].VolumenM3.Equal(decimal.RequireFromString("0.6")) {
		t.Fatalf("omitted fields must keep their value, got %+v", dto.Paradas[0])
	}
	if !dto.PesoTotalKg.Equal(decimal.RequireFromString("350")) {
		t.Fatalf("expected peso_total_kg 350, got %s", dto.PesoTotalKg)
	}
	if !dto.VolumenTotalM3.Equal(decimal.RequireFromString("1.0")) {
		t.Fatalf("expected volumen_total_m3 1.0, got %s", dto.VolumenTotalM3)
	}
}

func TestActualizarParadaRequiereStaff(t *testing.T) {
	env := newTestEnv(t)
	tecnicoID := uuid.New()
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: tecnicoID, Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[ruta.ID] = ruta

	_, err := env.svc.ActualizarParada(context.Background(), tecnico(tecnicoID), ruta.ID, uuid.New(), ActualizarParadaRequest{})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestActualizarParadaPedidoFueraDeRuta(t *testing.T) {
	env := newTestEnv(t)
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: uuid.New(), Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[ruta.ID] = ruta

	_, err := env.svc.ActualizarParada(context.Background(), staff(), ruta.ID, uuid.New(), ActualizarParadaRequest{})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListFiltraRutasDelTecnico(t *testing.T) {
	env := newTestEnv(t)
	tecnicoID := uuid.New()
	env.repo.rutas[uuid.New()] = &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: tecnicoID, Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[uuid.New()] = &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: uuid.New(), Estado: enums.EstadoRutaPlanificada}

	propias, err := env.svc.List(context.Background(), tecnico(tecnicoID), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(propias) != 1 {
		t.Fatalf("technician must only see own routes, got %d", len(propias))
	}

	todas, err := env.svc.List(context.Background(), staff(), ListFilter{})
	if err != nil {
		t.Fatalf("list staff: %v", err)
	}
	if len(todas) != 2 {
		t.Fatalf("staff must see all routes, got %d", len(todas))
	}
}

func TestIniciarSoloDesdePlanificada(t *testing.T) {
	env := newTestEnv(t)
	tecnicoID := uuid.New()
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: tecnicoID, Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[ruta.ID] = ruta

	dto, err := env.svc.Iniciar(context.Background(), tecnico(tecnicoID), ruta.ID)
	if err != nil {
		t.Fatalf("iniciar: %v", err)
	}
	if dto.Estado != "en_progreso" || dto.FechaInicio == nil {
		t.Fatalf("route must move to en_progreso with fecha_inicio, got %+v", dto)
	}

	_, err = env.svc.Iniciar(context.Background(), tecnico(tecnicoID), ruta.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestFinalizarSoloDesdeEnProgreso(t *testing.T) {
	env := newTestEnv(t)
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: uuid.New(), Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[ruta.ID] = ruta

	_, err := env.svc.Finalizar(context.Background(), staff(), ruta.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if _, err := env.svc.Iniciar(context.Background(), staff(), ruta.ID); err != nil {
		t.Fatalf("iniciar: %v", err)
	}
	dto, err := env.svc.Finalizar(context.Background(), staff(), ruta.ID)
	if err != nil {
		t.Fatalf("finalizar: %v", err)
	}
	if dto.Estado != "completada" || dto.FechaFin == nil {
		t.Fatalf("route must complete with fecha_fin, got %+v", dto)
	}
}

func TestRutaAjenaProhibidaParaTecnico(t *testing.T) {
	env := newTestEnv(t)
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: uuid.New(), Estado: enums.EstadoRutaPlanificada}
	env.repo.rutas[ruta.ID] = ruta

	_, err := env.svc.Iniciar(context.Background(), tecnico(uuid.New()), ruta.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestConfirmarEntregaActualizaParadaYPedido(t *testing.T) {
	env := newTestEnv(t)
	pedido := env.conPedido(enums.EstadoPedidoEnRuta)
	tecnicoID := uuid.New()
	ruta := &models.RutaEntrega{
		ID:             uuid.New(),
		CodigoRuta:     "RUT-20250614-0001",
		TecnicoCampoID: tecnicoID,
		Estado:         enums.EstadoRutaEnProgreso,
		Paradas: []models.PedidoRuta{
			{ID: uuid.New(), PedidoID: pedido.ID, OrdenEntrega: 1},
		},
	}
	ruta.Paradas[0].RutaID = ruta.ID
	env.repo.rutas[ruta.ID] = ruta

	receptor := "Maria Lopez"
	dto, err := env.svc.ConfirmarEntrega(context.Background(), tecnico(tecnicoID), ruta.ID, ConfirmarEntregaRequest{
		PedidoID:       pedido.ID.String(),
		ReceptorNombre: &receptor,
	})
	if err != nil {
		t.Fatalf("confirmar entrega: %v", err)
	}

	if !dto.Paradas[0].Entregado || dto.Paradas[0].HoraSalida == nil {
		t.Fatalf("stop must be delivered with hora_salida, got %+v", dto.Paradas[0])
	}
	guardado := env.repo.pedidos[pedido.ID]
	if guardado.Estado != enums.EstadoPedidoEntregado || guardado.FechaEntregaReal == nil {
		t.Fatalf("order must be forced to entregado, got %+v", guardado)
	}
	if len(env.repo.historial) != 1 {
		t.Fatalf("delivery must append a history row")
	}
	enviada := env.notifier.enviadas[len(env.notifier.enviadas)-1]
	if enviada.tipo != enums.NotificacionEntregaRealizada || enviada.usuarioID != pedido.UsuarioID {
		t.Fatalf("owner must be notified, got %+v", enviada)
	}
}

func TestConfirmarEntregaPedidoFueraDeRuta(t *testing.T) {
	env := newTestEnv(t)
	ruta := &models.RutaEntrega{ID: uuid.New(), TecnicoCampoID: uuid.New(), Estado: enums.EstadoRutaEnProgreso}
	env.repo.rutas[ruta.ID] = ruta

	_, err := env.svc.ConfirmarEntrega(context.Background(), staff(), ruta.ID, ConfirmarEntregaRequest{
		PedidoID: uuid.NewString(),
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestValidarCapacidadReportaExcedentes(t *testing.T) {
	env := newTestEnv(t)
	volumen := decimal.RequireFromString("2.5")
	vehiculo := &models.Vehiculo{
		ID:                 uuid.New(),
		Placa:              "C123ABC",
		CapacidadCargaKg:   decimal.RequireFromString("500"),
		CapacidadVolumenM3: &volumen,
		Activo:             true,
	}
	env.repo.vehiculos[vehiculo.ID] = vehiculo

	ruta := &models.RutaEntrega{
		ID:             uuid.New(),
		TecnicoCampoID: uuid.New(),
		VehiculoID:     &vehiculo.ID,
		Estado:         enums.EstadoRutaPlanificada,
		Paradas: []models.PedidoRuta{
			{PesoKg: decimal.RequireFromString("400"), VolumenM3: decimal.RequireFromString("1.0")},
			{PesoKg: decimal.RequireFromString("200"), VolumenM3: decimal.RequireFromString("1.0")},
		},
	}
	env.repo.rutas[ruta.ID] = ruta

	result, err := env.svc.ValidarCapacidad(context.Background(), staff(), ruta.ID)
	if err != nil {
		t.Fatalf("validar capacidad: %v", err)
	}
	if result.OK {
		t.Fatalf("600kg over 500kg must not be ok")
	}
	if len(result.Excedentes) != 1 || result.Excedentes[0].Dimension != "peso" {
		t.Fatalf("expected only peso exceeded, got %+v", result.Excedentes)
	}
}

func TestValidarCapacidadIgnoraVolumenSinDeclarar(t *testing.T) {
	env := newTestEnv(t)
	vehiculo := &models.Vehiculo{
		ID:               uuid.New(),
		Placa:            "C123ABC",
		CapacidadCargaKg: decimal.RequireFromString("1000"),
		Activo:           true,
	}
	env.repo.vehiculos[vehiculo.ID] = vehiculo

	ruta := &models.RutaEntrega{
		ID:             uuid.New(),
		TecnicoCampoID: uuid.New(),
		VehiculoID:     &vehiculo.ID,
		Estado:         enums.EstadoRutaPlanificada,
		Paradas: []models.PedidoRuta{
			{PesoKg: decimal.RequireFromString("100"), VolumenM3: decimal.RequireFromString("99")},
		},
	}
	env.repo.rutas[ruta.ID] = ruta

	result, err := env.svc.ValidarCapacidad(context.Background(), staff(), ruta.ID)
	if err != nil {
		t.Fatalf("validar capacidad: %v", err)
	}
	if !result.OK {
		t.Fatalf("volume check must be skipped when the vehicle declares none")
	}
}

func TestEstadisticas(t *testing.T) {
	env := newTestEnv(t)
	env.conPedido(enums.EstadoPedidoListoEntrega)
	entregado := env.conPedido(enums.EstadoPedidoEntregado)
	fecha := time.Date(2025, 6, 14, 15, 0, 0, 0, time.UTC)
	entregado.FechaEntregaReal = &fecha

	vehiculoID := uuid.New()
	env.repo.vehiculos[vehiculoID] = &models.Vehiculo{ID: vehiculoID, Activo: true}
	env.repo.rutas[uuid.New()] = &models.RutaEntrega{
		ID:             uuid.New(),
		TecnicoCampoID: uuid.New(),
		VehiculoID:     &vehiculoID,
		Estado:         enums.EstadoRutaEnProgreso,
	}

	stats, err := env.svc.Estadisticas(context.Background(), staff())
	if err != nil {
		t.Fatalf("estadisticas: %v", err)
	}
	if stats.RutasActivas != 1 {
		t.Fatalf("expected 1 active route, got %d", stats.RutasActivas)
	}
	if stats.PedidosSinAsignar != 1 {
		t.Fatalf("expected 1 unassigned order, got %d", stats.PedidosSinAsignar)
	}
	if stats.EntregasHoy != 1 {
		t.Fatalf("expected 1 delivery today, got %d", stats.EntregasHoy)
	}
	if stats.VehiculosTotales != 1 || stats.VehiculosEnRuta != 1 || stats.VehiculosDisponible != 0 {
		t.Fatalf("unexpected vehicle counters %+v", stats)
	}
}
