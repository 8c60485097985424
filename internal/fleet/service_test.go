package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db/models"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

type fakeRepo struct {
	vehiculos      map[uuid.UUID]*models.Vehiculo
	documentos     map[uuid.UUID]*models.DocumentoVehiculo
	transportistas map[uuid.UUID]*models.Transportista
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		vehiculos:      make(map[uuid.UUID]*models.Vehiculo),
		documentos:     make(map[uuid.UUID]*models.DocumentoVehiculo),
		transportistas: make(map[uuid.UUID]*models.Transportista),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) ListVehiculos(_ context.Context, soloActivos bool) ([]models.Vehiculo, error) {
	out := []models.Vehiculo{}
	for _, v := range f.vehiculos {
		if soloActivos && !v.Activo {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (f *fakeRepo) FindVehiculo(_ context.Context, id uuid.UUID) (*models.Vehiculo, error) {
	v, ok := f.vehiculos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *v
	return &copia, nil
}

func (f *fakeRepo) SaveVehiculo(_ context.Context, vehiculo *models.Vehiculo) error {
	if vehiculo.ID == uuid.Nil {
		vehiculo.ID = uuid.New()
	}
	f.vehiculos[vehiculo.ID] = vehiculo
	return nil
}

func (f *fakeRepo) DeactivateVehiculo(_ context.Context, id uuid.UUID) error {
	if v, ok := f.vehiculos[id]; ok {
		v.Activo = false
	}
	return nil
}

func (f *fakeRepo) ListDocumentos(_ context.Context, vehiculoID uuid.UUID) ([]models.DocumentoVehiculo, error) {
	out := []models.DocumentoVehiculo{}
	for _, d := range f.documentos {
		if d.VehiculoID == vehiculoID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindDocumento(_ context.Context, id uuid.UUID) (*models.DocumentoVehiculo, error) {
	d, ok := f.documentos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *d
	return &copia, nil
}

func (f *fakeRepo) SaveDocumento(_ context.Context, documento *models.DocumentoVehiculo) error {
	if documento.ID == uuid.Nil {
		documento.ID = uuid.New()
	}
	f.documentos[documento.ID] = documento
	return nil
}

func (f *fakeRepo) DeleteDocumento(_ context.Context, id uuid.UUID) error {
	delete(f.documentos, id)
	return nil
}

func (f *fakeRepo) ListTransportistas(_ context.Context, soloActivos bool) ([]models.Transportista, error) {
	out := []models.Transportista{}
	for _, t := range f.transportistas {
		if soloActivos && !t.Activo {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeRepo) FindTransportista(_ context.Context, id uuid.UUID) (*models.Transportista, error) {
	t, ok := f.transportistas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *t
	return &copia, nil
}

func (f *fakeRepo) SaveTransportista(_ context.Context, transportista *models.Transportista) error {
	if transportista.ID == uuid.Nil {
		transportista.ID = uuid.New()
	}
	f.transportistas[transportista.ID] = transportista
	return nil
}

func (f *fakeRepo) DeactivateTransportista(_ context.Context, id uuid.UUID) error {
	if t, ok := f.transportistas[id]; ok {
		t.Activo = false
	}
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		TimeZone: "America/Guatemala",
		Now:      func() time.Time { return time.Date(2025, 6, 14, 16, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
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

func TestCrearVehiculoNormalizaPlaca(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	dto, err := svc.CrearVehiculo(context.Background(), UpsertVehiculoRequest{
		Placa:            " c123abc ",
		Marca:            "Isuzu",
		Modelo:           "NPR",
		Tipo:             "camion",
		CapacidadCargaKg: "1500",
	})
	if err != nil {
		t.Fatalf("crear vehiculo: %v", err)
	}
	if dto.Placa != "C123ABC" {
		t.Fatalf("plate must be upper-cased and trimmed, got %q", dto.Placa)
	}
	if !dto.Activo {
		t.Fatalf("new vehicle must default to active")
	}
}

func TestCrearVehiculoRechazaCapacidadInvalida(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.CrearVehiculo(context.Background(), UpsertVehiculoRequest{
		Placa:            "C123ABC",
		Marca:            "Isuzu",
		Modelo:           "NPR",
		Tipo:             "camion",
		CapacidadCargaKg: "-10",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDocumentoDerivaVencimiento(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	vehiculo, err := svc.CrearVehiculo(context.Background(), UpsertVehiculoRequest{
		Placa:            "C123ABC",
		Marca:            "Isuzu",
		Modelo:           "NPR",
		Tipo:             "camion",
		CapacidadCargaKg: "1500",
	})
	if err != nil {
		t.Fatalf("crear vehiculo: %v", err)
	}

	// Today in Guatemala is 2025-06-14; this document expired the day before.
	vencido, err := svc.CrearDocumento(context.Background(), vehiculo.ID, UpsertDocumentoRequest{
		Tipo:             "seguro",
		NumeroDocumento:  "SEG-001",
		FechaVencimiento: time.Date(2025, 6, 13, 0, 0, 0, 0, time.FixedZone("CST", -6*3600)),
	})
	if err != nil {
		t.Fatalf("crear documento: %v", err)
	}
	if !vencido.EstaVencido {
		t.Fatalf("document expiring yesterday must report esta_vencido")
	}
	if vencido.DiasParaVencer >= 0 {
		t.Fatalf("expired document must report negative days, got %d", vencido.DiasParaVencer)
	}

	vigente, err := svc.CrearDocumento(context.Background(), vehiculo.ID, UpsertDocumentoRequest{
		Tipo:             "tarjeta_circulacion",
		NumeroDocumento:  "TC-002",
		FechaVencimiento: time.Date(2025, 6, 24, 0, 0, 0, 0, time.FixedZone("CST", -6*3600)),
	})
	if err != nil {
		t.Fatalf("crear documento: %v", err)
	}
	if vigente.EstaVencido {
		t.Fatalf("future document must not report esta_vencido")
	}
	if vigente.DiasParaVencer != 10 {
		t.Fatalf("expected 10 days to expiry, got %d", vigente.DiasParaVencer)
	}
}

func TestCrearDocumentoRechazaTipoDesconocido(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	vehiculo, _ := svc.CrearVehiculo(context.Background(), UpsertVehiculoRequest{
		Placa:            "C123ABC",
		Marca:            "Isuzu",
		Modelo:           "NPR",
		Tipo:             "camion",
		CapacidadCargaKg: "1500",
	})

	_, err := svc.CrearDocumento(context.Background(), vehiculo.ID, UpsertDocumentoRequest{
		Tipo:             "permiso_especial",
		NumeroDocumento:  "X-1",
		FechaVencimiento: time.Now(),
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDesactivarVehiculoEsSoft(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)
	vehiculo, _ := svc.CrearVehiculo(context.Background(), UpsertVehiculoRequest{
		Placa:            "C123ABC",
		Marca:            "Isuzu",
		Modelo:           "NPR",
		Tipo:             "camion",
		CapacidadCargaKg: "1500",
	})

	if err := svc.DesactivarVehiculo(context.Background(), vehiculo.ID); err != nil {
		t.Fatalf("desactivar: %v", err)
	}
	if repo.vehiculos[vehiculo.ID].Activo {
		t.Fatalf("vehicle must be inactive")
	}
	if _, ok := repo.vehiculos[vehiculo.ID]; !ok {
		t.Fatalf("row must not be deleted")
	}
}

func TestTransportistaCRUD(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	creado, err := svc.CrearTransportista(context.Background(), UpsertTransportistaRequest{Nombre: "Transportes del Sur"})
	if err != nil {
		t.Fatalf("crear transportista: %v", err)
	}
	if !creado.Activo {
		t.Fatalf("new carrier must default to active")
	}

	telefono := "5555-1234"
	actualizado, err := svc.ActualizarTransportista(context.Background(), creado.ID, UpsertTransportistaRequest{
		Nombre:   "Transportes del Sur S.A.",
		Telefono: &telefono,
	})
	if err != nil {
		t.Fatalf("actualizar: %v", err)
	}
	if actualizado.Nombre != "Transportes del Sur S.A." || actualizado.Telefono == nil {
		t.Fatalf("update must persist, got %+v", actualizado)
	}

	if err := svc.DesactivarTransportista(context.Background(), creado.ID); err != nil {
		t.Fatalf("desactivar: %v", err)
	}
	activos, _ := svc.Transportistas(context.Background(), true)
	if len(activos) != 0 {
		t.Fatalf("inactive carriers must be filtered, got %d", len(activos))
	}
}
