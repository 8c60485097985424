package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agriconecta/backend/pkg/db"
	"github.com/agriconecta/backend/pkg/db/models"
	"github.com/agriconecta/backend/pkg/enums"
	pkgerrors "github.com/agriconecta/backend/pkg/errors"
)

// Service defines fleet and carrier management operations. All of them are
// staff-only; role enforcement happens at the router.
type Service interface {
	Vehiculos(ctx context.Context, soloActivos bool) ([]VehiculoDTO, error)
	Vehiculo(ctx context.Context, id uuid.UUID) (*VehiculoDTO, error)
	CrearVehiculo(ctx context.Context, req UpsertVehiculoRequest) (*VehiculoDTO, error)
	ActualizarVehiculo(ctx context.Context, id uuid.UUID, req UpsertVehiculoRequest) (*VehiculoDTO, error)
	DesactivarVehiculo(ctx context.Context, id uuid.UUID) error

	Documentos(ctx context.Context, vehiculoID uuid.UUID) ([]DocumentoDTO, error)
	CrearDocumento(ctx context.Context, vehiculoID uuid.UUID, req UpsertDocumentoRequest) (*DocumentoDTO, error)
	ActualizarDocumento(ctx context.Context, id uuid.UUID, req UpsertDocumentoRequest) (*DocumentoDTO, error)
	EliminarDocumento(ctx context.Context, id uuid.UUID) error

	Transportistas(ctx context.Context, soloActivos bool) ([]TransportistaDTO, error)
	CrearTransportista(ctx context.Context, req UpsertTransportistaRequest) (*TransportistaDTO, error)
	ActualizarTransportista(ctx context.Context, id uuid.UUID, req UpsertTransportistaRequest) (*TransportistaDTO, error)
	DesactivarTransportista(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a fleet service.
type ServiceParams struct {
	Repo     Repository
	TimeZone string
	Now      func() time.Time
}

// NewService constructs a fleet service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("fleet repository is required")
	}
	loc, err := time.LoadLocation(params.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", params.TimeZone, err)
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, loc: loc, now: now}, nil
}

// hoy is the current calendar date in the reporting zone, used as the anchor
// for document expiry calculations.
func (s *service) hoy() time.Time {
	ahora := s.now().In(s.loc)
	return time.Date(ahora.Year(), ahora.Month(), ahora.Day(), 0, 0, 0, 0, s.loc)
}

func (s *service) Vehiculos(ctx context.Context, soloActivos bool) ([]VehiculoDTO, error) {
	rows, err := s.repo.ListVehiculos(ctx, soloActivos)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar vehiculos")
	}
	hoy := s.hoy()
	out := make([]VehiculoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, vehiculoFromModel(&rows[i], hoy))
	}
	return out, nil
}

func (s *service) Vehiculo(ctx context.Context, id uuid.UUID) (*VehiculoDTO, error) {
	vehiculo, err := s.findVehiculo(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := vehiculoFromModel(vehiculo, s.hoy())
	return &dto, nil
}

func (s *service) CrearVehiculo(ctx context.Context, req UpsertVehiculoRequest) (*VehiculoDTO, error) {
	vehiculo := &models.Vehiculo{Activo: true}
	if err := s.applyVehiculo(vehiculo, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveVehiculo(ctx, vehiculo); err != nil {
		if db.IsUniqueViolation(err, "placa") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ya existe un vehiculo con esta placa")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear vehiculo")
	}
	return s.Vehiculo(ctx, vehiculo.ID)
}

func (s *service) ActualizarVehiculo(ctx context.Context, id uuid.UUID, req UpsertVehiculoRequest) (*VehiculoDTO, error) {
	vehiculo, err := s.findVehiculo(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyVehiculo(vehiculo, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveVehiculo(ctx, vehiculo); err != nil {
		if db.IsUniqueViolation(err, "placa") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "ya existe un vehiculo con esta placa")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar vehiculo")
	}
	return s.Vehiculo(ctx, id)
}

func (s *service) DesactivarVehiculo(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findVehiculo(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeactivateVehiculo(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "desactivar vehiculo")
	}
	return nil
}

func (s *service) Documentos(ctx context.Context, vehiculoID uuid.UUID) ([]DocumentoDTO, error) {
	if _, err := s.findVehiculo(ctx, vehiculoID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListDocumentos(ctx, vehiculoID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar documentos")
	}
	hoy := s.hoy()
	out := make([]DocumentoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, documentoFromModel(&rows[i], hoy))
	}
	return out, nil
}

func (s *service) CrearDocumento(ctx context.Context, vehiculoID uuid.UUID, req UpsertDocumentoRequest) (*DocumentoDTO, error) {
	if _, err := s.findVehiculo(ctx, vehiculoID); err != nil {
		return nil, err
	}
	documento := &models.DocumentoVehiculo{VehiculoID: vehiculoID}
	if err := applyDocumento(documento, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDocumento(ctx, documento); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear documento")
	}
	dto := documentoFromModel(documento, s.hoy())
	return &dto, nil
}

func (s *service) ActualizarDocumento(ctx context.Context, id uuid.UUID, req UpsertDocumentoRequest) (*DocumentoDTO, error) {
	documento, err := s.findDocumento(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyDocumento(documento, req); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDocumento(ctx, documento); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar documento")
	}
	dto := documentoFromModel(documento, s.hoy())
	return &dto, nil
}

func (s *service) EliminarDocumento(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findDocumento(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDocumento(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "eliminar documento")
	}
	return nil
}

func (s *service) Transportistas(ctx context.Context, soloActivos bool) ([]TransportistaDTO, error) {
	rows, err := s.repo.ListTransportistas(ctx, soloActivos)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listar transportistas")
	}
	out := make([]TransportistaDTO, 0, len(rows))
	for i := range rows {
		out = append(out, transportistaFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CrearTransportista(ctx context.Context, req UpsertTransportistaRequest) (*TransportistaDTO, error) {
	transportista := &models.Transportista{Activo: true}
	applyTransportista(transportista, req)
	if err := s.repo.SaveTransportista(ctx, transportista); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "crear transportista")
	}
	dto := transportistaFromModel(transportista)
	return &dto, nil
}

func (s *service) ActualizarTransportista(ctx context.Context, id uuid.UUID, req UpsertTransportistaRequest) (*TransportistaDTO, error) {
	transportista, err := s.findTransportista(ctx, id)
	if err != nil {
		return nil, err
	}
	applyTransportista(transportista, req)
	if err := s.repo.SaveTransportista(ctx, transportista); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "actualizar transportista")
	}
	dto := transportistaFromModel(transportista)
	return &dto, nil
}

func (s *service) DesactivarTransportista(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findTransportista(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeactivateTransportista(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "desactivar transportista")
	}
	return nil
}

func (s *service) findVehiculo(ctx context.Context, id uuid.UUID) (*models.Vehiculo, error) {
	vehiculo, err := s.repo.FindVehiculo(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehiculo no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar vehiculo")
	}
	return vehiculo, nil
}

func (s *service) findDocumento(ctx context.Context, id uuid.UUID) (*models.DocumentoVehiculo, error) {
	documento, err := s.repo.FindDocumento(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "documento no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar documento")
	}
	return documento, nil
}

func (s *service) findTransportista(ctx context.Context, id uuid.UUID) (*models.Transportista, error) {
	transportista, err := s.repo.FindTransportista(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transportista no encontrado")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "buscar transportista")
	}
	return transportista, nil
}

func (s *service) applyVehiculo(vehiculo *models.Vehiculo, req UpsertVehiculoRequest) error {
	capacidad, err := decimal.NewFromString(req.CapacidadCargaKg)
	if err != nil || capacidad.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "capacidad_carga_kg invalida")
	}

	vehiculo.Placa = strings.ToUpper(strings.TrimSpace(req.Placa))
	vehiculo.Marca = req.Marca
	vehiculo.Modelo = req.Modelo
	vehiculo.Anio = req.Anio
	vehiculo.Tipo = req.Tipo
	vehiculo.CapacidadCargaKg = capacidad

	if vehiculo.CapacidadVolumenM3, err = parseOptionalDecimal(req.CapacidadVolumenM3, "capacidad_volumen_m3"); err != nil {
		return err
	}
	if vehiculo.LargoM, err = parseOptionalDecimal(req.LargoM, "largo_m"); err != nil {
		return err
	}
	if vehiculo.AnchoM, err = parseOptionalDecimal(req.AnchoM, "ancho_m"); err != nil {
		return err
	}
	if vehiculo.AltoM, err = parseOptionalDecimal(req.AltoM, "alto_m"); err != nil {
		return err
	}

	vehiculo.TransportistaID = nil
	if req.TransportistaID != nil && *req.TransportistaID != "" {
		transportistaID, err := uuid.Parse(*req.TransportistaID)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "transportista_id invalido")
		}
		vehiculo.TransportistaID = &transportistaID
	}
	if req.Activo != nil {
		vehiculo.Activo = *req.Activo
	}
	return nil
}

func applyDocumento(documento *models.DocumentoVehiculo, req UpsertDocumentoRequest) error {
	tipo, err := enums.ParseTipoDocumentoVehiculo(req.Tipo)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tipo de documento invalido")
	}
	documento.Tipo = tipo
	documento.NumeroDocumento = req.NumeroDocumento
	documento.FechaEmision = req.FechaEmision
	documento.FechaVencimiento = req.FechaVencimiento
	documento.Archivo = req.Archivo
	return nil
}

func applyTransportista(transportista *models.Transportista, req UpsertTransportistaRequest) {
	transportista.Nombre = req.Nombre
	transportista.Contacto = req.Contacto
	transportista.Telefono = req.Telefono
	if req.Activo != nil {
		transportista.Activo = *req.Activo
	}
}

func parseOptionalDecimal(raw *string, field string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(*raw)
	if err != nil || parsed.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" invalido")
	}
	return &parsed, nil
}
