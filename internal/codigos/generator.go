package codigos

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Code prefixes for the daily tracking sequences.
const (
	PrefijoPedido = "PED"
	PrefijoRuta   = "RUT"
)

// Generator mints tracking codes of the form PREFIJO-YYYYMMDD-NNNN. The daily
// counter lives in secuencias_codigo and is bumped with an upsert inside the
// caller's transaction, so concurrent writers serialize on the row lock and
// the numbering carries no gaps from rolled-back work.
type Generator struct {
	loc *time.Location
}

// NewGenerator builds a generator that stamps dates in the named time zone.
func NewGenerator(timeZone string) (*Generator, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", timeZone, err)
	}
	return &Generator{loc: loc}, nil
}

// Next returns the next code for the prefix within the transaction tx.
func (g *Generator) Next(ctx context.Context, tx *gorm.DB, prefijo string, now time.Time) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("transaction is required")
	}
	if prefijo == "" {
		return "", fmt.Errorf("prefijo is required")
	}

	fecha := now.In(g.loc).Format("20060102")

	var valor int
	err := tx.WithContext(ctx).Raw(
		`INSERT INTO secuencias_codigo (prefijo, fecha, valor) VALUES (?, ?, 1)
		 ON CONFLICT (prefijo, fecha) DO UPDATE SET valor = secuencias_codigo.valor + 1
		 RETURNING valor`,
		prefijo, fecha,
	).Scan(&valor).Error
	if err != nil {
		return "", fmt.Errorf("advancing sequence %s/%s: %w", prefijo, fecha, err)
	}

	return fmt.Sprintf("%s-%s-%04d", prefijo, fecha, valor), nil
}
