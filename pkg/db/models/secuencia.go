package models

// SecuenciaCodigo holds the daily counter behind tracking codes. One row per
// (prefijo, fecha); the counter is bumped with an upsert inside the caller's
// transaction so concurrent writers serialize on the row lock.
type SecuenciaCodigo struct {
	Prefijo string `gorm:"column:prefijo;primaryKey"`
	Fecha   string `gorm:"column:fecha;primaryKey"`
	Valor   int    `gorm:"column:valor;not null;default:0"`
}

func (SecuenciaCodigo) TableName() string { return "secuencias_codigo" }
