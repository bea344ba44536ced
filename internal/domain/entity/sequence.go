package entity

import "time"

// Sequence es el correlativo por (sucursal, serie).
// Todo valor en [1, NextValue-1] fue asignado a exactamente una factura.
type Sequence struct {
	BranchID  string
	Series    string
	NextValue int64
	UpdatedAt time.Time
}
