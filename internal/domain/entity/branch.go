package entity

import "time"

// Branch es una sucursal. Code (ej. SUC001) alimenta el número de control DTE.
type Branch struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
}
