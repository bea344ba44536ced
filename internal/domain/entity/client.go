package entity

// Client es el receptor del documento. El motor de facturación solo verifica su existencia.
type Client struct {
	ID             string
	Name           string
	DocumentNumber string // NIT o DUI
	Email          string
}
