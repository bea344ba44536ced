package dto

// Paginación por defecto de los listados.
const (
	DefaultPage = 1
	DefaultSize = 25
	MaxSize     = 100
)

// PageRequest paginación para listados (?page=1&size=25).
type PageRequest struct {
	Page int `query:"page" validate:"min=0"`
	Size int `query:"size" validate:"min=0,max=100"`
}

// Normalize aplica valores por defecto si Page/Size son cero.
func (p *PageRequest) Normalize() {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
}

// Offset fila inicial de la página.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Size
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
// Details solo en errores de validación: campo → regla incumplida.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}
