package dto

// RangeRequest rango de días de turno (ambos inclusive), formato YYYY-MM-DD.
type RangeRequest struct {
	Start string `json:"start" query:"start"`
	End   string `json:"end" query:"end"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
