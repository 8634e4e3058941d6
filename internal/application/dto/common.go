package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StockErrorResponse error de stock insuficiente con los productos faltantes.
type StockErrorResponse struct {
	Code            string   `json:"code"`
	Message         string   `json:"message"`
	OutOfStockItems []string `json:"out_of_stock_items"`
}

// CountResponse respuesta de operaciones masivas.
type CountResponse struct {
	Updated int `json:"updated"`
}
