package dto

// DashboardSummaryDTO respuesta de GET /api/locations/:id/dashboard.
// Ventas del día y del mes en curso (sin órdenes canceladas), pedidos por estado y Top-5 productos del mes.
type DashboardSummaryDTO struct {
	LocationID string `json:"location_id"`

	// Métricas del día actual (00:00 – 23:59), en pesos
	TodaySales  int64 `json:"today_sales"`
	TodayOrders int   `json:"today_orders"`

	// Métricas del mes en curso (día 1 – hoy)
	MonthlySales  int64 `json:"monthly_sales"`
	MonthlyOrders int   `json:"monthly_orders"`

	// Pedidos por estado (todas las fechas)
	ByStatus map[string]int `json:"by_status"`

	TopProducts []TopProductDTO `json:"top_products"`

	DateLabel string `json:"date_label"` // ej: "Febrero 2026"
}

// TopProductDTO resumen de un producto para el widget del dashboard.
type TopProductDTO struct {
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`
	QuantitySold int    `json:"quantity_sold"`
	TotalRevenue int64  `json:"total_revenue"`
}
