// Package analytics contiene el resumen de ventas que ve el operador de un punto de venta.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/domain"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
	"github.com/sabanapos/pedidos-api/internal/domain/repository"
)

const dashboardTopProducts = 5 // número de productos en el widget del dashboard

// DashboardUseCase genera el resumen del día y del mes en curso de un punto de venta.
//
// Fuente de datos: OrderRepository (solo lectura). Las líneas de cada orden guardan
// nombre y precio congelados, así que el resumen no consulta el menú actual.
type DashboardUseCase struct {
	orders    repository.OrderRepository
	locations repository.LocationRepository
	now       func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(orders repository.OrderRepository, locations repository.LocationRepository) *DashboardUseCase {
	return &DashboardUseCase{orders: orders, locations: locations, now: time.Now}
}

// GetSummary construye el DashboardSummaryDTO para el punto de venta. Solo lo ven sus operadores.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, operatorEmail, role, locationID string) (*dto.DashboardSummaryDTO, error) {
	if role != entity.RoleOperator {
		return nil, domain.ErrForbidden
	}
	assigned, err := uc.locations.LocationsOf(ctx, operatorEmail)
	if err != nil {
		return nil, err
	}
	if !contains(assigned, locationID) {
		return nil, domain.ErrForbidden
	}

	orders, err := uc.orders.ListByLocation(ctx, locationID, nil)
	if err != nil {
		return nil, fmt.Errorf("dashboard: órdenes: %w", err)
	}
	return summarize(locationID, orders, uc.now()), nil
}

func summarize(locationID string, orders []*entity.Order, now time.Time) *dto.DashboardSummaryDTO {
	// Hoy: 00:00 – 23:59:59.999; mes en curso: día 1 a las 00:00 – fin de hoy
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	out := &dto.DashboardSummaryDTO{
		LocationID:  locationID,
		ByStatus:    make(map[string]int),
		TopProducts: []dto.TopProductDTO{},
		DateLabel:   monthLabel(now),
	}
	top := make(map[string]*dto.TopProductDTO)

	for _, o := range orders {
		out.ByStatus[o.Status]++
		if o.Status == entity.OrderStatusCancelled {
			continue
		}
		created := o.CreatedAt.In(now.Location())
		if created.Before(monthStart) || created.After(todayEnd) {
			continue
		}
		out.MonthlySales += o.TotalAmount
		out.MonthlyOrders++
		if !created.Before(todayStart) {
			out.TodaySales += o.TotalAmount
			out.TodayOrders++
		}
		for _, l := range o.Products {
			p, ok := top[l.ProductID]
			if !ok {
				p = &dto.TopProductDTO{ProductID: l.ProductID, ProductName: l.Name}
				top[l.ProductID] = p
			}
			p.QuantitySold += l.Quantity
			p.TotalRevenue += l.UnitPrice * int64(l.Quantity)
		}
	}

	for _, p := range top {
		out.TopProducts = append(out.TopProducts, *p)
	}
	sort.Slice(out.TopProducts, func(i, j int) bool {
		a, b := out.TopProducts[i], out.TopProducts[j]
		if a.TotalRevenue != b.TotalRevenue {
			return a.TotalRevenue > b.TotalRevenue
		}
		return a.ProductName < b.ProductName
	})
	if len(out.TopProducts) > dashboardTopProducts {
		out.TopProducts = out.TopProducts[:dashboardTopProducts]
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
