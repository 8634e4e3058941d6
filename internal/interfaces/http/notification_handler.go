package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/sabanapos/pedidos-api/internal/application/dto"
	"github.com/sabanapos/pedidos-api/internal/application/notification"
	"github.com/sabanapos/pedidos-api/internal/domain/entity"
)

const streamHeartbeat = 15 * time.Second

// NotificationHandler bandeja de notificaciones y stream en vivo (SSE).
type NotificationHandler struct {
	d   *notification.Dispatcher
	log zerolog.Logger
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(d *notification.Dispatcher, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{d: d, log: log}
}

// List godoc
// @Summary      Notificaciones del usuario
// @Description  Operadores también ven las de las salas de sus puntos de venta.
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.NotificationResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	list, err := h.d.List(c.UserContext(), viewer(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNotificationResponse(n))
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Param        id   path  string  true  "ID de la notificación"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.d.MarkRead(c.UserContext(), viewer(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllRead godoc
// @Summary      Marcar todas como leídas
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CountResponse
// @Router       /api/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.d.MarkAllRead(c.UserContext(), viewer(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CountResponse{Updated: n})
}

// Delete godoc
// @Summary      Eliminar notificación
// @Tags         notifications
// @Security     Bearer
// @Param        id   path  string  true  "ID de la notificación"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	if err := h.d.Delete(c.UserContext(), viewer(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stream godoc
// @Summary      Notificaciones en vivo
// @Description  Server-Sent Events; cada evento "notification" lleva una NotificationResponse en JSON.
// @Tags         notifications
// @Security     Bearer
// @Produce      text/event-stream
// @Param        access_token  query  string  false  "token JWT (EventSource no envía cabeceras)"
// @Success      200
// @Router       /api/notifications/stream [get]
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	v := viewer(c)
	// El contexto de Fiber se recicla al salir del handler; el stream vive aparte.
	ctx, cancel := context.WithCancel(context.Background())
	ch, closeSub, err := h.d.Subscribe(ctx, v)
	if err != nil {
		cancel()
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	log := h.log.With().Str("user", v.Email).Logger()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		defer closeSub()
		log.Debug().Msg("stream de notificaciones abierto")

		ticker := time.NewTicker(streamHeartbeat)
		defer ticker.Stop()
		fmt.Fprint(w, ": conectado\n\n")
		if err := w.Flush(); err != nil {
			return
		}
		for {
			select {
			case n, ok := <-ch:
				if !ok {
					return
				}
				payload, err := json.Marshal(toNotificationResponse(n))
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", n.ID, payload)
			case <-ticker.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			// Flush falla cuando el cliente cerró la conexión
			if err := w.Flush(); err != nil {
				log.Debug().Err(err).Msg("stream de notificaciones cerrado")
				return
			}
		}
	}))
	return nil
}

func toNotificationResponse(n *entity.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:        n.ID,
		Recipient: n.Recipient,
		Type:      n.Type,
		Message:   n.Message,
		OrderID:   n.OrderID,
		Read:      n.Read,
		Timestamp: n.Timestamp,
	}
}
