package handlers

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/events"
)

// UpdatesHandler streams lifecycle events as server-sent events.
type UpdatesHandler struct {
	broadcaster *events.Broadcaster
	logger      *zap.Logger
}

// NewUpdatesHandler constructs handler.
func NewUpdatesHandler(broadcaster *events.Broadcaster, logger *zap.Logger) *UpdatesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdatesHandler{broadcaster: broadcaster, logger: logger}
}

// Stream GET /api/updates. The subscriber stays registered until a write
// fails or the broadcaster drops it.
func (h *UpdatesHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	sub := h.broadcaster.Subscribe()
	logger := h.logger.With(zap.String("subscriber_id", sub.ID()))

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		for {
			select {
			case <-sub.Done():
				return
			case frame := <-sub.Frames():
				if _, err := w.Write(frame); err != nil {
					logger.Debug("stream write failed", zap.Error(err))
					return
				}
				if err := w.Flush(); err != nil {
					logger.Debug("stream flush failed", zap.Error(err))
					return
				}
			}
		}
	}))
	return nil
}
