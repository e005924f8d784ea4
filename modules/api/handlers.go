package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/example/mini-network-chat/modules/chat"
	"github.com/gofiber/fiber/v2"
)

const (
	allowMethods = "GET, POST, OPTIONS"
	allowHeaders = "Content-Type"
)

// isoMillis matches the ISO-8601 form browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	api := app.Group("/api")

	join := []fiber.Handler{m.join}
	message := []fiber.Handler{m.sendMessage}
	if rl := m.rateLimit(); rl != nil {
		join = append([]fiber.Handler{rl}, join...)
		message = append([]fiber.Handler{rl}, message...)
	}

	api.Post("/join", join...)
	api.Post("/message", message...)
	api.Get("/messages", m.messages)
	if m.config.ClearEnabled {
		api.Post("/clear", m.clear)
	}

	// Known paths reached with any other verb.
	api.All("/join", methodNotAllowed)
	api.All("/message", methodNotAllowed)
	api.All("/messages", methodNotAllowed)
	if m.config.ClearEnabled {
		api.All("/clear", methodNotAllowed)
	}
	api.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	if staticDirExists(m.config.StaticDir) {
		app.Static("/", m.config.StaticDir, fiber.Static{Index: "index.html"})
	}
}

// preflight answers every OPTIONS request with 200, the CORS headers and an
// empty body.
func preflight(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodOptions {
		return c.Next()
	}
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, allowMethods)
	c.Set(fiber.HeaderAccessControlAllowHeaders, allowHeaders)
	c.Status(fiber.StatusOK)
	return nil
}

func methodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(ErrorResponse{
		Success: false,
		Error:   "Method not allowed",
	})
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	res, err := m.chatPort.Poll(ctx, math.MaxInt64)
	if err != nil {
		m.logger.Warn("Health check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "unhealthy",
		})
	}
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":        "api",
			"port":          m.config.Port,
			"userCount":     res.UserCount,
			"lastMessageId": res.LastMessageID,
		},
	})
}

// join handles POST /api/join.
func (m *Module) join(c *fiber.Ctx) error {
	var body joinBody
	if err := decodeBody(c, &body); err != nil {
		return invalidJSON(c)
	}

	ctx, cancel := m.requestContext(c)
	defer cancel()

	res, err := m.chatPort.Join(ctx, stringField(body.Username))
	if err != nil {
		return m.chatError(c, "join", err)
	}
	return c.JSON(JoinResponse{
		Success:   true,
		UserCount: res.UserCount,
		MessageID: res.MessageID,
	})
}

// sendMessage handles POST /api/message.
func (m *Module) sendMessage(c *fiber.Ctx) error {
	var body messageBody
	if err := decodeBody(c, &body); err != nil {
		return invalidJSON(c)
	}

	ctx, cancel := m.requestContext(c)
	defer cancel()

	res, err := m.chatPort.SendMessage(ctx, stringField(body.Username), stringField(body.Message))
	if err != nil {
		return m.chatError(c, "message", err)
	}
	return c.JSON(MessageResponse{
		Success:   true,
		MessageID: res.MessageID,
	})
}

// messages handles GET /api/messages?since=ID.
func (m *Module) messages(c *fiber.Ctx) error {
	since, err := strconv.ParseInt(c.Query("since"), 10, 64)
	if err != nil {
		since = 0
	}

	ctx, cancel := m.requestContext(c)
	defer cancel()

	res, err := m.chatPort.Poll(ctx, since)
	if err != nil {
		return m.chatError(c, "messages", err)
	}
	return c.JSON(MessagesResponse{
		Success:       true,
		Messages:      res.Messages,
		UserCount:     res.UserCount,
		LastMessageID: res.LastMessageID,
		ServerTime:    res.ServerTime.UTC().Format(isoMillis),
	})
}

// clear handles POST /api/clear.
func (m *Module) clear(c *fiber.Ctx) error {
	ctx, cancel := m.requestContext(c)
	defer cancel()

	if err := m.chatPort.Clear(ctx); err != nil {
		return m.chatError(c, "clear", err)
	}
	return c.JSON(ClearResponse{
		Success: true,
		Message: "Chat data cleared successfully",
	})
}

func (m *Module) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), m.config.RequestTimeout)
}

// decodeBody decodes a JSON body regardless of Content-Type. An empty body is
// treated as an empty object.
func decodeBody(c *fiber.Ctx, dst any) error {
	raw := c.Body()
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Error:   "Invalid JSON body",
	})
}

// chatError maps a chat error to its HTTP status. Internal details are
// logged and replaced with a generic message.
func (m *Module) chatError(c *fiber.Ctx, route string, err error) error {
	status := fiber.StatusInternalServerError
	switch chat.KindOf(err) {
	case chat.KindValidation:
		status = fiber.StatusBadRequest
	case chat.KindConflict:
		status = fiber.StatusConflict
	default:
		var e *chat.Error
		if !errors.As(err, &e) || e.Err != nil {
			m.logger.Error("Request failed", "route", route, "error", err)
		}
	}
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   chat.PublicMessage(err),
	})
}

// errorHandler renders errors that escaped a handler in the JSON envelope.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := chat.InternalMessage

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		m.logger.Error("Unhandled HTTP error", "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Success: false,
		Error:   message,
	})
}
