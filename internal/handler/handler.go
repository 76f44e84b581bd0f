// Package handler adapts the services to HTTP. Handlers parse and check the request
// shape, call one service method and render its result or error.
package handler

import (
	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/middleware"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// fail renders err with the status of its kind. Internal causes are logged, never sent.
func fail(c *fiber.Ctx, err error) error {
	status := apierror.StatusCode(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return c.Status(status).JSON(apierror.ToResponse(err))
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.RequestIDKey).(string)
	return id
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(apierror.Response{Error: msg})
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{"message": message, "data": data})
}

func created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message, "data": data})
}

// actor is the caller of a protected route.
func actor(c *fiber.Ctx) model.Actor {
	if s := middleware.SessionFrom(c); s != nil {
		return s.Actor()
	}
	return model.SystemActor
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apierror.Validation("invalid " + name)
	}
	return id, nil
}

func pageQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}.Normalize()
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apierror.Validation("invalid JSON body")
	}
	return nil
}
