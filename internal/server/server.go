// Package server exposes the part and material catalogs over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/piwi3910/SlabLayout/internal/catalog"
	"github.com/piwi3910/SlabLayout/internal/model"
)

// New returns a fiber app serving store. Requests are logged by fiber's
// logger middleware, handler failures through l.
func New(store catalog.Store, l *log.Logger) *fiber.App {
	if l == nil {
		l = log.Default()
	}
	h := &handler{parts: store.Parts(), materials: store.Materials(), log: l}

	app := fiber.New(fiber.Config{
		AppName: "SlabLayout Catalog",
	})

	app.Use(recover.New())
	app.Use(requestLogger())

	app.Get("/health", health)

	app.Get("/parts", h.listParts)
	app.Post("/parts", h.createPart)
	app.Post("/parts/bulk", h.bulkCreateParts)
	app.Get("/parts/:id", h.getPart)
	app.Put("/parts/:id", h.updatePart)

	app.Get("/materials", h.listMaterials)
	app.Post("/materials", h.createMaterial)
	app.Get("/materials/:id", h.getMaterial)

	return app
}

func requestLogger() fiber.Handler {
	return logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	})
}

func health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

type handler struct {
	parts     catalog.PartCatalog
	materials catalog.MaterialCatalog
	log       *log.Logger
}

type createPartRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func (r createPartRequest) validate() error {
	if r.Name == "" {
		return errors.New("name required")
	}
	if r.Quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	return nil
}

type createMaterialRequest struct {
	Name   string  `json:"name"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// fail maps a catalog error onto a response.
func (h *handler) fail(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidGeometry), errors.Is(err, model.ErrInvalidShape):
		return badRequest(c, err.Error())
	}
	h.log.Error("catalog request failed", "method", c.Method(), "path", c.Path(), "err", err)
	return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func (h *handler) listParts(c fiber.Ctx) error {
	parts, err := h.parts.List(context.Background())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(parts)
}

func (h *handler) getPart(c fiber.Ctx) error {
	part, err := h.parts.Get(context.Background(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(part)
}

func (h *handler) createPart(c fiber.Ctx) error {
	var req createPartRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid json")
	}
	if err := req.validate(); err != nil {
		return badRequest(c, err.Error())
	}

	part, err := h.parts.Create(context.Background(), req.Name, req.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(part)
}

func (h *handler) bulkCreateParts(c fiber.Ctx) error {
	var reqs []createPartRequest
	if err := json.Unmarshal(c.Body(), &reqs); err != nil {
		return badRequest(c, "invalid json: expected an array of parts")
	}

	batch := make([]model.PartRequest, 0, len(reqs))
	for i, r := range reqs {
		if err := r.validate(); err != nil {
			return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "index": i})
		}
		batch = append(batch, model.PartRequest{Name: r.Name, Quantity: r.Quantity})
	}

	parts, err := h.parts.BulkCreate(context.Background(), batch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(parts)
}

// updatePart replaces a stored part. The id in the path wins over the body;
// a body without a shape keeps the stored one.
func (h *handler) updatePart(c fiber.Ctx) error {
	var part model.CatalogPart
	if err := json.Unmarshal(c.Body(), &part); err != nil {
		if errors.Is(err, model.ErrInvalidShape) {
			return badRequest(c, err.Error())
		}
		return badRequest(c, "invalid json")
	}
	part.ID = c.Params("id")
	if part.Quantity < 0 {
		return badRequest(c, "quantity must not be negative")
	}

	ctx := context.Background()
	if part.Shape == nil {
		stored, err := h.parts.Get(ctx, part.ID)
		if err != nil {
			return h.fail(c, err)
		}
		part.Shape = stored.Shape
	} else if err := model.Validate(part.Shape); err != nil {
		return badRequest(c, err.Error())
	}
	part.Shape = part.Shape.WithID(part.ID).WithPosition(model.Vector{})
	part.BorderStyle = model.ParseBorderStyle(string(part.BorderStyle))

	updated, err := h.parts.Update(ctx, part)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(updated)
}

func (h *handler) listMaterials(c fiber.Ctx) error {
	materials, err := h.materials.List(context.Background())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(materials)
}

func (h *handler) getMaterial(c fiber.Ctx) error {
	mat, err := h.materials.Get(context.Background(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(mat)
}

func (h *handler) createMaterial(c fiber.Ctx) error {
	var req createMaterialRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return badRequest(c, "invalid json")
	}
	if req.Name == "" {
		return badRequest(c, "name required")
	}
	if req.Width <= 0 || req.Height <= 0 {
		return badRequest(c, "width and height must be positive")
	}

	mat, err := h.materials.Create(context.Background(), req.Name, req.Width, req.Height)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusCreated).JSON(mat)
}
