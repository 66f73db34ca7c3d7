package controller

import (
	"io"

	"pdf-chat-be/internal/apperror"
	"pdf-chat-be/internal/constant"
	"pdf-chat-be/internal/pkg/serverutils"
	"pdf-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	SelectCandidate(ctx *fiber.Ctx) error
	Load(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
}

func NewDocumentController(service service.IDocumentService) IDocumentController {
	return &documentController{service: service}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Get("", c.Show)
	h.Delete("", c.Clear)
	h.Post("candidate", c.SelectCandidate)
	h.Post("load", c.Load)
}

func (c *documentController) SelectCandidate(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperror.Wrap(apperror.KindValidation, apperror.CodeNoFileChosen, constant.StatusMessageNoFileChosen, err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	res, err := c.service.SelectCandidate(ctx.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success select candidate", res))
}

func (c *documentController) Load(ctx *fiber.Ctx) error {
	async := ctx.QueryBool("async", false)

	res, err := c.service.Load(ctx.UserContext(), async)
	if err != nil {
		return err
	}

	if async {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Loading started", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Success load document", res))
}

func (c *documentController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
}

func (c *documentController) Clear(ctx *fiber.Ctx) error {
	if err := c.service.Clear(ctx.UserContext()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success clear document", nil))
}
