package services

import (
	"errors"
	"time"

	"productshot/internal/catalog"
	"productshot/internal/generation"
	"productshot/internal/logo"
	"productshot/types"

	"github.com/gofiber/fiber/v2"
)

func (a *Api) Health() fiber.Handler {
	return func(ctx *fiber.Ctx) error {

		return ctx.Status(fiber.StatusOK).JSON(types.HealthResponse{
			Status:    fiber.StatusOK,
			TimeStamp: time.Now().Unix(),
		})
	}
}

func (a *Api) Options() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(Options())
	}
}

// Options is the catalog as served by GET /api/options.
func Options() types.OptionsResponse {
	return types.OptionsResponse{
		Categories:    catalog.Categories,
		Styles:        catalog.Styles,
		Angles:        catalog.Angles,
		LogoPositions: catalog.LogoPositions,
		Limits: types.Limits{
			MinImages:            catalog.MinImages,
			MaxImages:            catalog.MaxImages,
			MinDescriptionLength: catalog.MinDescriptionLength,
			MaxDescriptionLength: catalog.MaxDescriptionLength,
			MaxLogoBytes:         logo.MaxSize,
		},
		Texts: types.Texts{
			Loading:          catalog.TextLoading,
			NoImages:         catalog.TextNoImages,
			NoImagesSubtitle: catalog.TextNoImagesSubtitle,
		},
	}
}

func (a *Api) Generate() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("generate", ctx)

		// Fields missing from the body keep the form defaults.
		requestBody := generation.NewRequest("")
		if err := ctx.BodyParser(&requestBody); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "invalid body",
				Code:    codeInvalidRequest,
			})
		}

		res, err := a.orch.Generate(ctx.UserContext(), requestBody)
		ctx.Locals(generationIDKey, res.ID)
		if err != nil {
			ctx.Locals(errorCodeKey, codeFor(err))
			status := statusFor(err)
			logger.Warn("generation failed", "status", status, "code", codeFor(err), "err", err)
			return ctx.Status(status).JSON(generationError(err))
		}

		images := res.Images
		if images == nil {
			images = []string{}
		}
		return ctx.Status(fiber.StatusOK).JSON(types.GenerateResponse{
			ID:       res.ID,
			Images:   images,
			Metadata: toMetadata(res.Metadata),
		})
	}
}

func (a *Api) State() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(toStateResponse(a.orch.Snapshot()))
	}
}

func (a *Api) DismissError() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		a.orch.DismissError()
		return ctx.SendStatus(fiber.StatusNoContent)
	}
}

func (a *Api) UploadLogo() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		logger := HttpLogger("upload-logo", ctx)

		if a.uploader == nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(types.ErrorResponse{
				Error:   "uploader not configured",
				Message: "service unavailable",
			})
		}

		fh, err := ctx.FormFile("logo")
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "missing logo file",
			})
		}

		f, err := fh.Open()
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "unreadable logo file",
			})
		}
		defer f.Close()

		filename, err := a.uploader.Upload(ctx.UserContext(), logo.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			status := logoStatus(err)
			logger.Warn("logo upload failed", "status", status, "err", err)
			msg := err.Error()
			if errors.Is(err, logo.ErrUploadFailed) {
				msg = logo.ErrUploadFailed.Error()
			}
			return ctx.Status(status).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: msg,
			})
		}

		return ctx.Status(fiber.StatusOK).JSON(types.UploadLogoResponse{Filename: filename})
	}
}

func (a *Api) SaveGallery() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if a.gallery == nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(types.ErrorResponse{
				Error:   "gallery not configured",
				Message: "service unavailable",
			})
		}

		var req types.GalleryRequest
		if err := ctx.BodyParser(&req); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "invalid body",
			})
		}
		if req.ClientID == "" {
			return ctx.Status(fiber.StatusBadRequest).JSON(types.ErrorResponse{
				Error:   "clientId is required",
				Message: "missing clientId",
			})
		}

		images := a.orch.Snapshot().Images
		if len(images) == 0 {
			return ctx.Status(fiber.StatusConflict).JSON(types.ErrorResponse{
				Error:   "no images to save",
				Message: catalog.TextNoImages,
			})
		}

		jobID, err := a.gallery.Enqueue(req.ClientID, images)
		if err != nil {
			code := fiber.StatusServiceUnavailable
			if errors.Is(err, ErrGalleryQueueFull) {
				code = fiber.StatusTooManyRequests
			}
			return ctx.Status(code).JSON(types.ErrorResponse{
				Error:   err.Error(),
				Message: "failed to enqueue gallery save",
			})
		}

		return ctx.Status(fiber.StatusAccepted).JSON(types.GalleryResponse{JobID: jobID})
	}
}
