package services

import (
	"errors"

	"productshot/internal/generation"
	"productshot/internal/logo"
	"productshot/internal/orchestrator"
	"productshot/types"

	"github.com/gofiber/fiber/v2"
)

const codeInvalidRequest = "INVALID_REQUEST"

// statusFor maps a generation failure onto the status this API answers with.
func statusFor(err error) int {
	var gerr *generation.Error
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.As(err, &gerr):
		switch gerr.Kind {
		case generation.KindHTTP:
			if gerr.Status >= 400 && gerr.Status <= 599 {
				return gerr.Status
			}
			return fiber.StatusBadGateway
		case generation.KindTimeout:
			return fiber.StatusGatewayTimeout
		case generation.KindNetwork:
			return fiber.StatusBadGateway
		}
	}
	return fiber.StatusInternalServerError
}

func codeFor(err error) string {
	if errors.Is(err, generation.ErrInvalidRequest) {
		return codeInvalidRequest
	}
	return generation.CodeOf(err)
}

func generationError(err error) types.ErrorResponse {
	return types.ErrorResponse{
		Error:   err.Error(),
		Message: generation.Message(err),
		Code:    codeFor(err),
	}
}

func logoStatus(err error) int {
	switch {
	case errors.Is(err, logo.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, logo.ErrUnsupportedType):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, logo.ErrUploadFailed):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func toMetadata(md *generation.Metadata) *types.Metadata {
	if md == nil {
		return nil
	}
	return &types.Metadata{Prompt: md.Prompt, Settings: md.Settings}
}

func toStateResponse(st orchestrator.State) types.StateResponse {
	return types.StateResponse{
		Loading:   st.Loading,
		Error:     st.Error,
		Images:    st.Images,
		Metadata:  toMetadata(st.Metadata),
		UpdatedAt: st.UpdatedAt,
	}
}
