package handlers

import (
	"errors"
	"log"

	"github.com/chirotrack/backend/internal/api/rest/middleware"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper/utils"
	"github.com/chirotrack/backend/internal/services"
	"github.com/chirotrack/backend/pkg/limitio"
	"github.com/gofiber/fiber/v2"
)

const maxProfilePictureBytes = 5 << 20

type UserHandler struct {
	svc     services.UserService
	authSvc services.AuthService
}

func NewUserHandler(svc services.UserService, authSvc services.AuthService) *UserHandler {
	return &UserHandler{svc: svc, authSvc: authSvc}
}

func (h *UserHandler) SetupRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.Authenticate(h.authSvc))

	users.Get("/", h.List)
	users.Get("/me", h.Me)
	users.Post("/me/picture", h.UploadPicture)
	users.Get("/:id", h.Get)
	users.Put("/:id", h.Update)
	users.Patch("/:id/password", h.UpdatePassword)
}

func (h *UserHandler) List(ctx *fiber.Ctx) error {
	data, err := h.svc.GetUsers(
		ctx.Query("search"),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 10),
	)
	if err != nil {
		return userError(ctx, err, "retrieving users")
	}
	return utils.Success(ctx, fiber.StatusOK, "Users retrieved successfully", data)
}

func (h *UserHandler) Me(ctx *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return utils.Unauthorized(ctx, "User not authenticated")
	}
	return utils.Success(ctx, fiber.StatusOK, "User profile retrieved successfully", fiber.Map{
		"user": dto.NewUserResponse(user),
	})
}

func (h *UserHandler) Get(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid user ID format")
	}

	user, err := h.svc.GetUser(uint(id))
	if err != nil {
		return userError(ctx, err, "retrieving user")
	}
	return utils.Success(ctx, fiber.StatusOK, "User retrieved successfully", fiber.Map{
		"user": dto.NewUserResponse(user),
	})
}

func (h *UserHandler) Update(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid user ID format")
	}

	var requestBody dto.UpdateUserRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "First name and last name are required")
	}

	user, err := h.svc.UpdateUser(uint(id), requestBody)
	if err != nil {
		return userError(ctx, err, "updating user")
	}
	return utils.Success(ctx, fiber.StatusOK, "User updated successfully", fiber.Map{
		"user": dto.NewUserResponse(user),
	})
}

func (h *UserHandler) UpdatePassword(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid user ID format")
	}
	// Password changes are self-service only.
	if uint(id) != middleware.CurrentUserID(ctx) {
		return utils.Error(ctx, fiber.StatusForbidden, "You can only change your own password")
	}

	var requestBody dto.UpdatePasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.UpdatePassword(uint(id), requestBody); err != nil {
		switch {
		case errors.Is(err, services.ErrCurrentPasswordWrong):
			return utils.Error(ctx, fiber.StatusBadRequest, "Current password is incorrect")
		case errors.Is(err, services.ErrWeakPassword):
			return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
		default:
			return userError(ctx, err, "updating password")
		}
	}
	return utils.Success(ctx, fiber.StatusOK, "Password updated successfully", nil)
}

func (h *UserHandler) UploadPicture(ctx *fiber.Ctx) error {
	fileHeader, err := ctx.FormFile("picture")
	if err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Picture file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Could not read picture file")
	}
	defer file.Close()

	data, err := limitio.ReadAllLimit(file, maxProfilePictureBytes)
	if err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Picture must not exceed 5 MB")
	}

	url, err := h.svc.UpdateProfilePicture(ctx.UserContext(), middleware.CurrentUserID(ctx), data)
	if err != nil {
		return userError(ctx, err, "uploading profile picture")
	}
	return utils.Success(ctx, fiber.StatusOK, "Profile picture updated successfully", dto.ProfilePictureData{
		ProfilePicture: url,
	})
}

func userError(ctx *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrUserMissing):
		return utils.NotFound(ctx, "User not found")
	case errors.Is(err, services.ErrInvalidInput):
		return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("user handler error (%s): %v", action, err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error while "+action)
	}
}
