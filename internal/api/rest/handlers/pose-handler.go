package handlers

import (
	"errors"
	"log"

	"github.com/chirotrack/backend/internal/api/rest/middleware"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper/utils"
	"github.com/chirotrack/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PoseHandler struct {
	svc     services.PoseService
	authSvc services.AuthService
}

func NewPoseHandler(svc services.PoseService, authSvc services.AuthService) *PoseHandler {
	return &PoseHandler{svc: svc, authSvc: authSvc}
}

func (h *PoseHandler) SetupRoutes(app *fiber.App) {
	poses := app.Group("/api/poses", middleware.Authenticate(h.authSvc))

	poses.Post("/", h.Create)
	poses.Get("/", h.ListAll)
	poses.Get("/stats/:patientId", h.Stats)
	poses.Get("/patient/:patientId", h.ListByPatient)
	poses.Get("/:id", h.Get)
	poses.Put("/:id", h.Update)
	poses.Delete("/:id", h.Delete)
}

func (h *PoseHandler) Create(ctx *fiber.Ctx) error {
	var requestBody dto.CreatePoseDetectionRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.PatientID == 0 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	pose, err := h.svc.CreatePose(middleware.CurrentUserID(ctx), requestBody)
	if err != nil {
		return poseError(ctx, err, "saving pose detection data")
	}

	return utils.Success(ctx, fiber.StatusCreated, "Pose detection data saved successfully", fiber.Map{
		"poseDetection": dto.NewPoseDetectionResponse(pose),
	})
}

func (h *PoseHandler) ListAll(ctx *fiber.Ctx) error {
	data, err := h.svc.GetAllPoses(
		middleware.CurrentUserID(ctx),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 10),
	)
	if err != nil {
		return poseError(ctx, err, "retrieving pose detection records")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection records retrieved successfully", data)
}

func (h *PoseHandler) ListByPatient(ctx *fiber.Ctx) error {
	patientID, err := ctx.ParamsInt("patientId")
	if err != nil || patientID < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid patient ID format")
	}

	data, err := h.svc.GetPosesByPatient(
		middleware.CurrentUserID(ctx),
		uint(patientID),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 10),
	)
	if err != nil {
		return poseError(ctx, err, "retrieving pose detection records")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection records retrieved successfully", data)
}

func (h *PoseHandler) Stats(ctx *fiber.Ctx) error {
	patientID, err := ctx.ParamsInt("patientId")
	if err != nil || patientID < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid patient ID format")
	}

	data, err := h.svc.GetStats(middleware.CurrentUserID(ctx), uint(patientID))
	if err != nil {
		return poseError(ctx, err, "retrieving pose detection statistics")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection statistics retrieved successfully", data)
}

func (h *PoseHandler) Get(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid pose detection ID format")
	}

	pose, err := h.svc.GetPose(uint(id), middleware.CurrentUserID(ctx))
	if err != nil {
		return poseError(ctx, err, "retrieving pose detection record")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection record retrieved successfully", fiber.Map{
		"poseDetection": dto.NewPoseDetectionResponse(pose),
	})
}

func (h *PoseHandler) Update(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid pose detection ID format")
	}

	var requestBody dto.UpdatePoseDetectionRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	pose, err := h.svc.UpdatePose(uint(id), middleware.CurrentUserID(ctx), requestBody)
	if err != nil {
		return poseError(ctx, err, "updating pose detection record")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection record updated successfully", fiber.Map{
		"poseDetection": dto.NewPoseDetectionResponse(pose),
	})
}

func (h *PoseHandler) Delete(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid pose detection ID format")
	}

	if err := h.svc.DeletePose(uint(id), middleware.CurrentUserID(ctx)); err != nil {
		return poseError(ctx, err, "deleting pose detection record")
	}
	return utils.Success(ctx, fiber.StatusOK, "Pose detection record deleted successfully", nil)
}

func poseError(ctx *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrPatientNotFound):
		return utils.NotFound(ctx, "Patient not found or you do not have permission to access this patient")
	case errors.Is(err, services.ErrPoseNotFound):
		return utils.NotFound(ctx, "Pose detection record not found")
	case errors.Is(err, services.ErrInvalidAccuracy),
		errors.Is(err, services.ErrInvalidSummary),
		errors.Is(err, services.ErrNotesTooLong):
		return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("pose handler error (%s): %v", action, err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error while "+action)
	}
}
