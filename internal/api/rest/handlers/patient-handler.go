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

type PatientHandler struct {
	svc     services.PatientService
	authSvc services.AuthService
}

func NewPatientHandler(svc services.PatientService, authSvc services.AuthService) *PatientHandler {
	return &PatientHandler{svc: svc, authSvc: authSvc}
}

func (h *PatientHandler) SetupRoutes(app *fiber.App) {
	patients := app.Group("/api/patients", middleware.Authenticate(h.authSvc))

	patients.Post("/", h.Create)
	patients.Get("/search", h.Search)
	patients.Get("/", h.List)
	patients.Get("/:id", h.Get)
	patients.Put("/:id", h.Update)
	patients.Delete("/:id", h.Delete)
}

func (h *PatientHandler) Create(ctx *fiber.Ctx) error {
	var requestBody dto.CreatePatientRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	patient, err := h.svc.CreatePatient(middleware.CurrentUserID(ctx), requestBody)
	if err != nil {
		return patientError(ctx, err, "creating patient record")
	}

	return utils.Success(ctx, fiber.StatusCreated, "Patient record created successfully", fiber.Map{
		"patient": dto.NewPatientResponse(patient),
	})
}

func (h *PatientHandler) List(ctx *fiber.Ctx) error {
	data, err := h.svc.GetPatients(
		middleware.CurrentUserID(ctx),
		ctx.Query("search"),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 10),
	)
	if err != nil {
		return patientError(ctx, err, "retrieving patients")
	}
	return utils.Success(ctx, fiber.StatusOK, "Patients retrieved successfully", data)
}

func (h *PatientHandler) Search(ctx *fiber.Ctx) error {
	data, err := h.svc.SearchPatients(
		middleware.CurrentUserID(ctx),
		ctx.Query("q"),
		ctx.QueryInt("page", 1),
		ctx.QueryInt("limit", 10),
	)
	if err != nil {
		return patientError(ctx, err, "searching patients")
	}
	return utils.Success(ctx, fiber.StatusOK, "Search completed successfully", data)
}

func (h *PatientHandler) Get(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid patient ID format")
	}

	patient, err := h.svc.GetPatient(uint(id), middleware.CurrentUserID(ctx))
	if err != nil {
		return patientError(ctx, err, "retrieving patient")
	}
	return utils.Success(ctx, fiber.StatusOK, "Patient retrieved successfully", fiber.Map{
		"patient": dto.NewPatientResponse(patient),
	})
}

func (h *PatientHandler) Update(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid patient ID format")
	}

	var requestBody dto.UpdatePatientRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	patient, err := h.svc.UpdatePatient(uint(id), middleware.CurrentUserID(ctx), requestBody)
	if err != nil {
		return patientError(ctx, err, "updating patient record")
	}
	return utils.Success(ctx, fiber.StatusOK, "Patient record updated successfully", fiber.Map{
		"patient": dto.NewPatientResponse(patient),
	})
}

func (h *PatientHandler) Delete(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil || id < 1 {
		return utils.Error(ctx, fiber.StatusBadRequest, "Invalid patient ID format")
	}

	if err := h.svc.DeletePatient(uint(id), middleware.CurrentUserID(ctx)); err != nil {
		return patientError(ctx, err, "deleting patient record")
	}
	return utils.Success(ctx, fiber.StatusOK, "Patient record deleted successfully", nil)
}

func patientError(ctx *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrPatientNotFound):
		return utils.NotFound(ctx, "Patient record not found")
	case errors.Is(err, services.ErrPatientNameTaken):
		return utils.Error(ctx, fiber.StatusBadRequest, "A patient with this name already exists in your records")
	case errors.Is(err, services.ErrInvalidGender),
		errors.Is(err, services.ErrInvalidDateOfBirth),
		errors.Is(err, services.ErrDateOfBirthInFuture),
		errors.Is(err, services.ErrSearchQueryRequired),
		errors.Is(err, services.ErrInvalidInput):
		return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("patient handler error (%s): %v", action, err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error while "+action)
	}
}
