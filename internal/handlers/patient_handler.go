package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/services"
)

type PatientHandler struct {
	patientService *services.PatientService
}

func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

func (h *PatientHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePatientRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "patient.create", err)
	}

	patient, err := h.patientService.Create(c.UserContext(), &req)
	if err != nil {
		return middleware.Fail(c, "patient.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.PatientResponse{
		Message: "patient created",
		Patient: patient,
	})
}

func (h *PatientHandler) List(c *fiber.Ctx) error {
	patients, meta, err := h.patientService.List(c.UserContext(),
		c.QueryInt("page", 1),
		c.QueryInt("per_page", 0),
		c.Query("search"),
	)
	if err != nil {
		return middleware.Fail(c, "patient.list", err)
	}
	return c.JSON(dto.PatientListResponse{Patients: patients, Pagination: meta})
}

func (h *PatientHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "patient.get", err)
	}

	patient, err := h.patientService.Get(c.UserContext(), id)
	if err != nil {
		return middleware.Fail(c, "patient.get", err)
	}
	return c.JSON(dto.PatientResponse{Patient: patient})
}

func (h *PatientHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "patient.update", err)
	}

	var req dto.UpdatePatientRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "patient.update", err)
	}

	patient, err := h.patientService.Update(c.UserContext(), id, &req)
	if err != nil {
		return middleware.Fail(c, "patient.update", err)
	}
	return c.JSON(dto.PatientResponse{Message: "patient updated", Patient: patient})
}

func (h *PatientHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "patient.deactivate", err)
	}

	if err := h.patientService.Deactivate(c.UserContext(), id); err != nil {
		return middleware.Fail(c, "patient.deactivate", err)
	}
	return c.JSON(dto.MessageResponse{Message: "patient deactivated"})
}

func (h *PatientHandler) Reactivate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "patient.reactivate", err)
	}

	patient, err := h.patientService.Reactivate(c.UserContext(), id)
	if err != nil {
		return middleware.Fail(c, "patient.reactivate", err)
	}
	return c.JSON(dto.PatientResponse{Message: "patient reactivated", Patient: patient})
}
