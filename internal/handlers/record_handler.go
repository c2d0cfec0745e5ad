package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/services"
)

type MedicalRecordHandler struct {
	recordService *services.MedicalRecordService
}

func NewMedicalRecordHandler(recordService *services.MedicalRecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{recordService: recordService}
}

// Create records the clinical notes of an appointment, identified by the
// :id route parameter.
func (h *MedicalRecordHandler) Create(c *fiber.Ctx) error {
	appointmentID, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "medical_record.create", err)
	}

	var req dto.MedicalRecordRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "medical_record.create", err)
	}

	rec, err := h.recordService.Create(c.UserContext(), appointmentID, &req)
	if err != nil {
		return middleware.Fail(c, "medical_record.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MedicalRecordResponse{
		Message:       "medical record created",
		MedicalRecord: rec,
	})
}

func (h *MedicalRecordHandler) GetByAppointment(c *fiber.Ctx) error {
	appointmentID, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "medical_record.get", err)
	}

	rec, err := h.recordService.GetByAppointment(c.UserContext(), appointmentID)
	if err != nil {
		return middleware.Fail(c, "medical_record.get", err)
	}
	return c.JSON(dto.MedicalRecordResponse{MedicalRecord: rec})
}

func (h *MedicalRecordHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "medical_record.get", err)
	}

	rec, err := h.recordService.Get(c.UserContext(), id)
	if err != nil {
		return middleware.Fail(c, "medical_record.get", err)
	}
	return c.JSON(dto.MedicalRecordResponse{MedicalRecord: rec})
}

func (h *MedicalRecordHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "medical_record.update", err)
	}

	var req dto.MedicalRecordRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "medical_record.update", err)
	}

	rec, err := h.recordService.Update(c.UserContext(), id, &req)
	if err != nil {
		return middleware.Fail(c, "medical_record.update", err)
	}
	return c.JSON(dto.MedicalRecordResponse{Message: "medical record updated", MedicalRecord: rec})
}
