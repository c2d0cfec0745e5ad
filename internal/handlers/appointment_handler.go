package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sghss/sghss-api/internal/apperr"
	"github.com/sghss/sghss-api/internal/dto"
	"github.com/sghss/sghss-api/internal/middleware"
	"github.com/sghss/sghss-api/internal/services"
)

type AppointmentHandler struct {
	appointmentService *services.AppointmentService
}

func NewAppointmentHandler(appointmentService *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAppointmentRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "appointment.create", err)
	}

	appointment, err := h.appointmentService.Create(c.UserContext(), &req)
	if err != nil {
		return middleware.Fail(c, "appointment.create", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AppointmentResponse{
		Message:     "appointment scheduled",
		Appointment: appointment,
	})
}

func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	var q dto.AppointmentQuery
	if err := c.QueryParser(&q); err != nil {
		return middleware.Fail(c, "appointment.list", apperr.BadFormat("invalid query parameters"))
	}

	appointments, meta, err := h.appointmentService.List(c.UserContext(), &q)
	if err != nil {
		return middleware.Fail(c, "appointment.list", err)
	}
	return c.JSON(dto.AppointmentListResponse{Appointments: appointments, Pagination: meta})
}

func (h *AppointmentHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "appointment.get", err)
	}

	appointment, err := h.appointmentService.Get(c.UserContext(), id)
	if err != nil {
		return middleware.Fail(c, "appointment.get", err)
	}
	return c.JSON(dto.AppointmentResponse{Appointment: appointment})
}

func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return middleware.Fail(c, "appointment.update_status", err)
	}

	var req dto.UpdateAppointmentStatusRequest
	if err := parseBody(c, &req); err != nil {
		return middleware.Fail(c, "appointment.update_status", err)
	}

	appointment, err := h.appointmentService.UpdateStatus(c.UserContext(), id, req.Status)
	if err != nil {
		return middleware.Fail(c, "appointment.update_status", err)
	}
	return c.JSON(dto.AppointmentResponse{Message: "status updated", Appointment: appointment})
}
