package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	appointmentservice "github.com/clinicore/clinic-api/internal/service/appointment"
	"github.com/clinicore/clinic-api/pkg/metrics"
	"github.com/clinicore/clinic-api/pkg/validator"
)

type Handler struct {
	service   *appointmentservice.Service
	validator *validator.Validator
	metrics   *metrics.Metrics
}

func NewHandler(service *appointmentservice.Service, v *validator.Validator, m *metrics.Metrics) *Handler {
	return &Handler{service: service, validator: v, metrics: m}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/appointments", h.Create)
	rg.GET("/appointments", h.List)
	rg.GET("/appointments/:id", h.Get)
	rg.POST("/appointments/:id/status", h.Transition)
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	appointment, err := h.service.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	appointment, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) List(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	appointments, err := h.service.List(c.Request.Context(), actor, &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}
	var req model.TransitionAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	appointment, err := h.service.Transition(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	h.metrics.AppointmentsByState.WithLabelValues(string(appointment.Status)).Inc()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}
