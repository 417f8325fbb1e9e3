package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	appointmentservice "github.com/clinicore/clinic-api/internal/service/appointment"
	"github.com/clinicore/clinic-api/internal/service/identity"
	recordservice "github.com/clinicore/clinic-api/internal/service/record"
	"github.com/clinicore/clinic-api/pkg/validator"
)

type Handler struct {
	identity     *identity.Service
	appointments *appointmentservice.Service
	records      *recordservice.Service
	validator    *validator.Validator
}

func NewHandler(identitySvc *identity.Service, appointments *appointmentservice.Service, records *recordservice.Service, v *validator.Validator) *Handler {
	return &Handler{
		identity:     identitySvc,
		appointments: appointments,
		records:      records,
		validator:    v,
	}
}

// Patient self-registration is the one public registration path.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/patients", h.Register)
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/patients/:id", h.Get)
	rg.PUT("/patients/:id", h.Update)
	rg.GET("/patients/:id/appointments", h.AppointmentHistory)
	rg.GET("/patients/:id/records", h.Records)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}

	registered, err := h.identity.RegisterPatient(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(registered))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	profile, err := h.identity.GetPatientProfile(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	profile, err := h.identity.UpdatePatientProfile(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) AppointmentHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	appointments, err := h.appointments.HistoryForPatient(c.Request.Context(), actor, id, page)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Records(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	var page model.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	records, err := h.records.ListForPatient(c.Request.Context(), actor, id, page)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
