package professional

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/clinic-api/internal/handler"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/internal/model"
	"github.com/clinicore/clinic-api/internal/service/identity"
	"github.com/clinicore/clinic-api/pkg/validator"
)

type Handler struct {
	identity  *identity.Service
	validator *validator.Validator
}

func NewHandler(identitySvc *identity.Service, v *validator.Validator) *Handler {
	return &Handler{identity: identitySvc, validator: v}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/professionals", h.Register)
	rg.GET("/professionals", h.List)
	rg.GET("/professionals/:id", h.Get)
	rg.PUT("/professionals/:id", h.Update)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	registered, err := h.identity.RegisterProfessional(c.Request.Context(), actor, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(registered))
}

// List is the public directory, visible to any authenticated actor.
func (h *Handler) List(c *gin.Context) {
	var filters model.ProfessionalFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	profiles, err := h.identity.ListProfessionals(c.Request.Context(), actor, &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profiles))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid professional ID"))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	profile, err := h.identity.GetProfessionalProfile(c.Request.Context(), actor, id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid professional ID"))
		return
	}
	var req model.UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	profile, err := h.identity.UpdateProfessionalProfile(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}
