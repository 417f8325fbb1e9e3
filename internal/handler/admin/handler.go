package admin

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
	rg.POST("/admins", h.Register)
	rg.POST("/accounts/:id/deactivate", h.Deactivate)
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		handler.Error(c, err)
		return
	}
	actor, _ := middleware.CurrentActor(c)

	registered, err := h.identity.RegisterAdmin(c.Request.Context(), actor, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(registered))
}

func (h *Handler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid account ID"))
		return
	}
	actor, _ := middleware.CurrentActor(c)

	if err := h.identity.DeactivateAccount(c.Request.Context(), actor, id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"deactivated": true}))
}
