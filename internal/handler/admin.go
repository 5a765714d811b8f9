package handler

import (
	"net/http"

	"invoicer/internal/dto"
	"invoicer/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct{ svc service.AuthService }

func NewAdminHandler(svc service.AuthService) *AdminHandler { return &AdminHandler{svc: svc} }

// CreateUser godoc
// @Summary Create a user with an explicit role set (admin only)
// @Tags admin
// @Accept json
// @Produce json
// @Param body body dto.CreateUserRequest true "User data with role names"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /api/admin/users [post]
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateUserWithRoles(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
