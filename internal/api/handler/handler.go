package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sci-z-declaration/internal/api/dto"
	"sci-z-declaration/internal/service"
)

type DeclarationHandler struct {
	service service.DeclarationService
}

func NewDeclarationHandler(svc service.DeclarationService) *DeclarationHandler {
	return &DeclarationHandler{service: svc}
}

func (h *DeclarationHandler) SubmitDeclaration(c *gin.Context) {
	var req dto.CreateDeclarationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *DeclarationHandler) WorkflowStatus(c *gin.Context) {
	declarationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid declaration id"})
		return
	}

	resp, err := h.service.WorkflowStatus(c.Request.Context(), declarationID)
	if err != nil {
		if errors.Is(err, service.ErrDeclarationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
