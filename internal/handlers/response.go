package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"prizewheel/internal/services"
	"prizewheel/internal/storage"
	"prizewheel/internal/wheel"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/logger"
)

// Response is the envelope of every JSON error.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Success: false, Error: msg})
}

// validationMessage turns binding errors into a single readable line.
func validationMessage(errs validator.ValidationErrors) string {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("campo %s é obrigatório", err.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("campo %s deve ser no mínimo %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("campo %s é inválido", err.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// respondError maps service errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		verr  *services.ValidationError
		vErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &vErrs):
		fail(c, http.StatusBadRequest, validationMessage(vErrs))
	case errors.Is(err, storage.ErrNotFound):
		fail(c, http.StatusNotFound, "Campanha não encontrada")
	case errors.Is(err, services.ErrNoLead):
		fail(c, http.StatusForbidden, "Cadastre-se antes de girar a roleta")
	case errors.Is(err, services.ErrSpinInProgress):
		fail(c, http.StatusConflict, "A roleta já está girando")
	case errors.Is(err, wheel.ErrInvalidWeights):
		fail(c, http.StatusBadRequest, "Campanha sem prêmios disponíveis")
	default:
		logger.Errorf("Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "Erro interno")
	}
}

// bindJSON decodes the request body, answering 400 itself on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			fail(c, http.StatusBadRequest, validationMessage(vErrs))
		} else {
			fail(c, http.StatusBadRequest, "Dados inválidos")
		}
		return false
	}
	return true
}
