package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pmmbridge"
	"pmmbridge/internal/api/handler/request"
	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/models"
	"pmmbridge/internal/api/service"
	"pmmbridge/pkg"
)

type credentialsHandler struct {
	workflow *service.WorkflowService
	logger   zerolog.Logger
}

func CredentialsHandler(router gin.IRouter, workflow *service.WorkflowService) {
	h := &credentialsHandler{workflow: workflow, logger: pmmbridge.Logger}

	api := router.Group("/api")
	{
		api.POST("/validate-token", h.validateToken)
		api.POST("/validate-pmm", h.validatePMM)
		api.GET("/session", h.session)
		api.POST("/start-over", h.startOver)
	}
}

// loadSession resolves the request's session, shared by every endpoint file.
func loadSession(c *gin.Context, workflow *service.WorkflowService) (*models.Session, bool) {
	sess, err := workflow.GetOrCreate(c.GetString("sessionID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Session storage is unavailable."})
		return nil, false
	}
	return sess, true
}

func (slf *credentialsHandler) validateToken(c *gin.Context) {
	var dto request.ValidateTokenDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "DigitalOcean API token is required."})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	if err := slf.workflow.ValidateToken(c.Request.Context(), sess, dto.DOToken); err != nil {
		slf.logger.Info().Msg("DigitalOcean token validation failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Status{OK: true})
}

func (slf *credentialsHandler) validatePMM(c *gin.Context) {
	var dto request.ValidatePMMDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "PMM admin password is required."})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	if err := slf.workflow.ValidatePMM(c.Request.Context(), sess, dto.PMMPassword); err != nil {
		slf.logger.Info().Msg("PMM password validation failed")
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Status{OK: true})
}

func (slf *credentialsHandler) session(c *gin.Context) {
	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, slf.workflow.State(sess))
}

func (slf *credentialsHandler) startOver(c *gin.Context) {
	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	if _, err := slf.workflow.StartOver(sess); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Status{OK: true})
}
