package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pmmbridge"
	"pmmbridge/internal/api/handler/request"
	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/service"
	"pmmbridge/internal/engine"
	"pmmbridge/pkg"
)

type integrationHandler struct {
	workflow *service.WorkflowService
	logger   zerolog.Logger
}

func IntegrationHandler(router gin.IRouter, workflow *service.WorkflowService) {
	h := &integrationHandler{workflow: workflow, logger: pmmbridge.Logger}

	api := router.Group("/api")
	{
		api.POST("/integrate", h.integrate)
		api.POST("/integrate-all", h.integrateAll)
	}
}

func (slf *integrationHandler) integrate(c *gin.Context) {
	var dto request.IntegrateDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	out, postSteps, err := slf.workflow.IntegrateInstance(c.Request.Context(), sess, dto.Engine, engine.Instance{
		Name:     dto.Instance.Name,
		Host:     dto.Instance.Host,
		Port:     dto.Instance.Port,
		Username: dto.Instance.Username,
		Password: dto.Instance.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Integration{OK: true, Output: out, PostSteps: postSteps})
}

func (slf *integrationHandler) integrateAll(c *gin.Context) {
	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	results, err := slf.workflow.IntegrateAll(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.IntegrationBatch{OK: true, Results: results})
}
