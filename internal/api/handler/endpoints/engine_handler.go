package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/service"
)

type engineHandler struct {
	workflow *service.WorkflowService
}

func EngineHandler(router gin.IRouter, workflow *service.WorkflowService) {
	h := &engineHandler{workflow: workflow}
	router.Group("/api").GET("/engines", h.engines)
}

func (slf *engineHandler) engines(c *gin.Context) {
	c.JSON(http.StatusOK, response.EngineList{Engines: slf.workflow.Engines()})
}
