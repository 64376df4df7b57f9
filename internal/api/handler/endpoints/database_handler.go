package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"pmmbridge"
	"pmmbridge/internal/api/handler/request"
	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/service"
	"pmmbridge/pkg"
)

type databaseHandler struct {
	workflow *service.WorkflowService
	logger   zerolog.Logger
}

func DatabaseHandler(router gin.IRouter, workflow *service.WorkflowService) {
	h := &databaseHandler{workflow: workflow, logger: pmmbridge.Logger}

	api := router.Group("/api")
	{
		api.POST("/databases", h.listDatabases)
		api.POST("/select", h.selectDatabases)
		api.POST("/create-user", h.createUser)
		api.POST("/credentials", h.setCredential)
		api.POST("/remove", h.remove)
	}
}

func (slf *databaseHandler) listDatabases(c *gin.Context) {
	var dto request.ListDatabasesDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	records, err := slf.workflow.ListDatabases(c.Request.Context(), sess, dto.Engine, dto.UsePrivate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.DatabaseList{OK: true, Databases: records})
}

func (slf *databaseHandler) selectDatabases(c *gin.Context) {
	var dto request.SelectDatabasesDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	selected, err := slf.workflow.SelectDatabases(c.Request.Context(), sess, dto.DatabaseIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Selection{OK: true, Selected: selected})
}

func (slf *databaseHandler) createUser(c *gin.Context) {
	var dto request.CreateUserDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	user, err := slf.workflow.AutoProvisionUser(c.Request.Context(), sess, dto.DatabaseID, dto.Username)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.CreatedUser{OK: true, Username: user.Username, Password: user.Password})
}

func (slf *databaseHandler) setCredential(c *gin.Context) {
	var dto request.ManualCredentialDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	if err := slf.workflow.SetManualCredential(c.Request.Context(), sess, dto.DatabaseID, dto.Username, dto.Password); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Status{OK: true})
}

func (slf *databaseHandler) remove(c *gin.Context) {
	var dto request.RemoveDTO
	if err := pkg.ParseAndValidate(c, &dto); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	sess, ok := loadSession(c, slf.workflow)
	if !ok {
		return
	}

	out, err := slf.workflow.RemoveService(c.Request.Context(), sess, dto.Engine, dto.ServiceName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Removal{OK: true, Output: out})
}
