package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pmmbridge/internal/api/handler/response"
	"pmmbridge/internal/api/models"
)

// writeError converts a workflow error into the uniform failure envelope.
// Nothing from the taxonomy escapes as an unhandled fault.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   *models.ValidationError
		authErr         *models.AuthError
		userExistsErr   *models.UserExistsError
		notFoundErr     *models.NotFoundError
		registrationErr *models.RegistrationError
		connectivityErr *models.ConnectivityError
		providerErr     *models.ProviderError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.APIError{Message: validationErr.Message})
	case errors.As(err, &authErr):
		c.JSON(http.StatusUnauthorized, response.APIError{Message: authErr.Message})
	case errors.As(err, &userExistsErr):
		c.JSON(http.StatusConflict, response.APIError{
			Message:   userExistsErr.Error(),
			ErrorCode: "user_exists",
			Username:  userExistsErr.Username,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, response.APIError{
			Message: notFoundErr.Error(),
			Output:  notFoundErr.Output,
		})
	case errors.As(err, &registrationErr):
		c.JSON(http.StatusBadGateway, response.APIError{
			Message: registrationErr.Message,
			Output:  registrationErr.Output,
		})
	case errors.As(err, &connectivityErr):
		c.JSON(http.StatusBadGateway, response.APIError{Message: connectivityErr.Error()})
	case errors.As(err, &providerErr):
		status := providerErr.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		c.JSON(status, response.APIError{Message: providerErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
	}
}
