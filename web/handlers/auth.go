package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/web/common"
)

func LoginHandler(auth *core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		result, err := auth.Login(c.Request.Context(), body.Identifier, body.Password)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(result))
	}
}

func VerifyOTPHandler(auth *core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body VerifyOTPDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		session, err := auth.VerifyOTP(c.Request.Context(), body.Identifier, body.OTP, body.DeviceID)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(session))
	}
}

func SupervisorLoginHandler(auth *core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body SupervisorLoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		session, err := auth.SupervisorLogin(c.Request.Context(), body.Username, body.Password)
		if err != nil {
			respondAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(session))
	}
}

func RevokeTrustHandler(auth *core.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body RevokeTrustDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		if err := auth.RevokeTrust(c.Request.Context(), body.UserID); err != nil {
			respondAuthError(c, err)
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"revoked": true}))
	}
}

func respondAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidCredentials),
		errors.Is(err, core.ErrOTPMismatch),
		errors.Is(err, core.ErrOTPExpired):
		c.JSON(http.StatusUnauthorized, common.NewErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
	}
}
