package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/infrastructure/communication"
	"crewtrack.in/crewtrack/utils"
	"crewtrack.in/crewtrack/web/common"
)

// SyncAttendanceHandler applies a bulk upload from a supervisor device.
// Re-sending the same batch is safe: the store upserts by (employeeId, date).
func SyncAttendanceHandler(store *core.AttendanceStore, alerts *communication.Slack) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []AttendanceEntryDTO

		if err := c.ShouldBindJSON(&entries); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}

		records := utils.Map(entries, AttendanceEntryDTO.ToRecord)

		result, err := store.ApplyBatch(c.Request.Context(), records)
		if err != nil {
			notifyError(alerts, "attendance sync failed: "+err.Error())
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(SyncResponseDTO{
			Success:     true,
			SyncedCount: result.Upserted + result.Matched,
			Details:     result,
		}))
	}
}

func ListAttendanceHandler(store *core.AttendanceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := core.AttendanceFilter{
			Date:       c.Query("date"),
			EmployeeID: c.Query("employeeId"),
		}
		if val, err := strconv.Atoi(c.Query("limit")); err == nil {
			filter.Limit = val
		}

		records, err := store.FindAll(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"records": records,
		}))
	}
}

// ClearPhotoHandler is the only mutation allowed on a locked record.
func ClearPhotoHandler(store *core.AttendanceStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body ClearPhotoDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse(common.FormatBindingError(err)))
			return
		}
		if body.Date.IsZero() {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("date is required"))
			return
		}

		if err := store.ClearPhoto(c.Request.Context(), body.EmployeeID, body.Date.String()); err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{}))
	}
}

func SiteEmployeesHandler(sites core.SiteRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid site id"))
			return
		}

		employees, err := sites.ListEmployees(c.Request.Context(), uint(id))
		if err != nil {
			c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
			"employees": employees,
		}))
	}
}

func notifyError(alerts *communication.Slack, message string) {
	if alerts == nil {
		return
	}
	// alerting is best effort
	_ = alerts.Error(message)
}
