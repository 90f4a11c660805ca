package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crewtrack.in/crewtrack/core"
	"crewtrack.in/crewtrack/web/common"
	"crewtrack.in/crewtrack/web/middlewares"
)

// MeHandler echoes the authenticated identity. Supervisors additionally get
// their site with its geofence, which the device needs before it can gate
// check-ins.
func MeHandler(sites core.SiteRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middlewares.GetIdentity(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, common.NewErrorResponse("no identity"))
			return
		}

		resp := gin.H{
			"userId": claims.UserID,
			"role":   claims.Role,
		}

		if claims.SiteID != 0 {
			site, err := sites.FindByID(c.Request.Context(), claims.SiteID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, common.NewErrorResponse(err.Error()))
				return
			}
			if site != nil {
				resp["site"] = site
				resp["assignedSites"] = []uint{site.ID}
			}
		}

		c.JSON(http.StatusOK, common.NewSuccessResponse(resp))
	}
}
