// GDPR HTTP handlers.
//
//   - GET    /gdpr/export  (full data bundle, JSON attachment)
//   - DELETE /gdpr/data    (hard-delete everything for the user)
//
// Deletion is immediate and irreversible; there is no grace period.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Export godoc
// @ID          gdprExport
// @Summary     Export all personal data
// @Description Returns every row stored for the user as a downloadable JSON bundle.
// @Tags        GDPR
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {object}  services.GDPRExport
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /gdpr/export [get]
func (h *Handlers) Export(c *gin.Context) {
	bundle, err := h.gdprSvc.Export(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeExportFailed, err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="data-export.json"`)
	ok(c, http.StatusOK, bundle)
}

// DeleteData godoc
// @ID          gdprDelete
// @Summary     Delete all personal data
// @Description Hard-deletes every row stored for the user across all tables. Irreversible.
// @Tags        GDPR
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     204  {string}  string "No Content"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /gdpr/data [delete]
func (h *Handlers) DeleteData(c *gin.Context) {
	if err := h.gdprSvc.Delete(c.Request.Context(), userID(c)); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	noContent(c)
}
