// Notification and coach-note HTTP handlers.
//
//   - GET  /notifications            (paginated feed, newest first)
//   - POST /notifications/{id}/read  (mark one as read)
//   - GET  /notes                    (weekly digest notes)
//
// Notifications are written exclusively by the scheduled jobs; this surface
// only reads and flags them.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nourish-labs/go-coach-backend/internal/domain"
	"github.com/nourish-labs/go-coach-backend/internal/services"
)

// ListNotificationsResponse wraps a page of notifications.
type ListNotificationsResponse struct {
	Notifications []domain.CoachNotification `json:"notifications"`
	Pagination    Pagination                 `json:"pagination"`
}

// ListNotifications godoc
// @ID          listNotifications
// @Summary     List the user's notifications (paginated)
// @Tags        Notifications
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListNotificationsResponse
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications [get]
func (h *Handlers) ListNotifications(c *gin.Context) {
	page, pageSize := clampPagination(c)
	items, total, err := h.notifSvc.List(c.Request.Context(), userID(c), (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListNotificationsResponse{
		Notifications: items,
		Pagination:    paginate(page, pageSize, total),
	})
}

// MarkNotificationRead godoc
// @ID          markNotificationRead
// @Summary     Mark a notification as read
// @Tags        Notifications
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"        example(user123)
// @Param       id         path    string  true  "Notification ID (UUID)"       format(uuid)
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "Notification not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notifications/{id}/read [post]
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "notification id must be a UUID")
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), userID(c), id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "notification not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListNotes godoc
// @ID          listNotes
// @Summary     List the user's coach notes
// @Description Returns the weekly summary notes written by the digest job, oldest first.
// @Tags        Notifications
// @Produce     json
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Success     200  {array}   domain.CoachNote
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /notes [get]
func (h *Handlers) ListNotes(c *gin.Context) {
	notes, err := h.notifSvc.Notes(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, notes)
}
