package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
)

// UserSetActive includes or excludes a member from metrics. The flag
// survives later syncs.
func (h *Handler) UserSetActive(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}

	var body dto.SetActiveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.IsActive == nil {
		h.badRequest(c, "is_active is required")
		return
	}

	u, err := h.MemberSvc.SetActive(c.Request.Context(), id, *body.IsActive)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": dto.User{
		UserID:    u.ID,
		Login:     u.Login,
		Name:      u.DisplayName(),
		AvatarURL: u.AvatarURL,
		IsActive:  u.Active,
	}})
}
