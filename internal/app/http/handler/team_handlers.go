package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
	"reviewarena/internal/domain/team"
)

func toTeam(t team.Team) dto.Team {
	out := dto.Team{
		TeamName: t.Name,
		Members:  make([]dto.TeamMember, 0, len(t.Members)),
	}
	for _, m := range t.Members {
		out.Members = append(out.Members, dto.TeamMember{
			UserID:   m.UserID,
			Login:    m.Login,
			IsActive: m.Active,
		})
	}
	return out
}

func (h *Handler) TeamAdd(c *gin.Context) {
	var body dto.Team
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}
	if body.TeamName == "" {
		h.badRequest(c, "team_name is required")
		return
	}

	t := team.Team{
		Name:    body.TeamName,
		Members: make([]team.Member, 0, len(body.Members)),
	}
	for _, m := range body.Members {
		if m.UserID == 0 && m.Login == "" {
			h.badRequest(c, "each member needs user_id or login")
			return
		}
		t.Members = append(t.Members, team.Member{UserID: m.UserID, Login: m.Login})
	}

	res, err := h.TeamSvc.AddTeam(c.Request.Context(), t)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"team": toTeam(res)})
}

func (h *Handler) TeamGet(c *gin.Context) {
	res, err := h.TeamSvc.GetTeam(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTeam(res))
}
