package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewarena/internal/app/dto"
	"reviewarena/internal/domain/challenge"
)

func toChallenge(ch challenge.Challenge) dto.Challenge {
	return dto.Challenge{
		ID:          ch.ID,
		Name:        ch.Name,
		Description: ch.Description,
		TeamName:    ch.TeamName,
		Type:        string(ch.Type),
		Goal:        ch.Goal,
		StartDate:   ch.StartDate,
		EndDate:     ch.EndDate,
		Reward:      ch.Reward,
		IsActive:    ch.IsActive,
		CreatedAt:   ch.CreatedAt,
	}
}

func toChallengeViews(views []challenge.View) []dto.Challenge {
	out := make([]dto.Challenge, 0, len(views))
	for _, v := range views {
		ch := toChallenge(v.Challenge)
		ch.Phase = string(v.Phase)
		ch.Progress = &dto.ChallengeProgress{
			Current: v.Progress.Current,
			Goal:    v.Progress.Goal,
			Percent: v.Progress.Percent,
			Met:     v.Progress.Met,
		}
		out = append(out, ch)
	}
	return out
}

func (h *Handler) ChallengeCreate(c *gin.Context) {
	var body dto.CreateChallengeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, "invalid JSON")
		return
	}

	res, err := h.ChallengeSvc.Create(c.Request.Context(), challenge.Challenge{
		Name:        body.Name,
		Description: body.Description,
		TeamName:    body.TeamName,
		Type:        challenge.Type(body.Type),
		Goal:        body.Goal,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Reward:      body.Reward,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"challenge": toChallenge(res)})
}

func (h *Handler) ChallengeList(c *gin.Context) {
	board, err := h.ChallengeSvc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ChallengeBoard{
		Active:    toChallengeViews(board.Active),
		Upcoming:  toChallengeViews(board.Upcoming),
		Completed: toChallengeViews(board.Completed),
	})
}
