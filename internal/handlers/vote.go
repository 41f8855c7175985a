package handlers

import (
	"net/http"

	"votemate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// voteRequest leaves OptionIndex nil when the field is absent, so 0 stays a valid choice.
type voteRequest struct {
	OptionIndex *int `json:"optionIndex" binding:"required"`
}

// Vote records the caller's single vote. The poll id comes from the path only.
func (h *PollHandler) Vote(c *gin.Context) {
	var req voteRequest
	if !bindJSON(c, &req) {
		return
	}

	poll, err := h.polls.Vote(c.Request.Context(), middleware.CurrentIdentity(c), c.Param("id"), *req.OptionIndex)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vote recorded successfully", "poll": poll})
}
