package handlers

import (
	"net/http"

	"votemate/internal/middleware"
	"votemate/internal/services"

	"github.com/gin-gonic/gin"
)

type createPollRequest struct {
	Question string   `json:"question" binding:"required"`
	Options  []string `json:"options" binding:"required,min=2,dive,required"`
}

type PollHandler struct {
	polls *services.PollService
}

func NewPollHandler(polls *services.PollService) *PollHandler {
	return &PollHandler{polls: polls}
}

func (h *PollHandler) Create(c *gin.Context) {
	var req createPollRequest
	if !bindJSON(c, &req) {
		return
	}

	poll, err := h.polls.CreatePoll(c.Request.Context(), middleware.CurrentIdentity(c), req.Question, req.Options)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Poll created successfully", "poll": poll})
}

func (h *PollHandler) List(c *gin.Context) {
	polls, err := h.polls.ListPolls(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Polls fetched successfully", "polls": polls})
}

// Get returns the poll itself, without an envelope.
func (h *PollHandler) Get(c *gin.Context) {
	poll, err := h.polls.GetPoll(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) Mine(c *gin.Context) {
	polls, err := h.polls.ListMyPolls(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your polls fetched successfully", "polls": polls})
}

func (h *PollHandler) Voted(c *gin.Context) {
	polls, err := h.polls.ListVotedPolls(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Voted polls fetched successfully", "polls": polls})
}

func (h *PollHandler) Delete(c *gin.Context) {
	pollID := c.Param("id")
	if err := h.polls.DeletePoll(c.Request.Context(), middleware.CurrentIdentity(c), pollID); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Poll deleted successfully", "pollId": pollID})
}
