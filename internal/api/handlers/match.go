package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dodgeshot/backend/internal/game"
)

// CreateMatchRequest is the setup payload for a new match.
type CreateMatchRequest struct {
	PlayerCount   int `json:"player_count"`
	ObstacleCount int `json:"obstacle_count"`
	CueBallCount  int `json:"cue_ball_count"`
}

// CreateMatch starts a new match and returns its token.
func CreateMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.CueBallCount == 0 {
			req.CueBallCount = 1
		}

		params := game.SetupParams{
			PlayerCount:   req.PlayerCount,
			ObstacleCount: req.ObstacleCount,
			CueBallCount:  req.CueBallCount,
		}

		m, err := game.Manager.CreateMatch(params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"match_id": m.ID,
			"token":    m.Token,
			"state":    m.Snapshot(),
		})
	}
}

// GetMatchState returns the current render-facing state of a match.
func GetMatchState() gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := game.Manager.GetMatch(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusOK, m.Snapshot())
	}
}

// EndMatch tears down a match. Stopping the frame driver is guaranteed
// to invalidate the countdown and result timers with it.
func EndMatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if _, err := game.Manager.GetMatch(token); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		game.Manager.EndMatch(token)
		c.JSON(http.StatusOK, gin.H{"status": "ended"})
	}
}
