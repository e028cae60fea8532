package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mims9141/structuredchat/services"
)

// Setup registers the REST surface. Everything interactive lives on the
// websocket; these endpoints exist for health checks, lobby browsing, and
// out-of-band reports.
func Setup(router *gin.Engine, store *services.SessionStore, debates *services.DebateService) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// GET /presence returns connected totals and per-mode counts.
	router.GET("/presence", func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Counts())
	})

	// GET /debates lists live debate rooms for the lobby browser.
	router.GET("/debates", func(c *gin.Context) {
		c.JSON(http.StatusOK, debates.List())
	})

	router.GET("/debates/:code", func(c *gin.Context) {
		state, ok := debates.Snapshot(c.Param("code"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Debate not found"})
			return
		}
		c.JSON(http.StatusOK, state)
	})

	// GET /debates/:code/polls returns the room's audience poll tallies.
	router.GET("/debates/:code/polls", func(c *gin.Context) {
		tallies, err := debates.PollTallies(c.Param("code"))
		if err != nil {
			status := http.StatusInternalServerError
			if services.ErrorCode(err) == "not-found" {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, tallies)
	})

	// POST /report files a report against the reporter's current peer and
	// tears the room down. Also reachable over the websocket; this path
	// serves clients whose socket already dropped.
	router.POST("/report", func(c *gin.Context) {
		var input struct {
			RoomID     string `json:"roomId"`
			ReporterID string `json:"reporterId"`
			Reason     string `json:"reason"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.RoomID == "" || input.ReporterID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		if err := store.Report(input.ReporterID, input.RoomID, input.Reason); err != nil {
			status := http.StatusBadRequest
			if services.ErrorCode(err) == "not-found" {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reported"})
	})
}
