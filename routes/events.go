package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"npj/workflow"
)

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var req struct {
		Title        string    `json:"title"`
		Description  string    `json:"description"`
		Location     string    `json:"location"`
		StartAt      time.Time `json:"startAt"`
		EndAt        time.Time `json:"endAt"`
		CaseID       *int64    `json:"caseId"`
		Participants []struct {
			Email string `json:"email"`
		} `json:"participants"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	in := workflow.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		CaseID:      req.CaseID,
	}
	for _, p := range req.Participants {
		in.Participants = append(in.Participants, p.Email)
	}

	ev, err := d.Workflow.Request(c.Request.Context(), in, caller(c))
	if err != nil {
		abortErr(c, err)
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEvents(c)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "event created!", "event": ev})
}

// GET /events
func (d *deps) listEvents(c *gin.Context) {
	events, err := d.Workflow.List(c.Request.Context(), caller(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	details, err := d.Workflow.Get(c.Request.Context(), id, caller(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GET /events/stats
func (d *deps) eventStats(c *gin.Context) {
	stats, err := d.Workflow.Stats(c.Request.Context())
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// POST /events/:id/approve
func (d *deps) approveEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Observation string `json:"observation"`
	}
	// body is optional on approve
	_ = c.ShouldBindJSON(&req)

	ev, err := d.Workflow.Approve(c.Request.Context(), id, caller(c), req.Observation)
	if err != nil {
		abortErr(c, err)
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event approved.", "event": ev})
}

// POST /events/:id/reject
func (d *deps) rejectEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	ev, err := d.Workflow.Reject(c.Request.Context(), id, caller(c), req.Reason)
	if err != nil {
		abortErr(c, err)
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event rejected.", "event": ev})
}

// POST /events/:id/cancel
func (d *deps) cancelEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	ev, err := d.Workflow.Cancel(c.Request.Context(), id, caller(c), req.Reason)
	if err != nil {
		abortErr(c, err)
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event canceled.", "event": ev})
}

// POST /events/:id/complete
func (d *deps) completeEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ev, err := d.Workflow.Complete(c.Request.Context(), id, caller(c))
	if err != nil {
		abortErr(c, err)
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeEvents(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event completed.", "event": ev})
}

// POST /events/:id/respond
func (d *deps) respondEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req struct {
		Response string `json:"response"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := d.Workflow.Respond(c.Request.Context(), id, caller(c), req.Response); err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Response recorded."})
}
