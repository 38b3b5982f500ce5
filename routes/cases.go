package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"npj/dashboard"
	"npj/models"
	"npj/workflow"
)

// GET /cases
func (d *deps) listCases(c *gin.Context) {
	cases, err := d.Cases.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch cases. Try again later."})
		return
	}
	c.JSON(http.StatusOK, cases)
}

// GET /cases/:id
func (d *deps) getCase(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	cs, err := d.Cases.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Case not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch case. Try again later."})
		return
	}
	c.JSON(http.StatusOK, cs)
}

// GET /cases/stats
func (d *deps) caseStats(c *gin.Context) {
	cases, err := d.Cases.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch cases. Try again later."})
		return
	}
	c.JSON(http.StatusOK, dashboard.Aggregate(cases))
}

// POST /cases
func (d *deps) createCase(c *gin.Context) {
	if !workflow.CanApprove(caller(c).Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed to manage cases."})
		return
	}

	var cs models.Case
	if err := c.ShouldBindJSON(&cs); err != nil || cs.Number == "" || cs.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	if cs.Status == "" {
		cs.Status = "Em andamento"
	}

	if err := d.Cases.Create(&cs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create case. Try again later."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeCases(c)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "case created!", "case": cs})
}

// PUT /cases/:id
func (d *deps) updateCase(c *gin.Context) {
	if !workflow.CanApprove(caller(c).Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed to manage cases."})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}
	old, err := d.Cases.GetByID(id)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Case not found."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch case. Try again later."})
		return
	}

	var incoming models.Case
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}
	incoming.ID = old.ID
	if incoming.Number == "" {
		incoming.Number = old.Number
	}
	if incoming.Title == "" {
		incoming.Title = old.Title
	}
	if incoming.Status == "" {
		incoming.Status = old.Status
	}

	if err := d.Cases.Update(&incoming); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update case. Try again later."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeCases(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Case updated successfully!", "case": incoming})
}

/* ---------------- Attachments ---------------- */

// GET /cases/:id/attachments
func (d *deps) listAttachments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	atts, err := d.Attachments.ListByCase(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch attachments. Try again later."})
		return
	}
	if atts == nil {
		atts = []models.Attachment{}
	}
	c.JSON(http.StatusOK, atts)
}

// POST /cases/:id/attachments
func (d *deps) createAttachment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	exists, err := d.Cases.Exists(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch case. Try again later."})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Case not found."})
		return
	}

	var req struct {
		FileName    string `json:"fileName" binding:"required"`
		ContentType string `json:"contentType"`
		Size        int64  `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Could not parse request data."})
		return
	}

	a := models.Attachment{
		ID:          uuid.NewString(),
		CaseID:      id,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
		UploadedBy:  c.GetInt64("userId"),
		UploadedAt:  time.Now().UTC(),
	}
	if err := d.Attachments.Create(&a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not save attachment. Try again later."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeCases(c)
	}
	c.JSON(http.StatusCreated, gin.H{"message": "attachment saved!", "attachment": a})
}

// DELETE /attachments/:id
func (d *deps) deleteAttachment(c *gin.Context) {
	id := c.Param("id")

	a, err := d.Attachments.GetByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Attachment not found."})
		return
	}
	who := caller(c)
	if a.UploadedBy != who.ID && !workflow.CanApprove(who.Role) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not allowed to delete this attachment."})
		return
	}

	if err := d.Attachments.Delete(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete attachment."})
		return
	}

	if d.Inv != nil {
		d.Inv.PurgeCases(c)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Attachment deleted."})
}

/* ---------------- Notifications ---------------- */

// GET /notifications
func (d *deps) listNotifications(c *gin.Context) {
	notifs, err := d.Notifications.ListByUser(c.GetInt64("userId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not fetch notifications. Try again later."})
		return
	}
	if notifs == nil {
		notifs = []models.Notification{}
	}
	c.JSON(http.StatusOK, notifs)
}

// POST /notifications/:id/read
func (d *deps) readNotification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := d.Notifications.MarkRead(id, c.GetInt64("userId")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update notification."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification read."})
}
