package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/schoolhub/announcement-service/internal/domain"
	"github.com/schoolhub/announcement-service/internal/metrics"
	"github.com/schoolhub/announcement-service/internal/queue"
	"github.com/schoolhub/announcement-service/internal/repo"
)

const eventsExchange = "announcements.events"

type Handler struct {
	Store           *repo.Store
	Redis           *repo.Redis
	RateLimitPerMin int
	Events          queue.Publisher
}

func NewHandler(store *repo.Store, rds *repo.Redis, rlPerMin int, pub queue.Publisher) *Handler {
	return &Handler{
		Store:           store,
		Redis:           rds,
		RateLimitPerMin: rlPerMin,
		Events:          pub,
	}
}

// teacherOK runs the credential check shared by every operation except the
// public active listing: the caller is authorized iff the username exists in
// the teacher directory. Writes the error response itself on failure.
func (h *Handler) teacherOK(c *gin.Context, username string) bool {
	var (
		ok  bool
		err error
	)
	WithSpan(c.Request.Context(), "teacher.exists", func(ctx context.Context) {
		ok, err = h.Store.TeacherExists(ctx, username)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return false
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return false
	}
	return true
}

// ListActive godoc
// @Summary List currently active announcements
// @Tags announcements
// @Produce json
// @Success 200 {array} domain.Announcement
// @Router /announcements/active [get]
func (h *Handler) ListActive(c *gin.Context) {
	today := time.Now().Format("2006-01-02")
	items, err := h.Store.ListActive(c.Request.Context(), today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAll godoc
// @Summary List all announcements, newest first
// @Tags announcements
// @Produce json
// @Param username query string true "teacher username"
// @Success 200 {array} domain.Announcement
// @Failure 401 {object} map[string]string
// @Router /announcements/all [get]
func (h *Handler) ListAll(c *gin.Context) {
	if !h.teacherOK(c, c.Query("username")) {
		return
	}
	items, err := h.Store.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type createReq struct {
	Message        *string `json:"message"` // pointer: required by presence, "" is a legal message
	StartDate      *string `json:"start_date"`
	ExpirationDate string  `json:"expiration_date"`
	CreatedBy      string  `json:"created_by"`
}

// Create godoc
// @Summary Create an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Param payload body createReq true "message, expiration_date, created_by; optional start_date"
// @Success 200 {object} domain.Announcement
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /announcements/ [post]
func (h *Handler) Create(c *gin.Context) {
	var in createReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if in.Message == nil || in.ExpirationDate == "" || in.CreatedBy == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message, expiration_date and created_by are required"})
		return
	}
	if !h.teacherOK(c, in.CreatedBy) {
		return
	}

	// Dates are accepted verbatim: no format check, no start<expiration check.
	a := &domain.Announcement{
		Message:        *in.Message,
		StartDate:      in.StartDate,
		ExpirationDate: in.ExpirationDate,
		CreatedBy:      in.CreatedBy,
	}
	if err := h.Store.InsertAnnouncement(c.Request.Context(), a); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	metrics.AnnouncementWrites.WithLabelValues("create").Inc()
	_ = h.Events.Publish(c.Request.Context(), eventsExchange, "announcement.created",
		queue.AnnouncementCreated{AnnouncementID: a.ID.Hex(), CreatedBy: a.CreatedBy, ExpirationDate: a.ExpirationDate},
		c.GetString(RequestIDKey))

	c.JSON(http.StatusOK, a)
}

type updateReq struct {
	Message        *string `json:"message"`
	StartDate      *string `json:"start_date"`
	ExpirationDate *string `json:"expiration_date"`
}

// Update godoc
// @Summary Partially update an announcement
// @Tags announcements
// @Accept json
// @Produce json
// @Param id path string true "announcement id (hex)"
// @Param username query string true "teacher username"
// @Param payload body updateReq true "any of message, start_date, expiration_date"
// @Success 200 {object} domain.Announcement
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /announcements/{id} [put]
func (h *Handler) Update(c *gin.Context) {
	if !h.teacherOK(c, c.Query("username")) {
		return
	}

	var in updateReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	patch := repo.AnnouncementPatch{
		Message:        in.Message,
		StartDate:      in.StartDate,
		ExpirationDate: in.ExpirationDate,
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	// A malformed id is the caller's mistake, not a missing document:
	// parse failure and matched-zero take distinct paths.
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement ID"})
		return
	}

	if err := h.Store.UpdateAnnouncement(c.Request.Context(), id, patch); err != nil {
		if err == repo.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	updated, err := h.Store.FindAnnouncement(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if updated == nil {
		// deleted between the write and the read-back
		c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
		return
	}

	metrics.AnnouncementWrites.WithLabelValues("update").Inc()
	_ = h.Events.Publish(c.Request.Context(), eventsExchange, "announcement.updated",
		queue.AnnouncementUpdated{AnnouncementID: id.Hex(), UpdatedBy: c.Query("username")},
		c.GetString(RequestIDKey))

	c.JSON(http.StatusOK, updated)
}

// Delete godoc
// @Summary Delete an announcement
// @Tags announcements
// @Produce json
// @Param id path string true "announcement id (hex)"
// @Param username query string true "teacher username"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /announcements/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	if !h.teacherOK(c, c.Query("username")) {
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid announcement ID"})
		return
	}

	if err := h.Store.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		if err == repo.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Announcement not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	metrics.AnnouncementWrites.WithLabelValues("delete").Inc()
	_ = h.Events.Publish(c.Request.Context(), eventsExchange, "announcement.deleted",
		queue.AnnouncementDeleted{AnnouncementID: id.Hex(), DeletedBy: c.Query("username")},
		c.GetString(RequestIDKey))

	c.JSON(http.StatusOK, gin.H{"message": "Announcement deleted successfully"})
}

func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	if h.Redis != nil {
		if err := h.Redis.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
