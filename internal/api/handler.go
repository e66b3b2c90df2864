package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"medicine-locator/internal/broker"
	"medicine-locator/internal/catalog"
	"medicine-locator/internal/models"
	"medicine-locator/internal/search"
	"medicine-locator/internal/store"
	"medicine-locator/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	engine         *search.Engine
	catalog        *catalog.Catalog
	db             *store.Store
	eventPublisher *broker.EventPublisher
}

// NewHandler creates a new HTTP handler
func NewHandler(engine *search.Engine, cat *catalog.Catalog, db *store.Store, eventPublisher *broker.EventPublisher) *Handler {
	return &Handler{
		engine:         engine,
		catalog:        cat,
		db:             db,
		eventPublisher: eventPublisher,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/customer/search", h.searchMedicine)
		v1.GET("/medicines/:id", h.getMedicine)
		v1.POST("/inventory", h.updateInventory)
		v1.POST("/stores", h.registerStore)
		v1.PATCH("/stores/:id/status", h.setStoreStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// searchMedicine handles availability searches for a customer location
func (h *Handler) searchMedicine(c *gin.Context) {
	medicineID := c.Query("medicine_id")
	if medicineID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "medicine_id is required"})
		return
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lon"})
		return
	}

	var radius float64
	if v := c.Query("radius_m"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius_m"})
			return
		}
	}

	var deadlineMs int64
	if v := c.Query("deadline_ms"); v != "" {
		deadlineMs, err = strconv.ParseInt(v, 10, 64)
		if err != nil || deadlineMs <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deadline_ms"})
			return
		}
	}

	resp, err := h.engine.Search(c.Request.Context(), search.SearchRequest{
		MedicineID:          medicineID,
		Lat:                 lat,
		Lon:                 lon,
		InitialRadiusMeters: radius,
		DeadlineMillis:      deadlineMs,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidMedicine) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Unknown medicine",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Search failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getMedicine resolves and returns a catalog entry
func (h *Handler) getMedicine(c *gin.Context) {
	id, err := h.catalog.Resolve(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown medicine"})
		return
	}

	medicine, _ := h.catalog.Get(id)
	c.JSON(http.StatusOK, medicine)
}

type updateInventoryRequest struct {
	StoreID    string            `json:"store_id" binding:"required"`
	MedicineID string            `json:"medicine_id" binding:"required"`
	Quantity   int               `json:"quantity" binding:"min=0"`
	Confidence models.Confidence `json:"confidence" binding:"required"`
	ReportedAt time.Time         `json:"reported_at"`
}

// updateInventory accepts one stock report and publishes it to the
// inventory update feed. The worker applies it asynchronously.
func (h *Handler) updateInventory(c *gin.Context) {
	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if !req.Confidence.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid confidence level"})
		return
	}

	if _, err := h.catalog.Resolve(req.MedicineID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown medicine"})
		return
	}

	if req.ReportedAt.IsZero() {
		req.ReportedAt = time.Now()
	}

	event := &models.InventoryUpdatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeInventoryUpdated,
			Timestamp: time.Now(),
		},
		StoreID:    req.StoreID,
		MedicineID: req.MedicineID,
		Quantity:   req.Quantity,
		Confidence: req.Confidence,
		ReportedAt: req.ReportedAt,
	}

	if err := h.eventPublisher.PublishInventoryUpdated(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to publish inventory update",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"event_id": event.EventID})
}

type registerStoreRequest struct {
	Name           string  `json:"name" binding:"required"`
	Latitude       float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude      float64 `json:"longitude" binding:"min=-180,max=180"`
	OperatingHours string  `json:"operating_hours"`
}

// registerStore creates a store and announces its activation
func (h *Handler) registerStore(c *gin.Context) {
	var req registerStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	st := &models.Store{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		OperatingHours: req.OperatingHours,
		Active:         true,
	}

	if err := h.db.CreateStore(c.Request.Context(), st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to register store",
			"details": err.Error(),
		})
		return
	}

	event := &models.StoreStatusEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeStoreActivated,
			Timestamp: time.Now(),
		},
		StoreID:   st.ID,
		Name:      st.Name,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
		Active:    true,
	}

	if err := h.eventPublisher.PublishStoreStatus(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Store registered but activation event failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, st)
}

type setStoreStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// setStoreStatus activates or deactivates a store
func (h *Handler) setStoreStatus(c *gin.Context) {
	var req setStoreStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	st, err := h.db.GetStoreByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	eventType := models.EventTypeStoreDeactivated
	if *req.Active {
		eventType = models.EventTypeStoreActivated
	}

	event := &models.StoreStatusEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		StoreID:   st.ID,
		Name:      st.Name,
		Latitude:  st.Latitude,
		Longitude: st.Longitude,
		Active:    *req.Active,
	}

	if err := h.eventPublisher.PublishStoreStatus(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to publish store status",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"event_id": event.EventID})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
