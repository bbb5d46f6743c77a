package handler

import (
	"context"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
)

const statusInterval = 5 * time.Second

// LiveCounter reports how many test sessions are running.
type LiveCounter interface {
	LiveCount() int
}

// SystemHandler reports process and pipeline health.
type SystemHandler struct {
	rdb       *redis.Client
	sessions  LiveCounter
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. rdb may be nil.
func NewSystemHandler(rdb *redis.Client, sessions LiveCounter, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		sessions:  sessions,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Timestamp     int64   `json:"timestamp"`
	UptimeSeconds float64 `json:"uptime_seconds"`

	LiveSessions   int   `json:"live_sessions"`
	AnalyticsQueue int64 `json:"analytics_queue"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`
}

// Status godoc
// GET /api/v1/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, h.collect(c.Request.Context()))
}

// StatusStream godoc
// GET /api/v1/system/status/stream
// Pushes the status as server-sent events until the client leaves.
func (h *SystemHandler) StatusStream(c *gin.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.SSEvent("status", h.collect(c.Request.Context()))
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			h.log.Debug().Msg("Status stream closed")
			return false
		case <-ticker.C:
			c.SSEvent("status", h.collect(c.Request.Context()))
			return true
		}
	})
}

func (h *SystemHandler) collect(ctx context.Context) systemStatus {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s := systemStatus{
		Timestamp:     time.Now().Unix(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		LiveSessions:  h.sessions.LiveCount(),
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     ms.HeapAlloc,
		HeapSys:       ms.HeapSys,
		NumGC:         ms.NumGC,
		GoVersion:     runtime.Version(),
	}

	if h.rdb != nil {
		n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistAnalyticsQueue).Result()
		if err != nil {
			h.log.Warn().Err(err).Msg("Reading analytics queue length failed")
		}
		s.AnalyticsQueue = n
	}
	return s
}
