package api

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/tubescript/errors"
	"github.com/kbukum/tubescript/logger"
	"github.com/kbukum/tubescript/server"
	"github.com/kbukum/tubescript/service"
	"github.com/kbukum/tubescript/sse"
)

// Handler serves the REST API and the progress streams.
type Handler struct {
	svc       *service.Service
	hub       *sse.Hub
	keepAlive time.Duration
	log       *logger.Logger
}

// NewHandler returns a Handler. A zero keepAlive uses sse.DefaultKeepAlive.
func NewHandler(svc *service.Service, hub *sse.Hub, keepAlive time.Duration) *Handler {
	return &Handler{svc: svc, hub: hub, keepAlive: keepAlive, log: logger.Get("api")}
}

// SubmitJob handles POST /api/jobs.
func (h *Handler) SubmitJob(c *gin.Context) {
	var req service.SubmitJobRequest
	if !bind(c, &req) {
		return
	}
	sum, err := h.svc.SubmitJob(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, sum)
}

// ListJobs handles GET /api/jobs.
func (h *Handler) ListJobs(c *gin.Context) {
	jobs, err := h.svc.Jobs(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, jobs)
}

// GetJob handles GET /api/jobs/:id.
func (h *Handler) GetJob(c *gin.Context) {
	j, err := h.svc.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, j)
}

// GetTranscript handles GET /api/jobs/:id/transcript.
func (h *Handler) GetTranscript(c *gin.Context) {
	t, err := h.svc.Transcript(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, t)
}

// RenameSpeakers handles POST /api/jobs/:id/rename.
func (h *Handler) RenameSpeakers(c *gin.Context) {
	var req service.RenameRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.RenameSpeakers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// MergeSpeakers handles POST /api/jobs/:id/merge.
func (h *Handler) MergeSpeakers(c *gin.Context) {
	var req service.MergeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.MergeSpeakers(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// Export handles GET /api/jobs/:id/export?format=...&options=....
func (h *Handler) Export(c *gin.Context) {
	doc, err := h.svc.Export(c.Request.Context(), c.Param("id"), c.Query("format"), c.Query("options"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAttachment(c, doc.Filename, doc.ContentType, doc.Content)
}

// SubmitBatch handles POST /api/batches.
func (h *Handler) SubmitBatch(c *gin.Context) {
	var req service.SubmitBatchRequest
	if !bind(c, &req) {
		return
	}
	sum, err := h.svc.SubmitBatch(c.Request.Context(), req)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondAccepted(c, sum)
}

// ListBatches handles GET /api/batches.
func (h *Handler) ListBatches(c *gin.Context) {
	batches, err := h.svc.Batches(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, batches)
}

// GetBatch handles GET /api/batches/:id.
func (h *Handler) GetBatch(c *gin.Context) {
	b, err := h.svc.Batch(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, b)
}

// GetBatchResults handles GET /api/batches/:id/results.
func (h *Handler) GetBatchResults(c *gin.Context) {
	res, err := h.svc.BatchResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// Preview handles GET /api/sources/preview?url=...&limit=....
func (h *Handler) Preview(c *gin.Context) {
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	p, err := h.svc.Preview(c.Request.Context(), c.Query("url"), limit)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, p)
}

// ListItems handles GET /api/sources/items?url=...&offset=...&limit=....
func (h *Handler) ListItems(c *gin.Context) {
	offset, ok := queryInt(c, "offset")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	page, err := h.svc.ListItems(c.Request.Context(), c.Query("url"), offset, limit)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, page)
}

// Events handles GET /api/events/:id. The stream opens with the current
// snapshot of the job or batch, then carries every later update.
func (h *Handler) Events(c *gin.Context) {
	id := c.Param("id")
	initial, err := h.snapshot(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	log := h.log.WithContext(c.Request.Context())
	log.Debug("Event stream opened", logger.Fields("topic", id, "event", initial.Type))
	sse.Serve(h.hub, c.Writer, c.Request, id, h.keepAlive, initial)
	log.Debug("Event stream closed", logger.Fields("topic", id))
}

func (h *Handler) snapshot(ctx context.Context, id string) (sse.Event, error) {
	eventType, payload := sse.EventJob, any(nil)
	j, err := h.svc.Job(ctx, id)
	switch {
	case err == nil:
		payload = j.Summary()
	case errors.Is(err, errors.ErrCodeNotFound):
		b, berr := h.svc.Batch(ctx, id)
		if berr != nil {
			return sse.Event{}, berr
		}
		eventType, payload = sse.EventBatch, b.Summary()
	default:
		return sse.Event{}, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return sse.Event{}, errors.Internal(err)
	}
	return sse.Event{Type: eventType, Data: data}, nil
}

// bind decodes the JSON body into req and answers 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		server.RespondWithError(c, errors.Validation("Invalid request body: "+err.Error()))
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		server.RespondWithError(c, errors.InvalidInput(name, "must be an integer"))
		return 0, false
	}
	return n, true
}
