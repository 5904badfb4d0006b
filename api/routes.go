package api

import "github.com/gin-gonic/gin"

// Register mounts every API route on r.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")

	jobs := api.Group("/jobs")
	jobs.POST("", h.SubmitJob)
	jobs.GET("", h.ListJobs)
	jobs.GET("/:id", h.GetJob)
	jobs.GET("/:id/transcript", h.GetTranscript)
	jobs.POST("/:id/rename", h.RenameSpeakers)
	jobs.POST("/:id/merge", h.MergeSpeakers)
	jobs.GET("/:id/export", h.Export)

	batches := api.Group("/batches")
	batches.POST("", h.SubmitBatch)
	batches.GET("", h.ListBatches)
	batches.GET("/:id", h.GetBatch)
	batches.GET("/:id/results", h.GetBatchResults)

	sources := api.Group("/sources")
	sources.GET("/preview", h.Preview)
	sources.GET("/items", h.ListItems)

	api.GET("/events/:id", h.Events)
}
