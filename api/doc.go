// Package api maps the HTTP routes under /api onto service.Service.
//
// Jobs and batches are submitted with POST and polled with GET, or followed
// over server-sent events at /api/events/:id. Errors are rendered from
// *errors.AppError by server.RespondWithError.
package api
