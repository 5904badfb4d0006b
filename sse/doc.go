// Package sse delivers job and batch progress notifications as
// Server-Sent Events.
//
// Controllers call Hub.Publish(topic, type, snapshot) on every state change;
// HTTP handlers call Serve to stream a topic to a client.
package sse
