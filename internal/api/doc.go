// Package api implements the HTTP handlers for the task board: task
// lifecycle and workflow transitions, comments, users, groups and
// authentication. Handlers decode and validate requests, call into the
// service layer and translate its errors into HTTP status codes.
package api
