// Package api implements the HTTP handlers for batch grading
// submission and asynchronous task status polling. Handlers stay thin:
// they validate the request, hand the work to the task engine, and
// translate engine snapshots into JSON responses.
package api
