// Package workflow holds the decision logic of the content-production
// workflow as pure functions: a command plus the current request/content
// snapshot yields the next snapshot and the notifications to send. Nothing
// here performs I/O; persistence and fan-out live in data/aggregates and
// services.
package workflow
