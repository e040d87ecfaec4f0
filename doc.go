// Package main provides the entry point for the IAM console service.
// It initializes and runs a web server using the Fiber framework that exposes
// a JSON API for governing users, roles, audit entries and integration-sync
// status across the managed identity systems. The application uses gorm for
// data persistence and a reconciler that keeps derived role-assignment counts
// consistent with the actual role assignments.
package main
