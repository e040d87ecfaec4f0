package config

import (
	"time"

	"github.com/iam-console/iam-console/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Reprocess holds the settings for manual integration reprocessing.
type Reprocess struct {
	// Timeout is the maximum time to wait for the external system
	// to confirm a re-launched synchronization.
	Timeout time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Reprocess Reprocess
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover      bool    // disable recover middleware
	Domain              string  // domain name for the webserver
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // encryption key for cookies
	Session             Session // session settings

	// WriteRateLimit is the per-client budget of mutating API
	// requests per second. Zero disables the limiter.
	WriteRateLimit float64
	WriteRateBurst int
}
