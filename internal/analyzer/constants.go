package analyzer

import "time"

const (
	// DefaultListTimeout is the standard timeout for directory lookups
	DefaultListTimeout = 30 * time.Second

	// DefaultSubmitTimeout bounds brief and content submissions, which include
	// document analysis on the backend and can run for minutes
	DefaultSubmitTimeout = 5 * time.Minute

	// DefaultListRate and DefaultListBurst cap how fast list operations may
	// hit the backend
	DefaultListRate  = 5
	DefaultListBurst = 10
)
