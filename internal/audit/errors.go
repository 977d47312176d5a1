package audit

import (
	"errors"
	"fmt"
)

// ErrEmptyURL is returned before any stage runs when the caller supplies no URL.
var ErrEmptyURL = errors.New("audit: url is required")

// ConfigurationError reports a required setting that is not configured.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("audit: %s is not configured", e.Setting)
}

// FetchError reports that the page content could not be retrieved.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("audit: fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AnalysisError reports a failed generation call in one of the analysis stages.
type AnalysisError struct {
	Stage string
	Err   error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("audit: %s stage: %v", e.Stage, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
