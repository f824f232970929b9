// internal/publish/errors.go
//
// Pipeline error taxonomy.  Each stage wraps its cause in a typed error
// so handlers can map failures to an HTTP class and metrics can count
// them per stage without string matching.
package publish

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrPublishInFlight is returned when a publish is requested for a site
// that already has one running.
var ErrPublishInFlight = errors.New("publish already in flight for this site")

// ConfigError means the pipeline cannot run at all: missing or invalid
// GitHub credentials, account mismatch.  Caller-fixable, 400 class.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return "publish config: " + e.Reason
	}
	return fmt.Sprintf("publish config: %s: %v", e.Reason, e.Err)
}
func (e *ConfigError) Unwrap() error   { return e.Err }
func (e *ConfigError) HTTPStatus() int { return http.StatusBadRequest }
func (e *ConfigError) Stage() string   { return "config" }

// RepoError covers repository reconciliation failures.
type RepoError struct {
	Repo string
	Err  error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("reconcile repository %s: %v", e.Repo, e.Err)
}
func (e *RepoError) Unwrap() error   { return e.Err }
func (e *RepoError) HTTPStatus() int { return http.StatusBadGateway }
func (e *RepoError) Stage() string   { return "repository" }

// PushError covers content upload failures; Path is the file that could
// not be written.
type PushError struct {
	Repo string
	Path string
	Err  error
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push %s to %s: %v", e.Path, e.Repo, e.Err)
}
func (e *PushError) Unwrap() error   { return e.Err }
func (e *PushError) HTTPStatus() int { return http.StatusBadGateway }
func (e *PushError) Stage() string   { return "push" }

// ActivationError covers Pages enablement, build, and liveness failures.
// LastStatus carries the most recent build status observed so a timed
// out publish still reports how far the remote side got.
type ActivationError struct {
	Repo       string
	LastStatus string
	Err        error
}

func (e *ActivationError) Error() string {
	if e.LastStatus != "" {
		return fmt.Sprintf("activate pages for %s (last status %q): %v", e.Repo, e.LastStatus, e.Err)
	}
	return fmt.Sprintf("activate pages for %s: %v", e.Repo, e.Err)
}
func (e *ActivationError) Unwrap() error   { return e.Err }
func (e *ActivationError) HTTPStatus() int { return http.StatusBadGateway }
func (e *ActivationError) Stage() string   { return "activate" }

// stageError is satisfied by every taxonomy member.
type stageError interface {
	error
	HTTPStatus() int
	Stage() string
}

// HTTPStatus maps a pipeline error to a response class.  Unclassified
// failures (database writes, render bugs) are internal.
func HTTPStatus(err error) int {
	var se stageError
	if errors.As(err, &se) {
		return se.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// StageOf labels an error for the per-stage failure counter.
func StageOf(err error) string {
	var se stageError
	if errors.As(err, &se) {
		return se.Stage()
	}
	return "internal"
}
