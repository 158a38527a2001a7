package bitbucketserverapi

import (
	"errors"
	"fmt"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
)

var (
	ErrTransport      = errors.New("failed sending build status to bitbucket server")
	ErrRemoteRejected = errors.New("bitbucket server rejected build status")
)

// BuildState is the state of a commit build as known by bitbucket server
type BuildState string

const (
	BuildStateSuccessful BuildState = "SUCCESSFUL"
	BuildStateFailed     BuildState = "FAILED"
	BuildStateInProgress BuildState = "INPROGRESS"
)

// GetBuildState maps a build result onto a bitbucket server build state; only successes and failures have one
func GetBuildState(result api.BuildResult) (state BuildState, ok bool) {
	switch result {
	case api.BuildResultSuccess:
		return BuildStateSuccessful, true
	case api.BuildResultFailure:
		return BuildStateFailed, true
	}

	return "", false
}

// BuildStatus is the body posted to the build-status endpoint
type BuildStatus struct {
	State       BuildState `json:"state"`
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
}

// StatusResponse holds what bitbucket server answered; the body is kept for logging only
type StatusResponse struct {
	StatusCode int
	Status     string
	Body       string
}

// RemoteRejectedError is returned for any non-2xx response
type RemoteRejectedError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("%v: %v %v", ErrRemoteRejected.Error(), e.Status, e.Body)
}

func (e *RemoteRejectedError) Is(target error) bool {
	return target == ErrRemoteRejected
}

// TransportError is returned when the request could not be sent or the response could not be received
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v %v: %v", ErrTransport.Error(), e.URL, e.Err)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
