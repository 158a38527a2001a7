package api

import (
	"strings"
	"time"
)

// BuildResult is the outcome of a build as reported by the ci system
type BuildResult string

const (
	BuildResultSuccess BuildResult = "SUCCESS"
	BuildResultFailure BuildResult = "FAILURE"
	BuildResultOther   BuildResult = "OTHER"
)

// ParseBuildResult maps the result string of a ci system onto a BuildResult; anything that isn't a success or failure becomes BuildResultOther
func ParseBuildResult(value string) BuildResult {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "SUCCESS", "SUCCESSFUL":
		return BuildResultSuccess
	case "FAILURE", "FAILED":
		return BuildResultFailure
	}

	return BuildResultOther
}

// UnmarshalText allows the result to be passed as any casing in json or yaml
func (r *BuildResult) UnmarshalText(text []byte) error {
	*r = ParseBuildResult(string(text))
	return nil
}

// BuildMetadata is the snapshot of a finished build handed over by the ci system
type BuildMetadata struct {
	ProjectKey  string      `json:"projectKey"`
	BuildNumber string      `json:"buildNumber"`
	BuildURL    string      `json:"buildUrl"`
	CommitHash  string      `json:"commitHash"`
	Result      BuildResult `json:"result"`
}

// Credentials are used for basic authentication against the bitbucket server api
type Credentials struct {
	Username string
	Secret   string
}

// NotificationRequest is sent by a ci system to the http or queue receiver
type NotificationRequest struct {
	Job   string        `json:"job"`
	Build BuildMetadata `json:"build"`
}

// NotificationOutcome describes what happened to a single notification
type NotificationOutcome string

const (
	NotificationOutcomeSent                NotificationOutcome = "sent"
	NotificationOutcomeSkipped             NotificationOutcome = "skipped"
	NotificationOutcomeCredentialsNotFound NotificationOutcome = "credentials_not_found"
	NotificationOutcomeTransportError      NotificationOutcome = "transport_error"
	NotificationOutcomeRemoteRejected      NotificationOutcome = "remote_rejected"
	NotificationOutcomeInvalidConfig       NotificationOutcome = "invalid_config"
)

// NotificationEvent is published after each notification attempt
type NotificationEvent struct {
	ID         string              `json:"id"`
	Job        string              `json:"job"`
	CommitHash string              `json:"commitHash"`
	State      string              `json:"state,omitempty"`
	Outcome    NotificationOutcome `json:"outcome"`
	StatusCode int                 `json:"statusCode,omitempty"`
	Error      string              `json:"error,omitempty"`
	Time       time.Time           `json:"time"`
}
