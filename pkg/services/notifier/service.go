package notifier

import (
	"context"
	"strings"
	"time"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/clients/bitbucketserverapi"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/clients/credentials"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// EventPublisher receives an event after every notification attempt
type EventPublisher interface {
	PublishNotificationEvent(ctx context.Context, event api.NotificationEvent) (err error)
}

// Service sends the status of finished builds to bitbucket server
//
//go:generate mockgen -package=notifier -destination ./mock.go -source=service.go
type Service interface {
	Notify(ctx context.Context, job api.NotifierConfig, build api.BuildMetadata) (sent bool, err error)
	NotifyJob(ctx context.Context, jobName string, build api.BuildMetadata) (sent bool, err error)
}

// NewService returns a new notifier.Service; eventPublisher is optional
func NewService(configGetter api.ConfigGetter, credentialsProvider credentials.Provider, bitbucketserverapiClient bitbucketserverapi.Client, eventPublisher EventPublisher) Service {
	return &service{
		configGetter:             configGetter,
		credentialsProvider:      credentialsProvider,
		bitbucketserverapiClient: bitbucketserverapiClient,
		eventPublisher:           eventPublisher,
	}
}

type service struct {
	configGetter             api.ConfigGetter
	credentialsProvider      credentials.Provider
	bitbucketserverapiClient bitbucketserverapi.Client
	eventPublisher           EventPublisher
}

func (s *service) Notify(ctx context.Context, job api.NotifierConfig, build api.BuildMetadata) (sent bool, err error) {

	event := api.NotificationEvent{
		ID:         uuid.New().String(),
		Job:        job.Name,
		CommitHash: build.CommitHash,
	}
	defer func() {
		event.Outcome = GetNotificationOutcome(sent, err)
		if err != nil {
			event.Error = err.Error()
		}
		s.publishEvent(ctx, event)
	}()

	state, ok := bitbucketserverapi.GetBuildState(build.Result)
	if !ok || !job.ShouldNotify(build.Result) {
		log.Info().
			Str("job", job.Name).
			Str("result", string(build.Result)).
			Msg("Build result is not configured for notification, skipping")
		return false, nil
	}
	event.State = string(state)

	config := s.configGetter.GetConfig()
	if config == nil {
		config = &api.Config{}
	}

	resolvedJob, err := config.ResolveJob(job)
	if err != nil {
		return false, err
	}

	if strings.TrimSpace(build.CommitHash) == "" {
		return false, api.ErrMissingCommitHash
	}
	if !api.IsValidCommitHash(build.CommitHash) {
		return false, errors.Wrapf(api.ErrInvalidCommitHash, "commit hash %q", build.CommitHash)
	}

	buildStatusURL := api.GetBuildStatusURL(resolvedJob.BaseURL, build.CommitHash)

	creds, err := s.credentialsProvider.GetCredentials(ctx, resolvedJob.CredentialsRef, buildStatusURL)
	if err != nil {
		log.Error().Err(err).Str("job", job.Name).Str("credentialsRef", resolvedJob.CredentialsRef).Msg("Failed retrieving bitbucket server credentials")
		return false, err
	}

	status := bitbucketserverapi.BuildStatus{
		State:       state,
		Key:         build.ProjectKey,
		Name:        "Build #" + build.BuildNumber,
		URL:         build.BuildURL,
		Description: resolvedJob.Description,
	}

	response, err := s.bitbucketserverapiClient.SetBuildStatus(ctx, resolvedJob.BaseURL, creds, build.CommitHash, status)
	event.StatusCode = response.StatusCode
	if err != nil {
		return false, err
	}

	log.Info().
		Str("job", job.Name).
		Str("commit", build.CommitHash).
		Str("state", string(state)).
		Int("code", response.StatusCode).
		Msg("Sent build status to bitbucket server")

	return true, nil
}

func (s *service) NotifyJob(ctx context.Context, jobName string, build api.BuildMetadata) (sent bool, err error) {
	config := s.configGetter.GetConfig()
	if config == nil {
		return false, api.ErrUnknownJob
	}

	job, err := config.GetJob(jobName)
	if err != nil {
		return false, err
	}

	return s.Notify(ctx, *job, build)
}

func (s *service) publishEvent(ctx context.Context, event api.NotificationEvent) {
	if s.eventPublisher == nil {
		return
	}

	event.Time = time.Now().UTC()

	err := s.eventPublisher.PublishNotificationEvent(ctx, event)
	if err != nil {
		log.Warn().Err(err).Str("job", event.Job).Str("outcome", string(event.Outcome)).Msg("Failed publishing notification event")
	}
}

// GetNotificationOutcome classifies the result of Notify
func GetNotificationOutcome(sent bool, err error) api.NotificationOutcome {
	switch {
	case err == nil && sent:
		return api.NotificationOutcomeSent
	case err == nil:
		return api.NotificationOutcomeSkipped
	case errors.Is(err, credentials.ErrCredentialsNotFound):
		return api.NotificationOutcomeCredentialsNotFound
	case errors.Is(err, bitbucketserverapi.ErrRemoteRejected):
		return api.NotificationOutcomeRemoteRejected
	case errors.Is(err, bitbucketserverapi.ErrTransport):
		return api.NotificationOutcomeTransportError
	}

	return api.NotificationOutcomeInvalidConfig
}
