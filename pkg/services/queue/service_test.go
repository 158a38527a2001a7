package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/services/notifier"
	gomock "github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func getTestConfig() *api.Config {
	config := &api.Config{}
	config.SetDefaults()

	return config
}

func TestReceiveNotificationRequest(t *testing.T) {
	t.Run("CallsNotifyJobOnNotifierService", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		notifierService := notifier.NewMockService(ctrl)
		notifierService.
			EXPECT().
			NotifyJob(gomock.Any(), "my-job", api.BuildMetadata{CommitHash: "abc123", Result: api.BuildResultFailure}).
			Return(true, nil).
			Times(1)

		s := &service{configGetter: getTestConfig(), notifierService: notifierService}

		// act
		s.ReceiveNotificationRequest(&api.NotificationRequest{Job: "my-job", Build: api.BuildMetadata{CommitHash: "abc123", Result: api.BuildResultFailure}})
	})

	t.Run("DoesNotPanicIfNotifierServiceReturnsError", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		notifierService := notifier.NewMockService(ctrl)
		notifierService.EXPECT().NotifyJob(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, api.ErrUnknownJob)

		s := &service{configGetter: getTestConfig(), notifierService: notifierService}

		// act
		assert.NotPanics(t, func() {
			s.ReceiveNotificationRequest(&api.NotificationRequest{Job: "other-job"})
		})
	})

	t.Run("IgnoresNilRequest", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		notifierService := notifier.NewMockService(ctrl)
		notifierService.EXPECT().NotifyJob(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		s := &service{configGetter: getTestConfig(), notifierService: notifierService}

		// act
		s.ReceiveNotificationRequest(nil)
	})
}

func TestPublishNotificationEvent(t *testing.T) {
	t.Run("ReturnsErrNotConnectedWithoutConnection", func(t *testing.T) {

		s := NewService(getTestConfig())

		// act
		err := s.PublishNotificationEvent(context.Background(), api.NotificationEvent{Job: "my-job"})

		assert.True(t, errors.Is(err, ErrNotConnected))
	})
}

func TestInitSubscriptions(t *testing.T) {
	t.Run("ReturnsErrNotConnectedWithoutConnection", func(t *testing.T) {

		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		s := NewService(getTestConfig())

		// act
		err := s.InitSubscriptions(context.Background(), notifier.NewMockService(ctrl))

		assert.True(t, errors.Is(err, ErrNotConnected))
	})
}
