package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBuildResult(t *testing.T) {
	t.Run("ReturnsSuccessForSuccess", func(t *testing.T) {

		// act
		result := ParseBuildResult("SUCCESS")

		assert.Equal(t, BuildResultSuccess, result)
	})

	t.Run("ReturnsSuccessForLowercaseSuccessful", func(t *testing.T) {

		// act
		result := ParseBuildResult(" successful ")

		assert.Equal(t, BuildResultSuccess, result)
	})

	t.Run("ReturnsFailureForFailed", func(t *testing.T) {

		// act
		result := ParseBuildResult("failed")

		assert.Equal(t, BuildResultFailure, result)
	})

	t.Run("ReturnsOtherForUnstable", func(t *testing.T) {

		// act
		result := ParseBuildResult("UNSTABLE")

		assert.Equal(t, BuildResultOther, result)
	})

	t.Run("ReturnsOtherForSucceeded", func(t *testing.T) {

		// act
		result := ParseBuildResult("SUCCEEDED")

		assert.Equal(t, BuildResultOther, result)
	})

	t.Run("ReturnsOtherForEmptyString", func(t *testing.T) {

		// act
		result := ParseBuildResult("")

		assert.Equal(t, BuildResultOther, result)
	})
}

func TestUnmarshalNotificationRequest(t *testing.T) {
	t.Run("UnmarshalsBuildMetadataWithAnyResultCasing", func(t *testing.T) {

		body := `{"job":"my-job","build":{"projectKey":"my-project","buildNumber":"12","buildUrl":"https://ci.example.com/job/my-job/12/","commitHash":"abc123","result":"failure"}}`

		var request NotificationRequest

		// act
		err := json.Unmarshal([]byte(body), &request)

		assert.Nil(t, err)
		assert.Equal(t, "my-job", request.Job)
		assert.Equal(t, "my-project", request.Build.ProjectKey)
		assert.Equal(t, "12", request.Build.BuildNumber)
		assert.Equal(t, "https://ci.example.com/job/my-job/12/", request.Build.BuildURL)
		assert.Equal(t, "abc123", request.Build.CommitHash)
		assert.Equal(t, BuildResultFailure, request.Build.Result)
	})
}
