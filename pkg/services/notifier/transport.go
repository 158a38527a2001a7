package notifier

import (
	"errors"
	"net/http"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func NewHandler(service Service) Handler {
	return Handler{
		service: service,
	}
}

type Handler struct {
	service Service
}

// PostNotification answers 200 for every notification attempt, including failed ones, so a ci system never fails a build on it
func (h *Handler) PostNotification(c *gin.Context) {

	var request api.NotificationRequest
	err := c.ShouldBindJSON(&request)
	if err != nil || request.Job == "" {
		errorMessage := "Binding PostNotification body failed"
		log.Error().Err(err).Msg(errorMessage)
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusText(http.StatusBadRequest), "message": errorMessage})
		return
	}

	sent, err := h.service.NotifyJob(c.Request.Context(), request.Job, request.Build)
	if errors.Is(err, api.ErrUnknownJob) {
		c.JSON(http.StatusNotFound, gin.H{"code": http.StatusText(http.StatusNotFound), "message": err.Error()})
		return
	}

	response := gin.H{"sent": sent}
	if err != nil {
		response["error"] = err.Error()
	}

	c.JSON(http.StatusOK, response)
}
