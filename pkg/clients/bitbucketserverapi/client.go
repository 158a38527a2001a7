package bitbucketserverapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/opentracing-contrib/go-stdlib/nethttp"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sethgrid/pester"
)

// Client is the interface for communicating with the bitbucket server build-status api
//
//go:generate mockgen -package=bitbucketserverapi -destination ./mock.go -source=client.go
type Client interface {
	SetBuildStatus(ctx context.Context, baseURL string, credentials api.Credentials, commitHash string, status BuildStatus) (response StatusResponse, err error)
}

// NewClient returns a new bitbucketserverapi.Client
func NewClient(configGetter api.ConfigGetter) Client {
	return &client{
		configGetter: configGetter,
	}
}

type client struct {
	configGetter api.ConfigGetter
}

// SetBuildStatus posts the status of a commit build exactly once
func (c *client) SetBuildStatus(ctx context.Context, baseURL string, credentials api.Credentials, commitHash string, status BuildStatus) (response StatusResponse, err error) {

	buildStatusURL := api.GetBuildStatusURL(baseURL, commitHash)

	requestBody, err := json.Marshal(status)
	if err != nil {
		return response, errors.Wrap(err, "Failed marshalling build status")
	}

	log.Info().Str("url", buildStatusURL).Str("body", string(requestBody)).Msg("Posting build status to bitbucket server")

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, buildStatusURL, bytes.NewReader(requestBody))
	if err != nil {
		return response, &TransportError{URL: buildStatusURL, Err: err}
	}

	span := opentracing.SpanFromContext(ctx)
	var ht *nethttp.Tracer
	if span != nil {
		// collect additional information on setting up connections
		request, ht = nethttp.TraceRequest(span.Tracer(), request)
	}

	// add headers
	request.SetBasicAuth(credentials.Username, credentials.Secret)
	request.Header.Set("Content-Type", "application/json; charset=utf-8")

	// perform actual request
	res, err := c.getHTTPClient().Do(request)
	if ht != nil {
		ht.Finish()
	}
	if err != nil && res == nil {
		log.Error().Err(err).Str("url", buildStatusURL).Msg("Bitbucket server api call failed")
		return response, &TransportError{URL: buildStatusURL, Err: err}
	}
	defer res.Body.Close()

	response.StatusCode = res.StatusCode
	response.Status = res.Status

	accepted := err == nil && res.StatusCode >= 200 && res.StatusCode < 300

	// the http client closes the body of a failed response, it's only lost for logging
	body, readErr := io.ReadAll(res.Body)
	if readErr != nil {
		if accepted {
			log.Error().Err(readErr).Str("url", buildStatusURL).Msg("Failed reading bitbucket server response body")
			return response, &TransportError{URL: buildStatusURL, Err: readErr}
		}
		log.Debug().Err(readErr).Str("url", buildStatusURL).Msg("Failed reading bitbucket server response body")
	}
	response.Body = string(body)

	if accepted {
		log.Info().Int("code", response.StatusCode).Str("status", response.Status).Str("body", response.Body).Msg("Bitbucket server api call succeeded")
		return response, nil
	}

	log.Warn().Int("code", response.StatusCode).Str("status", response.Status).Str("body", response.Body).Msg("Bitbucket server api call failed")

	return response, &RemoteRejectedError{
		StatusCode: response.StatusCode,
		Status:     response.Status,
		Body:       response.Body,
	}
}

func (c *client) getHTTPClient() *pester.Client {

	connectTimeout := 30 * time.Second
	readTimeout := 60 * time.Second
	if config := c.configGetter.GetConfig(); config != nil && config.HTTP != nil {
		connectTimeout = config.HTTP.ConnectTimeout
		readTimeout = config.HTTP.ReadTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: readTimeout,
	}

	// the client timeout bounds reading the body as well, after the headers have arrived
	httpClient := &http.Client{
		Transport: &nethttp.Transport{RoundTripper: transport},
		Timeout:   connectTimeout + readTimeout,
	}

	// a build status is sent once; pester is limited to a single attempt
	client := pester.NewExtendedClient(httpClient)
	client.MaxRetries = 1
	client.KeepLog = true

	return client
}
