package main

import (
	"context"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/99designs/keyring"
	"github.com/alecthomas/kingpin"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/api"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/clients/bitbucketserverapi"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/clients/credentials"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/services/notifier"
	"github.com/estafette/estafette-bitbucket-server-notifier/pkg/services/queue"
	crypt "github.com/estafette/estafette-ci-crypt"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	jaegerprom "github.com/uber/jaeger-lib/metrics/prometheus"
	"golang.org/x/sync/errgroup"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

const (
	app = "estafette-bitbucket-server-notifier"

	exitCodeNotificationFailed = 1
	exitCodeInvalidConfig      = 2
)

var (
	version   string
	branch    string
	revision  string
	buildDate string
	goVersion = runtime.Version()
)

var (
	// flags
	configFilePath      = kingpin.Flag("config-file", "The path to the yaml config file configuring this application.").Default("/configs/config.yaml").Envar("CONFIG_FILE_PATH").String()
	secretDecryptionKey = kingpin.Flag("secret-decryption-key", "The AES-256 key used to decrypt secrets in the config file that have been encrypted with it.").Envar("SECRET_DECRYPTION_KEY").String()
	keyringPassphrase   = kingpin.Flag("keyring-passphrase", "The passphrase for the file keyring, used when no os keyring is available.").Envar("KEYRING_PASSPHRASE").String()
	kubeConfigPath      = kingpin.Flag("kubeconfig", "The path to a kubeconfig file, used when not running inside kubernetes.").Envar("KUBECONFIG").String()
	logFormat           = kingpin.Flag("log-format", "The log format, json or console.").Default("json").Envar("LOG_FORMAT").Enum("json", "console")

	notifyCommand     = kingpin.Command("notify", "Sends the status of a finished build to bitbucket server.")
	notifyJob         = notifyCommand.Flag("job", "The name of the job as configured in the config file.").Envar("JOB_NAME").Required().String()
	notifyProjectKey  = notifyCommand.Flag("project-key", "The key of the build status; defaults to the job name.").Envar("PROJECT_KEY").String()
	notifyBuildNumber = notifyCommand.Flag("build-number", "The number of the build.").Envar("BUILD_NUMBER").String()
	notifyBuildURL    = notifyCommand.Flag("build-url", "The url linking to the build.").Envar("BUILD_URL").String()
	notifyCommitHash  = notifyCommand.Flag("commit", "The hash of the built commit.").Envar("GIT_COMMIT").String()
	notifyBuildResult = notifyCommand.Flag("result", "The result of the build, SUCCESS or FAILURE; anything else is not notified.").Envar("BUILD_RESULT").String()
	notifyFailOnError = notifyCommand.Flag("fail-on-error", "Exit with a non-zero code if the notification fails.").Envar("FAIL_ON_ERROR").Bool()
	pushgatewayURL    = notifyCommand.Flag("pushgateway-url", "The url of a prometheus push gateway to push metrics to after notifying.").Envar("PUSHGATEWAY_URL").String()

	serveCommand             = kingpin.Command("serve", "Receives build events over http and nats and sends their status to bitbucket server.")
	apiAddress               = serveCommand.Flag("api-listen-address", "The address to listen on for api HTTP requests.").Default(":5000").String()
	prometheusMetricsAddress = serveCommand.Flag("metrics-listen-address", "The address to listen on for Prometheus metrics requests.").Default(":9001").String()
	prometheusMetricsPath    = serveCommand.Flag("metrics-path", "The path to listen for Prometheus metrics requests.").Default("/metrics").String()
)

func main() {

	// parse command line parameters
	kingpin.Version(version)
	command := kingpin.Parse()

	// configure json or console logging
	initLogging()

	closer := initJaeger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	switch command {
	case notifyCommand.FullCommand():
		exitCode = runNotify(ctx)

	case serveCommand.FullCommand():
		if err := runServe(ctx); err != nil {
			log.Error().Err(err).Msg("Serving failed")
			exitCode = exitCodeInvalidConfig
		}
	}

	cancel()
	if err := closer.Close(); err != nil {
		log.Warn().Err(err).Msg("Closing tracer failed")
	}

	os.Exit(exitCode)
}

func runNotify(ctx context.Context) (exitCode int) {

	config, _, err := readConfig()
	if err != nil {
		log.Error().Err(err).Msg("Reading config failed")
		return exitCodeInvalidConfig
	}

	credentialsProvider, err := newCredentialsProvider(config)
	if err != nil {
		log.Error().Err(err).Msg("Creating credentials provider failed")
		return exitCodeInvalidConfig
	}

	var queueService queue.Service
	if config.Queue.Enabled() {
		queueService = queue.NewService(config)
		if err := queueService.CreateConnection(ctx); err != nil {
			log.Warn().Err(err).Msg("Connecting to queue failed, notification events won't be published")
			queueService = nil
		} else {
			defer queueService.CloseConnection(ctx)
		}
	}

	notifierService := newNotifierService(config, credentialsProvider, queueService)

	build := getBuildMetadata(*notifyJob, *notifyProjectKey, *notifyBuildNumber, *notifyBuildURL, *notifyCommitHash, *notifyBuildResult)

	sent, err := notifierService.NotifyJob(ctx, *notifyJob, build)

	pushMetrics(*pushgatewayURL, *notifyJob)

	if err == nil {
		log.Info().Str("job", *notifyJob).Bool("sent", sent).Msg("Finished notifying bitbucket server")
	}

	return getExitCode(err, *notifyFailOnError)
}

func runServe(ctx context.Context) error {

	config, configReader, err := readConfig()
	if err != nil {
		return err
	}

	configWatcher := api.NewConfigWatcher(configReader, *configFilePath, *secretDecryptionKey != "", config)

	credentialsProvider, err := newCredentialsProvider(configWatcher)
	if err != nil {
		return err
	}

	var queueService queue.Service
	if config.Queue.Enabled() {
		queueService = queue.NewService(configWatcher)
		if err := queueService.CreateConnection(ctx); err != nil {
			return err
		}
		defer queueService.CloseConnection(ctx)
	}

	notifierService := newNotifierService(configWatcher, credentialsProvider, queueService)

	if queueService != nil {
		if err := queueService.InitSubscriptions(ctx, notifierService); err != nil {
			return err
		}
	}

	router := configureGinGonic(configWatcher, notifier.NewHandler(notifierService))

	apiServer := &http.Server{
		Addr:    *apiAddress,
		Handler: router,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle(*prometheusMetricsPath, promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    *prometheusMetricsAddress,
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", *apiAddress).Msg("Serving api calls...")
		return listenAndServe(apiServer)
	})

	g.Go(func() error {
		log.Info().Str("address", *prometheusMetricsAddress).Str("path", *prometheusMetricsPath).Msg("Serving Prometheus metrics...")
		return listenAndServe(metricsServer)
	})

	g.Go(func() error {
		return configWatcher.Watch(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful api server shutdown failed")
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Graceful metrics server shutdown failed")
		}

		return nil
	})

	err = g.Wait()

	log.Info().Msg("Server gracefully stopped")

	return err
}

func listenAndServe(server *http.Server) error {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func readConfig() (*api.Config, api.ConfigReader, error) {
	secretHelper := crypt.NewSecretHelper(*secretDecryptionKey, false)
	configReader := api.NewConfigReader(secretHelper)

	config, err := configReader.ReadConfigFromFile(*configFilePath, *secretDecryptionKey != "")
	if err != nil {
		return nil, nil, err
	}

	return config, configReader, nil
}

func newCredentialsProvider(configGetter api.ConfigGetter) (credentials.Provider, error) {

	config := configGetter.GetConfig()

	var kubeClientset kubernetes.Interface
	var kr keyring.Keyring
	var err error

	switch config.Credentials.Store {
	case api.CredentialsStoreKubernetes:
		kubeClientset, err = newKubeClientset()
		if err != nil {
			return nil, err
		}

	case api.CredentialsStoreKeyring:
		kr, err = credentials.OpenKeyring(config.Credentials, *keyringPassphrase)
		if err != nil {
			return nil, err
		}
	}

	provider, err := credentials.NewProvider(configGetter, kubeClientset, kr)
	if err != nil {
		return nil, err
	}

	return credentials.NewTracingProvider(
		credentials.NewMetricsProvider(
			credentials.NewLoggingProvider(provider),
			api.NewRequestCounter("credentials"),
			api.NewRequestHistogram("credentials"),
		),
	), nil
}

func newKubeClientset() (kubernetes.Interface, error) {
	kubeClientConfig, err := rest.InClusterConfig()
	if err != nil {
		kubeConfig := *kubeConfigPath
		if kubeConfig == "" {
			kubeConfig = clientcmd.RecommendedHomeFile
		}

		log.Debug().Err(err).Str("kubeconfig", kubeConfig).Msg("Not running inside kubernetes, using kubeconfig")

		kubeClientConfig, err = clientcmd.BuildConfigFromFlags("", kubeConfig)
		if err != nil {
			return nil, err
		}
	}

	kubeClientConfig.UserAgent = app

	return kubernetes.NewForConfig(kubeClientConfig)
}

func newNotifierService(configGetter api.ConfigGetter, credentialsProvider credentials.Provider, queueService queue.Service) notifier.Service {

	bitbucketserverapiClient := bitbucketserverapi.NewTracingClient(
		bitbucketserverapi.NewMetricsClient(
			bitbucketserverapi.NewLoggingClient(bitbucketserverapi.NewClient(configGetter)),
			api.NewRequestCounter("bitbucketserverapi"),
			api.NewRequestHistogram("bitbucketserverapi"),
		),
	)

	var eventPublisher notifier.EventPublisher
	if queueService != nil {
		eventPublisher = queueService
	}

	return notifier.NewTracingService(
		notifier.NewMetricsService(
			notifier.NewLoggingService(notifier.NewService(configGetter, credentialsProvider, bitbucketserverapiClient, eventPublisher)),
			api.NewRequestCounter("notifier"),
			api.NewRequestHistogram("notifier"),
			api.NewNotificationCounter(),
		),
	)
}

func getBuildMetadata(job, projectKey, buildNumber, buildURL, commitHash, result string) api.BuildMetadata {
	if projectKey == "" {
		projectKey = job
	}

	return api.BuildMetadata{
		ProjectKey:  projectKey,
		BuildNumber: buildNumber,
		BuildURL:    buildURL,
		CommitHash:  commitHash,
		Result:      api.ParseBuildResult(result),
	}
}

// getExitCode keeps a failed notification from failing the build unless asked to; config errors always fail
func getExitCode(err error, failOnError bool) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, api.ErrUnknownJob) || errors.Is(err, api.ErrMissingBaseURL) || errors.Is(err, api.ErrMissingCommitHash) || errors.Is(err, api.ErrInvalidCommitHash) {
		log.Error().Err(err).Msg("Notifier is not configured correctly")
		return exitCodeInvalidConfig
	}

	log.Warn().Err(err).Msg("Notifying bitbucket server failed")
	if failOnError {
		return exitCodeNotificationFailed
	}

	return 0
}

func pushMetrics(pushgatewayURL, job string) {
	if pushgatewayURL == "" {
		return
	}

	err := push.New(pushgatewayURL, "bitbucket_server_notifier").
		Gatherer(prometheus.DefaultGatherer).
		Grouping("job_name", job).
		Push()
	if err != nil {
		log.Warn().Err(err).Str("url", pushgatewayURL).Msg("Pushing metrics to push gateway failed")
	}
}

func initLogging() {

	// log as severity for stackdriver logging to recognize the level
	zerolog.LevelFieldName = "severity"

	var output io.Writer = os.Stdout
	if *logFormat == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	// set some default fields added to all logs
	log.Logger = zerolog.New(output).With().
		Timestamp().
		Str("app", app).
		Str("version", version).
		Logger()

	// use zerolog for any logs sent via standard log library
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	// log startup message
	log.Debug().
		Str("branch", branch).
		Str("revision", revision).
		Str("buildDate", buildDate).
		Str("goVersion", goVersion).
		Msgf("Starting %v...", app)
}

func initJaeger() io.Closer {

	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger config from environment variables failed")
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = app
	}

	// tracing stays off without an agent or collector
	if os.Getenv("JAEGER_AGENT_HOST") == "" && os.Getenv("JAEGER_ENDPOINT") == "" {
		cfg.Disabled = true
	}

	closer, err := cfg.InitGlobalTracer(cfg.ServiceName, jaegercfg.Metrics(jaegerprom.New()))
	if err != nil {
		log.Fatal().Err(err).Msg("Generating Jaeger tracer failed")
	}

	return closer
}

func configureGinGonic(configGetter api.ConfigGetter, notifierHandler notifier.Handler) *gin.Engine {

	// run gin in release mode and other defaults
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = log.Logger
	gin.DisableConsoleColor()

	// Creates a router without any middleware by default
	router := gin.New()

	// Logging middleware
	router.Use(ZeroLogMiddleware())

	// Opentracing middleware
	router.Use(OpenTracingMiddleware())

	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	router.Use(gin.Recovery())

	// Gzip middleware
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	authMiddleware := api.NewAuthMiddleware(configGetter)

	apiRoutes := router.Group("/api", authMiddleware.BearerJWTMiddlewareFunc())
	apiRoutes.POST("/notifications", notifierHandler.PostNotification)

	// liveness and readiness
	router.GET("/liveness", func(c *gin.Context) {
		c.String(http.StatusOK, "I'm alive!")
	})
	router.GET("/readiness", func(c *gin.Context) {
		c.String(http.StatusOK, "I'm ready!")
	})

	return router
}
