package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awsSession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhlee0409/sidedish-sub001/core"
	handler "github.com/jhlee0409/sidedish-sub001/handler/http"
	"github.com/jhlee0409/sidedish-sub001/platform/cache"
	"github.com/jhlee0409/sidedish-sub001/platform/limiter"
	"github.com/jhlee0409/sidedish-sub001/platform/metrics"
	"github.com/jhlee0409/sidedish-sub001/platform/redis"
	"github.com/jhlee0409/sidedish-sub001/service/comment"
	"github.com/jhlee0409/sidedish-sub001/service/project"
	"github.com/jhlee0409/sidedish-sub001/service/reaction"
	"github.com/jhlee0409/sidedish-sub001/service/session"
	"github.com/jhlee0409/sidedish-sub001/service/user"
	"github.com/jhlee0409/sidedish-sub001/service/whisper"
)

// Logging and telemetry identifiers.
const (
	component            = "sidedish-http"
	namespaceCache       = "cache"
	namespaceService     = "service"
	namespaceSource      = "source"
	subsystemHit         = "hit"
	subsystemQueue       = "queue"
	serviceProjectCounts = "project_counts"
	storeCache           = "redis"
	storeService         = "postgres"
)

// Versions.
const (
	versionCurrent = "0.1"
)

// Tenant namespace all data lives under.
const (
	namespaceProduction = "sidedish"
)

// Supported limiter backends.
const (
	limiterMem   = "mem"
	limiterRedis = "redis"
)

// Supported source types.
const (
	sourceNop = "nop"
	sourceSQS = "sqs"
)

// Prefixes.
const (
	prefixRateLimiter = "ratelimiter:"
)

// Timeouts
const (
	defaultReadTimeout  = 2 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		awsID          = flag.String("aws.id", "", "Identifier for AWS requests")
		awsRegion      = flag.String("aws.region", "us-east-1", "AWS Region to operate in")
		awsSecret      = flag.String("aws.secret", "", "Identification secret for AWS requests")
		limiterBackend = flag.String("limiter", limiterRedis, "Backend used for rate limiting")
		listenAddr     = flag.String("listen.addr", ":8083", "HTTP bind address for main API")
		postgresURL    = flag.String("postgres.url", "", "Postgres URL to connect to")
		redisAddr      = flag.String("redis.addr", ":6379", "Redis address to connect to")
		s3Bucket       = flag.String("s3.bucket", "sidedish-images", "S3 bucket used for image uploads")
		source         = flag.String("source", sourceNop, "Source type used for state change propagations")
		telemetryAddr  = flag.String("telemetry.addr", ":9000", "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

	// Setup logging.
	logger := log.With(
		log.NewJSONLogger(os.Stdout),
		"caller", log.Caller(3),
		"component", component,
		"revision", revision,
	)

	hostname, err := os.Hostname()
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
	}

	logger = log.With(logger, "host", hostname)

	// Setup instrumentation.
	go func(addr string) {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", addr,
			"sub", "telemetry",
		)

		http.Handle("/metrics", promhttp.Handler())

		err := http.ListenAndServe(addr, nil)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", "telemetry")
			os.Exit(1)
		}
	}(*telemetryAddr)

	cacheFieldKeys := []string{
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	}

	cacheErrCount, cacheOpCount, cacheOpLatency := metrics.KeyMetrics(
		namespaceCache,
		cacheFieldKeys...,
	)

	cacheHitCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespaceCache,
		Subsystem: subsystemHit,
		Name:      "count",
		Help:      "Number of cache hits",
	}, cacheFieldKeys)

	serviceErrCount, serviceOpCount, serviceOpLatency := metrics.KeyMetrics(
		namespaceService,
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldService,
		metrics.FieldStore,
	)

	sourceFieldKeys := []string{
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldNamespace,
		metrics.FieldSource,
		metrics.FieldStore,
	}

	sourceErrCount, sourceOpCount, sourceOpLatency := metrics.KeyMetrics(
		namespaceSource,
		sourceFieldKeys...,
	)

	sourceQueueLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespaceSource,
			Subsystem: subsystemQueue,
			Name:      "latency_seconds",
			Help:      "Distribution of message queue latency in seconds",
			Buckets:   metrics.BucketsQueue,
		},
		sourceFieldKeys,
	)
	prometheus.MustRegister(sourceQueueLatency)

	// Setup clients.
	var (
		aSession = awsSession.New(&aws.Config{
			Credentials: credentials.NewStaticCredentials(*awsID, *awsSecret, ""),
			Region:      aws.String(*awsRegion),
		})
		redisPool = redis.Pool(*redisAddr, "")
		s3API     = s3.New(aSession)
		sqsAPI    = sqs.New(aSession)
	)

	pgClient, err := sqlx.Connect(storeService, *postgresURL)
	if err != nil {
		logger.Log("err", err, "lifecycle", "abort")
		os.Exit(1)
	}

	// Setup rate limiter.
	var limits limiter.Limiter

	switch *limiterBackend {
	case limiterMem:
		limits = limiter.Mem()
	case limiterRedis:
		limits = limiter.Redis(redisPool, prefixRateLimiter)
	default:
		logger.Log(
			"err", fmt.Sprintf("Limiter backend '%s' not supported", *limiterBackend),
			"lifecycle", "abort",
		)
		os.Exit(1)
	}

	// Setup caches.
	var countsCache cache.CountService
	countsCache = cache.RedisCountService(redisPool)
	countsCache = cache.InstrumentCountServiceMiddleware(
		component,
		serviceProjectCounts,
		storeCache,
		cacheErrCount,
		cacheHitCount,
		cacheOpCount,
		cacheOpLatency,
	)(countsCache)

	// Setup sources.
	var (
		projectSource  project.Source
		reactionSource reaction.Source
	)

	switch *source {
	case sourceNop:
		projectSource = project.NopSource()
		reactionSource = reaction.NopSource()
	case sourceSQS:
		projectSource, err = project.SQSSource(sqsAPI)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}

		reactionSource, err = reaction.SQSSource(sqsAPI)
		if err != nil {
			logger.Log("err", err, "lifecycle", "abort")
			os.Exit(1)
		}
	default:
		logger.Log(
			"err", fmt.Sprintf("Source type '%s' not supported", *source),
			"lifecycle", "abort",
		)
		os.Exit(1)
	}

	projectSource = project.InstrumentSourceMiddleware(
		component,
		*source,
		sourceErrCount,
		sourceOpCount,
		sourceOpLatency,
		sourceQueueLatency,
	)(projectSource)
	projectSource = project.LogSourceMiddleware(*source, logger)(projectSource)

	reactionSource = reaction.InstrumentSourceMiddleware(
		component,
		*source,
		sourceErrCount,
		sourceOpCount,
		sourceOpLatency,
		sourceQueueLatency,
	)(reactionSource)
	reactionSource = reaction.LogSourceMiddleware(*source, logger)(reactionSource)

	// Setup services.
	var comments comment.Service
	comments = comment.PostgresService(pgClient)
	comments = comment.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(comments)
	comments = comment.LogServiceMiddleware(logger, storeService)(comments)

	var projects project.Service
	projects = project.PostgresService(pgClient)
	projects = project.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(projects)
	projects = project.LogServiceMiddleware(logger, storeService)(projects)
	// Combine project service and source.
	projects = project.SourcingServiceMiddleware(projectSource)(projects)

	var reactions reaction.Service
	reactions = reaction.PostgresService(pgClient)
	reactions = reaction.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(reactions)
	reactions = reaction.LogServiceMiddleware(logger, storeService)(reactions)
	// Combine reaction service and source.
	reactions = reaction.SourcingServiceMiddleware(reactionSource)(reactions)

	var sessions session.Service
	sessions = session.PostgresService(pgClient)
	sessions = session.LogServiceMiddleware(logger, storeService)(sessions)

	var users user.Service
	users = user.PostgresService(pgClient)
	users = user.InstrumentMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(users)
	users = user.LogServiceMiddleware(logger, storeService)(users)

	var whispers whisper.Service
	whispers = whisper.PostgresService(pgClient)
	whispers = whisper.InstrumentServiceMiddleware(
		component,
		storeService,
		serviceErrCount,
		serviceOpCount,
		serviceOpLatency,
	)(whispers)
	whispers = whisper.LogServiceMiddleware(logger, storeService)(whispers)

	projectCounts := core.CountCache(countsCache, comments, reactions)

	// Setup middlewares.
	var (
		withBase = handler.Chain(
			handler.CtxPrepare(namespaceProduction, versionCurrent),
			handler.Log(logger),
			handler.Instrument(component),
			handler.SecureHeaders(),
			handler.DebugHeaders(revision, hostname),
			handler.CORS(),
			handler.Gzip(),
			handler.HasUserAgent(),
		)
		withCommon = handler.Chain(
			withBase,
			handler.ValidateContent(),
		)
		withPublic = handler.Chain(
			withCommon,
			handler.CtxUserOptional(sessions, users),
			handler.RateLimit(limits, limiter.ConfigPublicRead),
		)
		withUser = handler.Chain(
			withCommon,
			handler.CtxUser(sessions, users),
			handler.RateLimit(limits, limiter.ConfigPublicRead),
		)
		withSensitive = handler.Chain(
			withCommon,
			handler.RateLimit(limits, limiter.ConfigSensitive),
		)
		withUserSensitive = handler.Chain(
			withCommon,
			handler.CtxUser(sessions, users),
			handler.RateLimit(limits, limiter.ConfigSensitive),
		)
		// Multipart bodies, hence no content validation.
		withUpload = handler.Chain(
			withBase,
			handler.CtxUser(sessions, users),
			handler.RateLimit(limits, limiter.ConfigUpload),
		)
	)

	// Setup Router.
	router := mux.NewRouter().StrictSlash(true)

	router.Methods("GET").Path(`/health-61517436012775128`).Name("healthcheck").HandlerFunc(
		handler.Wrap(
			handler.CtxPrepare(namespaceProduction, versionCurrent),
			handler.Health(pgClient, redisPool),
		),
	)

	current := router.PathPrefix(fmt.Sprintf("/%s", versionCurrent)).Subrouter()

	// Project routes.
	current.Methods("POST").Path(`/projects`).Name("projectCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ProjectCreate(
				core.ProjectCreate(projects),
			),
		),
	)

	current.Methods("GET").Path(`/projects`).Name("projectList").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ProjectList(
				core.ProjectList(projects, users, projectCounts),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}`).Name("projectRetrieve").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ProjectRetrieve(
				core.ProjectRetrieve(projects),
			),
		),
	)

	current.Methods("PUT").Path(`/projects/{projectID:[0-9]+}`).Name("projectUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ProjectUpdate(
				core.ProjectUpdate(projects),
			),
		),
	)

	current.Methods("DELETE").Path(`/projects/{projectID:[0-9]+}`).Name("projectDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ProjectDelete(
				core.ProjectDelete(projects),
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}/projects`).Name("projectListUser").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ProjectListUser(
				core.ProjectListUser(projects, users, projectCounts),
			),
		),
	)

	// Comment routes.
	current.Methods("POST").Path(`/projects/{projectID:[0-9]+}/comments`).Name("commentCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentCreate(
				core.CommentCreate(comments, projects, countsCache),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/comments`).Name("commentList").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.CommentList(
				core.CommentList(comments, projects, users),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/comments/{commentID:[0-9]+}`).Name("commentRetrieve").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.CommentRetrieve(
				core.CommentRetrieve(comments),
			),
		),
	)

	current.Methods("PUT").Path(`/projects/{projectID:[0-9]+}/comments/{commentID:[0-9]+}`).Name("commentUpdate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentUpdate(
				core.CommentUpdate(comments),
			),
		),
	)

	current.Methods("DELETE").Path(`/projects/{projectID:[0-9]+}/comments/{commentID:[0-9]+}`).Name("commentDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.CommentDelete(
				core.CommentDelete(comments, countsCache),
			),
		),
	)

	// Reaction routes. The counts route registers before the typed routes so
	// that "counts" is not swallowed by the type matcher.
	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/reactions/counts`).Name("reactionCountsProject").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ReactionCountsProject(
				core.ReactionCountsProject(projects, reactions),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/reactions`).Name("reactionListProject").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ReactionListProject(
				core.ReactionListProject(projects, reactions, users),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/reactions/{reactionType:[a-z]+}`).Name("reactionListProjectByType").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.ReactionListProjectByType(
				core.ReactionListProject(projects, reactions, users),
			),
		),
	)

	current.Methods("POST").Path(`/projects/{projectID:[0-9]+}/reactions/{reactionType:[a-z]+}`).Name("reactionCreate").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ReactionCreate(
				core.ReactionCreate(projects, reactions),
			),
		),
	)

	current.Methods("DELETE").Path(`/projects/{projectID:[0-9]+}/reactions/{reactionType:[a-z]+}`).Name("reactionDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.ReactionDelete(
				core.ReactionDelete(projects, reactions),
			),
		),
	)

	// Whisper routes.
	current.Methods("POST").Path(`/projects/{projectID:[0-9]+}/whispers`).Name("whisperCreate").HandlerFunc(
		handler.Wrap(
			withUserSensitive,
			handler.WhisperCreate(
				core.WhisperCreate(projects, whispers),
			),
		),
	)

	current.Methods("GET").Path(`/projects/{projectID:[0-9]+}/whispers`).Name("whisperList").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.WhisperList(
				core.WhisperList(projects, users, whispers),
			),
		),
	)

	current.Methods("PUT").Path(`/projects/{projectID:[0-9]+}/whispers/{whisperID:[0-9]+}/read`).Name("whisperRead").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.WhisperRead(
				core.WhisperRead(projects, whispers),
			),
		),
	)

	current.Methods("DELETE").Path(`/projects/{projectID:[0-9]+}/whispers/{whisperID:[0-9]+}`).Name("whisperDelete").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.WhisperDelete(
				core.WhisperDelete(projects, whispers),
			),
		),
	)

	// Upload routes.
	current.Methods("POST").Path(`/me/images`).Name("imageUpload").HandlerFunc(
		handler.Wrap(
			withUpload,
			handler.ImageUpload(s3API, *s3Bucket, *awsRegion),
		),
	)

	// User routes.
	current.Methods("GET").Path(`/me`).Name("userRetrieveMe").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserRetrieveMe(
				core.UserRetrieve(sessions, users),
			),
		),
	)

	current.Methods("PUT").Path(`/me`).Name("userUpdate").HandlerFunc(
		handler.Wrap(
			withUserSensitive,
			handler.UserUpdate(
				core.UserUpdate(sessions, users),
			),
		),
	)

	current.Methods("DELETE").Path(`/me`).Name("userDelete").HandlerFunc(
		handler.Wrap(
			withUserSensitive,
			handler.UserDelete(
				core.UserDelete(users),
			),
		),
	)

	current.Methods("POST").Path(`/me/login`).Name("userLogin").HandlerFunc(
		handler.Wrap(
			withSensitive,
			handler.UserLogin(
				core.UserLogin(sessions, users),
			),
		),
	)

	current.Methods("DELETE").Path(`/me/logout`).Name("userLogout").HandlerFunc(
		handler.Wrap(
			withUser,
			handler.UserLogout(
				core.UserLogout(sessions),
			),
		),
	)

	current.Methods("GET").Path(`/users/{userID:[0-9]+}`).Name("userRetrieve").HandlerFunc(
		handler.Wrap(
			withPublic,
			handler.UserRetrieve(
				core.UserRetrieve(sessions, users),
			),
		),
	)

	current.Methods("POST").Path(`/users`).Name("userCreate").HandlerFunc(
		handler.Wrap(
			withSensitive,
			handler.UserCreate(
				core.UserCreate(sessions, users),
			),
		),
	)

	// Setup server.
	server := &http.Server{
		Addr:         *listenAddr,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	serverErrs := make(chan error, 1)

	go func() {
		logger.Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", *listenAddr,
			"sub", "api",
		)

		serverErrs <- server.ListenAndServe()
	}()

	terminate := make(chan os.Signal, 1)
	signal.Notify(terminate, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrs:
		logger.Log("err", err, "lifecycle", "abort", "sub", "api")
		os.Exit(1)
	case sig := <-terminate:
		logger.Log("lifecycle", "stop", "signal", sig.String(), "sub", "api")

		if err := server.Close(); err != nil {
			logger.Log("err", err, "lifecycle", "abort", "sub", "api")
			os.Exit(1)
		}
	}
}
