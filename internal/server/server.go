// Package server assembles the HTTP API: middleware chain, storage mode,
// audited services and routes.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ehr/hospital/internal/config"
	"github.com/ehr/hospital/internal/domain/account"
	"github.com/ehr/hospital/internal/domain/appointment"
	"github.com/ehr/hospital/internal/domain/medrecord"
	"github.com/ehr/hospital/internal/domain/patient"
	"github.com/ehr/hospital/internal/domain/practitioner"
	"github.com/ehr/hospital/internal/domain/user"
	"github.com/ehr/hospital/internal/platform/apperr"
	"github.com/ehr/hospital/internal/platform/audit"
	"github.com/ehr/hospital/internal/platform/auth"
	"github.com/ehr/hospital/internal/platform/db"
	"github.com/ehr/hospital/internal/platform/middleware"
	"github.com/ehr/hospital/internal/platform/validation"
)

// Deps are the external resources the server is built from. Pool is nil in
// memory storage mode.
type Deps struct {
	Config *config.Config
	Logger zerolog.Logger
	Pool   *pgxpool.Pool
	// AuditStore overrides the store chosen from Config. Tests use it to
	// inspect records or inject failures.
	AuditStore audit.Store
}

// Server is the assembled application.
type Server struct {
	Echo       *echo.Echo
	Codec      *auth.TokenCodec
	Auditor    *audit.Auditor
	AuditStore audit.Store
	Users      *user.Service
	Policy     *auth.Policy

	logger zerolog.Logger
}

type repositories struct {
	users         user.Repository
	patients      patient.Repository
	practitioners practitioner.Repository
	appointments  appointment.Repository
	records       medrecord.Repository
	audit         audit.Store
	tx            db.TxRunner
}

func newRepositories(d Deps) repositories {
	if d.Pool != nil {
		return repositories{
			users:         user.NewRepoPG(d.Pool),
			patients:      patient.NewRepoPG(d.Pool),
			practitioners: practitioner.NewRepoPG(d.Pool),
			appointments:  appointment.NewRepoPG(d.Pool),
			records:       medrecord.NewRepoPG(d.Pool),
			audit:         audit.NewPGStore(d.Pool),
			tx:            db.PoolTxRunner{Pool: d.Pool},
		}
	}
	return repositories{
		users:         user.NewRepoMemory(),
		patients:      patient.NewRepoMemory(),
		practitioners: practitioner.NewRepoMemory(),
		appointments:  appointment.NewRepoMemory(),
		records:       medrecord.NewRepoMemory(),
		audit:         audit.NewMemoryStore(),
		tx:            db.NoTx{},
	}
}

// New builds the server. It does not listen.
func New(d Deps) (*Server, error) {
	cfg := d.Config
	logger := d.Logger

	codec, err := auth.NewTokenCodec([]byte(cfg.TokenSigningKey))
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	policy, err := auth.NewPolicy(auth.DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("authorization policy: %w", err)
	}

	repos := newRepositories(d)
	store := repos.audit
	if d.AuditStore != nil {
		store = d.AuditStore
	}
	guarded := audit.WithBreaker(store, audit.BreakerConfig{
		FailureThreshold: cfg.AuditBreakerFailures,
		Timeout:          cfg.AuditBreakerTimeout,
	}, logger)
	auditor := audit.NewAuditor(guarded, logger)

	// Undecorated services back reference checks and account composition;
	// handlers only ever see the audited decorators.
	userSvc := user.NewService(repos.users)
	patientSvc := patient.NewService(repos.patients)
	practitionerSvc := practitioner.NewService(repos.practitioners)
	appointmentSvc := appointment.NewService(repos.appointments, patientSvc, practitionerSvc)
	recordSvc := medrecord.NewService(repos.records, patientSvc)
	accountSvc := account.NewService(userSvc, patientSvc, practitionerSvc, codec)

	users := user.NewAudited(userSvc, auditor)
	accounts := account.NewTransactional(account.NewAudited(accountSvc, auditor), repos.tx)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)
	e.Validator = validation.New()
	e.IPExtractor, err = ipExtractor(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.SecurityHeaders(cfg.IsDev()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(middleware.Metrics())
	e.Use(auth.Authenticate(codec, users, logger))
	e.Use(auth.Authorize(policy, logger))

	e.GET("/health", db.HealthHandler(d.Pool, db.Check{Name: "audit", Probe: audit.HealthProbe(guarded)}))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authGroup := e.Group("/api/auth", middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.LoginRateLimitRPS,
		BurstSize:         cfg.LoginRateLimitBurst,
		IdleTTL:           5 * time.Minute,
	}))
	account.NewHandler(accounts).RegisterRoutes(authGroup)
	user.NewHandler(users).RegisterRoutes(authGroup)

	api := e.Group("/api")
	patient.NewHandler(patient.NewAudited(patientSvc, auditor)).RegisterRoutes(api)
	practitioner.NewHandler(practitioner.NewAudited(practitionerSvc, auditor)).RegisterRoutes(api)
	appointment.NewHandler(appointment.NewAudited(appointmentSvc, auditor), patientSvc).RegisterRoutes(api)
	medrecord.NewHandler(medrecord.NewAudited(recordSvc, auditor), patientSvc).RegisterRoutes(api)
	audit.NewHandler(store).RegisterRoutes(api)

	return &Server{
		Echo:       e,
		Codec:      codec,
		Auditor:    auditor,
		AuditStore: store,
		Users:      userSvc,
		Policy:     policy,
		logger:     logger,
	}, nil
}

// ipExtractor uses the socket address unless trusted proxies are
// configured, in which case X-Forwarded-For is honored only through them.
// Rate limiting keys on this address.
func ipExtractor(trusted []string) (echo.IPExtractor, error) {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect(), nil
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", cidr, err)
		}
		opts = append(opts, echo.TrustIPRange(ipnet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

// Bootstrap creates the configured admin account if it does not exist.
func (s *Server) Bootstrap(ctx context.Context, username, password string) error {
	if username == "" {
		return nil
	}
	created, err := s.Users.EnsureAdmin(ctx, username, password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.logger.Info().Str("username", username).Msg("bootstrap admin account created")
	}
	return nil
}

func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("starting server")
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
