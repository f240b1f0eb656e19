package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/gnos-os/gnos/internal/http"
	"github.com/gnos-os/gnos/internal/metrics"
	vfsHTTP "github.com/gnos-os/gnos/internal/vfs/http"
	"github.com/gnos-os/gnos/internal/vfs/repository"
	vfsService "github.com/gnos-os/gnos/internal/vfs/service"
	vfsUseCase "github.com/gnos-os/gnos/internal/vfs/usecase"
)

// TokenSigner returns the capability token signing service.
func (c *Container) TokenSigner() (vfsService.TokenSigner, error) {
	var err error
	c.tokenSignerInit.Do(func() {
		c.tokenSigner, err = c.initTokenSigner()
		if err != nil {
			c.initErrors["tokenSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenSigner"]; exists {
		return nil, storedErr
	}
	return c.tokenSigner, nil
}

// TokenCodec returns the external token encoding service.
func (c *Container) TokenCodec() vfsService.TokenCodec {
	c.tokenCodecInit.Do(func() {
		c.tokenCodec = vfsService.NewTokenCodec()
	})
	return c.tokenCodec
}

// AuditSigner returns the audit record signing service.
func (c *Container) AuditSigner() (vfsService.AuditSigner, error) {
	var err error
	c.auditSignerInit.Do(func() {
		c.auditSigner, err = c.initAuditSigner()
		if err != nil {
			c.initErrors["auditSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}

// MountTable returns the mount table shared by the dispatcher and the admin
// API.
func (c *Container) MountTable() *vfsService.MountTable {
	c.mountTableInit.Do(func() {
		c.mountTable = vfsService.NewMountTable()
	})
	return c.mountTable
}

// AuditLogRepository returns the audit record store selected by configuration.
func (c *Container) AuditLogRepository() (vfsUseCase.AuditLogRepository, error) {
	var err error
	c.auditLogRepoInit.Do(func() {
		c.auditLogRepo, err = c.initAuditLogRepository()
		if err != nil {
			c.initErrors["auditLogRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogRepo"]; exists {
		return nil, storedErr
	}
	return c.auditLogRepo, nil
}

// CapabilityUseCase returns the capability engine.
func (c *Container) CapabilityUseCase() (vfsUseCase.CapabilityUseCase, error) {
	var err error
	c.capabilityUseCaseInit.Do(func() {
		c.capabilityUseCase, err = c.initCapabilityUseCase()
		if err != nil {
			c.initErrors["capabilityUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityUseCase"]; exists {
		return nil, storedErr
	}
	return c.capabilityUseCase, nil
}

// AuditLogUseCase returns the audit log use case.
func (c *Container) AuditLogUseCase() (vfsUseCase.AuditLogUseCase, error) {
	var err error
	c.auditLogUseCaseInit.Do(func() {
		c.auditLogUseCase, err = c.initAuditLogUseCase()
		if err != nil {
			c.initErrors["auditLogUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditLogUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditLogUseCase, nil
}

// Dispatcher returns the operation dispatcher with all drivers registered.
func (c *Container) Dispatcher() (vfsUseCase.Dispatcher, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// HTTPServer returns the admin API server.
func (c *Container) HTTPServer() (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initTokenSigner derives the token signing key from the configured secret.
func (c *Container) initTokenSigner() (vfsService.TokenSigner, error) {
	secretKey, err := c.config.DecodedSecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret key for token signer: %w", err)
	}
	return vfsService.NewTokenSigner(secretKey)
}

// initAuditSigner derives the audit signing key from the configured secret.
func (c *Container) initAuditSigner() (vfsService.AuditSigner, error) {
	secretKey, err := c.config.DecodedSecretKey()
	if err != nil {
		return nil, fmt.Errorf("failed to decode secret key for audit signer: %w", err)
	}
	return vfsService.NewAuditSigner(secretKey)
}

// initAuditLogRepository selects the audit store based on configuration.
func (c *Container) initAuditLogRepository() (vfsUseCase.AuditLogRepository, error) {
	switch c.config.AuditBackend {
	case "memory":
		return repository.NewMemoryAuditLogRepository(c.config.AuditMemoryMaxRecords), nil
	case "postgresql", "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for audit log repository: %w", err)
		}
		if c.config.AuditBackend == "mysql" {
			return repository.NewMySQLAuditLogRepository(db), nil
		}
		return repository.NewPostgreSQLAuditLogRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", c.config.AuditBackend)
	}
}

// initCapabilityUseCase creates the capability engine with its services.
func (c *Container) initCapabilityUseCase() (vfsUseCase.CapabilityUseCase, error) {
	signer, err := c.TokenSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get token signer for capability use case: %w", err)
	}
	return vfsUseCase.NewCapabilityUseCase(c.config, signer, c.TokenCodec()), nil
}

// initAuditLogUseCase creates the audit log use case with its dependencies.
func (c *Container) initAuditLogUseCase() (vfsUseCase.AuditLogUseCase, error) {
	auditLogRepo, err := c.AuditLogRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log repository for audit log use case: %w", err)
	}

	auditSigner, err := c.AuditSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit signer for audit log use case: %w", err)
	}

	return vfsUseCase.NewAuditLogUseCase(auditLogRepo, auditSigner), nil
}

// initDispatcher creates the dispatcher, registers the configured drivers,
// and wraps the result with metrics when enabled.
func (c *Container) initDispatcher() (vfsUseCase.Dispatcher, error) {
	capabilityUseCase, err := c.CapabilityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability use case for dispatcher: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for dispatcher: %w", err)
	}

	if err := c.registerDrivers(); err != nil {
		return nil, fmt.Errorf("failed to register drivers: %w", err)
	}

	baseDispatcher := vfsUseCase.NewDispatcherUseCase(
		capabilityUseCase,
		c.MountTable(),
		auditLogUseCase,
		c.Logger(),
		c.config.DriverCallTimeout,
	)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for dispatcher: %w", err)
		}
		return vfsUseCase.NewDispatcherWithMetrics(baseDispatcher, businessMetrics), nil
	}

	return baseDispatcher, nil
}

// initHTTPServer creates the admin API server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	capabilityUseCase, err := c.CapabilityUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability use case for http server: %w", err)
	}

	auditLogUseCase, err := c.AuditLogUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit log use case for http server: %w", err)
	}

	// The dispatcher registers the drivers; building it here guarantees the
	// mount listing is populated before the API serves requests.
	if _, err := c.Dispatcher(); err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for http server: %w", err)
	}

	tokenHandler := vfsHTTP.NewTokenHandler(capabilityUseCase, logger)
	mountHandler := vfsHTTP.NewMountHandler(c.MountTable(), logger)
	auditLogHandler := vfsHTTP.NewAuditLogHandler(auditLogUseCase, logger)

	adminKeyMiddleware := vfsHTTP.AdminKeyMiddleware(c.config.AdminAPIKeyHash, logger)

	tokenRateLimitMiddleware := gin.HandlerFunc(func(ctx *gin.Context) { ctx.Next() })
	if c.config.RateLimitTokenEnabled {
		tokenRateLimitMiddleware = vfsHTTP.TokenRateLimitMiddleware(
			c.config.RateLimitTokenRequestsPerSec,
			c.config.RateLimitTokenBurst,
			logger,
		)
	}

	var metricsMiddleware gin.HandlerFunc
	if c.config.MetricsEnabled {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
		}
		if provider != nil {
			metricsMiddleware = metrics.HTTPMetricsMiddleware(
				provider.MeterProvider(),
				c.config.MetricsNamespace,
			)
		}
	}

	return http.NewServer(http.Options{
		Host:              c.config.ServerHost,
		Port:              c.config.ServerPort,
		CORSEnabled:       c.config.CORSEnabled,
		CORSAllowOrigins:  c.config.CORSAllowOrigins,
		MetricsMiddleware: metricsMiddleware,
		RegisterRoutes: func(router *gin.Engine) {
			vfsHTTP.RegisterRoutes(
				router,
				tokenHandler,
				mountHandler,
				auditLogHandler,
				adminKeyMiddleware,
				tokenRateLimitMiddleware,
			)
		},
	}, logger), nil
}

// initMetricsServer creates the metrics server.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for metrics server: %w", err)
	}

	return http.NewMetricsServer(
		c.config.ServerHost,
		c.config.MetricsPort,
		c.Logger(),
		provider,
	), nil
}
