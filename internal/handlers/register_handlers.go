package handlers

import (
	"log/slog"
	"sync"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// m may be nil, in which case /metrics is not served.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	m *metrics.Metrics,
) {
	registerValidatorsOnce.Do(registerValidators)

	registerHealthRoutes(r)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1")
	if cfg.JWTSecret != "" {
		v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}

	registerAccountRoutes(v1, services.Account)
	registerLedgerRoutes(v1, services.Ledger)
}

// registerValidators adds the ledger specific binding rules to gin's validator.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		slog.Warn("Binding validator is not go-playground/validator; custom rules not registered")
		return
	}
	registerRules(v, ledgerRules(), slog.Default())
}

func ledgerRules() map[string]validator.Func {
	return map[string]validator.Func{
		"currency": func(fl validator.FieldLevel) bool {
			return domain.IsValidCurrencyCode(fl.Field().String())
		},
		"accounttype": func(fl validator.FieldLevel) bool {
			return domain.AccountType(fl.Field().String()).IsValid()
		},
	}
}

// registerRules registers every rule it can; a failed tag is logged and skipped.
func registerRules(v *validator.Validate, rules map[string]validator.Func, logger *slog.Logger) {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			logger.Warn("Failed to register binding rule", slog.String("tag", tag), slog.Any("error", err))
		}
	}
}
