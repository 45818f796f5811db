package services

import (
	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, vouchers portssvc.VoucherNumberGenerator, m *metrics.Metrics) *portssvc.ServiceContainer {
	options := []ServiceOption{
		WithMetrics(m),
		WithRetryPolicy(RetryPolicy{
			MaxRetries:      cfg.CommitMaxRetries,
			InitialInterval: cfg.CommitRetryInterval,
		}),
	}

	return &portssvc.ServiceContainer{
		Account: NewAccountService(repos, options...),
		Ledger:  NewLedgerService(repos, vouchers, cfg.DefaultCurrency, options...),
	}
}
