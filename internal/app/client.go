package app

import (
	"github.com/samvad-hq/paykit/internal/config"
	"github.com/samvad-hq/paykit/internal/logger"
	"github.com/samvad-hq/paykit/pkg/httpclient"
	"github.com/samvad-hq/paykit/pkg/invoice"
	"github.com/samvad-hq/paykit/pkg/resource"
)

// NewBackend builds the API backend from config over the resty transport.
func NewBackend(cfg *config.Config, log logger.Logger) *resource.Backend {
	return resource.NewBackend(resource.BackendConfig{
		APIBase:    cfg.APIBase,
		APIKey:     cfg.APIKey,
		APIVersion: cfg.APIVersion,
	}, httpclient.NewRestyClient(cfg.RequestTimeout), log)
}

// NewInvoiceClient is a convenience over NewBackend for invoice operations.
func NewInvoiceClient(cfg *config.Config, log logger.Logger) *invoice.Client {
	return invoice.New(NewBackend(cfg, log))
}
