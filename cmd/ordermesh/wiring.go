package main

import (
	"os"

	"github.com/ordermesh/ordermesh/commerce"
	"github.com/ordermesh/ordermesh/config"
	"github.com/ordermesh/ordermesh/credential"
	"github.com/ordermesh/ordermesh/logging"
	"github.com/ordermesh/ordermesh/session"
)

// buildLogger constructs the process logger from config.
func buildLogger(cfg *config.Config) logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: "text",
		Output: os.Stderr,
	})
}

// buildCommerce wires the credential cache and the commerce client.
func buildCommerce(cfg *config.Config, logger logging.Logger) *commerce.Client {
	source := commerce.NewTokenSource(cfg.Backend.BaseURL, cfg.Backend.ClientID, cfg.Backend.ClientSecret, nil)
	tokens := credential.New(source)
	return commerce.New(cfg.Backend.BaseURL, commerce.CatalogRef{
		CatalogID:     cfg.Catalog.CatalogID,
		NodeID:        cfg.Catalog.NodeID,
		PricebookID:   cfg.Catalog.PricebookID,
		LocationsFlow: cfg.Catalog.LocationsFlow,
	}, tokens, func(o *commerce.Options) {
		o.Timeout = cfg.Backend.Timeout
		o.Currency = cfg.Orders.Currency
		o.Logger = logger
	})
}

// buildSessionStore wires the Redis session store.
func buildSessionStore(cfg *config.Config) *session.RedisStore {
	return session.NewRedisStore(session.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
