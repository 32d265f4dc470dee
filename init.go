package main

import (
	"context"

	"github.com/tournevent/upsbridge/internal/config"
	"github.com/tournevent/upsbridge/internal/telemetry"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/mock"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func loadConfig() (*config.Config, error) {
	return config.Load(".env")
}

func initLogger(cfg *config.Config) (*otelzap.Logger, error) {
	return telemetry.NewLogger(cfg.LogLevel,
		zap.String("service", cfg.ServiceName),
		zap.String("version", cfg.Version),
	)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return telemetry.Tracer(cfg.ServiceName), func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
}

func newUPSClient(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *ups.Client {
	return ups.New(ups.Config{
		ClientID:            cfg.UPSClientID,
		ClientSecret:        cfg.UPSClientSecret,
		Sandbox:             cfg.UPSSandbox,
		BaseURL:             cfg.UPSBaseURL,
		Timeout:             cfg.UPSTimeout,
		Shipper:             cfg.ShipperAddress(),
		AccountNumber:       cfg.UPSAccountNumber,
		CustomerName:        cfg.UPSCustomerName,
		PackageDescription:  cfg.UPSPackageDescription,
		LegacyTransitWeight: cfg.UPSLegacyTransitWeight,
		UseMock:             cfg.UPSUseMock,
	}, logger, tracer)
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer) *shipper.Registry {
	registry := shipper.NewRegistry()

	if cfg.UPSEnabled {
		registry.Register(newUPSClient(cfg, logger, tracer))
	}

	for _, name := range cfg.MockCarriers {
		registry.Register(mock.New(name))
	}

	return registry
}
