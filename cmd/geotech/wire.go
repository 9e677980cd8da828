//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"

	"github.com/x-thooh/geotech/internal/boot/database"
	"github.com/x-thooh/geotech/internal/boot/logger"
	"github.com/x-thooh/geotech/internal/boot/metrics"
	"github.com/x-thooh/geotech/internal/config"
	"github.com/x-thooh/geotech/internal/server"
	"github.com/x-thooh/geotech/internal/service"
	"github.com/x-thooh/geotech/pkg/app"
)

// wireApp init app application.
func wireApp(*config.Entity) (*app.App, func(), error) {
	panic(wire.Build(
		config.ProviderSetConfig,
		metrics.ProviderSetMetrics,
		logger.InitLogger,
		logger.MainLogger,
		logger.NewWatcher,
		database.InitSQLX,
		service.ProviderSetService,
		server.ProviderSetServer,
		newApp,
	))
}
