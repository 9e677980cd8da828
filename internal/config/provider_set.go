package config

import (
	"github.com/google/wire"
)

var ProviderSetConfig = wire.NewSet(
	RegisterLogging,
	RegisterHTTP,
	RegisterDatabase,
	RegisterStorage,
	RegisterSimulation,
)
