package server

import (
	"github.com/google/wire"

	"github.com/x-thooh/geotech/internal/server/http"
	"github.com/x-thooh/geotech/internal/service/settlement"
)

var ProviderSetServer = wire.NewSet(
	http.New,
	wire.Bind(new(http.Runner), new(*settlement.Service)),
)
