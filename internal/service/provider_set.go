package service

import (
	"github.com/google/wire"

	"github.com/x-thooh/geotech/internal/service/settlement"
	"github.com/x-thooh/geotech/internal/service/storage"
)

var ProviderSetService = wire.NewSet(
	storage.New,
	settlement.New,
)
