//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"github.com/yola1107/cardduel/internal/biz"
	"github.com/yola1107/cardduel/internal/conf"
	"github.com/yola1107/cardduel/internal/data"
	"github.com/yola1107/cardduel/internal/server"
	"github.com/yola1107/cardduel/internal/service"
	"github.com/yola1107/cardduel/library/work"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Room, work.IWorkStore, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, service.ProviderSet, newApp))
}
