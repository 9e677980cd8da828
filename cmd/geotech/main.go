package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/x-thooh/geotech/internal/boot/logger"
	"github.com/x-thooh/geotech/internal/config"
	sh "github.com/x-thooh/geotech/internal/server/http"
	"github.com/x-thooh/geotech/internal/service/settlement"
	"github.com/x-thooh/geotech/pkg/app"
	"github.com/x-thooh/geotech/pkg/log"
	"github.com/x-thooh/geotech/pkg/trace"
	"github.com/x-thooh/geotech/pkg/util"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	name    = "geotech"
	Version = "dev"
	env     = "prod"
	conf    = "../../configs"
)

func newApp(lg log.Logger, w *logger.Watcher, h *sh.Server, s *settlement.Service) *app.App {
	return app.New(
		app.Name(name),
		app.Version(Version),
		app.Context(trace.Set(context.Background(), trace.GenerateTraceID())),
		app.Metadata(map[string]string{"env": env}),
		app.Logger(&logger.DefaultLogger{Lg: lg}),
		app.Server(
			w,
			h,
			s,
		),
	)
}

func main() {
	flag.StringVar(&env, "env", "prod", "env: dev, test, prod")
	flag.StringVar(&conf, "conf", "../../configs", "path: ../../configs")
	flag.Parse()
	cfgEntity, err := config.LoadConfig(util.AbPath(conf), env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ap, fn, err := wireApp(cfgEntity)
	if err != nil {
		panic(err)
	}
	defer fn()

	if err = ap.Run(); err != nil {
		panic(err)
	}
}
