package main

import (
	"log"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/logging"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/server"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Init(false)
	defer logger.Sync()

	app := iris.New()
	server.RegisterAdminRoutes(app, cfg)

	zap.L().Info("admin server starting", zap.String("addr", cfg.AdminServer.Addr()))
	if err := app.Listen(cfg.AdminServer.Addr()); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
