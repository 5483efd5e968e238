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
	server.RegisterRoutes(app, cfg)

	zap.L().Info("public server starting", zap.String("addr", cfg.Server.Addr()))
	if err := app.Listen(cfg.Server.Addr()); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
