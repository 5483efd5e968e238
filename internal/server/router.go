package server

import (
	"github.com/kataras/iris/v12"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/infra/mq"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/infra/redis"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/middleware"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/repository/mysql"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/service"
)

// RegisterRoutes wires the public server: login and the payment callback
// endpoints the gateways redirect buyers to.
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	productRepo := mysql.NewProductRepository(db)
	activityRepo := mysql.NewActivityRepository(db)
	userRepo := mysql.NewUserRepository(db)

	paymentSvc := service.NewPaymentService(
		orderRepo, storeRepo, productRepo, activityRepo,
		redisClient, service.NewMQPublisher(mqConn), &cfg.Payment)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token}})
	})

	// Callback endpoints. The gateways retry these and buyers reload
	// them; verification is idempotent and the bucket absorbs storms.
	pay := api.Party("/payment", middleware.CallbackRateLimit())

	// eSewa redirects GET ?data=<base64 JSON>.
	pay.Get("/esewa/callback", func(ctx iris.Context) {
		res := paymentSvc.VerifyEsewaCallback(ctx.Request().Context(), ctx.URLParam("data"))
		ctx.JSON(iris.Map{"code": 0, "data": res})
	})

	// Khalti redirects GET ?pidx=&status=.
	pay.Get("/khalti/callback", func(ctx iris.Context) {
		res := paymentSvc.VerifyKhaltiCallback(ctx.Request().Context(),
			ctx.URLParam("pidx"), ctx.URLParam("status"))
		ctx.JSON(iris.Map{"code": 0, "data": res})
	})
}
