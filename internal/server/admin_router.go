package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/auth"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/category"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/plan"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/infra/mq"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/infra/redis"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/repository/mysql"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/service"
)

const identityKey = "identity"

// RegisterAdminRoutes wires the admin JSON API. Every mutating route
// passes exactly one authorization check before its service call; there
// is no secondary check downstream.
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	productRepo := mysql.NewProductRepository(db)
	activityRepo := mysql.NewActivityRepository(db)
	userRepo := mysql.NewUserRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	planRepo := mysql.NewPlanRepository(db)

	orderSvc := service.NewOrderService(orderRepo, storeRepo, productRepo, activityRepo,
		service.NewMQPublisher(mqConn), &cfg.Payment)
	categorySvc := service.NewCategoryService(categoryRepo)
	planSvc := service.NewPlanService(planRepo)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	activitySvc := service.NewActivityService(activityRepo)

	ring := auth.NewHashRing(cfg.Auth.CacheNodes, cfg.Auth.HashReplicas)
	sessions := auth.NewSessionCache(redisClient, ring,
		time.Duration(cfg.Auth.SessionCacheTTLSeconds)*time.Second)

	// Identity is resolved per request from the bearer token; nothing in
	// the handler chain relies on ambient state.
	authMW := func(ctx iris.Context) {
		token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			Fail(ctx, auth.ErrNotAuthenticated)
			return
		}
		rctx := ctx.Request().Context()
		if id, hit, err := sessions.Get(rctx, token); err == nil && hit {
			ctx.Values().Set(identityKey, id)
			ctx.Next()
			return
		}
		id, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			Fail(ctx, auth.ErrNotAuthenticated)
			return
		}
		_ = sessions.Set(rctx, token, id)
		ctx.Values().Set(identityKey, id)
		ctx.Next()
	}

	identity := func(ctx iris.Context) *auth.Identity {
		if id, ok := ctx.Values().Get(identityKey).(*auth.Identity); ok {
			return id
		}
		return nil
	}

	api := app.Party("/api", authMW)

	// ---------- Platform metrics ----------

	api.Get("/metrics", func(ctx iris.Context) {
		if err := auth.RequireRole(identity(ctx), user.RoleSuperAdmin); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().Snapshot()})
	})

	// ---------- Plan management (platform-wide, super_admin writes) ----------

	api.Get("/plans", func(ctx iris.Context) {
		list, err := planSvc.ListAll(ctx.Request().Context())
		if err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/plans", func(ctx iris.Context) {
		if err := auth.RequireRole(identity(ctx), user.RoleSuperAdmin); err != nil {
			Fail(ctx, err)
			return
		}
		var p plan.Plan
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := planSvc.Create(ctx.Request().Context(), &p); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/plans/{id:int64}", func(ctx iris.Context) {
		if err := auth.RequireRole(identity(ctx), user.RoleSuperAdmin); err != nil {
			Fail(ctx, err)
			return
		}
		id, _ := ctx.Params().GetInt64("id")
		p, err := planSvc.Get(ctx.Request().Context(), id)
		if err != nil {
			Fail(ctx, err)
			return
		}
		if err := ctx.ReadJSON(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p.ID = id
		if err := planSvc.Update(ctx.Request().Context(), p); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Delete("/plans/{id:int64}", func(ctx iris.Context) {
		if err := auth.RequireRole(identity(ctx), user.RoleSuperAdmin); err != nil {
			Fail(ctx, err)
			return
		}
		id, _ := ctx.Params().GetInt64("id")
		if err := planSvc.Delete(ctx.Request().Context(), id); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- Category management (store-scoped writes) ----------

	api.Get("/stores/{sid:int64}/categories", func(ctx iris.Context) {
		sid, _ := ctx.Params().GetInt64("sid")
		list, err := categorySvc.ListByStore(ctx.Request().Context(), sid)
		if err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/stores/{sid:int64}/categories", func(ctx iris.Context) {
		sid, _ := ctx.Params().GetInt64("sid")
		if err := auth.RequireCategoryWrite(identity(ctx), sid); err != nil {
			Fail(ctx, err)
			return
		}
		var c category.Category
		if err := ctx.ReadJSON(&c); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		c.StoreID = sid
		if err := categorySvc.Create(ctx.Request().Context(), &c); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Put("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		c, err := categorySvc.Get(ctx.Request().Context(), id)
		if err != nil {
			Fail(ctx, err)
			return
		}
		if err := auth.RequireCategoryWrite(identity(ctx), c.StoreID); err != nil {
			Fail(ctx, err)
			return
		}
		var req struct {
			Name string `json:"name"`
			Slug string `json:"slug"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Name != "" {
			c.Name = req.Name
		}
		if req.Slug != "" {
			c.Slug = req.Slug
		}
		if err := categorySvc.Update(ctx.Request().Context(), c); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": c})
	})

	api.Delete("/categories/{id:int64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetInt64("id")
		c, err := categorySvc.Get(ctx.Request().Context(), id)
		if err != nil {
			Fail(ctx, err)
			return
		}
		if err := auth.RequireCategoryWrite(identity(ctx), c.StoreID); err != nil {
			Fail(ctx, err)
			return
		}
		if err := categorySvc.Delete(ctx.Request().Context(), id); err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- Order management ----------

	api.Get("/stores/{sid:int64}/orders", func(ctx iris.Context) {
		sid, _ := ctx.Params().GetInt64("sid")
		if err := auth.RequireStoreOwnership(identity(ctx), sid); err != nil {
			Fail(ctx, err)
			return
		}
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "20"))
		list, err := orderSvc.ListByStore(ctx.Request().Context(), sid, limit)
		if err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// orderAction loads the order, runs the guard against its owning
	// store, then applies one lifecycle move.
	orderAction := func(guard func(*auth.Identity, int64) error, act func(ctx iris.Context, actorUID string, orderID int64) error) iris.Handler {
		return func(ctx iris.Context) {
			id, _ := ctx.Params().GetInt64("id")
			o, err := orderSvc.Get(ctx.Request().Context(), id)
			if err != nil {
				Fail(ctx, err)
				return
			}
			caller := identity(ctx)
			if err := guard(caller, o.StoreID); err != nil {
				Fail(ctx, err)
				return
			}
			if err := act(ctx, caller.UID, id); err != nil {
				Fail(ctx, err)
				return
			}
			ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
		}
	}

	api.Post("/orders/{id:int64}/ship", orderAction(auth.RequireStoreOwnership,
		func(ctx iris.Context, actorUID string, orderID int64) error {
			return orderSvc.Ship(ctx.Request().Context(), actorUID, orderID)
		}))

	api.Post("/orders/{id:int64}/deliver", orderAction(auth.RequireStoreOwnership,
		func(ctx iris.Context, actorUID string, orderID int64) error {
			return orderSvc.Deliver(ctx.Request().Context(), actorUID, orderID)
		}))

	api.Post("/orders/{id:int64}/cancel", orderAction(auth.RequireStoreOwnership,
		func(ctx iris.Context, actorUID string, orderID int64) error {
			return orderSvc.Cancel(ctx.Request().Context(), actorUID, orderID)
		}))

	api.Post("/orders/{id:int64}/refund", orderAction(auth.RequireOrderRefund,
		func(ctx iris.Context, actorUID string, orderID int64) error {
			force, _ := ctx.URLParamBool("force")
			return orderSvc.Refund(ctx.Request().Context(), actorUID, orderID, force)
		}))

	// ---------- Activity log ----------

	api.Get("/stores/{sid:int64}/activity", func(ctx iris.Context) {
		sid, _ := ctx.Params().GetInt64("sid")
		if err := auth.RequireStoreOwnership(identity(ctx), sid); err != nil {
			Fail(ctx, err)
			return
		}
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "100"))
		list, err := activitySvc.ListByStore(ctx.Request().Context(), sid, limit)
		if err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Get("/stores/{sid:int64}/activity/export", func(ctx iris.Context) {
		sid, _ := ctx.Params().GetInt64("sid")
		if err := auth.RequireStoreOwnership(identity(ctx), sid); err != nil {
			Fail(ctx, err)
			return
		}
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "1000"))
		ctx.Header("Content-Type", "text/csv")
		ctx.Header("Content-Disposition", "attachment; filename=activity.csv")
		if err := activitySvc.ExportCSV(ctx.Request().Context(), sid, limit, ctx.ResponseWriter()); err != nil {
			Fail(ctx, err)
			return
		}
	})

	// ---------- User profile ----------

	api.Put("/users/{uid}/profile", func(ctx iris.Context) {
		uid := ctx.Params().Get("uid")
		if err := auth.RequireUserProfileUpdate(identity(ctx), uid); err != nil {
			Fail(ctx, err)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.UpdateProfile(ctx.Request().Context(), uid, req.Name)
		if err != nil {
			Fail(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})
}
