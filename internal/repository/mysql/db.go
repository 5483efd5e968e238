package mysql

import (
	"log"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/activity"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/category"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/order"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/plan"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/product"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/store"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init opens the global GORM handle and migrates the schema.
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to connect mysql: %v", err)
		}

		if err = db.AutoMigrate(
			&user.User{},
			&store.Store{},
			&product.Product{},
			&category.Category{},
			&plan.Plan{},
			&order.Order{},
			&order.Item{},
			&activity.Entry{},
		); err != nil {
			log.Fatalf("auto migrate failed: %v", err)
		}
	})
	return db
}

// DB returns the global handle.
func DB() *gorm.DB {
	return db
}
