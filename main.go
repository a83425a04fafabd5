package main

import (
	"fmt"

	"github.com/mwendwaroy-Angoo/inventory-app/internal/config"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/database"
	"github.com/mwendwaroy-Angoo/inventory-app/internal/router"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		config.GetLogger().Fatalf("load config: %v", err)
	}
	config.ApplyLogLevel(cfg)
	log := config.GetLogger()

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// setup router
	r := router.SetupRouter(cfg, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Infof("server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
