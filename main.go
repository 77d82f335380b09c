package main

import (
	"github.com/openparish/parishboard/config"
	"github.com/openparish/parishboard/models"
	"github.com/openparish/parishboard/routes"
	"github.com/openparish/parishboard/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Attachment{}, &models.Comment{}, &models.VisitorLog{})

	r := routes.SetupRouter(db, utils.NewRedisCache())

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
