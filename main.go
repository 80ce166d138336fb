package main

import (
	"log"

	"github.com/Speshl/gorrc_iracer/internal/app"
	"github.com/Speshl/gorrc_iracer/internal/config"
)

func main() {
	cfg := config.GetConfig()

	app := app.NewApp(cfg, app.NewHardware(cfg))

	err := app.Init()
	if err != nil {
		log.Fatalf("car failed to initialize: %s", err.Error())
	}

	err = app.Start()
	if err != nil {
		log.Printf("car shutdown with error: %s", err.Error())
	} else {
		log.Println("car shutdown successfully")
	}
}
