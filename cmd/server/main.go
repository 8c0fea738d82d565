package main

import (
	"context"
	"log"
	"os"

	"github.com/dkozyrev/classauth/internal/server"
	"github.com/dkozyrev/classauth/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := server.NewApp(cfg)

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
