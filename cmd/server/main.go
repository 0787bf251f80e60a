// Command server runs the in-memory development Authentication Service.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/siteauth/internal/server"
	"github.com/dmitrijs2005/siteauth/internal/server/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
