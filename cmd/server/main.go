package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/gophusers/internal/server/app"
	"github.com/dmitrijs2005/gophusers/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer func() { _ = a.Close() }()

	if err := a.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
