package main

import (
	"context"
	"log"

	"github.com/dalemusser/waffle/app"
	"github.com/mtt/mttdash/internal/app/bootstrap"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
