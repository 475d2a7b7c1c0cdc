package main

import (
	"context"
	"log"

	"github.com/dexterhq/settlement/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap settlement runtime: %v", err)
	}
	if err := runtime.Run(ctx); err != nil {
		log.Fatalf("run settlement runtime: %v", err)
	}
}
