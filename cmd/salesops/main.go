package main

import (
	"context"
	"time"

	"github.com/niksmo/salesops/config"
	"github.com/niksmo/salesops/internal/app"
	"github.com/niksmo/salesops/pkg/sigctx"
)

const closeTimeout = 5 * time.Second

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	cfg := config.Load()
	cfg.Print()

	salesops := app.New(sigCtx, cfg)

	salesops.Run(closeApp)

	<-sigCtx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	salesops.Close(ctx)
}
