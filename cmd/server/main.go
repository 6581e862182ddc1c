package main

import (
	"go.uber.org/fx"

	"arena/server/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
