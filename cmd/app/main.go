package main

import (
	"go.uber.org/fx"

	"github.com/Stam1n/telegram-bot/internal/app"
)

func main() {
	fx.New(app.CreateApp()).Run()
}
