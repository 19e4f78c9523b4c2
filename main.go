package main

import (
	"github.com/chirotrack/backend/config"
	"github.com/chirotrack/backend/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
