package main

import (
	"github.com/docketlabs/docket/backend/internal/server"
	"github.com/docketlabs/docket/backend/internal/util"
	"github.com/docketlabs/docket/backend/pkg/logger"
	"github.com/docketlabs/docket/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  debug,
		Prefix: "docket",
	})
	logger.Init(consoleLogger)

	server.Init()
}
