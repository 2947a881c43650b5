// Command userapp serves the user CRUD API over HTTP and, when configured, gRPC.
package main

import (
	"github.com/patric-chuzhbe/userapp/internal/app"
	"github.com/patric-chuzhbe/userapp/internal/logger"
)

func main() {
	application, err := app.New()
	if err != nil {
		panic(err)
	}
	defer application.Close()

	if err := application.Run(); err != nil {
		logger.Log.Errorln("application stopped with error:", err)
	}
}
