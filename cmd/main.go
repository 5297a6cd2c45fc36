package main

import "github.com/taskhub/taskhub/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustSeedAdminUser()

	app.MustListenAndServeHTTP()
}
