package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/furrow/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional)")
	envPath := flag.String("env", "", "dotenv file to read FURROW_API_URL from (default ./.env)")
	apiURL := flag.String("api", "", "backend base URL, e.g. http://127.0.0.1:5000/api (optional)")
	view := flag.String("view", "fields", "start view: fields, sensors or irrigation")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		EnvPath:    *envPath,
		APIURL:     *apiURL,
		StartView:  *view,
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "furrow: %v\n", err)
		return 1
	}
	return 0
}
