package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/tidings-app/tidings"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file (defaults apply when empty)")
	dbPath := flag.String("db", "tidings.db", "path to the sqlite database file")
	flag.Parse()

	_, srv, err := tidings.New(*configPath,
		tidings.WithDbZombiezen(*dbPath, runtime.NumCPU()),
		tidings.WithRouterHttprouter(),
		tidings.WithCacheRistretto(),
		tidings.WithPhusLogger(nil),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tidings: %v\n", err)
		os.Exit(1)
	}

	srv.Run()
}
