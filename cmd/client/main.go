package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/fragkeeper/internal/client/cli"
	"github.com/dmitrijs2005/fragkeeper/internal/client/config"
)

func main() {

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(context.Background(), os.Args[1:])
	_ = app.Close()

	if err != nil {
		log.Fatalf("%v", err)
	}

}
