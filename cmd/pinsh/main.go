package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/robotalks/pinsh/pkg/host"
)

func init() {
	host.SetupFlags()
}

func main() {
	flag.Parse()

	h, err := host.NewConfig().NewHost()
	if err != nil {
		log.Fatalln(err)
	}
	if err = h.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}
