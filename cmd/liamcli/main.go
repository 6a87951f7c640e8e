package main

import (
	"flag"

	"github.com/MakaronKanon/liam/pkg/console"
)

//go-build: CGO_ENABLED=0

func main() {
	flag.Parse()
	console.New().Run(flag.Args()...)
}
