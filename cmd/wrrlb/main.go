package main

import (
	"flag"

	"github.com/openlb/wrrlb/service"
)

func main() {
	var flagConfig = flag.String("config", "wrrlb.json", "json or yaml configuration file")
	flag.Parse()

	s, err := service.New(*flagConfig)
	if err != nil {
		panic(err)
	}

	if err := s.Run(); err != nil {
		panic(err)
	}
}
