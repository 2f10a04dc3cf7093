package main

import (
	"github.com/samber/lo"
	"github.com/vidctl/vidctl/cmd"
	"github.com/vidctl/vidctl/config"
	"github.com/vidctl/vidctl/internal/sweep"
	"github.com/vidctl/vidctl/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go sweep.CollectGarbage()

	cmd.Execute()
}
