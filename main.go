// Package main is the entry point for the otaku application.
package main

import (
	"github.com/samber/lo"

	"github.com/otaku-mn/otaku/cmd"
	"github.com/otaku-mn/otaku/config"
	"github.com/otaku-mn/otaku/log"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
