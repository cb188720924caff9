// Package main is the entry point for the playerview application.
package main

import (
	"github.com/anisan-cli/playerview/cmd"
	"github.com/anisan-cli/playerview/config"
	"github.com/anisan-cli/playerview/log"
	"github.com/anisan-cli/playerview/player"
	"github.com/anisan-cli/playerview/where"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	// Sockets of sessions that crashed before they could clean up.
	go player.CollectGarbage(where.Temp())

	cmd.Execute()
}
