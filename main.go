package main

import (
	"os"

	"tokenlottery/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := cmd.NewApp().Run(os.Args); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}
