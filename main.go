package main

import (
	"os"

	"github.com/kilianp07/nsreg/cmd"
	"github.com/kilianp07/nsreg/infra/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.New("nsreg").Errorf("%v", err)
		os.Exit(1)
	}
}
