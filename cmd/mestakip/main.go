package main

import (
	_ "time/tzdata"

	"github.com/rl1809/mestakip/internal/cli"
)

func main() {
	cli.Execute()
}
