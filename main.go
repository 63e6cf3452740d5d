package main

import (
	"github.com/chips520/wms-simple-version/cmd"
)

func main() {
	cmd.Execute()
}
