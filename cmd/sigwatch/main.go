package main

import (
	"sigwatch/cmd/sigwatch/commands"
	"sigwatch/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
