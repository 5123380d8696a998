package main

import (
	"context"

	"github.com/dan-ringwald/balotilo/cmd/balotilo/commands"
	"github.com/dan-ringwald/balotilo/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "balotilo")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
