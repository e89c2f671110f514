package main

import (
	"context"

	"kobodash/cmd/kobodash/commands"
	"kobodash/lib/serviceutil"
	"kobodash/lib/telemetry"
)

func main() {
	telemetry.InitSlog()

	ctx := serviceutil.SignalContext()
	tel, err := telemetry.SetupFromEnv(ctx, "kobodash")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer tel.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
