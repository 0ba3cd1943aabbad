package main

import (
	"fmt"
	"os"

	"github.com/agripulse/agripulse/cmd/cli/root"

	_ "github.com/agripulse/agripulse/cmd/cli/auth"
	_ "github.com/agripulse/agripulse/cmd/cli/farms"
	_ "github.com/agripulse/agripulse/cmd/cli/reports"
	_ "github.com/agripulse/agripulse/cmd/cli/schedules"
)

func main() {
	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
