package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/MikeSquared-Agency/Weigh/internal/cmd"
)

func main() {
	if err := fang.Execute(context.Background(), cmd.NewRootCommand(), fang.WithVersion(cmd.Version)); err != nil {
		os.Exit(1)
	}
}
