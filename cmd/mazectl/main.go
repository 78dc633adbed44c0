// Command mazectl solves, checks and converts mazes without a server.
//
//	mazectl solve --layout maze.txt --algorithm wall-follower --trace
//	mazectl solve --config configs/spiral.json --png out.png
//	mazectl validate configs
//	mazectl analyze configs
//	mazectl convert --image photo.png --rows 21 --cols 21 --name Photo
package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "mazectl",
		Usage:   "solve and inspect grid mazes",
		Version: "1.0.0",
		Commands: []*cli.Command{
			solveCommand(),
			validateCommand(),
			analyzeCommand(),
			convertCommand(),
		},
	}
}

func main() {
	log.SetFlags(0)
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatalf("mazectl: %v", err)
	}
}
