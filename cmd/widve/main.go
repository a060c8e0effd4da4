// Package main is the widve command line tool for querying spatial indexes over
// point clouds and meshes.
package main

import (
	"log"
	"os"

	"github.com/edaniels/golog"
	"github.com/urfave/cli/v2"

	"github.com/widve/widve/logging"
)

const (
	// Flags.
	flagConfig  = "config"
	flagFile    = "file"
	flagPoint   = "point"
	flagCount   = "n"
	flagQueries = "queries"
	flagSeed    = "seed"
	flagVoxel   = "voxel"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	var logger golog.Logger

	sourceFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load index configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:    flagFile,
			Aliases: []string{"f"},
			Usage:   "index the .pcd, .las, .gltf or .glb `FILE` with default settings",
		},
		&cli.Float64Flag{
			Name:  flagVoxel,
			Usage: "thin the source to one point per voxel of edge `SIZE` before indexing",
		},
	}

	return &cli.App{
		Name:  "widve",
		Usage: "closest-vertex queries over point clouds and meshes",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				logger = logging.NewDebugLogger("widve")
			} else {
				logger = logging.NewBlankLogger("widve")
			}
			logging.ReplaceGlobal(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "nearest",
				Usage: "print the vertices closest to a point",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     flagPoint,
						Aliases:  []string{"p"},
						Usage:    "query point as `X,Y,Z`",
						Required: true,
					},
					&cli.IntFlag{
						Name:  flagCount,
						Usage: "number of vertices to print",
						Value: 1,
					},
				}, sourceFlags...),
				Action: func(c *cli.Context) error {
					return nearestCommand(c, logger)
				},
			},
			{
				Name:  "stats",
				Usage: "print the shape of the index",
				Flags: sourceFlags,
				Action: func(c *cli.Context) error {
					return statsCommand(c, logger)
				},
			},
			{
				Name:  "bench",
				Usage: "compare tree search against a linear scan",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  flagQueries,
						Usage: "number of random queries",
						Value: 1000,
					},
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "random seed for query generation",
						Value: 1,
					},
				}, sourceFlags...),
				Action: func(c *cli.Context) error {
					return benchCommand(c, logger)
				},
			},
		},
	}
}
