// Command robdd is a CLI over the relational layer: it runs programs
// written in the toy procedural language of the lang package, converts
// relations between the ascii and matrix text formats, and offers a small
// REPL for evaluating relation expressions interactively.
package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	version   string
	gitCommit string
)

func main() {
	app := cli.NewApp()
	app.Name = "robdd"
	app.Usage = "ROBDD-backed relational algebra toolkit"
	app.Version = fmt.Sprintf("%s-%s", versionOrDev(), gitCommit)
	app.Flags = []cli.Flag{configFlag, metricsFlag}
	app.Commands = []cli.Command{
		{
			Name:      "run",
			Usage:     "run a procedure or function from a program file",
			ArgsUsage: "<program-file>",
			Flags:     []cli.Flag{procFlag, argFlag, toFlag},
			Action:    runCommand,
		},
		{
			Name:   "repl",
			Usage:  "interactively evaluate relation expressions",
			Action: replCommand,
		},
		{
			Name:      "convert",
			Usage:     "convert a relation between the ascii and matrix formats",
			ArgsUsage: "<relation-file>",
			Flags:     []cli.Flag{fromFlag, toFlag},
			Action:    convertCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionOrDev() string {
	if version == "" {
		return "dev"
	}
	return version
}
