package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/format"
	"github.com/relalg/robdd/lang"
)

// replCommand runs a line-at-a-time read-eval-print loop: ":load <file>"
// extends the session with a program's procedures and functions, anything
// else is parsed and evaluated as a single relation expression against the
// builtins and whatever ":load" brought in.
func replCommand(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return err
	}
	m := robdd.New(managerOptionsFromConfig(cfg, ctx.GlobalBool(metricsFlag.Name))...)
	g := lang.NewGlobals(m)

	prompt := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if prompt {
			fmt.Fprint(os.Stdout, "robdd> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":q" {
			break
		}
		if rest, ok := strings.CutPrefix(line, ":load "); ok {
			if err := replLoad(g, strings.TrimSpace(rest)); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			continue
		}

		if err := replEval(g, line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	return scanner.Err()
}

func replLoad(g *lang.Globals, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "loading %q", path)
	}
	program, err := lang.Parse(string(data))
	if err != nil {
		return errors.Wrapf(err, "parsing %q", path)
	}
	g.Extend(program.Items)
	return nil
}

func replEval(g *lang.Globals, line string) error {
	expr, err := lang.ParseExpr(line)
	if err != nil {
		return err
	}
	result, err := lang.EvalExpr(g, expr)
	if err != nil {
		return err
	}
	defer result.Release()

	out, err := format.FormatRelation("result", result)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
