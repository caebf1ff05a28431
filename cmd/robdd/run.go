package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/format"
	"github.com/relalg/robdd/lang"
	"github.com/relalg/robdd/relation"
)

func runCommand(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("run: missing program file argument")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "run: reading %q", path)
	}
	program, err := lang.Parse(string(src))
	if err != nil {
		return errors.Wrap(err, "run: parsing program")
	}

	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return err
	}
	m := robdd.New(managerOptionsFromConfig(cfg, ctx.GlobalBool(metricsFlag.Name))...)

	var args []relation.Relation
	for _, argPath := range ctx.StringSlice(argFlag.Name) {
		data, err := os.ReadFile(argPath)
		if err != nil {
			return errors.Wrapf(err, "run: reading argument %q", argPath)
		}
		_, r, err := format.ParseRelation(m, string(data))
		if err != nil {
			return errors.Wrapf(err, "run: parsing argument %q", argPath)
		}
		args = append(args, r)
	}
	defer func() {
		for _, a := range args {
			a.Release()
		}
	}()

	g := lang.NewGlobals(m)
	result, err := lang.Run(g, program, ctx.String(procFlag.Name), args)
	if err != nil {
		return errors.Wrap(err, "run")
	}
	defer result.Release()

	out, err := renderRelation(result, ctx.String(toFlag.Name))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func renderRelation(r relation.Relation, kind string) (string, error) {
	switch kind {
	case "matrix":
		return format.FormatMatrix(r)
	case "ascii":
		return format.FormatRelation("result", r)
	default:
		return "", errors.Errorf("unknown format %q, want ascii or matrix", kind)
	}
}
