package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	pb "gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/format"
	"github.com/relalg/robdd/relation"
)

// relationWithName pairs a parsed relation with the name its ascii header
// carried (or a placeholder, for formats with no name field) so that
// converting ascii -> ascii round-trips the original name.
type relationWithName struct {
	name string
	node relation.Relation
}

// convertCommand translates a relation between the ascii and matrix text
// formats. Reading is wrapped in a progress bar (bytes read) since the
// source relation file — one line per non-empty row, or a full width x
// height grid for a matrix — can be large enough that loading it from
// disk is the dominant cost.
func convertCommand(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("convert: missing input file argument")
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "convert: opening %q", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "convert: stat %q", path)
	}

	bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
	bar.Output = os.Stderr
	bar.Start()
	reader := bar.NewProxyReader(f)
	defer bar.Finish()

	data, err := io.ReadAll(reader)
	if err != nil {
		return errors.Wrapf(err, "convert: reading %q", path)
	}

	cfg, err := loadConfig(ctx.GlobalString(configFlag.Name))
	if err != nil {
		return err
	}
	m := robdd.New(managerOptionsFromConfig(cfg, ctx.GlobalBool(metricsFlag.Name))...)

	var r relationWithName
	switch from := ctx.String(fromFlag.Name); from {
	case "ascii":
		name, rel, err := format.ParseRelation(m, string(data))
		if err != nil {
			return errors.Wrap(err, "convert: parsing ascii relation")
		}
		r = relationWithName{name: name, node: rel}
	case "matrix":
		rel, err := format.ParseMatrix(m, string(data))
		if err != nil {
			return errors.Wrap(err, "convert: parsing matrix")
		}
		r = relationWithName{name: "result", node: rel}
	default:
		return errors.Errorf("convert: unknown --from %q, want ascii or matrix", from)
	}
	defer r.node.Release()

	var out string
	switch to := ctx.String(toFlag.Name); to {
	case "ascii":
		out, err = format.FormatRelation(r.name, r.node)
	case "matrix":
		out, err = format.FormatMatrix(r.node)
	default:
		return errors.Errorf("convert: unknown --to %q, want ascii or matrix", to)
	}
	if err != nil {
		return errors.Wrap(err, "convert: formatting output")
	}

	fmt.Print(out)
	return nil
}
