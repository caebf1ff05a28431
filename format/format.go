// Package format implements the ASCII-relation and matrix parsers and
// printers of original_source/src/display.rs, parser/matrix.rs and
// parser/relation.rs, reworked as Go Parse/Format functions.
package format

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/relalg/robdd"
	"github.com/relalg/robdd/relation"
)

// FormatRelation renders r as the ASCII relation format: a header naming
// the relation and its domain sizes, followed by one 1-based, ascending
// line per row that has at least one related column. Grounded on
// display.rs's DisplayRelation.
func FormatRelation(name string, r relation.Relation) (string, error) {
	pairs, err := r.Iter()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%d, %d)", name, r.DomainX().Size, r.DomainY().Size)

	lastX := -1
	for _, p := range pairs {
		if int(p.X) == lastX {
			b.WriteString(", ")
		} else {
			fmt.Fprintf(&b, "\n%d : ", p.X+1)
			lastX = int(p.X)
		}
		fmt.Fprintf(&b, "%d", p.Y+1)
	}
	b.WriteString("\n")
	return b.String(), nil
}

// FormatMatrix renders r as a box-drawn grid with 'X' marking each
// related (row, column) pair. Grounded on display.rs's DisplayMatrix.
func FormatMatrix(r relation.Relation) (string, error) {
	var b strings.Builder
	width := r.DomainY().Size

	border := func() {
		b.WriteString("+")
		for i := uint32(0); i < width; i++ {
			b.WriteString("-")
		}
		b.WriteString("+\n")
	}

	border()
	for x := uint32(0); x < r.DomainX().Size; x++ {
		b.WriteString("|")
		for y := uint32(0); y < width; y++ {
			ok, err := r.Contains(relation.Pair{X: x, Y: y})
			if err != nil {
				return "", err
			}
			if ok {
				b.WriteString("X")
			} else {
				b.WriteString(" ")
			}
		}
		b.WriteString("|\n")
	}
	border()
	return b.String(), nil
}

// ParseRelation parses the ASCII relation format, returning the relation's
// name and value. Grounded on parser/relation.rs.
func ParseRelation(m *robdd.Manager, src string) (string, relation.Relation, error) {
	scanner := bufio.NewScanner(strings.NewReader(src))
	if !scanner.Scan() {
		return "", relation.Relation{}, errors.New("format: empty relation source")
	}
	name, domX, domY, err := parseHeader(scanner.Text())
	if err != nil {
		return "", relation.Relation{}, err
	}

	var pairs []relation.Pair
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " : ", 2)
		if len(parts) != 2 {
			return "", relation.Relation{}, errors.Errorf("format: malformed relation line %q", line)
		}
		x, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
		if err != nil {
			return "", relation.Relation{}, errors.Wrapf(err, "format: bad row index in %q", line)
		}
		for _, ys := range strings.Split(parts[1], ", ") {
			y, err := strconv.ParseUint(strings.TrimSpace(ys), 10, 32)
			if err != nil {
				return "", relation.Relation{}, errors.Wrapf(err, "format: bad column index in %q", line)
			}
			pairs = append(pairs, relation.Pair{X: uint32(x - 1), Y: uint32(y - 1)})
		}
	}
	if err := scanner.Err(); err != nil {
		return "", relation.Relation{}, err
	}

	r, err := relation.Sparse(m, domX, domY, pairs)
	return name, r, err
}

func parseHeader(header string) (string, relation.Domain, relation.Domain, error) {
	open := strings.IndexByte(header, '(')
	closeIdx := strings.IndexByte(header, ')')
	if open < 0 || closeIdx < open {
		return "", relation.Domain{}, relation.Domain{}, errors.Errorf("format: malformed header %q", header)
	}
	name := strings.TrimSpace(header[:open])
	parts := strings.SplitN(header[open+1:closeIdx], ",", 2)
	if len(parts) != 2 {
		return "", relation.Domain{}, relation.Domain{}, errors.Errorf("format: malformed header %q", header)
	}
	x, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 32)
	if err != nil {
		return "", relation.Domain{}, relation.Domain{}, errors.Wrapf(err, "format: bad row domain in %q", header)
	}
	y, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 32)
	if err != nil {
		return "", relation.Domain{}, relation.Domain{}, errors.Wrapf(err, "format: bad column domain in %q", header)
	}
	return name, relation.Domain{Size: uint32(x)}, relation.Domain{Size: uint32(y)}, nil
}

// ParseMatrix parses the box-drawn matrix format. Grounded on
// parser/matrix.rs.
func ParseMatrix(m *robdd.Manager, src string) (relation.Relation, error) {
	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	if len(lines) < 2 {
		return relation.Relation{}, errors.New("format: matrix source too short")
	}
	top := lines[0]
	if !strings.HasPrefix(top, "+") || !strings.HasSuffix(top, "+") || len(top) < 2 {
		return relation.Relation{}, errors.Errorf("format: malformed matrix border %q", top)
	}
	width := len(top) - 2

	var pairs []relation.Pair
	rows := lines[1 : len(lines)-1]
	for x, line := range rows {
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
			return relation.Relation{}, errors.Errorf("format: malformed matrix row %q", line)
		}
		cells := line[1 : len(line)-1]
		if len(cells) != width {
			return relation.Relation{}, errors.Errorf("format: matrix row %q has width %d, want %d", line, len(cells), width)
		}
		for y, c := range cells {
			switch c {
			case 'X':
				pairs = append(pairs, relation.Pair{X: uint32(x), Y: uint32(y)})
			case ' ':
			default:
				return relation.Relation{}, errors.Errorf("format: unexpected matrix cell %q", c)
			}
		}
	}

	return relation.Sparse(m, relation.Domain{Size: uint32(len(rows))}, relation.Domain{Size: uint32(width)}, pairs)
}
