package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
)

// rsvgBinary is the librsvg command line converter. Tests point it at a
// missing binary.
var rsvgBinary = "rsvg-convert"

// ToPDF converts a layout preview SVG to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvg(ctx, svg, "pdf")
}

// ToPNG converts a layout preview SVG to PNG. scale multiplies the
// resolution and must be positive.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %g", scale)
	}
	return rsvg(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

func rsvg(ctx context.Context, svg []byte, format string, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(rsvgBinary)
	if err != nil {
		return nil, errs.New(errs.ErrCodeUnsupported,
			"%s previews need %s from librsvg (brew install librsvg, apt install librsvg2-bin)", format, rsvgBinary)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "%s %s: %s", rsvgBinary, format, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
