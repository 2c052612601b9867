package render

import (
	"context"
	"testing"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
)

func TestConvertErrors(t *testing.T) {
	rsvgBinary = "graphlayout-missing-rsvg-convert"
	t.Cleanup(func() { rsvgBinary = "rsvg-convert" })

	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"/>`)
	tests := []struct {
		name string
		run  func() error
		code errs.Code
	}{
		{"pdf without rsvg", func() error { _, err := ToPDF(context.Background(), svg); return err }, errs.ErrCodeUnsupported},
		{"png without rsvg", func() error { _, err := ToPNG(context.Background(), svg, 2); return err }, errs.ErrCodeUnsupported},
		{"png zero scale", func() error { _, err := ToPNG(context.Background(), svg, 0); return err }, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}
