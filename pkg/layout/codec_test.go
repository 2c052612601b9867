package layout

import (
	"testing"

	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/tiers"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Name
		code errs.Code
	}{
		{"layoutName", `{"layoutName":"circular"}`, NameCircular, ""},
		{"layout_type fallback", `{"layout_type":"planar"}`, NamePlanar, ""},
		{"layoutName wins", `{"layoutName":"spring","layout_type":"planar"}`, NameSpring, ""},
		{"unknown", `{"layoutName":"treemap"}`, "", errs.ErrCodeUnknownLayout},
		{"missing name", `{"nodeSize":3}`, "", errs.ErrCodeInvalidParams},
		{"bad json", `{"layoutName":`, "", errs.ErrCodeInvalidParams},
		{"wrong type", `{"layoutName":"circular","spacing":"wide"}`, "", errs.ErrCodeInvalidParams},
		{"invalid value", `{"layoutName":"circular","nodeSize":-1}`, "", errs.ErrCodeInvalidParams},
		{"bad orientation", `{"layoutName":"fcose","orientation":"diagonal"}`, "", errs.ErrCodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode([]byte(tt.in))
			if tt.code != "" {
				if !errs.Is(err, tt.code) {
					t.Fatalf("Decode() error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if p.LayoutName() != tt.want {
				t.Errorf("LayoutName() = %s, want %s", p.LayoutName(), tt.want)
			}
		})
	}
}

func TestDecodeKeepsDefaults(t *testing.T) {
	p, err := Decode([]byte(`{"layoutName":"forceatlas2","gravity":3}`))
	if err != nil {
		t.Fatal(err)
	}
	fa, ok := p.(ForceAtlas2Params)
	if !ok {
		t.Fatalf("Decode() = %T", p)
	}
	if fa.Gravity != 3 {
		t.Errorf("Gravity = %v, want 3", fa.Gravity)
	}
	if def := NewForceAtlas2Params(); fa.Iterations != def.Iterations || fa.ScalingRatio != def.ScalingRatio {
		t.Errorf("defaults lost: %+v", fa)
	}
}

func TestDecodeTiers(t *testing.T) {
	p, err := Decode([]byte(`{"layoutName":"planar","tiers":{"group":"team","rank":["a","b"],"order_nodes_by":"pos"}}`))
	if err != nil {
		t.Fatal(err)
	}
	tp, ok := p.(TieredParams)
	if !ok {
		t.Fatalf("%T does not implement TieredParams", p)
	}
	spec := tp.Tiering().Tiers
	if spec.Descriptor == nil || spec.Descriptor.Group != "team" || spec.OrderPath() != "pos" {
		t.Errorf("Tiers = %+v", spec)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := NewPlanarParams()
	in.Layering = LayeringLongestPath
	in.Tiers = tiers.Explicit([]string{"a"}, []string{"b", "c"})
	data, err := Encode(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(Encode()) error: %v", err)
	}
	pp := out.(PlanarParams)
	if pp.Layering != LayeringLongestPath || len(pp.Tiers.Explicit) != 2 {
		t.Errorf("round trip = %+v", pp)
	}
}

func TestNewDefaultsValidate(t *testing.T) {
	for _, name := range Names {
		p, err := New(name)
		if err != nil {
			t.Fatalf("New(%s) error: %v", name, err)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("%s defaults invalid: %v", name, err)
		}
		if p.LayoutName() != name {
			t.Errorf("New(%s).LayoutName() = %s", name, p.LayoutName())
		}
	}
}
