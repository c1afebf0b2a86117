package skeleton

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r2"
)

func pt(x, y, conf float64) JointPoint {
	return JointPoint{Location: r2.Vec{X: x, Y: y}, Confidence: conf}
}

func TestPointConfidenceGating(t *testing.T) {

	tests := []struct {
		name   string
		conf   float64
		usable bool
	}{
		{"zero", 0, false},
		{"below", 0.05, false},
		{"at threshold", 0.1, false},
		{"just above", 0.1001, true},
		{"high", 0.9, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(map[Joint]JointPoint{RightWrist: pt(0.5, 0.5, tc.conf)})

			_, ok := s.Point(RightWrist)
			if ok != tc.usable {
				t.Errorf("Point() ok = %v, want %v", ok, tc.usable)
			}

			// raw access is never gated
			if _, ok := s.Raw(RightWrist); !ok {
				t.Error("Raw() should return the detected joint")
			}

			if _, ok := s.PixelPoint(RightWrist, Size{100, 100}); ok != tc.usable {
				t.Errorf("PixelPoint() ok = %v, want %v", ok, tc.usable)
			}
		})
	}
}

func TestMissingJoint(t *testing.T) {
	s := New(map[Joint]JointPoint{Nose: pt(0.5, 0.9, 1)})

	if _, ok := s.Point(LeftAnkle); ok {
		t.Error("missing joint should not be returned")
	}

	if _, ok := s.Raw(LeftAnkle); ok {
		t.Error("missing joint should not be returned by Raw")
	}

	if s.Len() != 1 || s.Empty() {
		t.Errorf("expected 1 joint, got %d", s.Len())
	}

	if _, ok := s.Point(Joint(99)); ok {
		t.Error("invalid joint should not be returned")
	}
}

func TestSkeletonIsValue(t *testing.T) {
	src := map[Joint]JointPoint{Neck: pt(0.5, 0.7, 0.8)}
	s := New(src)

	// mutating the source map must not affect the skeleton
	src[Neck] = pt(0, 0, 0)

	p, ok := s.Point(Neck)
	if !ok || p.Location.X != 0.5 {
		t.Errorf("skeleton changed after source mutation: %+v", p)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	sizes := []Size{{390, 844}, {1920, 1080}, {1, 1}}

	for _, size := range sizes {
		for x := 0.0; x <= 1.0; x += 0.125 {
			for y := 0.0; y <= 1.0; y += 0.125 {
				loc := r2.Vec{X: x, Y: y}
				back := ToNormalized(ToPixel(loc, size), size)

				if !scalar.EqualWithinAbs(back.X, x, 1e-12) ||
					!scalar.EqualWithinAbs(back.Y, y, 1e-12) {
					t.Fatalf("round trip %v size %v gave %v", loc, size, back)
				}
			}
		}
	}
}

func TestToPixelFlipsVertical(t *testing.T) {
	size := Size{Width: 200, Height: 100}

	got := ToPixel(r2.Vec{X: 0.25, Y: 0.9}, size)
	want := r2.Vec{X: 50, Y: 10}

	if !scalar.EqualWithinAbs(got.X, want.X, 1e-9) || !scalar.EqualWithinAbs(got.Y, want.Y, 1e-9) {
		t.Errorf("ToPixel = %v, want %v", got, want)
	}
}

func TestLimbs(t *testing.T) {
	if len(Limbs) != 14 {
		t.Fatalf("expected 14 limbs, got %d", len(Limbs))
	}

	if Limbs[0] != (Limb{Nose, Neck}) || Limbs[13] != (Limb{RightKnee, RightAnkle}) {
		t.Errorf("limb order changed: first %v last %v", Limbs[0], Limbs[13])
	}

	// every joint is connected to at least one limb
	for _, j := range Joints() {
		found := false
		for _, l := range Limbs {
			if l.Touches(j) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("joint %s is not connected", j)
		}
	}
}

func TestVisibleLimbs(t *testing.T) {
	s := New(map[Joint]JointPoint{
		RightHip:   pt(0.6, 0.5, 0.9),
		RightKnee:  pt(0.6, 0.3, 0.9),
		RightAnkle: pt(0.3, 0.2, 0.05),
	})

	got := VisibleLimbs(s)
	want := []Limb{{RightHip, RightKnee}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("VisibleLimbs mismatch (-want +got):\n%s", diff)
	}

	if !Valid(s) {
		t.Error("skeleton with one visible limb should be valid")
	}

	if Valid(New(nil)) {
		t.Error("empty skeleton should not be valid")
	}
}

func TestParseJoint(t *testing.T) {
	for _, j := range Joints() {
		got, err := ParseJoint(j.String())
		if err != nil || got != j {
			t.Errorf("ParseJoint(%q) = %v, %v", j.String(), got, err)
		}
	}

	if _, err := ParseJoint("leftEar"); err == nil {
		t.Error("expected error for unknown joint")
	}
}

func TestClassOf(t *testing.T) {
	tests := map[Joint]JointClass{
		Nose:       Head,
		LeftWrist:  Hands,
		RightWrist: Hands,
		LeftAnkle:  Feet,
		RightAnkle: Feet,
		Root:       Body,
		LeftElbow:  Body,
	}

	for j, want := range tests {
		if got := ClassOf(j); got != want {
			t.Errorf("ClassOf(%s) = %v, want %v", j, got, want)
		}
	}
}

func TestSkeletonJSON(t *testing.T) {
	s := New(map[Joint]JointPoint{
		RightWrist: pt(0.7, 0.6, 0.9),
		Nose:       pt(0.5, 0.9, 0.4),
	})

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if _, ok := raw["rightWrist"]; !ok {
		t.Errorf("expected joint names as keys, got %s", data)
	}

	var back Skeleton
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if diff := cmp.Diff(s.Map(), back.Map()); diff != "" {
		t.Errorf("decoded skeleton mismatch (-want +got):\n%s", diff)
	}
}
