package binding

import "testing"

func TestInterpolate(t *testing.T) {
	fields := NewFields(map[string]any{"ci_no": "CI-7", "city": "Shanghai"})
	got := Interpolate("Physical_Test_Report_${ci_no}_${ city }_${stamp}.pdf", fields.Lookup)
	want := "Physical_Test_Report_CI-7_Shanghai_${stamp}.pdf"
	if got != want {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}

func TestInterpolateNilLookup(t *testing.T) {
	if got := Interpolate("${a}", nil); got != "${a}" {
		t.Fatalf("expected verbatim text, got %q", got)
	}
}

func TestMapLookup(t *testing.T) {
	got := Interpolate("${a}-${b}-${}", MapLookup(map[string]string{"a": "1"}))
	if got != "1-${b}-${}" {
		t.Fatalf("unexpected interpolation: %q", got)
	}
}
