package brief

import (
	"encoding/json"
	"math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{Computable(1.25), NotComputable()})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":1.25,"b":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var m Metric
	if err := json.Unmarshal([]byte("null"), &m); err != nil || m.Valid {
		t.Errorf("null should decode to not computable, got %+v (%v)", m, err)
	}
	if err := json.Unmarshal([]byte("2.5"), &m); err != nil || !m.Valid || m.Value != 2.5 {
		t.Errorf("2.5 should decode to a valid metric, got %+v (%v)", m, err)
	}
}

func TestMetricYAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]Metric{"skewness": NotComputable()})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "skewness: null\n" {
		t.Errorf("unexpected YAML: %q", data)
	}
}

func TestComputableRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if Computable(v).Valid {
			t.Errorf("Computable(%v) should be invalid", v)
		}
	}
	if NotComputable().String() != "n/a" {
		t.Errorf("expected n/a, got %s", NotComputable().String())
	}
}

func TestRounded(t *testing.T) {
	s := DescriptiveStats{
		N:        3,
		Mean:     1.234567,
		StdDev:   0.00004,
		Skewness: Computable(-0.123456),
		Kurtosis: NotComputable(),
	}
	r := s.Rounded()

	if r.Mean != 1.2346 {
		t.Errorf("Mean = %v, want 1.2346", r.Mean)
	}
	if r.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", r.StdDev)
	}
	if r.Skewness.Value != -0.1235 {
		t.Errorf("Skewness = %v, want -0.1235", r.Skewness.Value)
	}
	if r.Kurtosis.Valid {
		t.Error("Kurtosis should stay not computable")
	}
	if s.Mean != 1.234567 {
		t.Error("Rounded must not modify the receiver")
	}
}

func TestVariableStatsLabel(t *testing.T) {
	if got := (VariableStats{Variable: "sales"}).Label(); got != "sales" {
		t.Errorf("got %q", got)
	}
	if got := (VariableStats{Group: "North", Variable: "sales"}).Label(); got != "sales (North)" {
		t.Errorf("got %q", got)
	}
}
