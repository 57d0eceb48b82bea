package agent

import (
	"encoding/json"
	"testing"
)

// TestParseStreamingJSON_ScenarioWalkthrough exercises the exact streaming
// scenario from §4.2: successive input_json_delta fragments for
// {"a":1,"b":"hello"} must each parse to a usable (possibly partial) object,
// and the final fragment must equal a strict parse of the complete buffer
// (Testable Property P3).
func TestParseStreamingJSON_ScenarioWalkthrough(t *testing.T) {
	steps := []struct {
		fragment string
		want     string
	}{
		{`{"a":1}`, `{"a":1}`},
		{`{"a":1,"b":"hel`, `{"a":1,"b":"hel"}`},
		{`{"a":1,"b":"hello"}`, `{"a":1,"b":"hello"}`},
	}

	for _, step := range steps {
		got := ParseStreamingJSON(step.fragment)
		if !json.Valid(got) {
			t.Fatalf("ParseStreamingJSON(%q) = %q, not valid JSON", step.fragment, got)
		}
		var gotVal, wantVal any
		if err := json.Unmarshal(got, &gotVal); err != nil {
			t.Fatalf("unmarshal got %q: %v", got, err)
		}
		if err := json.Unmarshal([]byte(step.want), &wantVal); err != nil {
			t.Fatalf("unmarshal want %q: %v", step.want, err)
		}
		if !equalJSON(gotVal, wantVal) {
			t.Errorf("ParseStreamingJSON(%q) = %q, want %q", step.fragment, got, step.want)
		}
	}
}

// TestParseStreamingJSON_NeverThrows walks a valid JSON document one byte at
// a time and checks every prefix parses to some object without panicking
// (Testable Property P4).
func TestParseStreamingJSON_NeverThrows(t *testing.T) {
	full := `{"path":"/tmp/foo.txt","lines":[1,2,3],"recursive":true,"note":"say \"hi\""}`
	for i := 1; i <= len(full); i++ {
		prefix := full[:i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("ParseStreamingJSON(%q) panicked: %v", prefix, r)
				}
			}()
			got := ParseStreamingJSON(prefix)
			if !json.Valid(got) {
				t.Fatalf("ParseStreamingJSON(%q) = %q, not valid JSON", prefix, got)
			}
		}()
	}
}

func TestParseStreamingJSON_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		got := ParseStreamingJSON(in)
		if string(got) != "{}" {
			t.Errorf("ParseStreamingJSON(%q) = %q, want {}", in, got)
		}
	}
}

func TestParseStreamingJSON_DanglingKeyBacksOffToLastSafeCutPoint(t *testing.T) {
	// The buffer ends right after a key's colon with no value yet; nothing
	// can be done with "b" until its value starts arriving, so the repair
	// should drop it and keep the object valid with what came before.
	got := ParseStreamingJSON(`{"a":1,"b":`)
	want := `{"a":1}`

	var gotVal, wantVal any
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("unmarshal got %q: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &wantVal); err != nil {
		t.Fatalf("unmarshal want %q: %v", want, err)
	}
	if !equalJSON(gotVal, wantVal) {
		t.Errorf("ParseStreamingJSON(%q) = %q, want %q", `{"a":1,"b":`, got, want)
	}
}

func TestParseStreamingJSON_UnrepairableFragmentYieldsEmptyObject(t *testing.T) {
	got := ParseStreamingJSON(`}}}`)
	if string(got) != "{}" {
		t.Errorf("ParseStreamingJSON(%q) = %q, want {}", `}}}`, got)
	}
}

func TestParseStreamingJSON_CompleteArgumentsMatchStrictParse(t *testing.T) {
	full := `{"query":"foo bar","limit":10,"tags":["a","b"]}`
	got := ParseStreamingJSON(full)

	var gotVal, wantVal any
	if err := json.Unmarshal(got, &gotVal); err != nil {
		t.Fatalf("unmarshal got: %v", err)
	}
	if err := json.Unmarshal([]byte(full), &wantVal); err != nil {
		t.Fatalf("unmarshal want: %v", err)
	}
	if !equalJSON(gotVal, wantVal) {
		t.Errorf("ParseStreamingJSON(%q) = %q, want exact match with strict parse", full, got)
	}
}

func equalJSON(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok != bok {
		return false
	}
	if !aok {
		encA, _ := json.Marshal(a)
		encB, _ := json.Marshal(b)
		return string(encA) == string(encB)
	}
	if len(am) != len(bm) {
		return false
	}
	for k, av := range am {
		bv, ok := bm[k]
		if !ok || !equalJSON(av, bv) {
			return false
		}
	}
	return true
}
