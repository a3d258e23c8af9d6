package airports

import "testing"

// TestLookup verifies known-airport resolution.
func TestLookup(t *testing.T) {
	p, ok := Lookup("SFO")
	if !ok {
		t.Fatal("Expected SFO to resolve")
	}
	if p.Lat != 37.6213 || p.Lng != -122.3790 {
		t.Errorf("Expected (37.6213, -122.3790), got (%f, %f)", p.Lat, p.Lng)
	}
}

// TestLookupNormalization verifies case and whitespace insensitivity
// across every supported code.
func TestLookupNormalization(t *testing.T) {
	codes := []string{
		"SFO", "NRT", "JFK", "LAX", "LHR", "CDG", "DXB", "HKG", "SIN", "ICN",
		"ORD", "ATL", "DFW", "DEN", "SEA", "BOS", "MIA", "IAH", "PHX", "LAS",
	}

	for _, code := range codes {
		canonical, ok := Lookup(code)
		if !ok {
			t.Fatalf("Expected %s to resolve", code)
		}

		variants := []string{
			"  " + code + "  ",
			"\t" + code,
		}
		// Lower and mixed case
		variants = append(variants, string([]byte{code[0] | 0x20, code[1] | 0x20, code[2] | 0x20}))
		variants = append(variants, string([]byte{code[0], code[1] | 0x20, code[2]}))

		for _, v := range variants {
			p, ok := Lookup(v)
			if !ok {
				t.Errorf("Expected %q to resolve like %s", v, code)
				continue
			}
			if p != canonical {
				t.Errorf("Lookup(%q) = %+v, want %+v", v, p, canonical)
			}
		}
	}
}

// TestLookupUnknown verifies miss behavior.
func TestLookupUnknown(t *testing.T) {
	for _, code := range []string{"", "   ", "XXX", "KSFO", "sfo1"} {
		if _, ok := Lookup(code); ok {
			t.Errorf("Expected %q to miss", code)
		}
	}
}
