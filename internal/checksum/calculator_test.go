package checksum

import (
	"testing"
)

func TestSHA256Calculator_CalculateRaw(t *testing.T) {
	calc := New()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "Empty string",
			content:  "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Compact JSON object",
			content:  `{"RepetitionTime":2.5}`,
			expected: "294f763a6ee661405570155f8343b9568d526ab28c8fe20bec03b1847a75f5fc",
		},
		{
			name:     "Indented JSON object",
			content:  "{\n    \"RepetitionTime\": 2.5\n}",
			expected: "90421249fb0b9571030099214fb4fd37d5e969990734c5cf880c3c488c908be3",
		},
		{
			name:     "Plain text",
			content:  "not json",
			expected: "7ccfa1fbf3940e6f0c0375d87c0f9235a50514e14cb427bdfaf5077987b26ccf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calc.CalculateRaw([]byte(tt.content))

			// Verify it's a valid 64-character hex string (SHA-256)
			if len(result) != 64 {
				t.Errorf("CalculateRaw() returned hash of length %d, expected 64", len(result))
			}

			if result != tt.expected {
				t.Errorf("CalculateRaw() = %s, expected %s", result, tt.expected)
			}

			// Verify it's consistent
			result2 := calc.CalculateRaw([]byte(tt.content))
			if result != result2 {
				t.Errorf("CalculateRaw() is not deterministic: %s != %s", result, result2)
			}
		})
	}
}

func TestSHA256Calculator_Canonical_WhitespaceInsensitive(t *testing.T) {
	calc := New()

	variations := []string{
		`{"RepetitionTime":2.5,"Units":"s"}`,
		`{ "RepetitionTime": 2.5, "Units": "s" }`,
		"{\n    \"RepetitionTime\": 2.5,\n    \"Units\": \"s\"\n}",
		"{\"RepetitionTime\":\t2.5,\"Units\":\t\"s\"}",
		"  {\"RepetitionTime\":2.5,\"Units\":\"s\"}  \n",
	}

	var baseHash string
	for i, content := range variations {
		hash := calc.CalculateCanonical([]byte(content))
		if i == 0 {
			baseHash = hash
		} else if hash != baseHash {
			t.Errorf("Whitespace variation %d produced different hash: %s != %s", i, hash, baseHash)
		}
	}
}

func TestSHA256Calculator_Canonical_KeyOrderSignificant(t *testing.T) {
	calc := New()

	ab := calc.CalculateCanonical([]byte(`{"a":1,"b":2}`))
	ba := calc.CalculateCanonical([]byte(`{"b":2,"a":1}`))

	if ab == ba {
		t.Error("Objects with reordered keys should produce different hashes")
	}
}

func TestSHA256Calculator_Canonical_NumericSpellingSignificant(t *testing.T) {
	calc := New()

	spellings := []string{"2.5", "2.50", "25e-1"}

	seen := make(map[string]string)
	for _, spelling := range spellings {
		hash := calc.CalculateCanonical([]byte(spelling))
		if prev, ok := seen[hash]; ok {
			t.Errorf("Spellings %s and %s produced the same hash", prev, spelling)
		}
		seen[hash] = spelling
	}
}

func TestSHA256Calculator_Canonical_InvalidJSONFallsBack(t *testing.T) {
	calc := New()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Empty content",
			content: "",
		},
		{
			name:    "Plain text",
			content: "not json",
		},
		{
			name:    "Truncated object",
			content: `{"a":`,
		},
		{
			name:    "Numeric matrix row",
			content: "0.5 0.5 0.7071\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical := calc.CalculateCanonical([]byte(tt.content))
			raw := calc.CalculateRaw([]byte(tt.content))
			if canonical != raw {
				t.Errorf("CalculateCanonical() = %s, expected the raw hash %s", canonical, raw)
			}
		})
	}
}

func TestSHA256Calculator_Canonical_MatchesCompactRaw(t *testing.T) {
	calc := New()

	canonical := calc.CalculateCanonical([]byte("{\n    \"RepetitionTime\": 2.5\n}"))
	compact := calc.CalculateRaw([]byte(`{"RepetitionTime":2.5}`))

	if canonical != compact {
		t.Errorf("Canonical hash of a formatted value should equal the raw hash of its compact form: %s != %s",
			canonical, compact)
	}
}

func TestSHA256Calculator_RawVsCanonical_ShouldDiffer(t *testing.T) {
	calc := New()

	content := "{\n    \"RepetitionTime\": 2.5\n}"

	rawHash := calc.CalculateRaw([]byte(content))
	canonicalHash := calc.CalculateCanonical([]byte(content))

	if rawHash == canonicalHash {
		t.Error("Raw and canonical hashes should differ when a JSON value carries layout whitespace")
	}
}

// Benchmark tests to ensure performance is acceptable
func BenchmarkSHA256Calculator_CalculateRaw(b *testing.B) {
	calc := New()
	content := []byte(`{"RepetitionTime":2.5,"EchoTime":0.03}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calc.CalculateRaw(content)
	}
}

func BenchmarkSHA256Calculator_CalculateCanonical(b *testing.B) {
	calc := New()
	content := []byte("{\n    \"RepetitionTime\": 2.5,\n    \"EchoTime\": 0.03\n}")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		calc.CalculateCanonical(content)
	}
}
