package mc

import "testing"

func TestParseVersion(t *testing.T) {
	cases := map[string]MCVersion{
		"1.8": V1_8, "1.12": V1_12, "1.13": V1_13, "1.17": V1_17,
	}
	for s, want := range cases {
		got, err := ParseVersion(s)
		if err != nil {
			t.Fatalf("ParseVersion(%q) returned error: %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseVersion(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseVersion_Unknown(t *testing.T) {
	if _, err := ParseVersion("1.99"); err == nil {
		t.Fatalf("ParseVersion(\"1.99\") should return an error")
	}
}

func TestMCVersion_StringRoundTrips(t *testing.T) {
	for s, want := range map[string]MCVersion{"1.8": V1_8, "1.17": V1_17} {
		if got := want.String(); got != s {
			t.Fatalf("MCVersion(%v).String() = %q, want %q", want, got, s)
		}
	}
}
