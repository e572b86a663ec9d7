package mc

import "fmt"

var versionNames = map[string]MCVersion{
	"1.8": V1_8, "1.9": V1_9, "1.10": V1_10, "1.11": V1_11, "1.12": V1_12,
	"1.13": V1_13, "1.14": V1_14, "1.15": V1_15, "1.16": V1_16, "1.17": V1_17,
}

// ParseVersion maps a dotted version string ("1.16") to its MCVersion, the
// form both the CLI and the HTTP API accept since nobody types iota values.
func ParseVersion(s string) (MCVersion, error) {
	v, ok := versionNames[s]
	if !ok {
		return 0, fmt.Errorf("mc: unknown version %q", s)
	}
	return v, nil
}

func (v MCVersion) String() string {
	for name, val := range versionNames {
		if val == v {
			return name
		}
	}
	return "unknown"
}
