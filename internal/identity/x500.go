package identity

import (
	"fmt"
	"strings"

	"github.com/roach88/ledgerload/internal/scenario"
)

// X500Name is a parsed ledger identity name.
type X500Name struct {
	CommonName       string
	OrganisationUnit string
	Organisation     string
	Locality         string
	State            string
	Country          string
}

// ParseX500 parses names such as "O=Bank A, L=London, C=GB". Attribute
// order and spacing around separators are not significant. O, L and C are
// required; CN, OU and ST are optional. A malformed name is a
// scenario.ConfigurationError.
func ParseX500(name string) (X500Name, error) {
	var n X500Name
	seen := make(map[string]bool)

	for _, part := range strings.Split(name, ",") {
		key, val, ok := strings.Cut(part, "=")
		key = strings.ToUpper(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			return X500Name{}, invalidName(name, fmt.Sprintf("malformed attribute %q", strings.TrimSpace(part)))
		}
		if seen[key] {
			return X500Name{}, invalidName(name, fmt.Sprintf("duplicate attribute %s", key))
		}
		seen[key] = true

		switch key {
		case "CN":
			n.CommonName = val
		case "OU":
			n.OrganisationUnit = val
		case "O":
			n.Organisation = val
		case "L":
			n.Locality = val
		case "ST":
			n.State = val
		case "C":
			if len(val) != 2 {
				return X500Name{}, invalidName(name, "country must be a two-letter code")
			}
			n.Country = strings.ToUpper(val)
		default:
			return X500Name{}, invalidName(name, fmt.Sprintf("unsupported attribute %s", key))
		}
	}

	for _, req := range []string{"O", "L", "C"} {
		if !seen[req] {
			return X500Name{}, invalidName(name, fmt.Sprintf("missing attribute %s", req))
		}
	}
	return n, nil
}

// String renders the canonical form: CN, OU, O, L, ST, C with no spaces
// after separators.
func (n X500Name) String() string {
	var parts []string
	add := func(key, val string) {
		if val != "" {
			parts = append(parts, key+"="+val)
		}
	}
	add("CN", n.CommonName)
	add("OU", n.OrganisationUnit)
	add("O", n.Organisation)
	add("L", n.Locality)
	add("ST", n.State)
	add("C", n.Country)
	return strings.Join(parts, ",")
}

// Canonical parses name and returns its canonical string form.
func Canonical(name string) (string, error) {
	n, err := ParseX500(name)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

func invalidName(name, reason string) error {
	return &scenario.ConfigurationError{Value: name, Reason: "invalid X500 name: " + reason}
}
