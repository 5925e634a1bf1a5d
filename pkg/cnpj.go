package pkg

import "strings"

const cnpjDigits = 14

// NormalizeCNPJ strips everything that is not a digit. Partial input is fine
// here; completeness is checked by ValidCNPJ at submit time.
func NormalizeCNPJ(v string) string {
	var b strings.Builder
	b.Grow(cnpjDigits)
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCNPJ reports whether the input normalizes to exactly 14 digits.
func ValidCNPJ(v string) bool {
	return len(NormalizeCNPJ(v)) == cnpjDigits
}

// FormatCNPJ renders a normalized CNPJ as NN.NNN.NNN/NNNN-NN. Inputs that are
// not 14 digits long are returned unchanged.
func FormatCNPJ(v string) string {
	d := NormalizeCNPJ(v)
	if len(d) != cnpjDigits {
		return v
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
