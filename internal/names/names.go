// Package names centralizes the identifier and path rules shared by the
// registry and the exporters.
package names

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var identifierRegexp = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Valid reports whether s is usable as a metric name or label key.
func Valid(s string) bool {
	return identifierRegexp.MatchString(s)
}

var labelValueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
)

// EscapeLabelValue escapes backslash, double quote, and newline for the text
// exposition format.
func EscapeLabelValue(s string) string {
	return labelValueEscaper.Replace(s)
}

// QuantileSuffix maps a quantile in (0,1) to the conventional short field
// name: 0.5 -> "p50", 0.95 -> "p95", 0.999 -> "p999".
func QuantileSuffix(q float64) string {
	pm := int(math.Round(q * 1000))
	if pm%10 == 0 {
		return "p" + strconv.Itoa(pm/10)
	}
	return "p" + strconv.Itoa(pm/10) + strconv.Itoa(pm%10)
}

var pathSanitizer = strings.NewReplacer(
	" ", "_",
	"/", ".",
	":", "_",
)

// Path flattens a metric name and its label pairs into a dotted bucket path
// for dot-delimited wire formats (statsd, graphite). Label pairs are
// appended as key.value segments in the given order.
func Path(name string, labelPairs ...string) string {
	var sb strings.Builder
	sb.WriteString(name)
	for i := 0; i+1 < len(labelPairs); i += 2 {
		sb.WriteByte('.')
		sb.WriteString(labelPairs[i])
		sb.WriteByte('.')
		sb.WriteString(labelPairs[i+1])
	}
	s := pathSanitizer.Replace(sb.String())
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return s
}
