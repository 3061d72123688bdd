package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/snstore/snstore/layout"
)

// Textual forms follow the C locale conventions the segment's other
// consumers expect: doubles print with six decimals unless the schema
// declares a precision, integers print as zero-padded hex, booleans print
// "True"/"False".

func formatFloat(v float64, precision int) string {
	if precision < 0 {
		precision = 6
	}

	return strconv.FormatFloat(v, 'f', precision, 64)
}

// formatInt renders the field's stored bits as hex, padded to the digit
// count conventional for its width. A declared precision overrides the
// padding.
func formatInt(v int64, size, precision int) string {
	digits := precision
	if digits < 0 {
		switch size {
		case 8:
			digits = 12
		case 2:
			digits = 4
		case 1:
			digits = 2
		default:
			digits = 8
		}
	}

	var bits uint64
	switch size {
	case 8:
		bits = uint64(v)
	case 2:
		bits = uint64(uint16(v))
	case 1:
		bits = uint64(uint8(v))
	default:
		bits = uint64(uint32(v))
	}

	return fmt.Sprintf("0x%.*X", digits, bits)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}

	return "False"
}

// parseInt follows strtoll base-0 rules: "42", "0x2A" and "052" all
// resolve. Unparseable input yields zero, like strtoll on garbage.
func parseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0
	}

	return n
}

// parseFloat follows strtod: garbage yields zero.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}

	return f
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// roundToInt rounds half away from zero, matching C round().
func roundToInt(f float64) int64 {
	return int64(math.Round(f))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}

	return 0
}

func precisionOf(n *layout.Node) int {
	if n.Schema == nil {
		return -1
	}

	return n.Schema.Precision
}
