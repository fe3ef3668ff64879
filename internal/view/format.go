package view

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/shelfmark/shelfmark-web/internal/tier"
)

func formatCount(n int64) string {
	return humanize.Comma(n)
}

// formatLimit renders a limit value for display. Keys measuring bytes are shown in IEC units.
func formatLimit(key string, value int64) string {
	switch {
	case value == tier.Unlimited:
		return "Unlimited"
	case value <= 0:
		return "None"
	case isByteLimit(key):
		return humanize.IBytes(uint64(value))
	default:
		return humanize.Comma(value)
	}
}

func isByteLimit(key string) bool {
	return strings.HasSuffix(key, "_bytes") || strings.Contains(key, "_bytes_")
}
