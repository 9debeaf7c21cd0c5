package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ugc strips scripts, event handlers and unsafe URLs from authored HTML while
// keeping ordinary formatting. bluemonday policies are safe for concurrent use.
var ugc = bluemonday.UGCPolicy()

func sanitize(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
