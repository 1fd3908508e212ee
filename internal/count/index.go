// Package count computes unread message totals from Thunderbird's Mork
// summary files.
package count

import (
	"regexp"
	"strconv"
)

// IndexSuffix is the file extension of Thunderbird's per-folder summary files.
const IndexSuffix = ".msf"

// markerPattern matches the Mork cell holding a folder's unread count. The
// value is hexadecimal.
var markerPattern = regexp.MustCompile(`\(\^A2=([0-9A-Fa-f]+)\)`)

// ParseUnread returns the unread count encoded in the content of one index
// file. Later markers supersede earlier ones, so only the last match counts.
// Content without a marker, or whose last marker does not fit in an int,
// yields 0.
func ParseUnread(content []byte) int {
	matches := markerPattern.FindAllSubmatch(content, -1)
	if len(matches) == 0 {
		return 0
	}
	last := matches[len(matches)-1][1]
	n, err := strconv.ParseInt(string(last), 16, 0)
	if err != nil {
		return 0
	}
	return int(n)
}
