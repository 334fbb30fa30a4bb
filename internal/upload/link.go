package upload

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLinkBase is the public message link host.
const DefaultLinkBase = "https://t.me"

// ShareLink returns the public link to a message in a private channel. The
// channel's "-100" id prefix is not part of the link.
func ShareLink(base string, channel int64, messageID int) string {
	id := strconv.FormatInt(channel, 10)
	id = strings.TrimPrefix(id, "-100")
	id = strings.TrimPrefix(id, "-")
	return fmt.Sprintf("%s/c/%s/%d", strings.TrimRight(base, "/"), id, messageID)
}
