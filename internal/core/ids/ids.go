package ids

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// RunId identifies one pipeline run. Hatchet assigns its own UUIDs; local
// runs get a lowercase ULID so they sort by start time.
type RunId string

func NewRunId() RunId {
	return RunId(strings.ToLower(ulid.Make().String()))
}

func ParseRunId(s string) RunId {
	return RunId(strings.ToLower(strings.TrimSpace(s)))
}

func (id RunId) String() string {
	return string(id)
}

// AlertKey is the dedupe key for one failure alert.
func AlertKey(jobName string, runId RunId) string {
	return fmt.Sprintf("alert:%s:%s", jobName, runId)
}
