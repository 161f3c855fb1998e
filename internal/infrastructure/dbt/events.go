package dbt

import (
	"encoding/json"
	"sort"
	"strings"
)

const nodeFinishedEvent = "NodeFinished"

// Event is one line of `dbt --log-format json` output. Lines that are not
// JSON come through with only Msg set.
type Event struct {
	Name       string
	Level      string
	Msg        string
	NodeId     string
	NodeStatus string
}

type rawEvent struct {
	Info struct {
		Name  string `json:"name"`
		Level string `json:"level"`
		Msg   string `json:"msg"`
	} `json:"info"`
	Data struct {
		NodeInfo struct {
			UniqueId   string `json:"unique_id"`
			NodeStatus string `json:"node_status"`
		} `json:"node_info"`
	} `json:"data"`
}

func ParseEvent(line string) Event {
	line = strings.TrimSpace(line)
	var raw rawEvent
	if !strings.HasPrefix(line, "{") || json.Unmarshal([]byte(line), &raw) != nil {
		return Event{Level: "info", Msg: line}
	}
	return Event{
		Name:       raw.Info.Name,
		Level:      raw.Info.Level,
		Msg:        raw.Info.Msg,
		NodeId:     raw.Data.NodeInfo.UniqueId,
		NodeStatus: raw.Data.NodeInfo.NodeStatus,
	}
}

// Summary aggregates node results of one build.
type Summary struct {
	Statuses map[string]int `json:"statuses"`
	Failed   []string       `json:"failed,omitempty"`
}

func NewSummary() *Summary {
	return &Summary{Statuses: map[string]int{}}
}

func (s *Summary) Add(ev Event) {
	if ev.Name != nodeFinishedEvent || ev.NodeStatus == "" {
		return
	}
	s.Statuses[ev.NodeStatus]++
	switch ev.NodeStatus {
	case "error", "fail", "runtime error":
		s.Failed = append(s.Failed, ev.NodeId)
		sort.Strings(s.Failed)
	}
}

func (s *Summary) Total() int {
	total := 0
	for _, n := range s.Statuses {
		total += n
	}
	return total
}
