package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxChips = 6

// Branch records which stage of the coercion produced the result.
type Branch string

const (
	BranchDirect    Branch = "direct"
	BranchExtracted Branch = "extracted"
	BranchFallback  Branch = "fallback"
)

// Result is always a valid structured reply: non-empty Reply, at most 6 chips.
type Result struct {
	Reply  string
	Chips  []string
	Branch Branch
}

// rawReply tolerates chips of any scalar type; models occasionally emit
// numbers or booleans in the list.
type rawReply struct {
	Reply string `json:"reply"`
	Chips []any  `json:"chips"`
}

// Coerce extracts a structured reply from arbitrary model output. It never
// fails: first the whole string is tried as JSON, then the span from the
// first '{' to the last '}', and finally a fallback is synthesized from the
// policy defaults.
func Coerce(raw string, policy Policy) Result {
	if r, ok := shape(raw); ok {
		r.Branch = BranchDirect
		return r
	}
	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first >= 0 && last > first {
		if r, ok := shape(raw[first : last+1]); ok {
			r.Branch = BranchExtracted
			return r
		}
	}
	return fallback(raw, policy)
}

func shape(s string) (Result, bool) {
	var parsed rawReply
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return Result{}, false
	}
	reply := strings.TrimSpace(parsed.Reply)
	if reply == "" {
		return Result{}, false
	}
	return Result{Reply: reply, Chips: sanitizeAnyChips(parsed.Chips)}, true
}

func fallback(raw string, policy Policy) Result {
	reply := ""
	for _, line := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			reply = s
			break
		}
	}
	if reply == "" {
		reply = policy.FallbackReply
	}
	return Result{
		Reply:  reply,
		Chips:  sanitizeChips(policy.DefaultChips),
		Branch: BranchFallback,
	}
}

// sanitizeChips trims, drops empties, and caps the list at 6 regardless of
// what the upstream produced.
func sanitizeChips(chips []string) []string {
	out := make([]string, 0, len(chips))
	for _, c := range chips {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		out = append(out, c)
		if len(out) == maxChips {
			break
		}
	}
	return out
}

func sanitizeAnyChips(chips []any) []string {
	out := make([]string, 0, len(chips))
	for _, c := range chips {
		var s string
		switch v := c.(type) {
		case string:
			s = v
		case float64, bool:
			s = fmt.Sprint(v)
		default:
			// objects and nested lists are not chips
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == maxChips {
			break
		}
	}
	return out
}
