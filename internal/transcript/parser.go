package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// File is the on-disk transcript document. Topic and Difficulty are optional.
type File struct {
	Topic      string    `json:"topic,omitempty"`
	Difficulty string    `json:"difficulty,omitempty"`
	Turns      []RawTurn `json:"turns"`
}

// ParseFile reads a transcript from a JSON document ({"turns": [...]} or a
// bare array) or from JSONL with one turn per line.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// Parse decodes transcript bytes in any of the formats ParseFile accepts.
func Parse(data []byte) (*File, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return &File{}, nil
	}

	switch trimmed[0] {
	case '[':
		var turns []RawTurn
		if err := json.Unmarshal(trimmed, &turns); err != nil {
			return nil, fmt.Errorf("parse turn array: %w", err)
		}
		return &File{Turns: turns}, nil
	case '{':
		// A single JSON object is either a document or the first line of JSONL.
		var f File
		if err := json.Unmarshal(trimmed, &f); err == nil && f.Turns != nil {
			return &f, nil
		}
		return parseJSONL(trimmed)
	default:
		return nil, fmt.Errorf("unrecognized transcript format")
	}
}

func parseJSONL(data []byte) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var t RawTurn
		if err := json.Unmarshal(line, &t); err != nil {
			continue // skip malformed lines
		}
		f.Turns = append(f.Turns, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return f, nil
}

// Format renders turns as a Counselor:/Client: transcript for LLM prompts.
// Each line is prefixed with the turn index so labels can refer back to it.
func Format(turns []Turn) string {
	var sb strings.Builder
	for _, t := range turns {
		fmt.Fprintf(&sb, "[%d] ", t.Index)
		switch t.Speaker {
		case RoleCounselor:
			sb.WriteString("Counselor: ")
		case RoleClient:
			sb.WriteString("Client: ")
		default:
			sb.WriteString(string(t.Speaker) + ": ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
