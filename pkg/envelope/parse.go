package envelope

import (
	"encoding/json"
	"strings"
)

// ParseOutput converts raw command output into a structured value for the
// data section of a success envelope. The format is sniffed: a JSON object,
// whitespace-aligned table, key=value lines, or a plain line list.
func ParseOutput(output string) map[string]any {
	trimmed := strings.TrimSpace(output)

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		var data map[string]any
		if err := json.Unmarshal([]byte(trimmed), &data); err == nil {
			return data
		}
		// Not actually JSON; fall through to the line list.
	}

	if strings.Contains(output, "\t") || strings.Contains(output, "  ") {
		return parseTable(output)
	}
	if strings.Contains(output, "\n") && strings.Contains(output, "=") {
		return parseKeyVal(output)
	}

	return map[string]any{"items": splitLines(output)}
}

func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if lines == nil {
		lines = []string{}
	}
	return lines
}

// parseTable splits header and row lines on tabs, runs of spaces, or plain
// whitespace, whichever the first line suggests.
func parseTable(output string) map[string]any {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return map[string]any{"headers": []string{}, "rows": [][]string{}}
	}

	split := func(line string) []string {
		switch {
		case strings.Contains(lines[0], "\t"):
			return strings.Split(line, "\t")
		default:
			return strings.Fields(line)
		}
	}

	headers := split(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		rows = append(rows, split(line))
	}

	return map[string]any{"headers": headers, "rows": rows}
}

func parseKeyVal(output string) map[string]any {
	data := map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return data
}
