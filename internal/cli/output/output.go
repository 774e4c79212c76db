package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
)

func DefaultFormat() string {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return "table"
	}
	return "json"
}

// column maps a header to the key read from each row.
type column struct {
	header string
	key    string
}

// listing describes how one payload key renders as rows.
type listing struct {
	key     string
	idKey   string
	columns []column
}

var listings = []listing{
	{
		key:   "agents",
		idKey: "name",
		columns: []column{
			{"NAME", "name"}, {"STREAK", "gmStreak"}, {"TOTAL", "totalGms"},
			{"LAST_GM", "lastGm"}, {"PREMIUM", "premium"},
		},
	},
	{
		key:   "pulses",
		idKey: "id",
		columns: []column{
			{"AGENT", "agentName"}, {"MESSAGE", "message"}, {"DATE", "date"}, {"TIMESTAMP", "timestamp"},
		},
	},
	{
		key:   "heartbeats",
		idKey: "agentName",
		columns: []column{
			{"AGENT", "agentName"}, {"WORKING_ON", "workingOn.task"}, {"UPDATED", "updatedAt"},
		},
	},
	{
		key:   "entries",
		idKey: "id",
		columns: []column{
			{"ID", "id"}, {"AGENT", "agentName"}, {"WORKING_ON", "workingOn.task"}, {"TIMESTAMP", "timestamp"},
		},
	},
	{
		key:   "skills",
		idKey: "id",
		columns: []column{
			{"ID", "id"}, {"NAME", "name"}, {"INSTALLS", "installs"}, {"URL", "url"},
		},
	},
}

func Print(w io.Writer, payload map[string]any, format string, quiet bool) error {
	if quiet {
		format = "quiet"
	}
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		format = DefaultFormat()
	}

	switch format {
	case "json":
		return printJSON(w, payload)
	case "table":
		return printTable(w, payload)
	case "plain":
		return printPlain(w, payload)
	case "quiet":
		return printQuiet(w, payload)
	default:
		return errors.New("invalid --format value")
	}
}

func findListing(payload map[string]any) (listing, bool) {
	for _, l := range listings {
		if hasKey(payload, l.key) {
			return l, true
		}
	}
	return listing{}, false
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printTable(w io.Writer, payload map[string]any) error {
	l, ok := findListing(payload)
	if !ok {
		return printJSON(w, payload)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	headers := make([]string, len(l.columns))
	for i, c := range l.columns {
		headers[i] = c.header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range toObjectSlice(payload[l.key]) {
		cells := make([]string, len(l.columns))
		for i, c := range l.columns {
			cells[i] = str(lookup(row, c.key))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func printPlain(w io.Writer, payload map[string]any) error {
	l, ok := findListing(payload)
	if !ok {
		if hasKey(payload, "success") {
			return printResult(w, payload)
		}
		return printJSON(w, payload)
	}
	for _, row := range toObjectSlice(payload[l.key]) {
		cells := make([]string, 0, len(l.columns))
		for _, c := range l.columns {
			if v := str(lookup(row, c.key)); v != "" {
				cells = append(cells, v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}
	return nil
}

// printResult renders a gm outcome as a single line.
func printResult(w io.Writer, payload map[string]any) error {
	if ok, _ := payload["success"].(bool); ok {
		_, err := fmt.Fprintf(w, "gm recorded, streak %s\n", str(payload["streak"]))
		return err
	}
	_, err := fmt.Fprintln(w, str(payload["error"]))
	return err
}

func printQuiet(w io.Writer, payload map[string]any) error {
	l, ok := findListing(payload)
	if !ok {
		if id, ok := payload["id"]; ok {
			fmt.Fprintln(w, str(id))
			return nil
		}
		if name, ok := payload["name"]; ok {
			fmt.Fprintln(w, str(name))
			return nil
		}
		return printJSON(w, payload)
	}
	for _, row := range toObjectSlice(payload[l.key]) {
		fmt.Fprintln(w, str(row[l.idKey]))
	}
	return nil
}

// lookup resolves a dotted key such as "workingOn.task".
func lookup(row map[string]any, key string) any {
	var cur any = row
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func hasKey(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func toObjectSlice(v any) []map[string]any {
	in, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(in))
	for _, item := range in {
		if row, ok := item.(map[string]any); ok {
			out = append(out, row)
		}
	}
	return out
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
