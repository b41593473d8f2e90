package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

type sampleTable struct {
	values []string
}

func (s sampleTable) Header() []string { return []string{"index", "value"} }

func (s sampleTable) Rows() [][]string {
	rows := make([][]string, len(s.values))
	for i, v := range s.values {
		rows[i] = []string{string(rune('0' + i)), v}
	}
	return rows
}

func (s sampleTable) WriteText(w io.Writer) error {
	_, err := io.WriteString(w, strings.Join(s.values, " ")+"\n")
	return err
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{in: "", want: FormatText},
		{in: "text", want: FormatText},
		{in: "JSON", want: FormatJSON},
		{in: "csv", want: FormatCSV},
		{in: "junit", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if err != nil {
				if ExitCode(err) != ExitUsage {
					t.Errorf("ExitCode = %d, want usage", ExitCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want string
	}{
		{name: "stringer fallback", data: 2.5, want: "2.5\n"},
		{name: "text writer", data: sampleTable{values: []string{"a", "b"}}, want: "a b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&TextFormatter{}).FormatTo(&buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("FormatTo() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	data := map[string]float64{"value": 1.5}
	for _, indent := range []bool{false, true} {
		var buf bytes.Buffer
		if err := (&JSONFormatter{Indent: indent}).FormatTo(&buf, data); err != nil {
			t.Fatalf("FormatTo() error = %v", err)
		}
		var got map[string]float64
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
		}
		if got["value"] != 1.5 {
			t.Errorf("value = %v", got["value"])
		}
		if indent != strings.Contains(buf.String(), "\n  ") {
			t.Errorf("indent=%v output %q", indent, buf.String())
		}
	}
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVFormatter{}).FormatTo(&buf, sampleTable{values: []string{"0.1", "0.2"}}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "index,value\n0,0.1\n1,0.2\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}

	if err := (&CSVFormatter{}).FormatTo(&buf, 42); err == nil {
		t.Error("expected error for non-tabular data")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"other", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got := NewFormatter(tt.format)
			if name := typeName(got); name != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, name, tt.want)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	}
	return "unknown"
}
