package markdown

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/7sedam7/krafna/internal/value"
)

// frontmatterBounds locates a leading YAML block delimited by '---'
// lines. It only triggers when the very first line is the opener.
// endLine is the index of the closing delimiter, -1 if unclosed.
func frontmatterBounds(lines []string) (endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return -1, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i, true
		}
	}
	return -1, true
}

// parseFrontmatter decodes the leading metadata block. It returns the
// metadata map and the body with the block stripped. No frontmatter is
// not an error; a malformed block is.
func parseFrontmatter(content string) (map[string]value.Value, string, error) {
	lines := strings.Split(content, "\n")
	endLine, ok := frontmatterBounds(lines)
	if !ok {
		return map[string]value.Value{}, content, nil
	}
	if endLine == -1 {
		// Unclosed opener; treat the whole file as body.
		return map[string]value.Value{}, content, nil
	}

	raw := strings.Join(lines[1:endLine], "\n")
	body := strings.Join(lines[endLine+1:], "\n")

	var data map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, body, fmt.Errorf("parse frontmatter: %w", err)
	}

	meta := make(map[string]value.Value, len(data))
	for k, v := range data {
		meta[k] = fromYAML(v)
	}
	return meta, body, nil
}

// fromYAML maps decoded YAML values onto the query value model. Date
// strings stay strings; DATE() converts them on demand at query time.
func fromYAML(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(x)
	case int:
		return value.Number(float64(x))
	case int64:
		return value.Number(float64(x))
	case uint64:
		return value.Number(float64(x))
	case float64:
		return value.Number(x)
	case string:
		return value.String(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return value.Date(x)
		}
		return value.Datetime(x)
	case []interface{}:
		items := make([]value.Value, len(x))
		for i, item := range x {
			items[i] = fromYAML(item)
		}
		return value.List(items)
	case map[string]interface{}:
		m := make(map[string]value.Value, len(x))
		for k, item := range x {
			m[k] = fromYAML(item)
		}
		return value.Map(m)
	case map[interface{}]interface{}:
		m := make(map[string]value.Value, len(x))
		for k, item := range x {
			m[fmt.Sprint(k)] = fromYAML(item)
		}
		return value.Map(m)
	}
	return value.String(fmt.Sprint(v))
}
