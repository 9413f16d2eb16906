package agents

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// PlanStep is one tool invocation in a plan. Args is the raw JSON argument
// document; Result holds the tool's raw return value once the step has run.
type PlanStep struct {
	Tool   string          `json:"tool"`
	Args   json.RawMessage `json:"args,omitempty"`
	Reason string          `json:"reason,omitempty"`
	Result string          `json:"result,omitempty"`
}

// Plan is an ordered list of steps. Steps run strictly in order, one at a
// time.
type Plan struct {
	Steps []PlanStep `json:"steps"`
}

// placeholderRE matches $PREV.<field> and $STEP_<n>.<field> tokens inside
// step argument values. <n> is the zero-based step index; <field> is a
// dotted path into that step's result document.
var placeholderRE = regexp.MustCompile(`\$(PREV|STEP_(\d+))\.([A-Za-z0-9_][A-Za-z0-9_.]*)`)

// resolveArgs substitutes every placeholder in the step's argument document
// against the results of earlier steps. index is the current step's position
// and done holds the steps executed so far. Any unresolvable placeholder is
// an error; nothing is ever substituted with a default.
func resolveArgs(args json.RawMessage, index int, done []PlanStep) (json.RawMessage, error) {
	if len(args) == 0 || !strings.Contains(string(args), "$") {
		return args, nil
	}

	out := make([]byte, len(args))
	copy(out, args)

	var resolveErr error
	var walk func(prefix string, v gjson.Result)
	walk = func(prefix string, v gjson.Result) {
		if resolveErr != nil {
			return
		}
		if v.IsObject() || v.IsArray() {
			i := 0
			v.ForEach(func(k, child gjson.Result) bool {
				var p string
				if v.IsArray() {
					p = joinPath(prefix, strconv.Itoa(i))
				} else {
					p = joinPath(prefix, k.String())
				}
				i++
				walk(p, child)
				return resolveErr == nil
			})
			return
		}
		if v.Type != gjson.String {
			return
		}
		s := v.String()
		matches := placeholderRE.FindAllStringSubmatch(s, -1)
		if len(matches) == 0 {
			return
		}

		if len(matches) == 1 && matches[0][0] == s {
			// the whole value is one placeholder: splice the raw JSON
			// so non-string results keep their type
			val, err := lookupPlaceholder(matches[0], index, done)
			if err != nil {
				resolveErr = err
				return
			}
			out, err = sjson.SetRawBytes(out, prefix, []byte(val.Raw))
			if err != nil {
				resolveErr = errors.Wrapf(err, "failed to set %q", prefix)
			}
			return
		}

		replaced := s
		for _, m := range matches {
			val, err := lookupPlaceholder(m, index, done)
			if err != nil {
				resolveErr = err
				return
			}
			replaced = strings.ReplaceAll(replaced, m[0], val.String())
		}
		var err error
		out, err = sjson.SetBytes(out, prefix, replaced)
		if err != nil {
			resolveErr = errors.Wrapf(err, "failed to set %q", prefix)
		}
	}

	root := gjson.ParseBytes(args)
	if !root.IsObject() && !root.IsArray() {
		return args, nil
	}
	walk("", root)
	if resolveErr != nil {
		return nil, resolveErr
	}
	return out, nil
}

func lookupPlaceholder(match []string, index int, done []PlanStep) (gjson.Result, error) {
	var n int
	if match[1] == "PREV" {
		n = index - 1
	} else {
		n, _ = strconv.Atoi(match[2])
	}
	field := match[3]

	if n < 0 || n >= index || n >= len(done) {
		return gjson.Result{}, errors.WithMessagef(ErrPlaceholderResolution,
			"%s references step %d, but step %d may only reference earlier steps", match[0], n, index)
	}

	result := done[n].Result
	if !gjson.Valid(result) {
		return gjson.Result{}, errors.WithMessagef(ErrPlaceholderResolution,
			"%s: step %d result is not structured", match[0], n)
	}
	val := gjson.Get(result, field)
	if !val.Exists() {
		return gjson.Result{}, errors.WithMessagef(ErrPlaceholderResolution,
			"%s: step %d result has no field %q", match[0], n, field)
	}
	return val, nil
}

func joinPath(prefix, key string) string {
	key = escapePathKey(key)
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// escapePathKey escapes gjson/sjson path metacharacters in a single object
// key, so keys like "file.name" address one member instead of a nested path.
func escapePathKey(key string) string {
	if !strings.ContainsAny(key, `.|#@*?\:`) {
		return key
	}
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '|', '#', '@', '*', '?', '\\', ':':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
