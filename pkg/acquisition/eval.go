package acquisition

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

// Vars maps identifier names to their current live values. Callers supply it
// explicitly instead of the evaluator reflecting over a host runtime.
type Vars map[string]any

// Evaluator annotates config text whose written literals have drifted from
// the live values of the variables they name.
type Evaluator struct {
	parser LineParser
	logger zerolog.Logger
}

// NewEvaluator creates an evaluator. A nil parser falls back to ParseLine.
func NewEvaluator(parser LineParser, logger zerolog.Logger) *Evaluator {
	if parser == nil {
		parser = ParseLine
	}
	return &Evaluator{
		parser: parser,
		logger: logger.With().Str("component", "config-eval").Logger(),
	}
}

// EvalFile returns body with drift annotations appended to affected lines.
// A line gains `  # value: <live>` for every textual literal whose live value
// is a differing string or a numeric (bool excluded). Repeated matches on one
// line accumulate annotations; nothing is deduplicated.
func (e *Evaluator) EvalFile(body string, vars Vars) string {
	lines := strings.Split(body, "\n")
	annotated := 0

	for i, line := range lines {
		out := line
		for _, a := range e.parser(line) {
			if _, textual := a.Value.(string); !textual {
				continue
			}
			live, ok := vars[a.Name]
			if !ok {
				live = ""
			}
			if liveStr, isStr := live.(string); isStr {
				if liveStr != a.Value.(string) {
					out += fmt.Sprintf("  # value: %v", liveStr)
					annotated++
				}
				continue
			}
			if isNumeric(live) {
				out += fmt.Sprintf("  # value: %v", live)
				annotated++
			}
		}
		lines[i] = out
	}

	if annotated > 0 {
		e.logger.Debug().Int("annotations", annotated).Msg("Config drift detected")
	}
	return strings.Join(lines, "\n")
}

// EvalFiles annotates each named config with its module's live variables and
// returns a new set; configs not named in modules are carried over unchanged.
// A module referencing an unknown config name fails the whole call.
func (e *Evaluator) EvalFiles(configs ConfigSet, modules map[string]Vars) (ConfigSet, error) {
	out := make(ConfigSet, len(configs))
	for name, body := range configs {
		out[name] = body
	}
	for name, vars := range modules {
		body, ok := out[name]
		if !ok {
			return nil, fmt.Errorf("config file %q not found in set", name)
		}
		out[name] = e.EvalFile(body, vars)
	}
	return out, nil
}

// EvalConfigFile annotates body using the default parser.
func EvalConfigFile(body string, vars Vars) string {
	return NewEvaluator(nil, zerolog.Nop()).EvalFile(body, vars)
}

// EvalConfigFiles annotates configs using the default parser.
func EvalConfigFiles(configs ConfigSet, modules map[string]Vars) (ConfigSet, error) {
	return NewEvaluator(nil, zerolog.Nop()).EvalFiles(configs, modules)
}

// isNumeric reports whether v is an integer, float or complex value. Booleans
// and nil are not numeric.
func isNumeric(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}
