// Package cfgerr implements the position-tagged error taxonomy described in
// spec.md §7: configuration errors name a file and line, decode errors
// abort one stream read, and range/logic errors are fatal bugs. The
// file:line convention is the same one the teacher's lexer package uses via
// github.com/alecthomas/participle/lexer.Errorf(position, format, args...);
// that package is kept as a dependency here purely for its lexer.Position
// type and Errorf helper (the settings file is line-oriented, not
// grammar-driven, so participle's parser-combinator half goes unused; only
// its lexer subpackage is imported, see DESIGN.md).
package cfgerr

import (
	"fmt"

	"github.com/alecthomas/participle/lexer"
)

// ConfigError reports a malformed settings file line or include failure.
type ConfigError struct {
	Pos lexer.Position
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigf builds a ConfigError at file:line with a formatted message.
func NewConfigf(file string, line int, format string, args ...interface{}) error {
	return &ConfigError{
		Pos: lexer.Position{Filename: file, Line: line, Column: 1},
		Err: fmt.Errorf(format, args...),
	}
}

// DecodeError reports an invalid byte sequence under the declared input
// encoding; it aborts the affected read only, not the whole process.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error (encoding %s): %s", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// RangeError indicates an internal invariant violation such as a quote
// resolution with beginIndex > endIndex. It is always a bug, never a
// recoverable condition.
type RangeError struct {
	Msg string
}

func (e *RangeError) Error() string { return "range error: " + e.Msg }

// LogicError indicates an unreachable state or duplicated processor
// context; always a bug.
type LogicError struct {
	Msg string
}

func (e *LogicError) Error() string { return "logic error: " + e.Msg }
