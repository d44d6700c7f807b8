// Package contract reports precondition violations for pools and arrays.
//
// A violated precondition is a caller bug, not a runtime condition. The
// Checker decides what happens next: in ModeReturn the violation comes back as
// an error (so tests can observe it), in ModePanic it panics at the call site.
// Warnings and deprecation notices are logged and execution continues.
package contract

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// EnvMode names the environment variable read by ModeFromEnv.
const EnvMode = "POOLKIT_CONTRACT"

// Severity classifies a contract report.
type Severity uint8

const (
	Deprecation Severity = iota + 1
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Deprecation:
		return "deprecation"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return fmt.Sprintf("severity(%d)", uint8(s))
}

// Mode selects how Error-severity violations surface.
type Mode uint8

const (
	// ModeReturn returns the *Violation to the caller.
	ModeReturn Mode = iota
	// ModePanic panics with the *Violation.
	ModePanic
)

func (m Mode) String() string {
	if m == ModePanic {
		return "panic"
	}
	return "error"
}

// ParseMode maps "panic" and "error" (or "return") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "panic", "halt":
		return ModePanic, nil
	case "error", "return", "":
		return ModeReturn, nil
	}
	return ModeReturn, fmt.Errorf("contract: unknown mode %q", s)
}

// ModeFromEnv reads POOLKIT_CONTRACT. Unset or unparsable values yield ModeReturn.
func ModeFromEnv() Mode {
	m, err := ParseMode(os.Getenv(EnvMode))
	if err != nil {
		return ModeReturn
	}
	return m
}

// Violation describes a failed precondition.
type Violation struct {
	Severity Severity
	Op       string // operation, e.g. "pool.Deallocate"
	Msg      string
	File     string
	Line     int

	cause error // sentinel wrapped with a stack trace
}

func (v *Violation) Error() string {
	var sb strings.Builder
	sb.WriteString(v.Op)
	sb.WriteString(": ")
	if v.Msg != "" {
		sb.WriteString(v.Msg)
		sb.WriteString(": ")
	}
	sb.WriteString(errors.Cause(v.cause).Error())
	if v.File != "" {
		fmt.Fprintf(&sb, " (%s:%d)", filepath.Base(v.File), v.Line)
	}
	return sb.String()
}

// Unwrap exposes the sentinel so errors.Is works on violations.
func (v *Violation) Unwrap() error { return v.cause }

// Format prints the captured stack trace under %+v.
func (v *Violation) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s\n%s", v.Error(), strings.TrimSpace(fmt.Sprintf("%+v", v.cause)))
			return
		}
		fallthrough
	case 's':
		_, _ = s.Write([]byte(v.Error()))
	case 'q':
		fmt.Fprintf(s, "%q", v.Error())
	}
}

// Checker applies a Mode and logs every report.
// The zero value returns violations and discards logs.
type Checker struct {
	Mode   Mode
	Logger *slog.Logger
}

// Fail reports an Error-severity violation of op with cause err.
// It returns the violation in ModeReturn and panics with it in ModePanic.
func (c Checker) Fail(op string, err error, format string, args ...any) error {
	return c.fail(op, err, format, args...)
}

// Require calls Fail when ok is false.
func (c Checker) Require(ok bool, op string, err error, format string, args ...any) error {
	if ok {
		return nil
	}
	return c.fail(op, err, format, args...)
}

// fail must be called directly from Fail or Require so the recorded
// location is their caller.
func (c Checker) fail(op string, err error, format string, args ...any) error {
	v := &Violation{
		Severity: Error,
		Op:       op,
		Msg:      fmt.Sprintf(format, args...),
		cause:    errors.WithStack(err),
	}
	if _, file, line, ok := runtime.Caller(2); ok {
		v.File, v.Line = file, line
	}
	c.logger().Error("contract violation", "op", op, "err", err, "msg", v.Msg, "at", fmt.Sprintf("%s:%d", filepath.Base(v.File), v.Line))
	if c.Mode == ModePanic {
		panic(v)
	}
	return v
}

// Warn logs a soft precondition that the operation tolerates.
func (c Checker) Warn(op, format string, args ...any) {
	c.logger().Warn(fmt.Sprintf(format, args...), "op", op, "severity", Warning)
}

// Deprecated logs that op is deprecated in favour of replacement.
func (c Checker) Deprecated(op, replacement string) {
	c.logger().Info("deprecated call", "op", op, "use", replacement, "severity", Deprecation)
}

func (c Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
