package contract

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSample = errors.New("pool: sample failure")

func Test_Checker_ReturnMode(t *testing.T) {
	var out bytes.Buffer
	c := Checker{Logger: slog.New(slog.NewTextHandler(&out, nil))}

	err := c.Fail("pool.Deallocate", errSample, "offset %d", 12)
	require.Error(t, err)
	require.ErrorIs(t, err, errSample)

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Equal(t, Error, v.Severity)
	assert.Equal(t, "pool.Deallocate", v.Op)
	assert.Equal(t, "offset 12", v.Msg)
	assert.Contains(t, v.File, "contract_test.go")
	assert.Positive(t, v.Line)
	assert.Contains(t, err.Error(), "pool.Deallocate: offset 12: pool: sample failure (contract_test.go:")
	assert.Contains(t, out.String(), "contract violation")
}

func Test_Checker_PanicMode(t *testing.T) {
	c := Checker{Mode: ModePanic}
	defer func() {
		r := recover()
		require.NotNil(t, r)
		v, ok := r.(*Violation)
		require.True(t, ok, "panic value should be *Violation, got %T", r)
		require.ErrorIs(t, v, errSample)
	}()
	_ = c.Fail("array.New", errSample, "count=%d", 0)
	t.Fatal("Fail did not panic")
}

func Test_Checker_Require(t *testing.T) {
	var c Checker
	require.NoError(t, c.Require(true, "op", errSample, "never"))
	err := c.Require(false, "op", errSample, "always")
	require.ErrorIs(t, err, errSample)

	var v *Violation
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.File, "contract_test.go", "location is the Require caller")
}

func Test_Checker_WarnAndDeprecated(t *testing.T) {
	var out bytes.Buffer
	c := Checker{Logger: slog.New(slog.NewTextHandler(&out, nil))}

	c.Warn("array.Swap", "same index %d", 3)
	c.Deprecated("array.GetRange", "array.Range")

	s := out.String()
	assert.Contains(t, s, "same index 3")
	assert.Contains(t, s, "severity=warning")
	assert.Contains(t, s, "use=array.Range")
	assert.Contains(t, s, "severity=deprecation")
}

func Test_Violation_FormatStack(t *testing.T) {
	err := Checker{}.Fail("pool.CopyTo", errSample, "")
	plus := fmt.Sprintf("%+v", err)
	assert.Contains(t, plus, "pool.CopyTo: pool: sample failure")
	assert.Contains(t, plus, "Test_Violation_FormatStack")
	assert.Equal(t, err.Error(), fmt.Sprintf("%v", err))
}

func Test_ParseMode(t *testing.T) {
	m, err := ParseMode("PANIC")
	require.NoError(t, err)
	assert.Equal(t, ModePanic, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeReturn, m)

	_, err = ParseMode("explode")
	require.Error(t, err)
}

func Test_ModeFromEnv(t *testing.T) {
	t.Setenv(EnvMode, "panic")
	assert.Equal(t, ModePanic, ModeFromEnv())

	t.Setenv(EnvMode, "nonsense")
	assert.Equal(t, ModeReturn, ModeFromEnv())
}

func Test_Severity_String(t *testing.T) {
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "severity(9)", Severity(9).String())
}
