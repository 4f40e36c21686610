package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelNames(t *testing.T) {
	names := map[Level]string{
		DebugLevel: "DEBUG",
		InfoLevel:  "INFO",
		WarnLevel:  "WARNING",
		ErrorLevel: "ERROR",
		FatalLevel: "FATAL",
		PanicLevel: "PANIC",
		Level(42):  "UNKNOWN",
	}
	for lvl, want := range names {
		assert.Equal(t, want, lvl.String())
	}
}

func TestEntryPoolResetsRecycledEntries(t *testing.T) {
	e := GetEntry()
	require.NotNil(t, e)
	assert.Empty(t, e.Fields)

	e.Message = "boom"
	e.Fields = append(e.Fields, Field{Key: "k", Type: StringType, Str: "v"})
	e.Caller = CallerInfo{File: "/x.go", Line: 3, Defined: true}
	PutEntry(e)

	e = GetEntry()
	assert.Empty(t, e.Message)
	assert.Empty(t, e.Fields)
	assert.False(t, e.Caller.Defined)
	assert.False(t, e.Time.IsZero())

	PutEntry(nil)
}

func TestGetCallerReportsThisFile(t *testing.T) {
	c := GetCaller(1)
	require.True(t, c.Defined)

	assert.Equal(t, "entry_test.go", c.ShortFile)
	assert.Equal(t, "entry_test", c.Module)
	assert.NotZero(t, c.Line)
	assert.Contains(t, c.Function, "TestGetCallerReportsThisFile")
}
