package types

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLabel(t *testing.T) {
	for _, l := range AllLabels() {
		got, ok := ParseLabel(string(l))
		assert.True(t, ok, "label %s should parse", l)
		assert.Equal(t, l, got)
	}
	_, ok := ParseLabel("ssn")
	assert.False(t, ok, "labels are case-sensitive")
}

func TestFileError_Unwrap(t *testing.T) {
	fe := FileError{Path: "a.txt", Reason: SkipUnreadable, Err: os.ErrPermission}
	assert.True(t, errors.Is(fe, os.ErrPermission))
	assert.Contains(t, fe.Error(), "a.txt: unreadable")

	bin := FileError{Path: "b.bin", Reason: SkipBinary}
	assert.Equal(t, "b.bin: binary", bin.Error())
}
