package objson

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrCode_String(t *testing.T) {
	tests := []struct {
		code ErrCode
		want string
	}{
		{ErrOK, "OK"},
		{ErrNoData, "no data"},
		{ErrUnknownClass, "unknown class"},
		{ErrInvalidID, "ID number expected after @"},
	}
	for _, tt := range tests {
		got := tt.code.String()
		if got != tt.want {
			t.Errorf("ErrCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
	// every code has a message
	for c := ErrOK; c < errCodeCount; c++ {
		if c.String() == "" {
			t.Errorf("ErrCode(%d) has no message", c)
		}
	}
}

func TestError_Format(t *testing.T) {
	e := &Error{
		Code:   ErrInvalidValue,
		Fatal:  true,
		Where:  "read",
		Arg:    "oops",
		Stream: "data.json",
		Line:   12,
	}
	msg := e.Error()
	assert.Contains(t, msg, "error while reading")
	assert.Contains(t, msg, "line 12")
	assert.Contains(t, msg, "data.json")
	assert.Contains(t, msg, "oops")

	// without a stream name or line the location part is omitted
	e2 := &Error{Code: ErrInvalidValue, Fatal: true, Where: "write"}
	assert.NotContains(t, e2.Error(), "line")
}

func TestHandler_ReceivesFatalAndWarnings(t *testing.T) {
	c := &collector{}
	s := NewWithHandler(pointRegistry(), c.handle)

	var p Point
	// one warning (unknown member), then success
	err := s.Read(&p, strings.NewReader(`{"zz": 1, "x": 2, "y": 3}`))
	assert.NoError(t, err)
	// one fatal error
	err = s.Read(&p, strings.NewReader(`{"x": bad}`))
	assert.Error(t, err)

	if assert.Len(t, c.errs, 2) {
		assert.False(t, c.errs[0].Fatal)
		assert.Equal(t, ErrUnknownMember, c.errs[0].Code)
		assert.True(t, c.errs[1].Fatal)
	}
}

func TestLastError_ResetPerCall(t *testing.T) {
	c := &collector{}
	s := NewWithHandler(pointRegistry(), c.handle)

	var p Point
	assert.NoError(t, s.Read(&p, strings.NewReader(`{"zz": 1, "x": 2, "y": 3}`)))
	assert.NotNil(t, s.LastError())

	assert.NoError(t, s.Read(&p, strings.NewReader(`{"x": 2, "y": 3}`)))
	assert.Nil(t, s.LastError())
}
