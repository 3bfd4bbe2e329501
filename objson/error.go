package objson

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrCode identifies one kind of serialization failure.
// The set is closed: every error the package can produce is one of these.
type ErrCode uint8

const (
	ErrOK ErrCode = iota
	ErrCantReadFile
	ErrCantWriteFile
	ErrNoData
	ErrPrematureEOF
	ErrInvalidCharacter
	ErrExpectingComma
	ErrExpectingDelimiter
	ErrExpectingBrace
	ErrExpectingBracket
	ErrExpectingPairOrBrace
	ErrExpectingValueOrBracket
	ErrExpectingString
	ErrUnknownClass
	ErrUnknownSuperclass
	ErrRedefinedClass
	ErrRedefinedSuperclass
	ErrUnknownMember
	ErrRedefinedMember
	ErrAbstractClass
	ErrCantCreateObject
	ErrCantAddToArray
	ErrInvalidValue
	ErrInvalidID
	ErrWrongKeyword
	errCodeCount
)

var errMessages = [errCodeCount]string{
	"OK",
	"can't read file (not found or not readable)",
	"can't write file",
	"no data",
	"premature end of input",
	"invalid character in string:",
	"expecting comma",
	"expecting , or } or ]",
	"expecting {",
	"expecting [",
	"expecting } or name:value pair",
	"expecting ] or value",
	"expecting a quoted name:",
	"unknown class",
	"unknown superclass",
	"class is already declared",
	"already declared as a superclass",
	"unknown member",
	"class member is already defined",
	"can't create instance of abstract class",
	"could not create object",
	"array is too small to add value",
	"invalid value:",
	"ID number expected after @",
	"expecting @id or @class before",
}

// String returns the message associated with the code.
func (c ErrCode) String() string {
	if c >= errCodeCount {
		return "unknown error"
	}
	return errMessages[c]
}

// Error is one serialization error record. Fatal errors abort the
// current Read or Write call; non-fatal ones (unknown members) are
// reported and processing continues.
type Error struct {
	Code   ErrCode
	Fatal  bool
	Where  string // "read" or "write"
	Arg    string // offending argument, if any
	Stream string // source/sink name, if any
	Line   int    // line at or before which the error occurred
}

// Error implements the error interface with a report similar to the
// default handler's output.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("objson: error")
	switch e.Where {
	case "read":
		b.WriteString(" while reading")
	case "write":
		b.WriteString(" while writing")
	default:
		if e.Where != "" {
			b.WriteString(" in ")
			b.WriteString(e.Where)
		}
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at or before line %d", e.Line)
	}
	if e.Stream != "" {
		fmt.Fprintf(&b, " in '%s'", e.Stream)
	}
	b.WriteString(": ")
	b.WriteString(e.Code.String())
	if e.Arg != "" {
		b.WriteByte(' ')
		b.WriteString(e.Arg)
	}
	return b.String()
}

// Handler is a caller-supplied error callback. It is invoked once per
// error record and fully replaces the default report.
type Handler func(*Error)

// report is the default handler used when no Handler is installed.
func (e *Error) report() {
	entry := logrus.WithFields(logrus.Fields{
		"where":  e.Where,
		"line":   e.Line,
		"stream": e.Stream,
	})
	msg := e.Code.String()
	if e.Arg != "" {
		msg += " " + e.Arg
	}
	if e.Fatal {
		entry.Error(msg)
	} else {
		entry.Warn(msg)
	}
}
