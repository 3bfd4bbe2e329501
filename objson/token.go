package objson

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Scanner states for readPair. Token1 is the member name (or the sole
// token outside objects), token2 its value when present on the same
// pair.
const (
	scanBegin = iota
	scanInQuoted1
	scanInUnquoted1
	scanAfterToken1
	scanAfterColon
	scanInQuoted2
	scanInUnquoted2
	scanAfterToken2
	scanAfterCloser
	scanComment
	scanLineComment
)

func isSpaceByte(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isCtrlByte(c byte) bool { return c < 0x20 || c == 0x7f }

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

// peekByte returns the next input byte without consuming it, or 0 at
// end of input.
func (s *Serializer) peekByte() byte {
	b, err := s.in.Peek(1)
	if err != nil || len(b) == 0 {
		return 0
	}
	return b[0]
}

// readPair scans the next "name": value pair (inObj) or the next bare
// element (arrays, top level of a document). Structural characters
// '{' and '[' come back as single-character tokens; closing '}' and
// ']' end the token and are pushed back so the caller sees them as the
// next token. The quoted1/quoted2 fields record whether each token was
// written in quotes.
func (s *Serializer) readPair(inObj bool) (token1, token2 string, found1, found2 bool) {
	var b1, b2 []byte
	part, lastPart := scanBegin, scanBegin
	s.quoted1 = false
	s.quoted2 = false

	for {
		c, err := s.in.ReadByte()
		if err != nil {
			s.eof = true
			if len(b1) > 0 {
				token1 = s.checkValue(string(b1), inObj)
			}
			return
		}

		if c == '\n' {
			s.line++
			// a newline ends a line comment and must still act in the
			// resumed state (token terminator, NoCommas separator)
			if part == scanLineComment {
				part = lastPart
			}
		} else if isCtrlByte(c) && !isSpaceByte(c) {
			s.invalidChar(c)
		} else if s.syntax&Comments != 0 && part != scanInQuoted1 && part != scanInQuoted2 {
			if part != scanComment && c == '/' && s.peekByte() == '/' {
				if part != scanLineComment {
					lastPart = part
					part = scanLineComment
				}
			} else if part != scanLineComment && c == '/' && s.peekByte() == '*' {
				if part != scanComment {
					s.in.ReadByte()
					lastPart = part
					part = scanComment
				}
			}
		}

		switch part {
		case scanBegin:
			if c == '"' {
				found1 = true
				s.quoted1 = true
				part = scanInQuoted1
			} else if c == '{' || c == '[' {
				found1 = true
				token1 = string(c)
				return
			} else if c == '}' || c == ']' {
				found1 = true
				b1 = append(b1, c)
				part = scanAfterCloser
			} else if !isSpaceByte(c) {
				found1 = true
				b1 = append(b1, c)
				part = scanInUnquoted1
			}

		case scanInQuoted1:
			if c == '"' {
				token1 = string(b1)
				part = scanAfterToken1
			} else if c == '\\' {
				b1 = s.readEscape(b1)
			} else if isCtrlByte(c) && (s.syntax&Newlines == 0 || !isSpaceByte(c)) {
				s.invalidChar(c)
			} else {
				b1 = append(b1, c)
			}

		case scanInUnquoted1:
			if c == ',' || (s.syntax&NoCommas != 0 && c == '\n') {
				token1 = s.checkValue(string(b1), inObj)
				return
			} else if c == '}' || c == ']' {
				s.in.UnreadByte()
				token1 = s.checkValue(string(b1), inObj)
				return
			} else if c == ':' && inObj {
				token1 = s.checkValue(string(b1), inObj)
				part = scanAfterColon
			} else if c == '\\' {
				b1 = s.readEscape(b1)
			} else {
				b1 = append(b1, c)
			}

		case scanAfterToken1:
			if c == ',' || (s.syntax&NoCommas != 0 && c == '\n') {
				return
			} else if c == '}' || c == ']' {
				s.in.UnreadByte()
				return
			} else if c == ':' && inObj {
				part = scanAfterColon
			} else if !isSpaceByte(c) {
				s.fail(ErrExpectingComma, "")
			}

		case scanAfterColon:
			if c == '"' {
				found2 = true
				s.quoted2 = true
				if s.peekByte() != '"' {
					part = scanInQuoted2
				} else {
					s.in.ReadByte()
					if s.peekByte() != '"' {
						token2 = ""
						part = scanAfterToken2
					} else {
						s.in.ReadByte()
						part = scanInQuoted2
						s.multiquotes = true
					}
				}
			} else if c == '{' || c == '[' {
				found2 = true
				token2 = string(c)
				return
			} else if !isSpaceByte(c) {
				found2 = true
				b2 = append(b2, c)
				part = scanInUnquoted2
			}

		case scanInQuoted2:
			if c == '"' {
				if !s.multiquotes {
					token2 = string(b2)
					part = scanAfterToken2
				} else if s.peekByte() != '"' {
					b2 = append(b2, '"')
				} else {
					s.in.ReadByte()
					if s.peekByte() != '"' {
						b2 = append(b2, '"', '"')
					} else {
						s.in.ReadByte()
						token2 = string(b2)
						part = scanAfterToken2
						s.multiquotes = false
					}
				}
			} else if s.multiquotes && isSpaceByte(c) {
				b2 = append(b2, c)
			} else if c == '\\' {
				b2 = s.readEscape(b2)
			} else if isCtrlByte(c) && (s.syntax&Newlines == 0 || !isSpaceByte(c)) {
				s.invalidChar(c)
			} else {
				b2 = append(b2, c)
			}

		case scanInUnquoted2:
			if c == ',' || (s.syntax&NoCommas != 0 && c == '\n') {
				token2 = s.checkValue(string(b2), false)
				return
			} else if c == '}' || c == ']' {
				s.in.UnreadByte()
				token2 = s.checkValue(string(b2), false)
				return
			} else if c == '\\' {
				b2 = s.readEscape(b2)
			} else {
				b2 = append(b2, c)
			}

		case scanAfterToken2:
			if c == ',' || (s.syntax&NoCommas != 0 && c == '\n') {
				return
			} else if c == '}' || c == ']' {
				s.in.UnreadByte()
				return
			} else if !isSpaceByte(c) {
				s.fail(ErrExpectingDelimiter, "")
			}

		case scanAfterCloser:
			// a closing brace or bracket is a complete token; it only
			// swallows the separator that follows it, so the next
			// document on a shared stream stays untouched
			if c == ',' || (s.syntax&NoCommas != 0 && c == '\n') {
				token1 = string(b1)
				return
			} else if !isSpaceByte(c) {
				s.in.UnreadByte()
				token1 = string(b1)
				return
			}

		case scanLineComment:
			// consumed until the newline, handled above

		case scanComment:
			if c == '*' && s.peekByte() == '/' {
				s.in.ReadByte()
				part = lastPart
			}
		}
	}
}

func (s *Serializer) invalidChar(c byte) {
	var msg string
	switch c {
	case '\n':
		msg = "newline "
	case '\r':
		msg = "CR "
	case '\t':
		msg = "tab "
	}
	s.fail(ErrInvalidCharacter, msg+"(code: "+strconv.Itoa(int(c))+")")
}

// readEscape consumes the character after a backslash and appends the
// unescaped result, decoding \uXXXX sequences including surrogate
// pairs.
func (s *Serializer) readEscape(buf []byte) []byte {
	c, err := s.in.ReadByte()
	if err != nil {
		s.eof = true
		return buf
	}
	switch c {
	case '"':
		return append(buf, '"')
	case '\\':
		return append(buf, '\\')
	case '/':
		return append(buf, '/')
	case 'b':
		return append(buf, '\b')
	case 'f':
		return append(buf, '\f')
	case 'n':
		return append(buf, '\n')
	case 'r':
		return append(buf, '\r')
	case 't':
		return append(buf, '\t')
	case 'u':
		r := s.readHexRune()
		if utf16.IsSurrogate(r) {
			c1, _ := s.in.ReadByte()
			c2, _ := s.in.ReadByte()
			if c1 != '\\' || c2 != 'u' {
				s.fail(ErrInvalidCharacter, "incomplete surrogate pair")
			}
			r = utf16.DecodeRune(r, s.readHexRune())
		}
		return utf8.AppendRune(buf, r)
	default:
		return append(buf, c)
	}
}

func (s *Serializer) readHexRune() rune {
	var h [4]byte
	for i := range h {
		c, err := s.in.ReadByte()
		if err != nil {
			s.eof = true
			s.fail(ErrInvalidCharacter, "truncated \\u escape")
		}
		h[i] = c
	}
	n, err := strconv.ParseUint(string(h[:]), 16, 32)
	if err != nil {
		s.fail(ErrInvalidCharacter, "bad \\u escape: "+string(h[:]))
	}
	return rune(n)
}

// checkValue trims trailing whitespace from an unquoted token and
// verifies it is acceptable: as a member name it is only legal with
// NoQuotes, as a value it must be a keyword, a number or a structural
// character unless NoQuotes is set.
func (s *Serializer) checkValue(token string, objName bool) string {
	token = strings.TrimRight(token, " \t\n\v\f\r")
	if objName {
		if s.syntax&NoQuotes != 0 || (len(token) > 0 && (token[0] == '}' || token[0] == ']')) {
			return token
		}
		s.fail(ErrExpectingString, token)
	} else if s.syntax&NoQuotes != 0 || token == "" ||
		token[0] == '}' || token[0] == ']' ||
		token == "true" || token == "false" || token == "null" ||
		isNumberToken(token) {
		return token
	}
	s.fail(ErrInvalidValue, token+" (should be quoted?)")
	return token
}

func isNumberToken(token string) bool {
	if token == "" {
		return false
	}
	dotFound, expFound := false, false
	i := 0
	if token[0] == '-' {
		i++
	}
	if i == len(token) {
		return false
	}
	for ; i < len(token); i++ {
		c := token[i]
		if isDigitByte(c) {
			continue
		}
		switch {
		case c == '.':
			if dotFound {
				return false
			}
			dotFound = true
		case c == 'e' || c == 'E':
			if expFound {
				return false
			}
			expFound = true
			if i+1 < len(token) && (token[i+1] == '+' || token[i+1] == '-') {
				i++
			}
		default:
			return false
		}
	}
	return true
}
