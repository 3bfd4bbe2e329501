package objson

import (
	"reflect"
)

// ============================================================
// Container adapters
// ============================================================

// arrayAdapter lets the engine fill sequence targets without knowing
// their concrete kind: add interprets one element token, end runs once
// the closing bracket has been consumed.
type arrayAdapter interface {
	add(s *Serializer, cr creatorFn, tok string)
	end(s *Serializer)
}

// readArray reads a bracketed sequence into a slice or fixed array
// slot through the matching adapter.
func (s *Serializer) readArray(v reflect.Value, tok string, cr creatorFn) {
	if tok != "[" {
		s.fail(ErrExpectingBracket, tok)
	}
	var a arrayAdapter
	switch v.Kind() {
	case reflect.Slice:
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
		a = &sliceAdapter{target: v}
	case reflect.Array:
		a = &fixedArrayAdapter{target: v}
	default:
		s.fail(ErrExpectingBracket, "cannot read an array into "+v.Type().String())
	}
	for !s.eof {
		t, _, found1, _ := s.readPair(false)
		if !found1 {
			s.fail(ErrExpectingValueOrBracket, "")
		}
		if t == "]" {
			a.end(s)
			return
		}
		a.add(s, cr, t)
	}
	s.fail(ErrExpectingValueOrBracket, "")
}

type sliceFixup struct {
	index int
	slot  *sharedSlot
}

// sliceAdapter appends to a growable slice. Elements stored inline in
// the backing array may carry an "@id"; their identity slots are kept
// as indices and rewritten whenever growth relocates the backing, so
// back-references resolved later in the same document stay valid.
type sliceAdapter struct {
	target reflect.Value
	fixups []sliceFixup
}

func (a *sliceAdapter) add(s *Serializer, cr creatorFn, tok string) {
	et := a.target.Type().Elem()
	elem := reflect.New(et).Elem()
	var sl *sharedSlot
	s.lastQuoted = s.quoted1
	s.readValueCr(elem, tok, cr, &sl)
	a.target.Set(reflect.Append(a.target, elem))
	if et.Kind() == reflect.Struct && sl != nil &&
		sl.raw.Pointer() == elem.Addr().Pointer() {
		a.fixups = append(a.fixups, sliceFixup{a.target.Len() - 1, sl})
	}
	for _, f := range a.fixups {
		f.slot.raw = a.target.Index(f.index).Addr()
	}
}

func (a *sliceAdapter) end(*Serializer) {
	for _, f := range a.fixups {
		f.slot.raw = a.target.Index(f.index).Addr()
	}
}

// fixedArrayAdapter fills a fixed-size array in place and fails once
// it is full. Its storage never moves, so no fixups are needed.
type fixedArrayAdapter struct {
	target reflect.Value
	next   int
}

func (a *fixedArrayAdapter) add(s *Serializer, cr creatorFn, tok string) {
	if a.next >= a.target.Len() {
		s.fail(ErrCantAddToArray, a.target.Type().String())
	}
	s.lastQuoted = s.quoted1
	s.readValueCr(a.target.Index(a.next), tok, cr, nil)
	a.next++
}

func (a *fixedArrayAdapter) end(*Serializer) {}

// readMapInto is the map-like adapter: each name/value pair becomes a
// key/value insertion, with no bracket structure beyond the object
// braces. Map keys must be strings. Maps do not take part in object
// identity; "@class" and "@id" keys are skipped.
func (s *Serializer) readMapInto(v reflect.Value, tok string) {
	if tok != "{" {
		s.fail(ErrExpectingBrace, tok)
	}
	if v.Type().Key().Kind() != reflect.String {
		s.fail(ErrInvalidValue, "map keys must be strings: "+v.Type().String())
	}
	if v.IsNil() {
		v.Set(reflect.MakeMap(v.Type()))
	}
	for !s.eof {
		name, value, found1, found2 := s.readPair(true)
		if !found1 {
			s.fail(ErrExpectingPairOrBrace, "")
		}
		if name == "}" {
			return
		}
		if !found2 {
			s.fail(ErrExpectingPairOrBrace, name)
		}
		if name == "@class" || name == "@id" {
			continue
		}
		elem := reflect.New(v.Type().Elem()).Elem()
		s.lastQuoted = s.quoted2
		s.readValueCr(elem, value, nil, nil)
		key := reflect.New(v.Type().Key()).Elem()
		key.SetString(name)
		v.SetMapIndex(key, elem)
	}
	s.fail(ErrPrematureEOF, "")
}
