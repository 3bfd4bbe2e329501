package objson

import (
	"reflect"
	"strconv"
)

// readValueCr reads a token into slot v, dispatching on its kind. tok
// is the first token of the value: a scalar text, "{", "[", "null" or
// a "@<id>" back-reference; containers and objects consume the rest of
// their text from the input. cr overrides the class constructor for
// pointees, slot (optional) receives the identity entry touched by an
// object read.
func (s *Serializer) readValueCr(v reflect.Value, tok string, cr creatorFn, slot **sharedSlot) {
	switch v.Kind() {
	case reflect.String:
		v.SetString(tok)

	case reflect.Bool:
		switch tok {
		case "true":
			v.SetBool(true)
		case "false":
			v.SetBool(false)
		default:
			s.fail(ErrInvalidValue, tok+" should be a boolean")
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			s.fail(ErrInvalidValue, tok)
		}
		v.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			s.fail(ErrInvalidValue, tok)
		}
		v.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			s.fail(ErrInvalidValue, tok)
		}
		v.SetFloat(f)

	case reflect.Pointer:
		v.Set(reflect.Zero(v.Type()))
		if tok == "null" {
			return
		}
		s.readPointee(v, tok, cr, slot)

	case reflect.Interface:
		if v.Type().NumMethod() == 0 {
			x := s.decodeAny(tok, s.lastQuoted)
			if x == nil {
				v.Set(reflect.Zero(v.Type()))
			} else {
				v.Set(reflect.ValueOf(x))
			}
			return
		}
		v.Set(reflect.Zero(v.Type()))
		if tok == "null" {
			return
		}
		obj := s.readObject(nil, nil, cr, reflect.Value{}, tok, slot)
		if !obj.Type().AssignableTo(v.Type()) {
			s.fail(ErrInvalidValue, "class "+obj.Type().Elem().String()+
				" does not implement "+v.Type().String())
		}
		v.Set(obj)

	case reflect.Struct:
		if len(tok) > 0 && tok[0] == '@' {
			// back-reference into a value slot: copy the pointee
			sl := s.resolveRef(tok)
			if sl.raw.Type().Elem() != v.Type() {
				s.fail(ErrInvalidValue, tok+" refers to a "+sl.raw.Type().Elem().String())
			}
			if slot != nil {
				*slot = sl
			}
			v.Set(sl.raw.Elem())
			return
		}
		wanted := s.classes.classOf(v.Type())
		if wanted == nil {
			s.fail(ErrUnknownClass, v.Type().String())
		}
		s.readObject(wanted, wanted, cr, v, tok, slot)

	case reflect.Map:
		s.readMapInto(v, tok)

	case reflect.Slice, reflect.Array:
		s.readArray(v, tok, cr)

	default:
		s.fail(ErrInvalidValue, "cannot read into "+v.Type().String())
	}
}

// readPointee allocates or resolves the pointee of pointer slot v.
func (s *Serializer) readPointee(v reflect.Value, tok string, cr creatorFn, slot **sharedSlot) {
	et := v.Type().Elem()
	if et.Kind() == reflect.Struct {
		pc := s.classes.classOf(et)
		if pc == nil {
			s.fail(ErrUnknownClass, et.String())
		}
		obj := s.readObject(nil, pc, cr, reflect.Value{}, tok, slot)
		if !obj.Type().AssignableTo(v.Type()) {
			s.fail(ErrInvalidValue, "class "+obj.Type().Elem().String()+
				" cannot be stored in "+v.Type().String())
		}
		v.Set(obj)
		return
	}
	p := reflect.New(et)
	s.readValueCr(p.Elem(), tok, nil, nil)
	v.Set(p)
}

// resolveRef looks up a "@<id>" back-reference; the id must have been
// declared earlier in the document.
func (s *Serializer) resolveRef(tok string) *sharedSlot {
	id, err := strconv.ParseUint(tok[1:], 10, 64)
	if err != nil {
		s.fail(ErrInvalidID, tok)
	}
	sl := s.idToObj[id]
	if sl == nil || !sl.init {
		s.fail(ErrInvalidID, tok)
	}
	return sl
}

// readObject reads one object. objclass is the class of the target
// slot when it is known (value slots), nil when the class comes from
// "@class" or from the pointer's class. target, when valid, is the
// existing struct to fill; otherwise the object is created from cr,
// failing that from the class constructor. The returned value is the
// object's pointer.
func (s *Serializer) readObject(objclass, pointerclass *Class, cr creatorFn,
	target reflect.Value, tok string, slot **sharedSlot) reflect.Value {

	if tok == "" {
		s.fail(ErrExpectingBrace, "")
	} else if tok[0] == '@' {
		sl := s.resolveRef(tok)
		if slot != nil {
			*slot = sl
		}
		return sl.raw
	} else if tok != "{" {
		s.fail(ErrExpectingBrace, tok)
	}

	var obj reflect.Value // *T
	if target.IsValid() {
		obj = target.Addr()
	}

	for !s.eof {
		name, value, found1, found2 := s.readPair(true)
		if !found1 {
			s.fail(ErrExpectingPairOrBrace, "")
		} else if !found2 && name != "}" {
			s.fail(ErrExpectingPairOrBrace, name)
		}

		if len(name) > 0 && name[0] == '@' && name != "@class" && name != "@id" {
			s.fail(ErrWrongKeyword, value)
		}

		if objclass == nil { // resolve the class on the first pair
			if name == "@class" {
				objclass = s.classes.ByName(value)
				if objclass == nil {
					s.fail(ErrUnknownClass, value)
				}
			} else {
				objclass = pointerclass
			}
			if !obj.IsValid() {
				obj = s.instantiate(objclass, cr)
				if objclass == nil {
					// the creator determined the type
					objclass = s.classes.classOf(obj.Type().Elem())
					if objclass == nil {
						s.fail(ErrUnknownClass, obj.Type().Elem().String())
					}
				}
			}
			if objclass.typ != obj.Type().Elem() {
				s.fail(ErrInvalidValue, "creator built a "+obj.Type().Elem().String()+
					" but the class is "+objclass.name)
			}
			if name == "@class" {
				continue
			}
		}

		if name == "}" { // end of object
			objclass.doPostRead(obj.Interface())
			return obj
		}
		if name == "@id" {
			id, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				s.fail(ErrInvalidID, value)
			}
			sl := s.slotFor(id)
			sl.raw = obj
			sl.init = true
			if slot != nil {
				*slot = sl
			}
			continue
		}
		s.lastQuoted = s.quoted2
		if !objclass.readMember(s, obj.Interface(), name, value) {
			s.warn(ErrUnknownMember, "'"+name+"' in class '"+objclass.name+"'")
		}
	}
	s.fail(ErrPrematureEOF, "")
	return reflect.Value{}
}

// instantiate builds a new object from the creator when given, from
// the class constructor otherwise.
func (s *Serializer) instantiate(objclass *Class, cr creatorFn) reflect.Value {
	var obj reflect.Value
	switch {
	case cr != nil:
		obj = cr()
	case objclass == nil:
		s.fail(ErrUnknownClass, `value requires a "@class" field`)
	case objclass.create == nil:
		s.fail(ErrAbstractClass, objclass.name)
	default:
		obj = objclass.create()
	}
	if !obj.IsValid() || obj.Kind() != reflect.Pointer || obj.IsNil() {
		name := ""
		if objclass != nil {
			name = objclass.name
		}
		s.fail(ErrCantCreateObject, name)
	}
	return obj
}

// decodeAny reads a value of unconstrained type, producing nil, bool,
// float64, string, map[string]any or []any like generic JSON decoding
// does.
func (s *Serializer) decodeAny(tok string, quoted bool) any {
	switch {
	case tok == "{":
		m := make(map[string]any)
		for !s.eof {
			name, value, found1, found2 := s.readPair(true)
			if !found1 {
				s.fail(ErrExpectingPairOrBrace, "")
			}
			if name == "}" {
				return m
			}
			if !found2 {
				s.fail(ErrExpectingPairOrBrace, name)
			}
			m[name] = s.decodeAny(value, s.quoted2)
		}
		s.fail(ErrPrematureEOF, "")
	case tok == "[":
		a := make([]any, 0)
		for !s.eof {
			t, _, found1, _ := s.readPair(false)
			if !found1 {
				s.fail(ErrExpectingValueOrBracket, "")
			}
			if t == "]" {
				return a
			}
			a = append(a, s.decodeAny(t, s.quoted1))
		}
		s.fail(ErrExpectingValueOrBracket, "")
	case quoted:
		return tok
	case tok == "null":
		return nil
	case tok == "true":
		return true
	case tok == "false":
		return false
	case isNumberToken(tok):
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			s.fail(ErrInvalidValue, tok)
		}
		return f
	}
	return tok
}
