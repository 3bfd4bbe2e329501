package objson

import (
	"reflect"
	"sort"
	"strconv"
)

// writeValue writes any supported value. Containers and objects are
// indented at the current level; the needComma flag tells the caller
// whether a separator is due before the next value.
func (s *Serializer) writeValue(v reflect.Value) {
	if !v.IsValid() {
		s.out.WriteString("null")
		s.needComma = true
		return
	}
	switch v.Kind() {
	case reflect.String:
		s.writeString(v.String())

	case reflect.Bool:
		if v.Bool() {
			s.out.WriteString("true")
		} else {
			s.out.WriteString("false")
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s.out.WriteString(strconv.FormatInt(v.Int(), 10))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s.out.WriteString(strconv.FormatUint(v.Uint(), 10))

	case reflect.Float32:
		s.out.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 32))

	case reflect.Float64:
		s.out.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))

	case reflect.Pointer:
		if v.IsNil() {
			s.out.WriteString("null")
			break
		}
		if v.Type().Elem().Kind() == reflect.Struct {
			s.writeObjectPtr(v, false)
			break
		}
		s.writeValue(v.Elem())
		return // inner call sets needComma

	case reflect.Interface:
		if v.IsNil() {
			s.out.WriteString("null")
			break
		}
		// the slot's static type does not pin the dynamic type down,
		// so registered objects are tagged with "@class"
		e := v.Elem()
		if e.Kind() == reflect.Pointer && !e.IsNil() &&
			e.Type().Elem().Kind() == reflect.Struct &&
			s.classes.classOf(e.Type().Elem()) != nil {
			s.writeObjectPtr(e, true)
			break
		}
		if e.Kind() == reflect.Struct && s.classes.classOf(e.Type()) != nil {
			p := reflect.New(e.Type())
			p.Elem().Set(e)
			s.writeObjectPtr(p, true)
			break
		}
		s.writeValue(e)
		return

	case reflect.Struct:
		var p reflect.Value
		if v.CanAddr() {
			p = v.Addr()
		} else {
			p = reflect.New(v.Type())
			p.Elem().Set(v)
		}
		s.writeObjectPtr(p, false)

	case reflect.Map:
		s.writeMapObject(v)

	case reflect.Slice, reflect.Array:
		s.writeArray(v)

	default:
		s.fail(ErrInvalidValue, "cannot write a "+v.Type().String())
	}
	s.needComma = true
}

// writeObjectPtr writes the object p points to. tagged forces a
// "@class" field, used when the static slot type does not determine
// the dynamic type.
func (s *Serializer) writeObjectPtr(p reflect.Value, tagged bool) {
	cl := s.classes.classOf(p.Type().Elem())
	if cl == nil {
		s.fail(ErrUnknownClass, p.Type().Elem().String())
	}
	obj := p.Interface()
	if s.sharing {
		if id, ok := s.objToID[obj]; ok {
			s.out.WriteString("\"@")
			s.out.WriteString(strconv.FormatUint(id, 10))
			s.out.WriteByte('"')
			return
		}
		s.nextID++
		s.objToID[obj] = s.nextID
	}
	id := s.nextID
	s.needComma = false
	s.out.WriteString("{\n")
	s.level++
	if tagged {
		s.writeTabs()
		s.out.WriteString("\"@class\": \"")
		s.out.WriteString(cl.name)
		s.out.WriteString("\",\n")
	}
	if s.sharing {
		s.writeTabs()
		s.out.WriteString("\"@id\": \"")
		s.out.WriteString(strconv.FormatUint(id, 10))
		s.out.WriteString("\",\n")
	}
	cl.writeMembers(s, obj)
	s.level--
	s.out.WriteByte('\n')
	s.writeTabs()
	s.out.WriteByte('}')
	s.needComma = true
	cl.doPostWrite(obj)
}

func (s *Serializer) writeArray(v reflect.Value) {
	if v.Len() == 0 {
		s.out.WriteString("[]")
		return
	}
	s.needComma = false
	s.out.WriteString("[\n")
	s.level++
	for i := 0; i < v.Len(); i++ {
		if s.needComma {
			s.out.WriteString(",\n")
		}
		s.writeTabs()
		s.needComma = false
		s.writeValue(v.Index(i))
	}
	s.level--
	s.out.WriteByte('\n')
	s.writeTabs()
	s.out.WriteByte(']')
}

// writeMapObject writes a string-keyed map as an object, keys sorted
// so output is deterministic.
func (s *Serializer) writeMapObject(v reflect.Value) {
	if v.Type().Key().Kind() != reflect.String {
		s.fail(ErrInvalidValue, "map keys must be strings: "+v.Type().String())
	}
	if v.Len() == 0 {
		s.out.WriteString("{}")
		return
	}
	s.needComma = false
	s.out.WriteString("{\n")
	s.level++
	keys := make([]string, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		keys = append(keys, iter.Key().String())
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s.needComma {
			s.out.WriteString(",\n")
		}
		s.needComma = false
		s.writeTabs()
		s.writeString(k)
		s.out.WriteString(": ")
		s.writeValue(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
	}
	s.level--
	s.out.WriteByte('\n')
	s.writeTabs()
	s.out.WriteByte('}')
}

// writeString writes a quoted, escaped string. Control characters
// outside the short escapes go out as \u sequences so the text always
// reads back.
func (s *Serializer) writeString(str string) {
	s.out.WriteByte('"')
	for i := 0; i < len(str); i++ {
		c := str[i]
		switch c {
		case '"':
			s.out.WriteString("\\\"")
		case '\\':
			s.out.WriteString("\\\\")
		case '\b':
			s.out.WriteString("\\b")
		case '\f':
			s.out.WriteString("\\f")
		case '\n':
			s.out.WriteString("\\n")
		case '\r':
			s.out.WriteString("\\r")
		case '\t':
			s.out.WriteString("\\t")
		default:
			if c < 0x20 || c == 0x7f {
				const hex = "0123456789abcdef"
				s.out.WriteString("\\u00")
				s.out.WriteByte(hex[c>>4])
				s.out.WriteByte(hex[c&0xf])
			} else {
				s.out.WriteByte(c)
			}
		}
	}
	s.out.WriteByte('"')
	s.needComma = true
}
