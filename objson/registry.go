package objson

import (
	"reflect"
)

// ============================================================
// Registry
// ============================================================

// Registry holds the class descriptions a Serializer works against.
// Classes are registered once at startup with Define and its variants;
// after that the registry is read-only and safe to share between
// serializers.
type Registry struct {
	byName  map[string]*Class
	byType  map[reflect.Type]*Class
	handler Handler
	err     *Error
}

// NewRegistry creates an empty registry. Registration mistakes
// (redefined classes, unknown superclasses) are reported through the
// default logrus report and recorded; see Err.
func NewRegistry() *Registry {
	return NewRegistryWithHandler(nil)
}

// NewRegistryWithHandler creates a registry whose registration errors
// go to a caller-supplied handler.
func NewRegistryWithHandler(handler Handler) *Registry {
	return &Registry{
		byName:  make(map[string]*Class),
		byType:  make(map[reflect.Type]*Class),
		handler: handler,
	}
}

// Err returns the first registration error, or nil if every Define,
// Field and Extends call was consistent.
func (r *Registry) Err() *Error { return r.err }

// ByName returns the class registered under name, or nil.
func (r *Registry) ByName(name string) *Class { return r.byName[name] }

// classOf returns the class registered for a struct type, or nil.
func (r *Registry) classOf(t reflect.Type) *Class { return r.byType[t] }

func (r *Registry) raise(code ErrCode, arg, where string) {
	e := &Error{Code: code, Fatal: true, Where: where, Arg: arg}
	if r.err == nil {
		r.err = e
	}
	if r.handler != nil {
		r.handler(e)
	} else {
		e.report()
	}
}

// ============================================================
// Class
// ============================================================

// superlink ties a class to one of its superclasses with the upcast
// that maps an instance pointer to the embedded superclass pointer.
type superlink struct {
	super  *Class
	upcast func(any) any
}

// member describes one serialized field of a class.
type member struct {
	name   string
	custom bool
	read   func(s *Serializer, obj any, val string)
	write  func(s *Serializer, obj any)
}

// Class is the type-erased description of a registered struct type:
// its name in the data, its constructor, its members and superclasses.
// Build one with Define, DefineWith or DefineAbstract, then attach
// members with Field and friends on the typed handle.
type Class struct {
	reg       *Registry
	name      string
	typ       reflect.Type
	create    func() reflect.Value // returns *T; nil for abstract classes
	members   []*member
	memberMap map[string]*member
	supers    []superlink
	postRead  func(any)
	postWrite func(any)
}

// Name returns the class name as written in "@class" values.
func (c *Class) Name() string { return c.name }

func (c *Class) addMember(m *member) {
	if c.memberMap[m.name] != nil {
		c.reg.raise(ErrRedefinedMember, ": member "+m.name+" of class "+c.name, "Field()")
		return
	}
	c.members = append(c.members, m)
	c.memberMap[m.name] = m
}

// readMember finds the named member on c or, failing that, on its
// superclasses, and reads val into obj. It reports whether the member
// was found.
func (c *Class) readMember(s *Serializer, obj any, name, val string) bool {
	if m := c.memberMap[name]; m != nil {
		m.read(s, obj, val)
		return true
	}
	for _, sl := range c.supers {
		if sl.super.readMember(s, sl.upcast(obj), name, val) {
			return true
		}
	}
	return false
}

// writeMembers writes superclass members first, then own members.
func (c *Class) writeMembers(s *Serializer, obj any) {
	for _, sl := range c.supers {
		sl.super.writeMembers(s, sl.upcast(obj))
	}
	for _, m := range c.members {
		if s.needComma {
			s.out.WriteString(",\n")
		}
		s.needComma = false
		if m.custom {
			s.curName = m.name
		} else {
			s.writeTabs()
			s.out.WriteByte('"')
			s.out.WriteString(m.name)
			s.out.WriteString("\": ")
		}
		m.write(s, obj)
	}
}

func (c *Class) doPostRead(obj any) {
	if obj != nil && c.postRead != nil {
		c.postRead(obj)
	}
}

func (c *Class) doPostWrite(obj any) {
	if obj != nil && c.postWrite != nil {
		c.postWrite(obj)
	}
}

// ============================================================
// Typed registration
// ============================================================

// ClassOf is the typed handle returned by Define. Registration helpers
// that need extra type parameters (Field, Extends, Accessor) are free
// functions taking the handle; the rest are methods.
type ClassOf[T any] struct {
	c *Class
}

// Raw returns the type-erased class description.
func (tc *ClassOf[T]) Raw() *Class { return tc.c }

func define[T any](r *Registry, name string, create func() reflect.Value) *ClassOf[T] {
	if r.byName[name] != nil {
		r.raise(ErrRedefinedClass, name, "Define()")
	}
	var zero T
	t := reflect.TypeOf(&zero).Elem()
	c := &Class{
		reg:       r,
		name:      name,
		typ:       t,
		create:    create,
		memberMap: make(map[string]*member),
	}
	// a redefinition overwrites the previous entry
	r.byName[name] = c
	r.byType[t] = c
	return &ClassOf[T]{c: c}
}

// Define registers struct type T under name, constructed with new(T).
func Define[T any](r *Registry, name string) *ClassOf[T] {
	return define[T](r, name, func() reflect.Value {
		return reflect.ValueOf(new(T))
	})
}

// DefineWith registers T with an explicit constructor, for types whose
// zero value is not a valid starting point. A constructor returning
// nil makes instantiation fail with an error.
func DefineWith[T any](r *Registry, name string, creator func() *T) *ClassOf[T] {
	return define[T](r, name, func() reflect.Value {
		return reflect.ValueOf(creator())
	})
}

// DefineAbstract registers T as a class that can be written and named
// in "@class" but never instantiated; reading one is an error unless a
// concrete subclass name appears.
func DefineAbstract[T any](r *Registry, name string) *ClassOf[T] {
	return define[T](r, name, nil)
}

// Field attaches a plain data member. The accessor maps an instance to
// the field's address, playing the role a member pointer plays in
// other serializers:
//
//	objson.Field(cl, "x", func(p *Point) *float64 { return &p.X })
func Field[T, V any](tc *ClassOf[T], name string, access func(*T) *V) *ClassOf[T] {
	tc.c.addMember(&member{
		name: name,
		read: func(s *Serializer, obj any, val string) {
			s.readValueCr(reflect.ValueOf(access(obj.(*T))).Elem(), val, nil, nil)
		},
		write: func(s *Serializer, obj any) {
			s.writeValue(reflect.ValueOf(access(obj.(*T))).Elem())
		},
	})
	return tc
}

// FieldWith attaches a pointer or interface member whose pointee is
// built by creator instead of the class constructor, typically to link
// the new object to its owner.
func FieldWith[T, V any](tc *ClassOf[T], name string, access func(*T) *V, creator func(*T) V) *ClassOf[T] {
	tc.c.addMember(&member{
		name: name,
		read: func(s *Serializer, obj any, val string) {
			o := obj.(*T)
			cr := func() reflect.Value { return reflect.ValueOf(creator(o)) }
			s.readValueCr(reflect.ValueOf(access(o)).Elem(), val, cr, nil)
		},
		write: func(s *Serializer, obj any) {
			s.writeValue(reflect.ValueOf(access(obj.(*T))).Elem())
		},
	})
	return tc
}

// ArrayFieldWith attaches a slice member whose elements are built by
// creator.
func ArrayFieldWith[T any, E any](tc *ClassOf[T], name string, access func(*T) *[]E, creator func(*T) E) *ClassOf[T] {
	tc.c.addMember(&member{
		name: name,
		read: func(s *Serializer, obj any, val string) {
			o := obj.(*T)
			cr := func() reflect.Value { return reflect.ValueOf(creator(o)) }
			s.readArray(reflect.ValueOf(access(o)).Elem(), val, cr)
		},
		write: func(s *Serializer, obj any) {
			s.writeValue(reflect.ValueOf(access(obj.(*T))).Elem())
		},
	})
	return tc
}

// StaticField attaches a member backed by a variable outside the
// instance, shared by all instances of the class.
func StaticField[T, V any](tc *ClassOf[T], name string, v *V) *ClassOf[T] {
	tc.c.addMember(&member{
		name: name,
		read: func(s *Serializer, _ any, val string) {
			s.readValueCr(reflect.ValueOf(v).Elem(), val, nil, nil)
		},
		write: func(s *Serializer, _ any) {
			s.writeValue(reflect.ValueOf(v).Elem())
		},
	})
	return tc
}

// Accessor attaches a member accessed through a setter and a getter
// rather than an address, for fields kept behind an API.
func Accessor[T, V any](tc *ClassOf[T], name string, set func(*T, V), get func(*T) V) *ClassOf[T] {
	tc.c.addMember(&member{
		name: name,
		read: func(s *Serializer, obj any, val string) {
			var v V
			s.readValueCr(reflect.ValueOf(&v).Elem(), val, nil, nil)
			set(obj.(*T), v)
		},
		write: func(s *Serializer, obj any) {
			s.writeValue(reflect.ValueOf(get(obj.(*T))))
		},
	})
	return tc
}

// CustomField attaches a member whose text form is produced and
// consumed by caller code, using ReadMember and WriteMember on the
// serializer.
func (tc *ClassOf[T]) CustomField(name string,
	read func(*T, *Serializer, string), write func(*T, *Serializer)) *ClassOf[T] {
	tc.c.addMember(&member{
		name:   name,
		custom: true,
		read: func(s *Serializer, obj any, val string) {
			read(obj.(*T), s, val)
		},
		write: func(s *Serializer, obj any) {
			write(obj.(*T), s)
		},
	})
	return tc
}

// Extends declares S, which must already be registered, as a
// superclass of T. The accessor maps an instance to its embedded
// superclass value. Superclass members are looked up after the class's
// own and written before them.
func Extends[T, S any](tc *ClassOf[T], access func(*T) *S) *ClassOf[T] {
	var zero S
	st := reflect.TypeOf(&zero).Elem()
	sc := tc.c.reg.classOf(st)
	if sc == nil {
		tc.c.reg.raise(ErrUnknownSuperclass,
			": superclass "+st.String()+" of class "+tc.c.name, "Extends()")
		return tc
	}
	for _, sl := range tc.c.supers {
		if sl.super == sc {
			tc.c.reg.raise(ErrRedefinedSuperclass,
				": superclass "+sc.name+" of class "+tc.c.name, "Extends()")
			return tc
		}
	}
	tc.c.supers = append(tc.c.supers, superlink{
		super:  sc,
		upcast: func(obj any) any { return access(obj.(*T)) },
	})
	return tc
}

// PostRead registers a hook called after an instance has been fully
// read.
func (tc *ClassOf[T]) PostRead(fn func(*T)) *ClassOf[T] {
	tc.c.postRead = func(obj any) { fn(obj.(*T)) }
	return tc
}

// PostWrite registers a hook called after an instance has been fully
// written.
func (tc *ClassOf[T]) PostWrite(fn func(*T)) *ClassOf[T] {
	tc.c.postWrite = func(obj any) { fn(obj.(*T)) }
	return tc
}
