package dynamic

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
)

// ErrUnknownType is returned when a type name cannot be resolved.
var ErrUnknownType = errors.New("unknown type")

// Resolver looks up the definitions a dynamic message needs. Names are
// fully qualified without a leading dot.
type Resolver interface {
	FindMessage(fullName string) (*schema.Message, error)
	FindEnum(fullName string) (*schema.Enum, error)
	FindExtension(extendee string, number int32) (*schema.Field, bool)
	// HasMessage reports whether New can build fullName.
	HasMessage(fullName string) bool
	// New returns an empty message of the named type, either a registered
	// Go type or a dynamic message.
	New(fullName string) (wire.Message, error)
}

// Factory builds dynamic messages and caches the per-type field tables.
// It is safe for concurrent use.
type Factory struct {
	res   Resolver
	types sync.Map // full name -> *messageType
}

// NewFactory returns a factory resolving names through res.
func NewFactory(res Resolver) *Factory {
	return &Factory{res: res}
}

// New returns an empty dynamic message of the named type.
func (f *Factory) New(fullName string) (*Message, error) {
	mt, err := f.typeOf(fullName)
	if err != nil {
		return nil, err
	}
	return &Message{typ: mt}, nil
}

func (f *Factory) typeOf(fullName string) (*messageType, error) {
	if v, ok := f.types.Load(fullName); ok {
		return v.(*messageType), nil
	}
	desc, err := f.res.FindMessage(fullName)
	if err != nil {
		return nil, err
	}
	mt, err := f.buildType(fullName, desc)
	if err != nil {
		return nil, err
	}
	v, _ := f.types.LoadOrStore(fullName, mt)
	return v.(*messageType), nil
}

// elemType describes a single value: a singular field, one element of a
// repeated field, or a map key or value.
type elemType struct {
	kind    schema.TypeKind
	prim    schema.PrimitiveType // primitive, or the primitive a wrapper holds
	enum    *schema.Enum
	message string
}

type fieldInfo struct {
	desc     *schema.Field
	name     string
	num      wire.FieldNumber
	oneof    int
	repeated bool
	packed   bool
	presence bool

	elem  elemType
	codec valueCodec

	// map fields only
	key      elemType
	mapCodec *wire.Map[any, any]
}

type messageType struct {
	name    string
	desc    *schema.Message
	syntax  string
	factory *Factory

	fields []*fieldInfo // ascending field number
	byNum  map[wire.FieldNumber]*fieldInfo
	byName map[string]*fieldInfo
	oneofs []string

	exts sync.Map // wire.FieldNumber -> *fieldInfo, registered extensions only
}

func (f *Factory) buildType(fullName string, desc *schema.Message) (*messageType, error) {
	mt := &messageType{
		name:    fullName,
		desc:    desc,
		syntax:  desc.Syntax,
		factory: f,
		byNum:   make(map[wire.FieldNumber]*fieldInfo),
		byName:  make(map[string]*fieldInfo),
	}
	if mt.syntax == "" {
		mt.syntax = schema.SyntaxProto2
	}
	for _, o := range desc.OneofGroups {
		mt.oneofs = append(mt.oneofs, o.Name)
	}

	fields, oneofs := desc.AllFields()
	for i, fd := range fields {
		fi, err := f.newFieldInfo(mt, fd, oneofs[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", fullName, fd.Name, err)
		}
		if _, dup := mt.byNum[fi.num]; dup {
			return nil, fmt.Errorf("%s: duplicate field number %d", fullName, fi.num)
		}
		mt.byNum[fi.num] = fi
		mt.byName[fi.name] = fi
		mt.byName[jsonName(fd)] = fi
		mt.fields = append(mt.fields, fi)
	}
	slices.SortFunc(mt.fields, func(a, b *fieldInfo) int { return int(a.num) - int(b.num) })
	return mt, nil
}

func (f *Factory) newFieldInfo(mt *messageType, fd *schema.Field, oneof int) (*fieldInfo, error) {
	fi := &fieldInfo{
		desc:     fd,
		name:     fd.Name,
		num:      wire.FieldNumber(fd.Number),
		oneof:    oneof,
		repeated: fd.IsRepeated(),
		packed:   fd.IsPacked(mt.syntax),
		presence: fd.HasPresence(mt.syntax, oneof >= 0),
	}
	if !fi.num.IsValid() {
		return nil, fmt.Errorf("invalid field number %d", fd.Number)
	}

	if fd.Type.Kind != schema.KindMap {
		var err error
		fi.elem, fi.codec, err = f.elemCodec(&fd.Type, fi.num)
		return fi, err
	}

	if fi.repeated {
		return nil, errors.New("map fields cannot be repeated")
	}
	if fd.Type.MapKey == nil || fd.Type.MapValue == nil {
		return nil, errors.New("map field without key or value type")
	}
	if fd.Type.MapKey.Kind != schema.KindPrimitive || !validMapKey(fd.Type.MapKey.PrimitiveType) {
		return nil, fmt.Errorf("invalid map key type %q", fd.Type.MapKey.PrimitiveType)
	}
	key, keyCodec, err := f.elemCodec(fd.Type.MapKey, 1)
	if err != nil {
		return nil, err
	}
	switch fd.Type.MapValue.Kind {
	case schema.KindMap, schema.KindGroup:
		return nil, fmt.Errorf("invalid map value kind %q", fd.Type.MapValue.Kind)
	}
	value, valueCodec, err := f.elemCodec(fd.Type.MapValue, 2)
	if err != nil {
		return nil, err
	}
	fi.key, fi.elem = key, value
	if value.kind == schema.KindEnum && mt.syntax == schema.SyntaxProto2 {
		// proto2 enums default to their first value, which may be non-zero.
		fi.mapCodec = wire.NewMapWithDefault[any, any](keyCodec, valueCodec, value.enum.Default())
	} else {
		fi.mapCodec = wire.NewMap[any, any](keyCodec, valueCodec)
	}
	return fi, nil
}

func (f *Factory) elemCodec(t *schema.FieldType, num wire.FieldNumber) (elemType, valueCodec, error) {
	et := elemType{kind: t.Kind}
	switch t.Kind {
	case schema.KindPrimitive:
		et.prim = t.PrimitiveType
		c, err := primitiveCodec(t.PrimitiveType)
		return et, c, err
	case schema.KindEnum:
		enum, err := f.res.FindEnum(t.EnumType)
		if err != nil {
			return et, nil, err
		}
		et.enum = enum
		return et, enumCodec, nil
	case schema.KindWrapper:
		p, ok := schema.WrappedPrimitive(t.WrapperType)
		if !ok {
			return et, nil, fmt.Errorf("unknown wrapper type %q", t.WrapperType)
		}
		et.prim = p
		inner, err := primitiveCodec(p)
		return et, wrapperValue{inner: inner}, err
	case schema.KindMessage, schema.KindGroup:
		if !f.res.HasMessage(t.MessageType) {
			return et, nil, fmt.Errorf("%w: %s", ErrUnknownType, t.MessageType)
		}
		et.message = t.MessageType
		mv := messageValue{newFn: f.constructor(t.MessageType)}
		if t.Kind == schema.KindGroup {
			return et, groupValue{messageValue: mv, num: num}, nil
		}
		return et, mv, nil
	}
	return et, nil, fmt.Errorf("unknown type kind %q", t.Kind)
}

// constructor defers resolution of a message type until a value is needed,
// which lets a type refer to itself.
func (f *Factory) constructor(fullName string) func() wire.Message {
	return func() wire.Message {
		m, err := f.res.New(fullName)
		if err != nil {
			// HasMessage was checked when the field table was built and
			// resolvers never forget a type.
			panic(fmt.Sprintf("dynamic: resolving %s: %v", fullName, err))
		}
		return m
	}
}

func validMapKey(p schema.PrimitiveType) bool {
	switch p {
	case schema.TypeDouble, schema.TypeFloat, schema.TypeBytes:
		return false
	}
	_, ok := primitiveCodecs[p]
	return ok
}

// field returns the regular field or extension numbered num.
func (mt *messageType) field(num wire.FieldNumber) *fieldInfo {
	if fi, ok := mt.byNum[num]; ok {
		return fi
	}
	if v, ok := mt.exts.Load(num); ok {
		return v.(*fieldInfo)
	}
	// Misses are not cached: input controls which numbers are asked for.
	fd, ok := mt.factory.res.FindExtension(mt.name, int32(num))
	if !ok {
		return nil
	}
	fi, err := mt.factory.newFieldInfo(mt, fd, -1)
	if err != nil {
		return nil
	}
	v, _ := mt.exts.LoadOrStore(num, fi)
	return v.(*fieldInfo)
}
