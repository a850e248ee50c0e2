package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anirudhraja/protocodec/dynamic"
	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

// Registry stores the schema of the protobuf messages. We look this up when
// we need to parse or marshal a message. It is immutable once built and
// safe for concurrent use.
type Registry struct {
	messages   map[string]*schema.Message         // fully qualified name -> message
	enums      map[string]*schema.Enum            // fully qualified name -> enum
	extensions map[string]map[int32]*schema.Field // extendee -> number -> extension
	goTypes    map[string]func() wire.Message     // fully qualified name -> constructor

	factory *dynamic.Factory
	logger  zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used while building the registry.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithType registers a Go implementation for a message type. New returns
// it in place of a dynamic message, including for embedded fields.
func WithType(fullName string, newFn func() wire.Message) Option {
	return func(r *Registry) { r.goTypes[strings.TrimPrefix(fullName, ".")] = newFn }
}

var wellKnownTypes = []func() wkt.NamedMessage{
	func() wkt.NamedMessage { return new(wkt.Any) },
	func() wkt.NamedMessage { return new(wkt.Timestamp) },
	func() wkt.NamedMessage { return new(wkt.Duration) },
	func() wkt.NamedMessage { return new(wkt.Empty) },
	func() wkt.NamedMessage { return new(wkt.DoubleValue) },
	func() wkt.NamedMessage { return new(wkt.FloatValue) },
	func() wkt.NamedMessage { return new(wkt.Int64Value) },
	func() wkt.NamedMessage { return new(wkt.UInt64Value) },
	func() wkt.NamedMessage { return new(wkt.Int32Value) },
	func() wkt.NamedMessage { return new(wkt.UInt32Value) },
	func() wkt.NamedMessage { return new(wkt.BoolValue) },
	func() wkt.NamedMessage { return new(wkt.StringValue) },
	func() wkt.NamedMessage { return new(wkt.BytesValue) },
}

// New builds a registry from repo. The well-known google.protobuf types are
// always available as Go types. New resolves every type reference in repo
// to its fully qualified name in place, so repo must not be shared.
func New(repo *schema.ProtoRepo, opts ...Option) (*Registry, error) {
	r := &Registry{
		messages:   make(map[string]*schema.Message),
		enums:      make(map[string]*schema.Enum),
		extensions: make(map[string]map[int32]*schema.Field),
		goTypes:    make(map[string]func() wire.Message),
		logger:     zerolog.Nop(),
	}
	for _, newFn := range wellKnownTypes {
		r.goTypes[newFn().FullName()] = func() wire.Message { return newFn() }
	}
	for _, opt := range opts {
		opt(r)
	}
	r.factory = dynamic.NewFactory(r)

	if repo != nil {
		if err := r.buildSymbolTable(repo); err != nil {
			return nil, fmt.Errorf("failed to build symbol table: %w", err)
		}
	}

	r.logger.Debug().
		Int("messages", len(r.messages)).
		Int("enums", len(r.enums)).
		Int("go_types", len(r.goTypes)).
		Msg("registry built")
	return r, nil
}

// buildSymbolTable builds the symbol table from the loaded repository
func (r *Registry) buildSymbolTable(repo *schema.ProtoRepo) error {
	files := slices.Sorted(maps.Keys(repo.ProtoFiles))

	// Pass 1: Register all message and enum names
	for _, name := range files {
		if err := r.registerNames(repo.ProtoFiles[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	// Pass 2: Resolve every type reference
	for _, name := range files {
		if err := r.buildDefinitions(repo.ProtoFiles[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	// Pass 3: Attach extensions to the messages they extend
	for _, name := range files {
		if err := r.buildExtensions(repo.ProtoFiles[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// registerNames registers all message and enum names
func (r *Registry) registerNames(protoFile *schema.ProtoFile) error {
	pkg := protoFile.Package
	for _, msg := range protoFile.Messages {
		if err := r.registerMessage(protoFile, getFullName(pkg, msg.Name), msg); err != nil {
			return err
		}
	}
	for _, enum := range protoFile.Enums {
		if err := r.registerEnum(getFullName(pkg, enum.Name), enum); err != nil {
			return err
		}
	}
	return nil
}

// registerMessage registers msg and, recursively, its nested messages and enums
func (r *Registry) registerMessage(protoFile *schema.ProtoFile, fullName string, msg *schema.Message) error {
	if _, dup := r.messages[fullName]; dup {
		return fmt.Errorf("duplicate message %s", fullName)
	}
	if msg.Syntax == "" {
		msg.Syntax = protoFile.Syntax
	}
	r.messages[fullName] = msg
	if _, ok := r.goTypes[fullName]; ok {
		r.logger.Debug().Str("message", fullName).Msg("schema message shadowed by Go type")
	}

	for _, nested := range msg.NestedTypes {
		if err := r.registerMessage(protoFile, fullName+"."+nested.Name, nested); err != nil {
			return err
		}
	}
	for _, nested := range msg.NestedEnums {
		if err := r.registerEnum(fullName+"."+nested.Name, nested); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) registerEnum(fullName string, enum *schema.Enum) error {
	if _, dup := r.enums[fullName]; dup {
		return fmt.Errorf("duplicate enum %s", fullName)
	}
	r.enums[fullName] = enum
	return nil
}

// buildDefinitions rewrites the type names used by fields to fully
// qualified names.
func (r *Registry) buildDefinitions(protoFile *schema.ProtoFile) error {
	pkg := protoFile.Package
	for _, ext := range protoFile.Extensions {
		if err := r.resolveField(ext, pkg); err != nil {
			return err
		}
	}
	for _, msg := range protoFile.Messages {
		if err := r.resolveMessage(getFullName(pkg, msg.Name), msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) resolveMessage(fullName string, msg *schema.Message) error {
	fields, _ := msg.AllFields()
	for _, f := range append(fields, msg.Extensions...) {
		if err := r.resolveField(f, fullName); err != nil {
			return fmt.Errorf("%s.%s: %w", fullName, f.Name, err)
		}
	}
	for _, nested := range msg.NestedTypes {
		if err := r.resolveMessage(fullName+"."+nested.Name, nested); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) resolveField(f *schema.Field, scope string) error {
	if f.Extendee != "" {
		name, err := getReferencedType(f.Extendee, scope, r.messageNames())
		if err != nil {
			return err
		}
		f.Extendee = name
	}
	return r.resolveType(&f.Type, scope)
}

func (r *Registry) resolveType(t *schema.FieldType, scope string) error {
	var err error
	switch t.Kind {
	case schema.KindMessage, schema.KindGroup:
		t.MessageType, err = getReferencedType(t.MessageType, scope, r.messageNames())
	case schema.KindEnum:
		t.EnumType, err = getReferencedType(t.EnumType, scope, r.enumNames())
	case schema.KindMap:
		if t.MapKey == nil || t.MapValue == nil {
			return errors.New("map field without key or value type")
		}
		if err = r.resolveType(t.MapKey, scope); err == nil {
			err = r.resolveType(t.MapValue, scope)
		}
	case schema.KindWrapper:
		if _, ok := schema.WrappedPrimitive(t.WrapperType); !ok {
			err = fmt.Errorf("unknown wrapper type %q", t.WrapperType)
		}
	case schema.KindPrimitive:
		if !schema.IsPackedType(t.PrimitiveType) && t.PrimitiveType != schema.TypeString && t.PrimitiveType != schema.TypeBytes {
			err = fmt.Errorf("unknown primitive type %q", t.PrimitiveType)
		}
	default:
		err = fmt.Errorf("unknown type kind %q", t.Kind)
	}
	return err
}

// buildExtensions indexes the extensions of a file by extendee
func (r *Registry) buildExtensions(protoFile *schema.ProtoFile) error {
	exts := slices.Clone(protoFile.Extensions)
	var collect func(msgs []*schema.Message)
	collect = func(msgs []*schema.Message) {
		for _, m := range msgs {
			exts = append(exts, m.Extensions...)
			collect(m.NestedTypes)
		}
	}
	collect(protoFile.Messages)

	for _, ext := range exts {
		target, ok := r.messages[ext.Extendee]
		if !ok {
			return fmt.Errorf("extension %s: unknown extendee %q", ext.Name, ext.Extendee)
		}
		fields, _ := target.AllFields()
		for _, f := range fields {
			if f.Number == ext.Number {
				return fmt.Errorf("extension %s: %s already declares field %d", ext.Name, ext.Extendee, ext.Number)
			}
		}
		byNum := r.extensions[ext.Extendee]
		if byNum == nil {
			byNum = make(map[int32]*schema.Field)
			r.extensions[ext.Extendee] = byNum
		}
		if _, dup := byNum[ext.Number]; dup {
			return fmt.Errorf("extension %s: %s field %d extended twice", ext.Name, ext.Extendee, ext.Number)
		}
		byNum[ext.Number] = ext
		r.logger.Debug().Str("extendee", ext.Extendee).Int32("number", ext.Number).Str("extension", ext.Name).Msg("registered extension")
	}
	return nil
}

func (r *Registry) messageNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.messages)+len(r.goTypes))
	for name := range r.messages {
		names[name] = struct{}{}
	}
	for name := range r.goTypes {
		names[name] = struct{}{}
	}
	return names
}

func (r *Registry) enumNames() map[string]struct{} {
	names := make(map[string]struct{}, len(r.enums))
	for name := range r.enums {
		names[name] = struct{}{}
	}
	return names
}

// FindMessage returns the schema of a message by exact fully qualified name.
func (r *Registry) FindMessage(fullName string) (*schema.Message, error) {
	if msg, ok := r.messages[fullName]; ok {
		return msg, nil
	}
	return nil, fmt.Errorf("%w: message %s", dynamic.ErrUnknownType, fullName)
}

// FindEnum returns an enum by exact fully qualified name.
func (r *Registry) FindEnum(fullName string) (*schema.Enum, error) {
	if enum, ok := r.enums[fullName]; ok {
		return enum, nil
	}
	return nil, fmt.Errorf("%w: enum %s", dynamic.ErrUnknownType, fullName)
}

// FindExtension returns the extension of extendee numbered number.
func (r *Registry) FindExtension(extendee string, number int32) (*schema.Field, bool) {
	f, ok := r.extensions[extendee][number]
	return f, ok
}

// HasMessage reports whether New can build fullName.
func (r *Registry) HasMessage(fullName string) bool {
	if _, ok := r.goTypes[fullName]; ok {
		return true
	}
	_, ok := r.messages[fullName]
	return ok
}

// New returns an empty message of the named type: the registered Go type
// when there is one, a dynamic message otherwise.
func (r *Registry) New(fullName string) (wire.Message, error) {
	fullName = strings.TrimPrefix(fullName, ".")
	if newFn, ok := r.goTypes[fullName]; ok {
		return newFn(), nil
	}
	return r.factory.New(fullName)
}

// NewDynamic returns an empty dynamic message even when a Go type is
// registered under the same name.
func (r *Registry) NewDynamic(fullName string) (*dynamic.Message, error) {
	return r.factory.New(strings.TrimPrefix(fullName, "."))
}

// GetMessage retrieves a message definition by name. Names without a
// package are matched by suffix when that is unambiguous.
func (r *Registry) GetMessage(name string) (string, *schema.Message, error) {
	fullName, err := lookupName(r.messages, name)
	if err != nil {
		return "", nil, fmt.Errorf("message not found: %w", err)
	}
	return fullName, r.messages[fullName], nil
}

// GetEnum retrieves an enum definition by name, like GetMessage.
func (r *Registry) GetEnum(name string) (string, *schema.Enum, error) {
	fullName, err := lookupName(r.enums, name)
	if err != nil {
		return "", nil, fmt.Errorf("enum not found: %w", err)
	}
	return fullName, r.enums[fullName], nil
}

func lookupName[T any](entities map[string]T, name string) (string, error) {
	name = strings.TrimPrefix(name, ".")
	if _, ok := entities[name]; ok {
		return name, nil
	}
	var matches []string
	for fullName := range entities {
		if strings.HasSuffix(fullName, "."+name) {
			matches = append(matches, fullName)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.New(name)
	case 1:
		return matches[0], nil
	}
	slices.Sort(matches)
	return "", fmt.Errorf("%s is ambiguous: %s", name, strings.Join(matches, ", "))
}

// ListMessages returns all message names, schema and Go types alike, sorted.
func (r *Registry) ListMessages() []string {
	return slices.Sorted(maps.Keys(r.messageNames()))
}

// ListEnums returns all registered enum names, sorted.
func (r *Registry) ListEnums() []string {
	return slices.Sorted(maps.Keys(r.enums))
}
