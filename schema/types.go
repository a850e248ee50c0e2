package schema

// ProtoRepo represents a collection of .proto files and their definitions.
type ProtoRepo struct {
	ProtoFiles map[string]*ProtoFile `json:"proto_files" yaml:"proto_files"`
}

// ProtoFile represents a single .proto file
type ProtoFile struct {
	Name       string     `json:"name" yaml:"name"`                                 // file.proto
	Package    string     `json:"package" yaml:"package"`                           // package name
	Syntax     string     `json:"syntax" yaml:"syntax"`                             // proto2 or proto3
	Imports    []*Import  `json:"imports,omitempty" yaml:"imports,omitempty"`       // imported files
	Messages   []*Message `json:"messages" yaml:"messages"`                         // message definitions
	Enums      []*Enum    `json:"enums,omitempty" yaml:"enums,omitempty"`           // enum definitions
	Extensions []*Field   `json:"extensions,omitempty" yaml:"extensions,omitempty"` // top-level extend blocks
}

// Import represents an import statement
type Import struct {
	Path   string `json:"path" yaml:"path"`                         // "google/protobuf/timestamp.proto"
	Public bool   `json:"public,omitempty" yaml:"public,omitempty"` // public import
	Weak   bool   `json:"weak,omitempty" yaml:"weak,omitempty"`     // weak import
}

// Message represents a protobuf message definition
type Message struct {
	Name        string     `json:"name" yaml:"name"`                                     // "User"
	Syntax      string     `json:"syntax,omitempty" yaml:"syntax,omitempty"`             // inherited from the file when empty
	Fields      []*Field   `json:"fields" yaml:"fields"`                                 // message fields
	NestedTypes []*Message `json:"nested_types,omitempty" yaml:"nested_types,omitempty"` // nested messages
	NestedEnums []*Enum    `json:"nested_enums,omitempty" yaml:"nested_enums,omitempty"` // nested enums
	Extensions  []*Field   `json:"extensions,omitempty" yaml:"extensions,omitempty"`     // extend blocks scoped to this message
	OneofGroups []*Oneof   `json:"oneof_groups,omitempty" yaml:"oneof_groups,omitempty"` // oneof groups
}

// Field represents a message field
type Field struct {
	Name           string     `json:"name" yaml:"name"`                                           // "user_name"
	Number         int32      `json:"number" yaml:"number"`                                       // 1
	Label          FieldLabel `json:"label,omitempty" yaml:"label,omitempty"`                     // optional, required, repeated
	Type           FieldType  `json:"type" yaml:"type"`                                           // field type information
	DefaultValue   string     `json:"default_value,omitempty" yaml:"default_value,omitempty"`     // default value (proto2)
	JsonName       string     `json:"json_name,omitempty" yaml:"json_name,omitempty"`             // JSON field name
	Packed         *bool      `json:"packed,omitempty" yaml:"packed,omitempty"`                   // explicit [packed = ...] option
	Proto3Optional bool       `json:"proto3_optional,omitempty" yaml:"proto3_optional,omitempty"` // proto3 "optional" keyword
	Extendee       string     `json:"extendee,omitempty" yaml:"extendee,omitempty"`               // extended message, for extensions
}

// Oneof represents a oneof group
type Oneof struct {
	Name   string   `json:"name" yaml:"name"`     // "user_info"
	Fields []*Field `json:"fields" yaml:"fields"` // fields in this oneof
}

// FieldLabel represents field labels
type FieldLabel string

const (
	LabelOptional FieldLabel = "optional"
	LabelRequired FieldLabel = "required"
	LabelRepeated FieldLabel = "repeated"
)

// FieldType represents field type information
type FieldType struct {
	Kind          TypeKind      `json:"kind" yaml:"kind"`                                         // primitive, message, group, enum, map, wrapper
	PrimitiveType PrimitiveType `json:"primitive_type,omitempty" yaml:"primitive_type,omitempty"` // for primitive types
	MessageType   string        `json:"message_type,omitempty" yaml:"message_type,omitempty"`     // for message and group types: "User", "google.protobuf.Timestamp"
	EnumType      string        `json:"enum_type,omitempty" yaml:"enum_type,omitempty"`           // for enum types
	WrapperType   WrapperType   `json:"wrapper_type,omitempty" yaml:"wrapper_type,omitempty"`     // for wrapper types
	MapKey        *FieldType    `json:"map_key,omitempty" yaml:"map_key,omitempty"`               // for map key type
	MapValue      *FieldType    `json:"map_value,omitempty" yaml:"map_value,omitempty"`           // for map value type
}

// TypeKind represents the kind of field type
type TypeKind string

const (
	KindPrimitive TypeKind = "primitive"
	KindMessage   TypeKind = "message"
	KindGroup     TypeKind = "group"
	KindEnum      TypeKind = "enum"
	KindMap       TypeKind = "map"
	KindWrapper   TypeKind = "wrapper"
)

// PrimitiveType represents protobuf primitive types
type PrimitiveType string

const (
	TypeDouble   PrimitiveType = "double"
	TypeFloat    PrimitiveType = "float"
	TypeInt64    PrimitiveType = "int64"
	TypeUint64   PrimitiveType = "uint64"
	TypeInt32    PrimitiveType = "int32"
	TypeFixed64  PrimitiveType = "fixed64"
	TypeFixed32  PrimitiveType = "fixed32"
	TypeBool     PrimitiveType = "bool"
	TypeString   PrimitiveType = "string"
	TypeBytes    PrimitiveType = "bytes"
	TypeUint32   PrimitiveType = "uint32"
	TypeSfixed32 PrimitiveType = "sfixed32"
	TypeSfixed64 PrimitiveType = "sfixed64"
	TypeSint32   PrimitiveType = "sint32"
	TypeSint64   PrimitiveType = "sint64"
)

var packedEligible = map[PrimitiveType]struct{}{
	TypeDouble:   {},
	TypeFloat:    {},
	TypeInt64:    {},
	TypeUint64:   {},
	TypeInt32:    {},
	TypeFixed64:  {},
	TypeFixed32:  {},
	TypeBool:     {},
	TypeUint32:   {},
	TypeSfixed32: {},
	TypeSfixed64: {},
	TypeSint32:   {},
	TypeSint64:   {},
}

// IsPackedType checks and returns if the Primitive type is packed for repeated label
func IsPackedType(t PrimitiveType) bool {
	_, ok := packedEligible[t]
	return ok
}

// WrapperType represents protobuf wrapper types
type WrapperType string

const (
	WrapperDoubleValue WrapperType = "google.protobuf.DoubleValue"
	WrapperFloatValue  WrapperType = "google.protobuf.FloatValue"
	WrapperInt64Value  WrapperType = "google.protobuf.Int64Value"
	WrapperUInt64Value WrapperType = "google.protobuf.UInt64Value"
	WrapperInt32Value  WrapperType = "google.protobuf.Int32Value"
	WrapperUInt32Value WrapperType = "google.protobuf.UInt32Value"
	WrapperBoolValue   WrapperType = "google.protobuf.BoolValue"
	WrapperStringValue WrapperType = "google.protobuf.StringValue"
	WrapperBytesValue  WrapperType = "google.protobuf.BytesValue"
)

// wrapperPrimitive maps each wrapper to the primitive it holds in field 1.
var wrapperPrimitive = map[WrapperType]PrimitiveType{
	WrapperDoubleValue: TypeDouble,
	WrapperFloatValue:  TypeFloat,
	WrapperInt64Value:  TypeInt64,
	WrapperUInt64Value: TypeUint64,
	WrapperInt32Value:  TypeInt32,
	WrapperUInt32Value: TypeUint32,
	WrapperBoolValue:   TypeBool,
	WrapperStringValue: TypeString,
	WrapperBytesValue:  TypeBytes,
}

// WrappedPrimitive returns the primitive type carried by a wrapper.
func WrappedPrimitive(w WrapperType) (PrimitiveType, bool) {
	p, ok := wrapperPrimitive[w]
	return p, ok
}

// Enum represents an enum definition
type Enum struct {
	Name       string       `json:"name" yaml:"name"`                                   // "Status"
	Values     []*EnumValue `json:"values" yaml:"values"`                               // enum values
	AllowAlias bool         `json:"allow_alias,omitempty" yaml:"allow_alias,omitempty"` // allow_alias option
}

// EnumValue represents an enum value
type EnumValue struct {
	Name   string `json:"name" yaml:"name"`     // "ACTIVE"
	Number int32  `json:"number" yaml:"number"` // 1
}

// Default returns the number of the first declared value, which is the
// enum's default in proto2. Enums without values default to zero.
func (e *Enum) Default() int32 {
	if len(e.Values) == 0 {
		return 0
	}
	return e.Values[0].Number
}

// ValueByName returns the number for a value name.
func (e *Enum) ValueByName(name string) (int32, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Number, true
		}
	}
	return 0, false
}

// NameOf returns the first value name declared for number.
func (e *Enum) NameOf(number int32) (string, bool) {
	for _, v := range e.Values {
		if v.Number == number {
			return v.Name, true
		}
	}
	return "", false
}
