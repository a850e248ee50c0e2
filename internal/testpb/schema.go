package testpb

import "github.com/anirudhraja/protocodec/schema"

// SchemaYAML describes the types in this package, plus a few extra ones,
// in the YAML form read by schema.ParseRepo. Dynamic messages built from it
// encode byte for byte like the Go types. Maps leaves out the priorities
// field: a proto3 message cannot hold a proto2 enum.
const SchemaYAML = `
proto_files:
  test.proto:
    package: protocodec.test
    syntax: proto3
    enums:
      - name: Color
        values:
          - {name: COLOR_UNSPECIFIED, number: 0}
          - {name: RED, number: 1}
          - {name: GREEN, number: 2}
          - {name: BLUE, number: 3}
    messages:
      - name: Scalars
        fields:
          - {name: double, number: 1, type: {kind: primitive, primitive_type: double}}
          - {name: float, number: 2, type: {kind: primitive, primitive_type: float}}
          - {name: int32, number: 3, type: {kind: primitive, primitive_type: int32}}
          - {name: int64, number: 4, type: {kind: primitive, primitive_type: int64}}
          - {name: uint32, number: 5, type: {kind: primitive, primitive_type: uint32}}
          - {name: uint64, number: 6, type: {kind: primitive, primitive_type: uint64}}
          - {name: sint32, number: 7, type: {kind: primitive, primitive_type: sint32}}
          - {name: sint64, number: 8, type: {kind: primitive, primitive_type: sint64}}
          - {name: fixed32, number: 9, type: {kind: primitive, primitive_type: fixed32}}
          - {name: fixed64, number: 10, type: {kind: primitive, primitive_type: fixed64}}
          - {name: sfixed32, number: 11, type: {kind: primitive, primitive_type: sfixed32}}
          - {name: sfixed64, number: 12, type: {kind: primitive, primitive_type: sfixed64}}
          - {name: bool, number: 13, type: {kind: primitive, primitive_type: bool}}
          - {name: name, number: 14, type: {kind: primitive, primitive_type: string}}
          - {name: payload, number: 15, type: {kind: primitive, primitive_type: bytes}}
          - {name: color, number: 16, type: {kind: enum, enum_type: Color}}
      - name: Repeated
        fields:
          - {name: ints, number: 1, label: repeated, type: {kind: primitive, primitive_type: int32}}
          - {name: sints, number: 2, label: repeated, packed: false, type: {kind: primitive, primitive_type: sint64}}
          - {name: doubles, number: 3, label: repeated, type: {kind: primitive, primitive_type: double}}
          - {name: fixeds, number: 4, label: repeated, packed: false, type: {kind: primitive, primitive_type: fixed32}}
          - {name: strings, number: 5, label: repeated, type: {kind: primitive, primitive_type: string}}
          - {name: blobs, number: 6, label: repeated, type: {kind: primitive, primitive_type: bytes}}
          - {name: children, number: 7, label: repeated, type: {kind: message, message_type: Scalars}}
          - {name: colors, number: 8, label: repeated, type: {kind: enum, enum_type: Color}}
          - {name: flags, number: 9, label: repeated, type: {kind: primitive, primitive_type: bool}}
      - name: Maps
        fields:
          - name: counts
            number: 1
            type: {kind: map, map_key: {kind: primitive, primitive_type: string}, map_value: {kind: primitive, primitive_type: int32}}
          - name: names
            number: 2
            type: {kind: map, map_key: {kind: primitive, primitive_type: int32}, map_value: {kind: primitive, primitive_type: string}}
          - name: items
            number: 3
            type: {kind: map, map_key: {kind: primitive, primitive_type: string}, map_value: {kind: message, message_type: Scalars}}
          - name: flags
            number: 4
            type: {kind: map, map_key: {kind: primitive, primitive_type: bool}, map_value: {kind: primitive, primitive_type: bytes}}
          - name: colors
            number: 5
            type: {kind: map, map_key: {kind: primitive, primitive_type: string}, map_value: {kind: enum, enum_type: Color}}
          - name: weights
            number: 7
            type: {kind: map, map_key: {kind: primitive, primitive_type: sint64}, map_value: {kind: primitive, primitive_type: double}}
      - name: Wrapped
        fields:
          - {name: count, number: 1, type: {kind: wrapper, wrapper_type: google.protobuf.Int32Value}}
          - {name: label, number: 2, type: {kind: wrapper, wrapper_type: google.protobuf.StringValue}}
          - {name: created_at, number: 3, type: {kind: message, message_type: google.protobuf.Timestamp}}
          - {name: ttl, number: 4, type: {kind: message, message_type: .google.protobuf.Duration}}
          - {name: extra, number: 5, type: {kind: message, message_type: google.protobuf.Any}}
          - {name: maybe, number: 6, proto3_optional: true, type: {kind: primitive, primitive_type: int32}}
          - {name: display_name, number: 7, json_name: title, type: {kind: primitive, primitive_type: string}}
  nested.proto:
    package: protocodec.test
    syntax: proto2
    enums:
      - name: Priority
        values:
          - {name: NORMAL, number: 2}
          - {name: LOW, number: 1}
          - {name: HIGH, number: 3}
    messages:
      - name: Nested
        fields:
          - {name: child, number: 1, label: optional, type: {kind: message, message_type: Nested}}
          - {name: value, number: 2, label: optional, default_value: "7", type: {kind: primitive, primitive_type: int32}}
          - {name: inner, number: 3, label: optional, type: {kind: group, message_type: Inner}}
          - {name: entries, number: 4, label: repeated, type: {kind: group, message_type: Inner}}
          - {name: branches, number: 9, label: repeated, type: {kind: message, message_type: Nested}}
          - {name: priority, number: 10, label: optional, type: {kind: enum, enum_type: Priority}}
        oneof_groups:
          - name: payload
            fields:
              - {name: label, number: 6, type: {kind: primitive, primitive_type: string}}
              - {name: id, number: 7, type: {kind: primitive, primitive_type: int64}}
              - {name: detail, number: 8, type: {kind: message, message_type: Scalars}}
        nested_types:
          - name: Inner
            fields:
              - {name: a, number: 1, label: optional, type: {kind: primitive, primitive_type: int32}}
              - {name: b, number: 2, label: optional, type: {kind: primitive, primitive_type: string}}
      - name: Tasks
        fields:
          - name: by_name
            number: 1
            type: {kind: map, map_key: {kind: primitive, primitive_type: string}, map_value: {kind: enum, enum_type: Priority}}
          - {name: codes, number: 2, label: repeated, type: {kind: primitive, primitive_type: int32}}
    extensions:
      - {name: note, number: 100, label: optional, extendee: Nested, type: {kind: primitive, primitive_type: string}}
      - {name: codes, number: 101, label: repeated, extendee: Nested, type: {kind: primitive, primitive_type: int32}}
`

// Repo parses SchemaYAML. Each call returns a fresh repository.
func Repo() (*schema.ProtoRepo, error) {
	return schema.ParseRepo([]byte(SchemaYAML))
}
