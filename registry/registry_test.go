package registry

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/anirudhraja/protocodec/dynamic"
	"github.com/anirudhraja/protocodec/internal/testpb"
	"github.com/anirudhraja/protocodec/schema"
	"github.com/anirudhraja/protocodec/wire"
	"github.com/anirudhraja/protocodec/wkt"
)

func primitive(name string, num int32, p schema.PrimitiveType) *schema.Field {
	return &schema.Field{Name: name, Number: num, Type: schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: p}}
}

func messageField(name string, num int32, typeName string) *schema.Field {
	return &schema.Field{Name: name, Number: num, Type: schema.FieldType{Kind: schema.KindMessage, MessageType: typeName}}
}

func enumField(name string, num int32, typeName string) *schema.Field {
	return &schema.Field{Name: name, Number: num, Type: schema.FieldType{Kind: schema.KindEnum, EnumType: typeName}}
}

func repoOf(files ...*schema.ProtoFile) *schema.ProtoRepo {
	repo := &schema.ProtoRepo{ProtoFiles: make(map[string]*schema.ProtoFile)}
	for _, f := range files {
		if f.Syntax == "" {
			f.Syntax = schema.SyntaxProto3
		}
		repo.ProtoFiles[f.Name] = f
	}
	return repo
}

func newRegistry(t *testing.T, repo *schema.ProtoRepo, opts ...Option) *Registry {
	t.Helper()
	r, err := New(repo, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

var wellKnownNames = []string{
	"google.protobuf.Any",
	"google.protobuf.BoolValue",
	"google.protobuf.BytesValue",
	"google.protobuf.DoubleValue",
	"google.protobuf.Duration",
	"google.protobuf.Empty",
	"google.protobuf.FloatValue",
	"google.protobuf.Int32Value",
	"google.protobuf.Int64Value",
	"google.protobuf.StringValue",
	"google.protobuf.Timestamp",
	"google.protobuf.UInt32Value",
	"google.protobuf.UInt64Value",
}

func TestNew_NilRepo(t *testing.T) {
	r := newRegistry(t, nil)
	if diff := cmp.Diff(wellKnownNames, r.ListMessages()); diff != "" {
		t.Errorf("ListMessages mismatch (-want +got):\n%s", diff)
	}
	if len(r.ListEnums()) != 0 {
		t.Errorf("ListEnums = %v, want none", r.ListEnums())
	}
}

func TestGetFullName(t *testing.T) {
	tests := []struct {
		pkg, name, want string
	}{
		{"", "User", "User"},
		{"example", "User", "example.User"},
		{"com.example.api", "User", "com.example.api.User"},
	}
	for _, tt := range tests {
		if got := getFullName(tt.pkg, tt.name); got != tt.want {
			t.Errorf("getFullName(%q, %q) = %q, want %q", tt.pkg, tt.name, got, tt.want)
		}
	}
}

func TestGetReferencedType(t *testing.T) {
	entities := map[string]struct{}{
		"outer.inner.Parent":       {},
		"outer.inner.Parent.Child": {},
		"outer.inner.Sibling":      {},
		"outer.Sibling":            {},
		"outer.Top":                {},
		"other.Thing":              {},
	}
	tests := []struct {
		name     string
		typeName string
		scope    string
		want     string
		wantErr  string
	}{
		{"nested type", "Child", "outer.inner.Parent", "outer.inner.Parent.Child", ""},
		{"self reference", "Child", "outer.inner.Parent.Child", "outer.inner.Parent.Child", ""},
		{"innermost scope wins", "Sibling", "outer.inner.Parent", "outer.inner.Sibling", ""},
		{"outer scope", "Top", "outer.inner.Parent", "outer.Top", ""},
		{"relative path", "Parent.Child", "outer.inner", "outer.inner.Parent.Child", ""},
		{"other package", "other.Thing", "outer.inner.Parent", "other.Thing", ""},
		{"leading dot", ".outer.Sibling", "outer.inner.Parent", "outer.Sibling", ""},
		{"leading dot missing", ".Sibling", "outer.inner", "", "fully qualified"},
		{"not found", "Missing", "outer.inner", "", "unable to resolve type name: Missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getReferencedType(tt.typeName, tt.scope, entities)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("getReferencedType: %v", err)
			}
			if got != tt.want {
				t.Errorf("getReferencedType(%q, %q) = %q, want %q", tt.typeName, tt.scope, got, tt.want)
			}
		})
	}
}

func resolutionRepo() *schema.ProtoRepo {
	parent := &schema.Message{
		Name: "Parent",
		Fields: []*schema.Field{
			messageField("child", 1, "Child"),
			messageField("sibling", 2, "Sibling"),
			messageField("thing", 3, "other.Thing"),
			messageField("top", 4, ".outer.Top"),
			enumField("kind", 5, "Kind"),
			messageField("at", 6, "google.protobuf.Timestamp"),
			{
				Name:   "by_id",
				Number: 7,
				Type: schema.FieldType{
					Kind:     schema.KindMap,
					MapKey:   &schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: schema.TypeInt64},
					MapValue: &schema.FieldType{Kind: schema.KindMessage, MessageType: "Child"},
				},
			},
		},
		NestedTypes: []*schema.Message{{
			Name:   "Child",
			Fields: []*schema.Field{messageField("next", 1, "Child")},
		}},
		NestedEnums: []*schema.Enum{{Name: "Kind", Values: []*schema.EnumValue{{Name: "A", Number: 0}}}},
	}
	return repoOf(
		&schema.ProtoFile{
			Name:     "inner.proto",
			Package:  "outer.inner",
			Messages: []*schema.Message{parent, {Name: "Sibling"}},
		},
		&schema.ProtoFile{
			Name:     "outer.proto",
			Package:  "outer",
			Syntax:   schema.SyntaxProto2,
			Messages: []*schema.Message{{Name: "Top"}, {Name: "Sibling"}},
		},
		&schema.ProtoFile{
			Name:     "other.proto",
			Package:  "other",
			Messages: []*schema.Message{{Name: "Thing"}},
		},
	)
}

func TestBuildDefinitions_Success(t *testing.T) {
	r := newRegistry(t, resolutionRepo())
	parent, err := r.FindMessage("outer.inner.Parent")
	if err != nil {
		t.Fatalf("FindMessage: %v", err)
	}

	got := map[string]string{}
	for _, f := range parent.Fields {
		switch f.Type.Kind {
		case schema.KindMessage:
			got[f.Name] = f.Type.MessageType
		case schema.KindEnum:
			got[f.Name] = f.Type.EnumType
		case schema.KindMap:
			got[f.Name] = f.Type.MapValue.MessageType
		}
	}
	want := map[string]string{
		"child":   "outer.inner.Parent.Child",
		"sibling": "outer.inner.Sibling",
		"thing":   "other.Thing",
		"top":     "outer.Top",
		"kind":    "outer.inner.Parent.Kind",
		"at":      "google.protobuf.Timestamp",
		"by_id":   "outer.inner.Parent.Child",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("resolved names mismatch (-want +got):\n%s", diff)
	}

	child, err := r.FindMessage("outer.inner.Parent.Child")
	if err != nil {
		t.Fatalf("FindMessage(Child): %v", err)
	}
	if child.Fields[0].Type.MessageType != "outer.inner.Parent.Child" {
		t.Errorf("self reference resolved to %q", child.Fields[0].Type.MessageType)
	}
	if child.Syntax != schema.SyntaxProto3 {
		t.Errorf("nested message syntax = %q, want inherited proto3", child.Syntax)
	}
	if top, _ := r.FindMessage("outer.Top"); top.Syntax != schema.SyntaxProto2 {
		t.Errorf("outer.Top syntax = %q, want proto2", top.Syntax)
	}
}

func TestBuildDefinitions_Errors(t *testing.T) {
	withField := func(f *schema.Field) *schema.ProtoRepo {
		return repoOf(&schema.ProtoFile{
			Name:     "a.proto",
			Package:  "a",
			Messages: []*schema.Message{{Name: "M", Fields: []*schema.Field{f}}},
		})
	}
	tests := []struct {
		name    string
		repo    *schema.ProtoRepo
		wantErr string
	}{
		{"invalid message type", withField(messageField("f", 1, "Missing")), "a.M.f: unable to resolve type name: Missing"},
		{"invalid enum type", withField(enumField("f", 1, "Missing")), "unable to resolve type name: Missing"},
		{"message used as enum", withField(enumField("f", 1, "M")), "unable to resolve type name: M"},
		{"unknown primitive", withField(primitive("f", 1, "int128")), `unknown primitive type "int128"`},
		{
			"unknown wrapper",
			withField(&schema.Field{Name: "f", Number: 1, Type: schema.FieldType{Kind: schema.KindWrapper, WrapperType: "google.protobuf.Int8Value"}}),
			"unknown wrapper type",
		},
		{"unknown kind", withField(&schema.Field{Name: "f", Number: 1, Type: schema.FieldType{Kind: "service"}}), `unknown type kind "service"`},
		{
			"map without value",
			withField(&schema.Field{Name: "f", Number: 1, Type: schema.FieldType{
				Kind:   schema.KindMap,
				MapKey: &schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: schema.TypeString},
			}}),
			"map field without key or value type",
		},
		{
			"duplicate message",
			repoOf(
				&schema.ProtoFile{Name: "a.proto", Package: "a", Messages: []*schema.Message{{Name: "M"}}},
				&schema.ProtoFile{Name: "b.proto", Package: "a", Messages: []*schema.Message{{Name: "M"}}},
			),
			"b.proto: duplicate message a.M",
		},
		{
			"duplicate enum",
			repoOf(&schema.ProtoFile{
				Name:    "a.proto",
				Package: "a",
				Enums:   []*schema.Enum{{Name: "E"}, {Name: "E"}},
			}),
			"duplicate enum a.E",
		},
		{
			"duplicate nested message",
			repoOf(&schema.ProtoFile{
				Name:    "a.proto",
				Package: "a",
				Messages: []*schema.Message{
					{Name: "M", NestedTypes: []*schema.Message{{Name: "N"}}},
					{Name: "M.N"},
				},
			}),
			"duplicate message a.M.N",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.repo)
			if err == nil {
				t.Fatal("New succeeded")
			}
			if !strings.HasPrefix(err.Error(), "failed to build symbol table: ") {
				t.Errorf("error %q lacks the symbol table prefix", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func extensionRepo(exts ...*schema.Field) *schema.ProtoRepo {
	return repoOf(&schema.ProtoFile{
		Name:    "ext.proto",
		Package: "ext",
		Syntax:  schema.SyntaxProto2,
		Messages: []*schema.Message{
			{Name: "Base", Fields: []*schema.Field{primitive("id", 1, schema.TypeInt32)}},
			{
				Name: "Holder",
				Extensions: []*schema.Field{{
					Name:     "holder_note",
					Number:   101,
					Extendee: "Base",
					Type:     schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: schema.TypeString},
				}},
			},
		},
		Extensions: exts,
	})
}

func TestBuildExtensions(t *testing.T) {
	note := &schema.Field{
		Name:     "note",
		Number:   100,
		Extendee: "Base",
		Type:     schema.FieldType{Kind: schema.KindMessage, MessageType: "Holder"},
	}
	r := newRegistry(t, extensionRepo(note))

	f, ok := r.FindExtension("ext.Base", 100)
	if !ok {
		t.Fatal("FindExtension(ext.Base, 100) not found")
	}
	if f.Extendee != "ext.Base" || f.Type.MessageType != "ext.Holder" {
		t.Errorf("extension not resolved: extendee %q, type %q", f.Extendee, f.Type.MessageType)
	}
	if _, ok := r.FindExtension("ext.Base", 101); !ok {
		t.Error("message-scoped extension not registered")
	}
	if _, ok := r.FindExtension("ext.Base", 1); ok {
		t.Error("regular field reported as an extension")
	}
	if _, ok := r.FindExtension("ext.Holder", 100); ok {
		t.Error("extension registered on the wrong message")
	}
}

func TestBuildExtensions_Errors(t *testing.T) {
	ext := func(num int32, extendee string) *schema.Field {
		return &schema.Field{
			Name:     "x",
			Number:   num,
			Extendee: extendee,
			Type:     schema.FieldType{Kind: schema.KindPrimitive, PrimitiveType: schema.TypeBool},
		}
	}
	tests := []struct {
		name    string
		exts    []*schema.Field
		wantErr string
	}{
		{"unknown extendee", []*schema.Field{ext(100, "Missing")}, "unable to resolve type name: Missing"},
		{"go type extendee", []*schema.Field{ext(100, "google.protobuf.Empty")}, `unknown extendee "google.protobuf.Empty"`},
		{"collides with field", []*schema.Field{ext(1, "Base")}, "ext.Base already declares field 1"},
		{"extended twice", []*schema.Field{ext(100, "Base"), ext(100, "Base")}, "ext.Base field 100 extended twice"},
		{"collides with scoped extension", []*schema.Field{ext(101, "Base")}, "field 101 extended twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(extensionRepo(tt.exts...))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func lookupRepo() *schema.ProtoRepo {
	return repoOf(
		&schema.ProtoFile{
			Name:     "a.proto",
			Package:  "a",
			Messages: []*schema.Message{{Name: "User", NestedTypes: []*schema.Message{{Name: "Address"}}}},
			Enums:    []*schema.Enum{{Name: "Status", Values: []*schema.EnumValue{{Name: "OK", Number: 0}}}},
		},
		&schema.ProtoFile{
			Name:     "b.proto",
			Package:  "b",
			Messages: []*schema.Message{{Name: "User"}, {Name: "Order"}},
		},
	)
}

func TestGetMessage(t *testing.T) {
	r := newRegistry(t, lookupRepo())
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr string
	}{
		{"fully qualified", "a.User", "a.User", ""},
		{"leading dot", ".b.User", "b.User", ""},
		{"unique suffix", "Order", "b.Order", ""},
		{"nested suffix", "User.Address", "a.User.Address", ""},
		{"ambiguous", "User", "", "message not found: User is ambiguous: a.User, b.User"},
		{"not found", "Missing", "", "message not found: Missing"},
		{"partial name", "rder", "", "message not found: rder"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fullName, msg, err := r.GetMessage(tt.input)
			if tt.wantErr != "" {
				if err == nil || err.Error() != tt.wantErr {
					t.Errorf("GetMessage(%q) error = %v, want %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetMessage(%q): %v", tt.input, err)
			}
			if fullName != tt.want {
				t.Errorf("GetMessage(%q) = %q, want %q", tt.input, fullName, tt.want)
			}
			if msg == nil || !strings.HasSuffix(tt.want, msg.Name) {
				t.Errorf("GetMessage(%q) returned definition %+v", tt.input, msg)
			}
		})
	}
}

func TestGetEnum(t *testing.T) {
	r := newRegistry(t, lookupRepo())
	fullName, enum, err := r.GetEnum("Status")
	if err != nil {
		t.Fatalf("GetEnum: %v", err)
	}
	if fullName != "a.Status" || enum.Name != "Status" {
		t.Errorf("GetEnum = (%q, %+v)", fullName, enum)
	}
	if _, _, err := r.GetEnum("User"); err == nil || !strings.HasPrefix(err.Error(), "enum not found") {
		t.Errorf("GetEnum(User) error = %v", err)
	}
}

func TestFindErrors(t *testing.T) {
	r := newRegistry(t, lookupRepo())
	if _, err := r.FindMessage("User"); !errors.Is(err, dynamic.ErrUnknownType) {
		t.Errorf("FindMessage(User) error = %v, want %v", err, dynamic.ErrUnknownType)
	}
	if _, err := r.FindEnum("a.Missing"); !errors.Is(err, dynamic.ErrUnknownType) {
		t.Errorf("FindEnum error = %v, want %v", err, dynamic.ErrUnknownType)
	}
	if _, err := r.New("a.Missing"); !errors.Is(err, dynamic.ErrUnknownType) {
		t.Errorf("New(a.Missing) error = %v", err)
	}
}

func TestListMessages(t *testing.T) {
	r := newRegistry(t, lookupRepo())
	want := append([]string{"a.User", "a.User.Address", "b.Order", "b.User"}, wellKnownNames...)
	if diff := cmp.Diff(want, r.ListMessages()); diff != "" {
		t.Errorf("ListMessages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a.Status"}, r.ListEnums()); diff != "" {
		t.Errorf("ListEnums mismatch (-want +got):\n%s", diff)
	}
	if !r.HasMessage("google.protobuf.Timestamp") || !r.HasMessage("a.User.Address") || r.HasMessage("User") {
		t.Error("HasMessage disagrees with ListMessages")
	}
}

func TestNew_GoTypesAndDynamic(t *testing.T) {
	repo, err := testpb.Repo()
	if err != nil {
		t.Fatal(err)
	}
	r := newRegistry(t, repo, WithType(".protocodec.test.Scalars", func() wire.Message { return new(testpb.Scalars) }))

	m, err := r.New("protocodec.test.Scalars")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.(*testpb.Scalars); !ok {
		t.Errorf("New returned %T, want *testpb.Scalars", m)
	}

	dm, err := r.NewDynamic("protocodec.test.Scalars")
	if err != nil {
		t.Fatalf("NewDynamic: %v", err)
	}
	if dm.FullName() != "protocodec.test.Scalars" {
		t.Errorf("NewDynamic FullName = %q", dm.FullName())
	}

	m, err = r.New(".protocodec.test.Nested")
	if err != nil {
		t.Fatalf("New(Nested): %v", err)
	}
	if _, ok := m.(*dynamic.Message); !ok {
		t.Errorf("New(Nested) returned %T, want *dynamic.Message", m)
	}

	// Both forms of Scalars share one encoding.
	go1 := &testpb.Scalars{Int32: 9, Name: "x"}
	if err := dm.FromMap(map[string]any{"int32": 9, "name": "x"}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(wire.Marshal(go1), wire.Marshal(dm)); diff != "" {
		t.Errorf("encoding mismatch (-want +got):\n%s", diff)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	repo, err := testpb.Repo()
	if err != nil {
		t.Fatal(err)
	}
	newRegistry(t, repo,
		WithLogger(logger),
		WithType("protocodec.test.Scalars", func() wire.Message { return new(testpb.Scalars) }),
	)

	out := buf.String()
	for _, want := range []string{
		`"message":"registry built"`,
		`"go_types":14`,
		`"message":"schema message shadowed by Go type"`,
		`"extension":"note"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func TestWellKnownTypes(t *testing.T) {
	r := newRegistry(t, nil)
	for _, name := range wellKnownNames {
		m, err := r.New(name)
		if err != nil {
			t.Errorf("New(%s): %v", name, err)
			continue
		}
		named, ok := m.(wkt.NamedMessage)
		if !ok || named.FullName() != name {
			t.Errorf("New(%s) returned %T", name, m)
		}
	}
	if _, err := r.NewDynamic("google.protobuf.Timestamp"); err == nil {
		t.Error("NewDynamic of a Go-only type succeeded")
	}
}
