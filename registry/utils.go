package registry

import (
	"fmt"
	"strings"
)

// getReferencedType resolves a field's type name against the scope it is
// declared in, following protoc's rules: a leading dot means fully
// qualified, otherwise the innermost enclosing scope that defines the name
// wins, and finally the name is tried as already qualified.
// Ref - https://github.com/protocolbuffers/protobuf/blob/b7a5772caf08d62a20fd1bca258f501fa4db022c/src/google/protobuf/descriptor.proto#L186-L191
func getReferencedType(typeName, scope string, known map[string]struct{}) (string, error) {
	if qualified, ok := strings.CutPrefix(typeName, "."); ok {
		if _, found := known[qualified]; found {
			return qualified, nil
		}
		return "", fmt.Errorf("unable to resolve fully qualified (dot-prefixed) type name: %s", qualified)
	}
	for s := scope; s != ""; s = parentScope(s) {
		if candidate := s + "." + typeName; hasName(known, candidate) {
			return candidate, nil
		}
	}
	if hasName(known, typeName) {
		return typeName, nil
	}
	return "", fmt.Errorf("unable to resolve type name: %s", typeName)
}

// parentScope drops the last component of a dotted scope.
func parentScope(scope string) string {
	if i := strings.LastIndexByte(scope, '.'); i >= 0 {
		return scope[:i]
	}
	return ""
}

func hasName(known map[string]struct{}, name string) bool {
	_, ok := known[name]
	return ok
}

func getFullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
