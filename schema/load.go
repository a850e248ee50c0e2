package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile decodes a single file description from YAML. A file without a
// syntax line is proto2, matching protoc.
func ParseFile(name string, data []byte) (*ProtoFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	file := &ProtoFile{}
	if err := dec.Decode(file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	if file.Name == "" {
		file.Name = filepath.Base(name)
	}
	if file.Syntax == "" {
		file.Syntax = SyntaxProto2
	}
	if file.Syntax != SyntaxProto2 && file.Syntax != SyntaxProto3 {
		return nil, fmt.Errorf("%s: unsupported syntax %q", name, file.Syntax)
	}
	return file, nil
}

// ParseRepo decodes a whole repository from a YAML document holding a
// proto_files mapping.
func ParseRepo(data []byte) (*ProtoRepo, error) {
	repo := &ProtoRepo{}
	if err := yaml.Unmarshal(data, repo); err != nil {
		return nil, fmt.Errorf("failed to parse schema repository: %w", err)
	}
	if repo.ProtoFiles == nil {
		repo.ProtoFiles = make(map[string]*ProtoFile)
	}
	for key, file := range repo.ProtoFiles {
		if file == nil {
			return nil, fmt.Errorf("schema file %s is empty", key)
		}
		if file.Name == "" {
			file.Name = key
		}
		if file.Syntax == "" {
			file.Syntax = SyntaxProto2
		}
	}
	return repo, nil
}

// LoadRepo reads schema descriptions from path. A file is parsed as a whole
// repository when it holds a proto_files key and as a single file otherwise.
// Directories are walked recursively for .yaml and .yml files.
func LoadRepo(path string) (*ProtoRepo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}

	repo := &ProtoRepo{ProtoFiles: make(map[string]*ProtoFile)}
	if !info.IsDir() {
		if !isSchemaFile(path) {
			return nil, fmt.Errorf("file %s is not a .yaml schema file", path)
		}
		if err := loadInto(repo, path); err != nil {
			return nil, err
		}
		return repo, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSchemaFile(p) {
			return nil
		}
		return loadInto(repo, p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return repo, nil
}

func loadInto(repo *ProtoRepo, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var probe map[string]any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, ok := probe["proto_files"]; ok {
		sub, err := ParseRepo(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		for k, f := range sub.ProtoFiles {
			if _, dup := repo.ProtoFiles[k]; dup {
				return fmt.Errorf("%s: duplicate schema file %s", path, k)
			}
			repo.ProtoFiles[k] = f
		}
		return nil
	}

	file, err := ParseFile(path, data)
	if err != nil {
		return err
	}
	repo.ProtoFiles[path] = file
	return nil
}

func isSchemaFile(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
