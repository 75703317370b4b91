package contracts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"property-search-service/schemas"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Имена контрактов, которыми пользуются адаптеры
const (
	SearchRequestedEvent = "SearchRequestedEvent"
	SearchMatchedEvent   = "SearchMatchedEvent"
	PropertyQueryRequest = "PropertyQueryRequest"
	FindPropertyRequest  = "FindPropertyRequest"

	Version1 = "1.0.0"
)

// Базовый адрес нужен только для разрешения относительных $ref, по сети ничего не загружается
const resourceBase = "https://schemas.property-search.local/"

var schemaRoots = map[string]string{
	"events":   "Event",
	"requests": "Request",
}

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func registry() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchemas, compileErr = compileAll(schemas.SchemasFS)
	})
	return compiledSchemas, compileErr
}

// compileAll сначала регистрирует все файлы как ресурсы (для $ref между схемами), затем компилирует.
func compileAll(fsys fs.FS) (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	var paths []string
	for root := range schemaRoots {
		err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".json") {
				return nil
			}
			file, err := fsys.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()
			if err := compiler.AddResource(resourceBase+path, file); err != nil {
				return fmt.Errorf("add schema resource %s: %w", path, err)
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk schemas under %s: %w", root, err)
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(paths))
	for _, path := range paths {
		key := generateKeyFromPath(path)
		if key == "" {
			return nil, fmt.Errorf("unexpected schema path %s", path)
		}
		schema, err := compiler.Compile(resourceBase + path)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", path, err)
		}
		compiled[key] = schema
	}
	return compiled, nil
}

// generateKeyFromPath: "events/search-requested/v1.json" -> "SearchRequestedEvent/1.0.0",
// "requests/property-query/v1.json" -> "PropertyQueryRequest/1.0.0".
func generateKeyFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, ".json"), "/")
	if len(parts) != 3 {
		return ""
	}
	suffix, ok := schemaRoots[parts[0]]
	if !ok || !strings.HasPrefix(parts[2], "v") {
		return ""
	}

	caser := cases.Title(language.English)
	var name strings.Builder
	for _, p := range strings.Split(parts[1], "-") {
		name.WriteString(caser.String(p))
	}
	name.WriteString(suffix)

	return fmt.Sprintf("%s/%s.0.0", name.String(), strings.TrimPrefix(parts[2], "v"))
}

func lookup(name, version string) (*jsonschema.Schema, error) {
	compiled, err := registry()
	if err != nil {
		return nil, err
	}
	schema, ok := compiled[name+"/"+version]
	if !ok {
		return nil, fmt.Errorf("schema '%s' version '%s' not found", name, version)
	}
	return schema, nil
}

// Validate проверяет тело сообщения или запроса по схеме.
func Validate(name, version string, body []byte) error {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("body is not a valid JSON: %w", err)
	}
	return ValidateValue(name, version, v)
}

// ValidateValue проверяет уже разобранный JSON (map[string]interface{}, []interface{}, float64 и т.д.).
func ValidateValue(name, version string, v interface{}) error {
	schema, err := lookup(name, version)
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
