package manifest

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	//go:embed schema/package.schema.json
	packageSchemaBytes []byte

	//go:embed schema/install.schema.json
	installSchemaBytes []byte
)

var (
	packageSchema = &lazySchema{url: "package.schema.json", raw: &packageSchemaBytes}
	installSchema = &lazySchema{url: "install.schema.json", raw: &installSchemaBytes}
	printer       = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/jupyterlab/_build/load")
	Message string
	Keyword string // Schema keyword that failed
}

// String formats the issue for display.
func (i ValidationIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// lazySchema compiles an embedded schema on first use.
type lazySchema struct {
	url  string
	raw  *[]byte
	once sync.Once
	s    *jsonschema.Schema
	err  error
}

func (l *lazySchema) get() (*jsonschema.Schema, error) {
	l.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(*l.raw))
		if err != nil {
			l.err = fmt.Errorf("unmarshaling schema %s: %w", l.url, err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(l.url, doc); err != nil {
			l.err = fmt.Errorf("adding schema resource %s: %w", l.url, err)
			return
		}
		l.s, l.err = c.Compile(l.url)
		if l.err != nil {
			l.err = fmt.Errorf("compiling schema %s: %w", l.url, l.err)
		}
	})
	return l.s, l.err
}

// ValidatePackage validates raw package.json bytes.
// The error return is for malformed JSON or schema compilation failures;
// schema violations are reported in the ValidationResult.
func ValidatePackage(data []byte) (*ValidationResult, error) {
	return validate(packageSchema, data)
}

// ValidateInstall validates raw install.json bytes.
func ValidateInstall(data []byte) (*ValidationResult, error) {
	return validate(installSchema, data)
}

// ValidatePackageFile reads and validates a package.json file.
func ValidatePackageFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ValidatePackage(data)
}

// ValidateInstallFile reads and validates an install.json file.
func ValidateInstallFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ValidateInstall(data)
}

func validate(ls *lazySchema, data []byte) (*ValidationResult, error) {
	schema, err := ls.get()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}

	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// extractIssues flattens the ValidationError tree into its leaf failures,
// dropping repeats. Combinator keywords only group their causes and are skipped.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	seen := make(map[ValidationIssue]struct{})

	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		for _, cause := range e.Causes {
			walk(cause)
		}
		if len(e.Causes) > 0 || e.ErrorKind == nil {
			return
		}
		kw := e.ErrorKind.KeywordPath()
		if len(kw) == 0 {
			return
		}
		switch keyword := kw[len(kw)-1]; keyword {
		case "allOf", "anyOf", "oneOf", "$ref":
			return
		default:
			issue := ValidationIssue{
				Path:    pointer(e.InstanceLocation),
				Message: e.ErrorKind.LocalizedString(printer),
				Keyword: keyword,
			}
			if _, dup := seen[issue]; dup {
				return
			}
			seen[issue] = struct{}{}
			issues = append(issues, issue)
		}
	}
	walk(ve)

	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	return issues
}

// pointer renders an instance location as a JSON pointer; the document root is "".
func pointer(loc []string) string {
	if len(loc) == 0 {
		return ""
	}
	return "/" + strings.Join(loc, "/")
}
