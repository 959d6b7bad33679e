package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultHost = "localhost"
	DefaultPort = 3939

	FallbackDirectoryName = "Personal"
	FallbackDirectoryPath = "./initiatives"
)

// ErrInvalid marks a config document rejected by validation.
var ErrInvalid = errors.New("invalid config")

// DefaultInitiativeTypes is used when the config file does not list any.
var DefaultInitiativeTypes = []string{"Discovery", "PoC", "Platform change", "Regulatory", "Growth", "Infra"}

type Server struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Directory is one named root holding initiative directories.
type Directory struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Default bool   `json:"default"`
}

// Validate implements validation.Validatable.
func (d Directory) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.By(notBlank("name"))),
		validation.Field(&d.Path, validation.By(notBlank("path"))),
	)
}

// Document mirrors config.json. Pointer and nil-slice fields distinguish an
// absent key from an empty one so absent keys can be backfilled. Top-level
// keys the tracker does not know are kept in Extra and written back as-is.
type Document struct {
	Server          *Server     `json:"server"`
	InitiativeTypes []string    `json:"initiativeTypes"`
	Directories     []Directory `json:"directories"`

	Extra map[string]json.RawMessage `json:"-"`
}

// documentFields is the plain field set, without the custom codec.
type documentFields Document

var knownKeys = []string{"server", "initiativeTypes", "directories"}

func (d *Document) UnmarshalJSON(data []byte) error {
	var fields documentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range knownKeys {
		delete(all, key)
	}
	if len(all) == 0 {
		all = nil
	}
	fields.Extra = all
	*d = Document(fields)
	return nil
}

// MarshalJSON writes the known keys first, then extra keys in sorted order.
func (d Document) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(documentFields(d))
	if err != nil || len(d.Extra) == 0 {
		return known, err
	}
	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, key := range slices.Sorted(maps.Keys(d.Extra)) {
		if slices.Contains(knownKeys, key) {
			continue
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		value := d.Extra[key]
		if len(bytes.TrimSpace(value)) == 0 {
			value = json.RawMessage("null")
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Defaults returns the built-in document used when no config file exists.
func Defaults() Document {
	return Document{
		Server:          &Server{Host: DefaultHost, Port: DefaultPort},
		InitiativeTypes: append([]string(nil), DefaultInitiativeTypes...),
		Directories: []Directory{
			{Name: FallbackDirectoryName, Path: FallbackDirectoryPath, Default: true},
		},
	}
}

// Backfill fills absent top-level keys from Defaults.
func (d *Document) Backfill() {
	defaults := Defaults()
	if d.Server == nil {
		d.Server = defaults.Server
	}
	if d.InitiativeTypes == nil {
		d.InitiativeTypes = defaults.InitiativeTypes
	}
	if d.Directories == nil {
		d.Directories = defaults.Directories
	}
}

// Validate checks the shape accepted by a config update: a server block and
// at least one directory, each with a name and path, names unique.
func (d Document) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Server, validation.NotNil.Error("server is required")),
		validation.Field(&d.Directories,
			validation.Required.Error("at least one directory is required"),
			validation.By(uniqueNames),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// NormalizeDefault leaves exactly one directory marked default: the first
// marked one, or the first entry when none is marked.
func (d *Document) NormalizeDefault() {
	if len(d.Directories) == 0 {
		return
	}
	chosen := 0
	for i, dir := range d.Directories {
		if dir.Default {
			chosen = i
			break
		}
	}
	for i := range d.Directories {
		d.Directories[i].Default = i == chosen
	}
}

// Clone returns a deep copy so callers cannot mutate store state.
func (d Document) Clone() Document {
	out := Document{
		InitiativeTypes: slices.Clone(d.InitiativeTypes),
		Directories:     slices.Clone(d.Directories),
	}
	if d.Server != nil {
		server := *d.Server
		out.Server = &server
	}
	if d.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(d.Extra))
		for key, value := range d.Extra {
			out.Extra[key] = bytes.Clone(value)
		}
	}
	return out
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("config.directory."+field+"_required", "each directory must have \"name\" and \"path\"")
		}
		return nil
	}
}

func uniqueNames(value any) error {
	dirs, _ := value.([]Directory)
	seen := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		name := strings.TrimSpace(dir.Name)
		if _, ok := seen[name]; ok {
			return validation.NewError("config.directory.name_duplicate", fmt.Sprintf("directory name %q is used more than once", name))
		}
		seen[name] = struct{}{}
	}
	return nil
}
