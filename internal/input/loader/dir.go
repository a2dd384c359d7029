package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/keychord/internal/input/action"
	"github.com/dshills/keychord/internal/input/script"
)

// AttributesFile holds per-child metadata in a directory container.
//
//	[attributes.jump]
//	priority = 1
const AttributesFile = "attributes.toml"

// ModuleExt is the extension of action modules in a directory container.
const ModuleExt = ".lua"

// Attributes is the metadata attached to one child.
type Attributes struct {
	// Priority is an integer or float; absent means unprioritized.
	Priority any `toml:"priority"`
}

// PriorityValue returns the numeric priority, if one is set.
func (a Attributes) PriorityValue() (float64, bool, error) {
	switch v := a.Priority.(type) {
	case nil:
		return 0, false, nil
	case int64:
		return float64(v), true, nil
	case float64:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("priority must be a number, got %T", v)
	}
}

type attributesFile struct {
	Attributes map[string]Attributes `toml:"attributes"`
}

// Dir is a Container over the Lua modules at the top level of a file system.
// Children are labeled by file name without extension and enumerated in
// lexical order.
type Dir struct {
	fsys  fs.FS
	state *script.State
}

// NewDir returns a container that loads modules from fsys into state.
func NewDir(fsys fs.FS, state *script.State) *Dir {
	return &Dir{fsys: fsys, state: state}
}

// Children implements Container.
func (d *Dir) Children() ([]Child, error) {
	attrs, err := d.attributes()
	if err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(d.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading module directory: %w", err)
	}

	var children []Child
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ModuleExt {
			continue
		}
		c := &fileChild{
			dir:   d,
			path:  e.Name(),
			label: strings.TrimSuffix(e.Name(), ModuleExt),
		}
		if a, ok := attrs[c.label]; ok {
			c.priority, c.hasPriority, err = a.PriorityValue()
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", AttributesFile, c.label, err)
			}
		}
		children = append(children, c)
	}
	return children, nil
}

func (d *Dir) attributes() (map[string]Attributes, error) {
	data, err := fs.ReadFile(d.fsys, AttributesFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", AttributesFile, err)
	}

	var f attributesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", AttributesFile, err)
	}
	return f.Attributes, nil
}

type fileChild struct {
	dir         *Dir
	path        string
	label       string
	priority    float64
	hasPriority bool
}

func (c *fileChild) Label() string { return c.label }

func (c *fileChild) Priority() (float64, bool) { return c.priority, c.hasPriority }

func (c *fileChild) Load() (action.Handler, error) {
	src, err := fs.ReadFile(c.dir.fsys, c.path)
	if err != nil {
		return nil, err
	}
	return c.dir.state.LoadModule(c.label, string(src))
}
