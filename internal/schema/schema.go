package schema

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Schema is one loaded projection definition.
type Schema struct {
	Name    string
	Version string
	Algebra []string // formula strings in pipeline order
}

// LoadError reports a failure to load or decode a schema directory.
type LoadError struct {
	Dir     string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Dir, e.Message)
}

// Load reads all CUE files in dir and extracts the schema definition.
func Load(dir string) (*Schema, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Dir: dir, Message: "directory not found"}
	}
	if err != nil {
		return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("accessing directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Dir: dir, Message: "not a directory"}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Dir: dir, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return decode(dir, value)
}

// decode extracts the schema fields from a built CUE value.
func decode(dir string, value cue.Value) (*Schema, error) {
	s := &Schema{}

	nameVal := value.LookupPath(cue.ParsePath("schema.name"))
	if !nameVal.Exists() {
		return nil, &LoadError{Dir: dir, Message: "missing schema.name"}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("schema.name: %v", err)}
	}
	s.Name = name

	versionVal := value.LookupPath(cue.ParsePath("schema.version"))
	if versionVal.Exists() {
		version, err := versionVal.String()
		if err != nil {
			return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("schema.version: %v", err)}
		}
		s.Version = version
	}

	algebraVal := value.LookupPath(cue.ParsePath("projection.algebra"))
	if !algebraVal.Exists() {
		return nil, &LoadError{Dir: dir, Message: "missing projection.algebra"}
	}
	iter, err := algebraVal.List()
	if err != nil {
		return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("projection.algebra is not a list: %v", err)}
	}
	for iter.Next() {
		formula, err := iter.Value().String()
		if err != nil {
			return nil, &LoadError{Dir: dir, Message: fmt.Sprintf("projection.algebra element: %v", err)}
		}
		s.Algebra = append(s.Algebra, formula)
	}

	return s, nil
}
