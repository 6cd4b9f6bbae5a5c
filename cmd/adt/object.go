package main

import (
	"fmt"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/objects"
)

// objectKinds lists the kinds accepted on the command line.
var objectKinds = []string{"program", "include", "class", "interface", "function-group", "function", "package"}

// newObject builds the object addressed by kind and name. Function modules
// are named GROUP/FUNCTION.
func newObject(kind, name string, opts ...objects.Option) (objects.Object, error) {
	switch strings.ToLower(kind) {
	case "program", "prog":
		return objects.NewProgram(name, opts...), nil
	case "include", "incl":
		return objects.NewInclude(name, "", opts...), nil
	case "class", "clas":
		return objects.NewClass(name, opts...), nil
	case "interface", "intf":
		return objects.NewInterface(name, opts...), nil
	case "function-group", "fugr":
		return objects.NewFunctionGroup(name, opts...), nil
	case "function", "func":
		group, fn, ok := strings.Cut(name, "/")
		if !ok || group == "" || fn == "" {
			return nil, fmt.Errorf("function %q: expected GROUP/FUNCTION", name)
		}
		return objects.NewFunctionModule(fn, group, opts...)
	case "package", "devc":
		return objects.NewPackage(name, opts...), nil
	}
	return nil, fmt.Errorf("unknown object kind %q, use one of %s", kind, strings.Join(objectKinds, ", "))
}

// objectsFromArgs reads KIND NAME [NAME...] arguments.
func objectsFromArgs(args []string, opts ...objects.Option) ([]objects.Object, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("expected KIND NAME..., where KIND is one of %s", strings.Join(objectKinds, ", "))
	}
	var out []objects.Object
	for _, name := range args[1:] {
		obj, err := newObject(args[0], name, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, nil
}
