package objects

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Fields of objects with ABAP source.
var (
	srcURI      = schema.Attribute("SourceURI", "abapsource:sourceUri")
	srcFixPoint = schema.Attribute("FixPointArithmetic", "abapsource:fixPointArithmetic", schema.WithCodec(schema.BoolCodec))
	srcUnicode  = schema.Attribute("ActiveUnicodeCheck", "abapsource:activeUnicodeCheck", schema.WithCodec(schema.BoolCodec))
	srcLangV1   = schema.Attribute("LanguageVersion", "abapsource:languageVersion", schema.WithVersion("v1"))
	srcLangV2   = schema.Attribute("LanguageVersion", "abapsource:abapLanguageVersion", schema.WithVersion("v2"))

	// SourceObjectType is the parent of every type with source text.
	SourceObjectType = schema.NewType("SourceObject", ObjectType, nil, srcURI, srcFixPoint, srcUnicode)
)

// SourceObject is a repository object with ABAP source.
type SourceObject struct {
	ADTObject
}

// SourceURI returns the source location reported by the service.
func (o *SourceObject) SourceURI() string { return schema.Value[string](o, srcURI) }

// Program types.
var (
	ProgramType = schema.NewType("Program", SourceObjectType, mustDescriptor("program"),
		typeCode("PROG/P"), srcLangV1, srcLangV2)
)

// Program is an executable ABAP report.
type Program struct {
	SourceObject
}

// NewProgram creates a program.
func NewProgram(name string, opts ...Option) *Program {
	p := &Program{}
	p.init(ProgramType, name, buildOptions(opts))
	return p
}

// LanguageVersion returns the ABAP language version. The field is spelled
// differently per object version.
func (p *Program) LanguageVersion() string {
	return schema.Value[string](p, srcLangV1)
}

// SetLanguageVersion changes the ABAP language version.
func (p *Program) SetLanguageVersion(v string) {
	srcLangV1.Set(p, v)
}

// Include types.
var (
	includeContext = schema.Element("Context", "include:contextRef", referenceFactory)

	IncludeType = schema.NewType("Include", SourceObjectType, mustDescriptor("include"),
		typeCode("PROG/I"), includeContext)
)

// Include is an ABAP program include.
type Include struct {
	SourceObject
}

// NewInclude creates an include. An empty master program leaves the
// include without context.
func NewInclude(name, master string, opts ...Option) *Include {
	o := buildOptions(opts)
	i := &Include{}
	i.init(IncludeType, name, o)
	if master != "" {
		m := NewProgram(master, WithVersion(o.version))
		includeContext.Set(i, m.ObjectReference())
	}
	return i
}

// Master returns the reference to the including program, or nil.
func (i *Include) Master() *Reference {
	r, _ := includeContext.Get(i).(*Reference)
	return r
}

// Interface types.
var InterfaceType = schema.NewType("Interface", SourceObjectType, mustDescriptor("interface"),
	typeCode("INTF/OI"))

// Interface is an ABAP OO interface.
type Interface struct {
	SourceObject
}

// NewInterface creates an interface.
func NewInterface(name string, opts ...Option) *Interface {
	i := &Interface{}
	i.init(InterfaceType, name, buildOptions(opts))
	return i
}

// Class include kinds.
const (
	IncludeMain            = "main"
	IncludeDefinitions     = "definitions"
	IncludeImplementations = "implementations"
	IncludeMacros          = "macros"
	IncludeTestClasses     = "testclasses"
)

var (
	clsIncName   = schema.Attribute("Name", "adtcore:name")
	clsIncType   = schema.Attribute("Type", "adtcore:type")
	clsIncKind   = schema.Attribute("IncludeType", "class:includeType")
	clsIncSource = schema.Attribute("SourceURI", "abapsource:sourceUri")

	// ClassIncludeType describes one class:include entry.
	ClassIncludeType = schema.NewType("ClassInclude", nil, nil, clsIncName, clsIncType, clsIncKind, clsIncSource)

	clsFinal      = schema.Attribute("Final", "class:final", schema.WithCodec(schema.BoolCodec))
	clsAbstract   = schema.Attribute("Abstract", "class:abstract", schema.WithCodec(schema.BoolCodec))
	clsVisibility = schema.Attribute("Visibility", "class:visibility")
	clsSuper      = schema.Element("SuperClass", "class:superClassRef", referenceFactory, schema.Always())
	clsIncludes   = schema.List("Includes", "class:include", schema.WithFactory(func(owner schema.Object) schema.Object {
		return newFlags(ClassIncludeType, schema.VersionOf(owner))
	}))

	ClassType = schema.NewType("Class", SourceObjectType, mustDescriptor("class"),
		typeCode("CLAS/OC"), clsFinal, clsAbstract, clsVisibility, clsIncludes, clsSuper)
)

// Class is an ABAP OO class.
type Class struct {
	SourceObject
}

// NewClass creates a final public class.
func NewClass(name string, opts ...Option) *Class {
	c := &Class{}
	c.init(ClassType, name, buildOptions(opts))
	clsFinal.Set(c, true)
	clsVisibility.Set(c, "public")
	return c
}

// Final reports whether the class is final.
func (c *Class) Final() bool { return schema.Value[bool](c, clsFinal) }

// SetFinal changes the final flag.
func (c *Class) SetFinal(final bool) { clsFinal.Set(c, final) }

// Visibility returns the class visibility.
func (c *Class) Visibility() string { return schema.Value[string](c, clsVisibility) }

// SetSuperClass makes the class inherit from super.
func (c *Class) SetSuperClass(super string) {
	clsSuper.Set(c, NewReference(schema.VersionOf(c), "", "CLAS/OC", strings.ToUpper(super)))
}

// SuperClass returns the name of the superclass, or "".
func (c *Class) SuperClass() string {
	if r, ok := clsSuper.Get(c).(*Reference); ok {
		return r.Name()
	}
	return ""
}

// Includes returns the class includes reported by the service.
func (c *Class) Includes() []*Flags {
	return schema.Items[*Flags](clsIncludes.Container(c))
}

// IncludeEditor returns the editor of one class include.
func (c *Class) IncludeEditor(kind string) (schema.Editor, error) {
	switch kind {
	case IncludeMain:
		e, _ := c.Editor()
		return e, nil
	case IncludeDefinitions, IncludeImplementations, IncludeMacros, IncludeTestClasses:
		return schema.Editor{
			URI:         c.URI() + "/includes/" + url.PathEscape(kind),
			ContentType: SourceContentType,
		}, nil
	}
	return schema.Editor{}, fmt.Errorf("%w: class include %q", schema.ErrFormatNotSupported, kind)
}

// Function group types.
var FunctionGroupType = schema.NewType("FunctionGroup", SourceObjectType, mustDescriptor("functionGroup"),
	typeCode("FUGR/F"))

// FunctionGroup is an ABAP function group.
type FunctionGroup struct {
	SourceObject
}

// NewFunctionGroup creates a function group.
func NewFunctionGroup(name string, opts ...Option) *FunctionGroup {
	g := &FunctionGroup{}
	g.init(FunctionGroupType, name, buildOptions(opts))
	return g
}

// Function module types.
var (
	fmProcessing = schema.Attribute("ProcessingType", "fmodule:processingType")
	fmReleased   = schema.Attribute("ReleaseState", "fmodule:releaseState")
	fmContainer  = schema.Element("Container", "adtcore:containerRef", referenceFactory)

	FunctionModuleType = schema.NewType("FunctionModule", SourceObjectType, mustDescriptor("functionModule"),
		typeCode("FUGR/FF"), fmProcessing, fmReleased, fmContainer)
)

// FunctionModule is a function module inside a function group. Its URI
// lies below the group.
type FunctionModule struct {
	SourceObject
}

// NewFunctionModule creates a function module of group.
func NewFunctionModule(name, group string, opts ...Option) (*FunctionModule, error) {
	o := buildOptions(opts)

	desc, err := FunctionModuleType.Descriptor().WithParent(map[string]string{
		"groupname": strings.ToLower(group),
	})
	if err != nil {
		return nil, fmt.Errorf("function module %s: %w", name, err)
	}

	fm := &FunctionModule{}
	fm.init(FunctionModuleType, name, o)
	fm.desc = desc
	fmProcessing.Set(fm, "normal")
	fmContainer.Set(fm, NewFunctionGroup(group, WithVersion(o.version)).ObjectReference())
	return fm, nil
}

// Group returns the name of the enclosing function group.
func (fm *FunctionModule) Group() string {
	if r, ok := fmContainer.Get(fm).(*Reference); ok {
		return r.Name()
	}
	return ""
}

// ProcessingType returns "normal" or "rfc".
func (fm *FunctionModule) ProcessingType() string { return schema.Value[string](fm, fmProcessing) }

// SetRFC makes the function module remote enabled.
func (fm *FunctionModule) SetRFC(rfc bool) {
	if rfc {
		fmProcessing.Set(fm, "rfc")
	} else {
		fmProcessing.Set(fm, "normal")
	}
}
