package objects

import (
	"net/url"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

// ServicePath is the root of the ADT REST API.
const ServicePath = "/sap/bc/adt/"

// Namespaces used by the bindings below.
var (
	NSCore    = mustNamespace("adtcore")
	NSSource  = mustNamespace("abapsource")
	NSClass   = mustNamespace("class")
	NSPackage = mustNamespace("pak")
)

// options configure newly built objects.
type options struct {
	version      string
	pkg          string
	description  string
	language     string
	masterSystem string
	responsible  string
}

// Option configures an object at construction.
type Option func(*options)

// WithVersion selects the version of versioned fields.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithPackage places the object in a package.
func WithPackage(name string) Option {
	return func(o *options) { o.pkg = name }
}

// WithDescription sets the short description.
func WithDescription(s string) Option {
	return func(o *options) { o.description = s }
}

// WithLanguage sets the original language, such as "EN".
func WithLanguage(lang string) Option {
	return func(o *options) { o.language = lang }
}

// WithMasterSystem sets the system the object originates from.
func WithMasterSystem(sid string) Option {
	return func(o *options) { o.masterSystem = sid }
}

// WithResponsible sets the responsible user.
func WithResponsible(user string) Option {
	return func(o *options) { o.responsible = user }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Reference points at another repository object.
var (
	refURI         = schema.Attribute("URI", "adtcore:uri")
	refType        = schema.Attribute("Type", "adtcore:type")
	refName        = schema.Attribute("Name", "adtcore:name")
	refPackageName = schema.Attribute("PackageName", "adtcore:packageName")
	refDescription = schema.Attribute("Description", "adtcore:description")

	ReferenceType = schema.NewType("Reference", nil, nil,
		refURI, refType, refName, refPackageName, refDescription)
)

// Reference is an adtcore object reference.
type Reference struct {
	schema.Base
}

// NewReference creates a reference. Empty fields are not sent.
func NewReference(version, uri, typ, name string) *Reference {
	r := &Reference{Base: schema.NewBase(ReferenceType, version)}
	refURI.Set(r, uri)
	refType.Set(r, typ)
	refName.Set(r, name)
	return r
}

func referenceFactory(owner schema.Object) schema.Object {
	return &Reference{Base: schema.NewBase(ReferenceType, schema.VersionOf(owner))}
}

// URI returns the referenced object URI.
func (r *Reference) URI() string { return schema.Value[string](r, refURI) }

// Type returns the referenced type code.
func (r *Reference) Type() string { return schema.Value[string](r, refType) }

// Name returns the referenced object name.
func (r *Reference) Name() string { return schema.Value[string](r, refName) }

// PackageName returns the package of the referenced object.
func (r *Reference) PackageName() string { return schema.Value[string](r, refPackageName) }

// Description returns the description of the referenced object.
func (r *Reference) Description() string { return schema.Value[string](r, refDescription) }

// Repository object fields shared by every type.
var (
	adtDescription    = schema.Attribute("Description", "adtcore:description")
	adtLanguage       = schema.Attribute("Language", "adtcore:language")
	adtName           = schema.Attribute("Name", "adtcore:name")
	adtType           = schema.Attribute("Type", "adtcore:type")
	adtMasterLanguage = schema.Attribute("MasterLanguage", "adtcore:masterLanguage")
	adtMasterSystem   = schema.Attribute("MasterSystem", "adtcore:masterSystem")
	adtResponsible    = schema.Attribute("Responsible", "adtcore:responsible")
	adtVersion        = schema.Attribute("Version", "adtcore:version")
	adtChangedAt      = schema.Attribute("ChangedAt", "adtcore:changedAt")
	adtChangedBy      = schema.Attribute("ChangedBy", "adtcore:changedBy")
	adtCreatedAt      = schema.Attribute("CreatedAt", "adtcore:createdAt")
	adtCreatedBy      = schema.Attribute("CreatedBy", "adtcore:createdBy")
	adtPackageRef     = schema.Element("Package", "adtcore:packageRef", referenceFactory)

	// ObjectType is the parent of every repository object type.
	ObjectType = schema.NewType("ADTObject", nil, nil,
		adtDescription, adtLanguage, adtName, adtType,
		adtMasterLanguage, adtMasterSystem, adtResponsible, adtVersion,
		adtChangedAt, adtChangedBy, adtCreatedAt, adtCreatedBy,
		adtPackageRef)
)

// typeCode overrides adtcore:type with the fixed code of a subtype.
func typeCode(code string) *schema.Binding {
	return schema.Attribute("Type", "adtcore:type", schema.WithDefault(code), schema.OutboundOnly())
}

// Object is a repository object with a URI on the service.
type Object interface {
	schema.Object
	Name() string
	URI() string
	Descriptor() *schema.Descriptor
}

// ADTObject holds the fields every repository object has.
type ADTObject struct {
	schema.Base

	// desc overrides the type descriptor when the basepath depends on
	// the parent object.
	desc *schema.Descriptor
}

func (o *ADTObject) init(t *schema.Type, name string, opts options) {
	o.Base = schema.NewBase(t, opts.version)
	adtName.Set(o, strings.ToUpper(name))

	lang := opts.language
	if lang == "" {
		lang = "EN"
	}
	adtLanguage.Set(o, lang)
	adtMasterLanguage.Set(o, lang)

	if opts.description != "" {
		adtDescription.Set(o, opts.description)
	}
	if opts.masterSystem != "" {
		adtMasterSystem.Set(o, opts.masterSystem)
	}
	if opts.responsible != "" {
		adtResponsible.Set(o, opts.responsible)
	}
	if opts.pkg != "" {
		adtPackageRef.Set(o, NewReference(opts.version, "", "", strings.ToUpper(opts.pkg)))
	}
}

// Name returns the object name.
func (o *ADTObject) Name() string { return schema.Value[string](o, adtName) }

// Description returns the short description.
func (o *ADTObject) Description() string { return schema.Value[string](o, adtDescription) }

// SetDescription changes the short description.
func (o *ADTObject) SetDescription(s string) { adtDescription.Set(o, s) }

// Code returns the type code.
func (o *ADTObject) Code() string {
	if b, ok := o.Schema().Binding("Type", schema.VersionOf(o)); ok {
		if c := b.Format(b.Get(o)); c != "" {
			return c
		}
	}
	return o.Descriptor().Code
}

// Language returns the original language.
func (o *ADTObject) Language() string { return schema.Value[string](o, adtLanguage) }

// Responsible returns the responsible user.
func (o *ADTObject) Responsible() string { return schema.Value[string](o, adtResponsible) }

// Version returns the activation state reported by the service, such as
// "active" or "inactive".
func (o *ADTObject) Version() string { return schema.Value[string](o, adtVersion) }

// ChangedBy returns the last user to change the object.
func (o *ADTObject) ChangedBy() string { return schema.Value[string](o, adtChangedBy) }

// ChangedAt returns the timestamp of the last change as sent.
func (o *ADTObject) ChangedAt() string { return schema.Value[string](o, adtChangedAt) }

// Package returns the package reference, or nil.
func (o *ADTObject) Package() *Reference {
	r, _ := adtPackageRef.Get(o).(*Reference)
	return r
}

// Descriptor returns the effective descriptor of the object.
func (o *ADTObject) Descriptor() *schema.Descriptor {
	if o.desc != nil {
		return o.desc
	}
	return o.Schema().Descriptor()
}

// CollectionURI returns the URI objects of this type are created under.
func (o *ADTObject) CollectionURI() string {
	return ServicePath + o.Descriptor().Basepath
}

// URI returns the object URI.
func (o *ADTObject) URI() string {
	return o.CollectionURI() + "/" + QuoteName(o.Name())
}

// QuoteName returns name as it appears in object URIs: lower case with
// reserved characters, including the "$" of local objects, escaped.
func QuoteName(name string) string {
	return strings.ReplaceAll(url.PathEscape(strings.ToLower(name)), "$", "%24")
}

// Editor returns the source editor of the object, if it has source.
func (o *ADTObject) Editor() (schema.Editor, bool) {
	d := o.Descriptor()
	if d.Editor == nil {
		return schema.Editor{}, false
	}
	return d.Editor(o, o.URI()), true
}

// ObjectReference returns a reference to the object.
func (o *ADTObject) ObjectReference() *Reference {
	return NewReference(schema.VersionOf(o), o.URI(), o.Code(), o.Name())
}

// ObjectReferences is a list of object references, used for activation.
var (
	refsItems = schema.List("References", "adtcore:objectReference", schema.WithFactory(referenceFactory))

	ObjectReferencesType = schema.NewType("ObjectReferences", nil, mustDescriptor("objectReferences"), refsItems)
)

// ObjectReferences is an adtcore:objectReferences document.
type ObjectReferences struct {
	schema.Base
}

// NewObjectReferences creates a reference list.
func NewObjectReferences(refs ...*Reference) *ObjectReferences {
	r := &ObjectReferences{Base: schema.NewBase(ObjectReferencesType, "")}
	for _, ref := range refs {
		r.Add(ref)
	}
	return r
}

func objectReferencesFactory(owner schema.Object) schema.Object {
	return &ObjectReferences{Base: schema.NewBase(ObjectReferencesType, schema.VersionOf(owner))}
}

// Add appends a reference.
func (r *ObjectReferences) Add(ref *Reference) {
	refsItems.Append(r, ref)
}

// References returns the references in order.
func (r *ObjectReferences) References() []*Reference {
	return schema.Items[*Reference](refsItems.Container(r))
}

// Flags is a nested element made only of attributes and child elements.
// One Go type serves every such element; its schema type tells them apart.
type Flags struct {
	schema.Base
}

func flagsFactory(t *schema.Type) schema.Factory {
	return func(owner schema.Object) schema.Object {
		return newFlags(t, schema.VersionOf(owner))
	}
}

func newFlags(t *schema.Type, version string) *Flags {
	return &Flags{Base: schema.NewBase(t, version)}
}

// Get returns the value of the named field.
func (f *Flags) Get(field string) any {
	b, ok := f.Schema().Binding(field, schema.VersionOf(f))
	if !ok {
		return nil
	}
	return b.Get(f)
}

// Text returns the named field formatted as on the wire.
func (f *Flags) Text(field string) string {
	b, ok := f.Schema().Binding(field, schema.VersionOf(f))
	if !ok {
		return ""
	}
	return b.Format(b.Get(f))
}

// Set changes the named field. Unknown fields are ignored.
func (f *Flags) Set(field string, v any) *Flags {
	if b, ok := f.Schema().Binding(field, schema.VersionOf(f)); ok {
		b.Set(f, v)
	}
	return f
}

// Nested returns the nested element of the named field, or nil.
func (f *Flags) Nested(field string) *Flags {
	n, _ := f.Get(field).(*Flags)
	return n
}
