package objects

import (
	"embed"
	"fmt"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// SourceContentType is the content type of ABAP source text.
const SourceContentType = "text/plain; charset=utf-8"

// Manifest lists the namespaces and type descriptors known to the client.
type Manifest struct {
	Namespaces []NamespaceDef     `yaml:"namespaces"`
	Types      map[string]TypeDef `yaml:"types"`

	namespaces  map[string]*schema.Namespace
	descriptors map[string]*schema.Descriptor
	accepts     map[*schema.Descriptor]string
}

// NamespaceDef declares one XML namespace.
type NamespaceDef struct {
	Name    string   `yaml:"name"`
	URI     string   `yaml:"uri"`
	Parents []string `yaml:"parents"`
}

// TypeDef declares the wire identity of one object type.
type TypeDef struct {
	Element         string            `yaml:"element"`
	Namespace       string            `yaml:"namespace"`
	Code            string            `yaml:"code"`
	Basepath        string            `yaml:"basepath"`
	MIME            []string          `yaml:"mime"`
	Representations map[string]string `yaml:"representations"`
	Attributes      []AttrDef         `yaml:"attributes"`
	Source          string            `yaml:"source"`
	Accept          string            `yaml:"accept"`
}

// AttrDef is a fixed root attribute.
type AttrDef struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

var loadManifest = sync.OnceValues(func() (*Manifest, error) {
	data, err := manifestFS.ReadFile("manifests/adt.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return ParseManifest(data)
})

// LoadManifest returns the embedded manifest. It is parsed once.
func LoadManifest() (*Manifest, error) {
	return loadManifest()
}

// ParseManifest parses and resolves a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	m.namespaces = make(map[string]*schema.Namespace, len(m.Namespaces))
	for _, def := range m.Namespaces {
		if _, dup := m.namespaces[def.Name]; dup {
			return nil, fmt.Errorf("namespace %q declared twice", def.Name)
		}

		parents := make([]*schema.Namespace, 0, len(def.Parents))
		for _, p := range def.Parents {
			ns, ok := m.namespaces[p]
			if !ok {
				return nil, fmt.Errorf("namespace %q: parent %q must be declared first", def.Name, p)
			}
			parents = append(parents, ns)
		}
		m.namespaces[def.Name] = schema.NewNamespace(def.Name, def.URI, parents...)
	}

	m.descriptors = make(map[string]*schema.Descriptor, len(m.Types))
	m.accepts = make(map[*schema.Descriptor]string, len(m.Types))
	for name, def := range m.Types {
		ns, ok := m.namespaces[def.Namespace]
		if def.Namespace != "" && !ok {
			return nil, fmt.Errorf("type %q: unknown namespace %q", name, def.Namespace)
		}

		d := &schema.Descriptor{
			Element:         def.Element,
			Namespace:       ns,
			MIMETypes:       def.MIME,
			Basepath:        def.Basepath,
			Representations: def.Representations,
			Code:            def.Code,
		}
		for _, a := range def.Attributes {
			d.Attributes = append(d.Attributes, schema.Attr{Name: a.Name, Value: a.Value})
		}
		if def.Source != "" {
			d.Editor = sourceEditor(def.Source)
		}

		m.descriptors[name] = d
		m.accepts[d] = def.Accept
	}

	return &m, nil
}

// Namespace returns the named namespace.
func (m *Manifest) Namespace(name string) (*schema.Namespace, bool) {
	ns, ok := m.namespaces[name]
	return ns, ok
}

// Descriptor returns the descriptor of the named type.
func (m *Manifest) Descriptor(name string) (*schema.Descriptor, bool) {
	d, ok := m.descriptors[name]
	return d, ok
}

// TypeNames returns the declared type names, sorted.
func (m *Manifest) TypeNames() []string {
	return slices.Sorted(maps.Keys(m.descriptors))
}

// ResponseType returns the content type the service answers with for
// requests built from d.
func (m *Manifest) ResponseType(d *schema.Descriptor) string {
	if a := m.accepts[d]; a != "" {
		return a
	}
	return d.MIMEType()
}

// sourceEditor addresses the source text below the object URI.
func sourceEditor(suffix string) schema.EditorFactory {
	return func(_ schema.Object, objectURI string) schema.Editor {
		return schema.Editor{
			URI:         objectURI + "/" + suffix,
			ContentType: SourceContentType,
		}
	}
}

func mustManifest() *Manifest {
	m, err := LoadManifest()
	if err != nil {
		panic(err)
	}
	return m
}

func mustNamespace(name string) *schema.Namespace {
	ns, ok := mustManifest().Namespace(name)
	if !ok {
		panic(fmt.Sprintf("objects: namespace %q missing from manifest", name))
	}
	return ns
}

func mustDescriptor(name string) *schema.Descriptor {
	d, ok := mustManifest().Descriptor(name)
	if !ok {
		panic(fmt.Sprintf("objects: type %q missing from manifest", name))
	}
	return d
}
