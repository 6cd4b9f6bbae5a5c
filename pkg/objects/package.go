package objects

import (
	"strings"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Package types. Every nested pak element is a Flags value.
var (
	pakName     = schema.Attribute("Name", "pak:name", schema.Always())
	pakNameType = schema.NewType("PackageName", nil, nil, pakName)

	pakKind           = schema.Attribute("PackageType", "pak:packageType")
	pakAttributesType = schema.NewType("PackageAttributes", nil, nil, pakKind)

	pakSoftwareComponent = schema.Element("SoftwareComponent", "pak:softwareComponent", flagsFactory(pakNameType), schema.Always())
	pakTransportLayer    = schema.Element("TransportLayer", "pak:transportLayer", flagsFactory(pakNameType), schema.Always())
	pakTransportType     = schema.NewType("PackageTransport", nil, nil, pakSoftwareComponent, pakTransportLayer)

	pakAttributes   = schema.Element("Attributes", "pak:attributes", flagsFactory(pakAttributesType))
	pakSuper        = schema.Element("SuperPackage", "pak:superPackage", referenceFactory, schema.Always())
	pakAppComponent = schema.Element("ApplicationComponent", "pak:applicationComponent", flagsFactory(pakNameType), schema.Always())
	pakTransport    = schema.Element("Transport", "pak:transport", flagsFactory(pakTransportType))
	pakTranslation  = schema.Text("Translation", "pak:translation", schema.OutboundOnly())
	pakUseAccesses  = schema.Text("UseAccesses", "pak:useAccesses", schema.OutboundOnly())
	pakInterfaces   = schema.Text("PackageInterfaces", "pak:packageInterfaces", schema.OutboundOnly())
	pakSubPackages  = schema.Text("SubPackages", "pak:subPackages", schema.OutboundOnly())

	PackageType = schema.NewType("Package", ObjectType, mustDescriptor("package"),
		typeCode("DEVC/K"), pakAttributes, pakSuper, pakAppComponent, pakTransport,
		pakTranslation, pakUseAccesses, pakInterfaces, pakSubPackages)
)

// Package is an ABAP development package.
type Package struct {
	ADTObject
}

// NewPackage creates a development package. Local packages ($...) need no
// transport layer.
func NewPackage(name string, opts ...Option) *Package {
	o := buildOptions(opts)
	p := &Package{}
	p.init(PackageType, name, o)

	pakAttributes.Set(p, newFlags(pakAttributesType, o.version).Set("PackageType", "development"))
	transport := newFlags(pakTransportType, o.version)
	transport.Set("SoftwareComponent", newFlags(pakNameType, o.version).Set("Name", "LOCAL"))
	transport.Set("TransportLayer", newFlags(pakNameType, o.version))
	pakTransport.Set(p, transport)

	if o.pkg != "" {
		pakSuper.Set(p, NewReference(o.version, "", "DEVC/K", strings.ToUpper(o.pkg)))
	}
	return p
}

// PackageType returns the package type, such as "development".
func (p *Package) PackageType() string {
	if a, ok := pakAttributes.Get(p).(*Flags); ok {
		return a.Text("PackageType")
	}
	return ""
}

// SetSoftwareComponent changes the software component and transport layer.
func (p *Package) SetSoftwareComponent(component, layer string) {
	t, ok := pakTransport.Get(p).(*Flags)
	if !ok {
		t = newFlags(pakTransportType, schema.VersionOf(p))
		pakTransport.Set(p, t)
	}
	t.Set("SoftwareComponent", newFlags(pakNameType, schema.VersionOf(p)).Set("Name", component))
	t.Set("TransportLayer", newFlags(pakNameType, schema.VersionOf(p)).Set("Name", layer))
}

// SoftwareComponent returns the software component name.
func (p *Package) SoftwareComponent() string {
	if t, ok := pakTransport.Get(p).(*Flags); ok {
		if c := t.Nested("SoftwareComponent"); c != nil {
			return c.Text("Name")
		}
	}
	return ""
}

// SetApplicationComponent changes the application component.
func (p *Package) SetApplicationComponent(name string) {
	pakAppComponent.Set(p, newFlags(pakNameType, schema.VersionOf(p)).Set("Name", name))
}

// SuperPackage returns the name of the parent package, or "".
func (p *Package) SuperPackage() string {
	if r, ok := pakSuper.Get(p).(*Reference); ok {
		return r.Name()
	}
	return ""
}
