package marshal

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

var (
	nsX    = schema.NewNamespace("ns", "http://x")
	nsCore = schema.NewNamespace("core", "http://core")
	nsSub  = schema.NewNamespace("sub", "http://sub", nsCore)

	visibility = schema.Attribute("Visibility", "visibility")
	label      = schema.Text("Label", "label", schema.OmitEmpty())

	elemType = schema.NewType("Elem", nil, &schema.Descriptor{
		Element:   "elem",
		Namespace: nsX,
		MIMETypes: []string{"application/vnd.test.elem+xml"},
	}, visibility, label)

	items = schema.List("Items", "item", schema.WithCodec(schema.IntCodec))

	listType = schema.NewType("List", nil, &schema.Descriptor{Element: "list", Namespace: nsX}, items)
)

type elem struct{ schema.Base }

func newElem() *elem { return &elem{Base: schema.NewBase(elemType, "")} }

type list struct{ schema.Base }

func newList() *list { return &list{Base: schema.NewBase(listType, "")} }

// A small document model exercising nesting, lists, versions and
// outbound-only fields.
var (
	refName = schema.Attribute("Name", "core:name")
	refURI  = schema.Attribute("URI", "core:uri")
	refType = schema.NewType("Ref", nil, nil, refName, refURI)

	docName    = schema.Attribute("Name", "core:name")
	docCode    = schema.Attribute("Type", "core:type", schema.WithDefault("DOC/D"), schema.OutboundOnly())
	docActive  = schema.Attribute("Active", "sub:active", schema.WithCodec(schema.BoolCodec), schema.Always())
	docLangV1  = schema.Attribute("Lang", "sub:lang", schema.WithVersion("v1"))
	docLangV2  = schema.Attribute("Lang", "sub:langVersion", schema.WithVersion("v2"))
	docPackage = schema.Element("Package", "core:packageRef", func(owner schema.Object) schema.Object {
		return newRef(schema.VersionOf(owner))
	})
	docRefs = schema.List("Refs", "core:objectReference", schema.WithFactory(func(owner schema.Object) schema.Object {
		return newRef(schema.VersionOf(owner))
	}))
	docNote  = schema.Text("Note", "sub:note")
	docEmpty = schema.Text("Empty", "sub:empty", schema.Always())

	docType = schema.NewType("Doc", nil, &schema.Descriptor{
		Element:    "doc",
		Namespace:  nsSub,
		Attributes: []schema.Attr{{Name: "core:version", Value: "active"}},
	}, docName, docCode, docActive, docLangV1, docLangV2, docPackage, docRefs, docNote, docEmpty)
)

type ref struct{ schema.Base }

func newRef(version string) *ref { return &ref{Base: schema.NewBase(refType, version)} }

type doc struct{ schema.Base }

func newDoc(version string) *doc { return &doc{Base: schema.NewBase(docType, version)} }

func TestScenarioA(t *testing.T) {
	t.Run("WithLabel", func(t *testing.T) {
		e := newElem()
		visibility.Set(e, "public")
		label.Set(e, "Hello")

		got, err := Serialize(e)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		want := "<ns:elem xmlns:ns=\"http://x\" visibility=\"public\">\n<label>Hello</label>\n</ns:elem>"
		if got != want {
			t.Errorf("expected\n%s\ngot\n%s", want, got)
		}
	})

	t.Run("LabelOmitted", func(t *testing.T) {
		e := newElem()
		visibility.Set(e, "public")

		got, err := Serialize(e)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		want := `<ns:elem xmlns:ns="http://x" visibility="public"/>`
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestScenarioB(t *testing.T) {
	l := newList()
	for _, n := range []int{1, 2, 3} {
		items.Append(l, n)
	}

	got, err := Serialize(l)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := "<ns:list xmlns:ns=\"http://x\">\n<item>1</item>\n<item>2</item>\n<item>3</item>\n</ns:list>"
	if got != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, got)
	}

	back := newList()
	if err := Deserialize([]byte(got), back); err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if vals := schema.Items[int](items.Container(back)); !slices.Equal(vals, []int{1, 2, 3}) {
		t.Errorf("expected [1 2 3], got %v", vals)
	}
}

func fullDoc(version string) *doc {
	d := newDoc(version)
	docName.Set(d, "ZDOC")
	docActive.Set(d, true)
	if version == "v1" {
		docLangV1.Set(d, "X")
	} else {
		docLangV2.Set(d, "5")
	}
	docNote.Set(d, "a < b & c")

	pkg := newRef(version)
	refName.Set(pkg, "$TMP")
	refURI.Set(pkg, "/sap/bc/adt/packages/%24tmp")
	docPackage.Set(d, pkg)

	for _, n := range []string{"ZA", "ZB"} {
		r := newRef(version)
		refName.Set(r, n)
		docRefs.Append(d, r)
	}
	return d
}

func TestSerializeDocument(t *testing.T) {
	got, err := Serialize(fullDoc("v2"))
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	want := strings.Join([]string{
		`<sub:doc xmlns:sub="http://sub" xmlns:core="http://core" core:version="active" core:name="ZDOC" core:type="DOC/D" sub:active="true" sub:langVersion="5">`,
		`<core:packageRef core:name="$TMP" core:uri="/sap/bc/adt/packages/%24tmp"/>`,
		`<core:objectReference core:name="ZA"/>`,
		`<core:objectReference core:name="ZB"/>`,
		`<sub:note>a &lt; b &amp; c</sub:note>`,
		`<sub:empty/>`,
		`</sub:doc>`,
	}, "\n")
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}

	doc, err := Document(fullDoc("v1"))
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if !strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`+"\n<sub:doc") {
		t.Errorf("expected XML declaration, got %q", doc[:60])
	}
	if !strings.Contains(doc, `sub:lang="X"`) || strings.Contains(doc, "sub:langVersion") {
		t.Error("expected only the v1 spelling")
	}
}

func TestSerializeEmptyValues(t *testing.T) {
	got, err := Serialize(newDoc(""))
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	// Always-emitted attribute, unset object and empty text leaf.
	want := "<sub:doc xmlns:sub=\"http://sub\" xmlns:core=\"http://core\" core:version=\"active\" core:type=\"DOC/D\" sub:active=\"\">\n<sub:note/>\n<sub:empty/>\n</sub:doc>"
	if got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestSerializeErrors(t *testing.T) {
	t.Run("FormatNotSupported", func(t *testing.T) {
		if _, err := SerializeAs(newElem(), "application/json"); !errors.Is(err, schema.ErrFormatNotSupported) {
			t.Errorf("expected ErrFormatNotSupported, got %v", err)
		}
		if _, err := SerializeAs(newElem(), "application/vnd.test.elem+xml"); err != nil {
			t.Errorf("SerializeAs failed: %v", err)
		}
	})

	t.Run("InvalidCharacters", func(t *testing.T) {
		tests := []struct {
			name  string
			attr  string
			text  string
			where string
		}{
			{"ControlInText", "", "ctl\x01x", "label"},
			{"ControlInAttribute", "x\x1by", "", "visibility"},
			{"InvalidUTF8InText", "", "bad\xffutf", "label"},
			{"InvalidUTF8InAttribute", "\xc3", "", "visibility"},
			{"NonCharacter", "", "x\uFFFEy", "label"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := newElem()
				visibility.Set(e, tt.attr)
				label.Set(e, tt.text)

				out, err := Serialize(e)
				if !errors.Is(err, schema.ErrInvalidValue) {
					t.Fatalf("expected ErrInvalidValue, got %v (output %q)", err, out)
				}
				if !strings.Contains(err.Error(), tt.where) {
					t.Errorf("expected %q in %q", tt.where, err)
				}
			})
		}
	})

	t.Run("NoDescriptor", func(t *testing.T) {
		if _, err := Serialize(newRef("")); !errors.Is(err, ErrNoDescriptor) {
			t.Errorf("expected ErrNoDescriptor, got %v", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	for _, version := range []string{"v1", "v2"} {
		t.Run(version, func(t *testing.T) {
			orig := fullDoc(version)
			data, err := Serialize(orig)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}

			back := newDoc(version)
			if err := Deserialize([]byte(data), back); err != nil {
				t.Fatalf("Deserialize failed: %v", err)
			}

			for _, b := range docType.Bindings() {
				if !b.Inbound() || !b.Matches(version) || b.Kind() == schema.KindObject {
					continue
				}
				want, got := b.Format(b.Get(orig)), b.Format(b.Get(back))
				if want != got {
					t.Errorf("%s: expected %q, got %q", b.Wire(), want, got)
				}
			}

			again, err := Serialize(back)
			if err != nil {
				t.Fatalf("Serialize failed: %v", err)
			}
			if again != data {
				t.Errorf("expected identical output\n%s\ngot\n%s", data, again)
			}
		})
	}

	t.Run("LineBreaks", func(t *testing.T) {
		for _, v := range []string{"a\r\nb", "a\rb", "a\nb", "\ttab"} {
			e := newElem()
			visibility.Set(e, v)
			label.Set(e, v)

			data, err := Serialize(e)
			if err != nil {
				t.Fatalf("Serialize(%q) failed: %v", v, err)
			}
			back := newElem()
			if err := Deserialize([]byte(data), back); err != nil {
				t.Fatalf("Deserialize(%q) failed: %v", data, err)
			}
			if got := visibility.Get(back); got != v {
				t.Errorf("visibility: expected %q, got %q", v, got)
			}
			if got := label.Get(back); got != v {
				t.Errorf("label: expected %q, got %q", v, got)
			}
		}
	})
}

func TestDeserialize(t *testing.T) {
	t.Run("UnknownContentIgnored", func(t *testing.T) {
		in := `<?xml version="1.0" encoding="utf-8"?>
<sub:doc xmlns:sub="http://sub" xmlns:core="http://core" core:name="ZDOC" core:extra="1" sub:unknown="x">
  <sub:future><core:objectReference core:name="NOPE"/><sub:note>hidden</sub:note></sub:future>
  <core:packageRef core:name="PKG"><core:deeper>text</core:deeper></core:packageRef>
  <core:objectReference core:name="ZA"/>
  <sub:note>visible<sub:inner>skipped</sub:inner></sub:note>
</sub:doc>`

		d := newDoc("v2")
		if err := Deserialize([]byte(in), d); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}

		if docName.Get(d) != "ZDOC" {
			t.Errorf("expected name ZDOC, got %v", docName.Get(d))
		}
		if docNote.Get(d) != "visible" {
			t.Errorf("expected note 'visible', got %q", docNote.Get(d))
		}
		if n := docRefs.Container(d).Len(); n != 1 {
			t.Errorf("expected 1 reference, got %d", n)
		}
		pkg, ok := docPackage.Get(d).(*ref)
		if !ok || refName.Get(pkg) != "PKG" {
			t.Errorf("expected package PKG, got %v", docPackage.Get(d))
		}
	})

	t.Run("OutboundOnlyNotRead", func(t *testing.T) {
		d := newDoc("")
		in := `<sub:doc core:type="OTHER" core:name="N"/>`
		if err := Deserialize([]byte(in), d); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if docCode.Get(d) != "DOC/D" {
			t.Errorf("expected default type code, got %v", docCode.Get(d))
		}
	})

	t.Run("ExistingNestedObjectReused", func(t *testing.T) {
		d := newDoc("")
		pkg := newRef("")
		docPackage.Set(d, pkg)

		in := `<sub:doc><core:packageRef core:name="FILLED"/></sub:doc>`
		if err := Deserialize([]byte(in), d); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if refName.Get(pkg) != "FILLED" {
			t.Errorf("expected existing object to be populated, got %v", refName.Get(pkg))
		}
	})

	t.Run("TypedValues", func(t *testing.T) {
		d := newDoc("")
		if err := Deserialize([]byte(`<sub:doc sub:active="true"/>`), d); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if schema.Value[bool](d, docActive) != true {
			t.Errorf("expected active=true, got %v", docActive.Get(d))
		}

		err := Deserialize([]byte(`<sub:doc sub:active="perhaps"/>`), newDoc(""))
		if !errors.Is(err, schema.ErrInvalidValue) {
			t.Errorf("expected ErrInvalidValue, got %v", err)
		}
	})

	t.Run("Entities", func(t *testing.T) {
		e := newElem()
		in := `<ns:elem visibility="a&amp;b"><label>x &lt; y</label></ns:elem>`
		if err := Deserialize([]byte(in), e); err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if visibility.Get(e) != "a&b" || label.Get(e) != "x < y" {
			t.Errorf("unexpected values %v %v", visibility.Get(e), label.Get(e))
		}
	})
}

func TestDeserializeStructureErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"MismatchedEnd", `<ns:elem><label>x</ns:elem></label>`},
		{"UnclosedRoot", `<ns:elem><label>x</label>`},
		{"Empty", ``},
		{"TwoRoots", `<ns:elem/><ns:elem/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Deserialize([]byte(tt.in), newElem())
			if !errors.Is(err, ErrStructure) {
				t.Errorf("expected ErrStructure, got %v", err)
			}
		})
	}
}

func TestElement(t *testing.T) {
	e := NewElement("a")
	e.SetAttr("x", "1")
	e.SetAttr("y", `"q"`)
	e.SetAttr("x", "2")

	if v, _ := e.Attr("x"); v != "2" {
		t.Errorf("expected x=2, got %s", v)
	}
	if got := e.String(); got != `<a x="2" y="&quot;q&quot;"/>` {
		t.Errorf("unexpected rendering %s", got)
	}

	e.AddText("b", "")
	if got := e.String(); got != "<a x=\"2\" y=\"&quot;q&quot;\">\n<b/>\n</a>" {
		t.Errorf("unexpected rendering %s", got)
	}
}
