package objects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adt-protocol/adt-go/pkg/marshal"
	"github.com/adt-protocol/adt-go/pkg/schema"
)

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func TestManifest(t *testing.T) {
	m, err := LoadManifest()
	require.NoError(t, err)

	again, err := LoadManifest()
	require.NoError(t, err)
	assert.Same(t, m, again, "manifest must be parsed once")

	ns, ok := m.Namespace("class")
	require.True(t, ok)
	var names []string
	for _, n := range ns.Closure() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"class", "abapoo", "abapsource", "adtcore"}, names)

	assert.Contains(t, m.TypeNames(), "program")
	d, ok := m.Descriptor("runConfiguration")
	require.True(t, ok)
	assert.Equal(t, "application/vnd.sap.adt.abapunit.testruns.result.v1+xml", m.ResponseType(d))
	d, _ = m.Descriptor("program")
	assert.Equal(t, d.MIMEType(), m.ResponseType(d))
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"ParentOrder", "namespaces:\n  - {name: b, uri: u, parents: [a]}\n  - {name: a, uri: u}\n"},
		{"Duplicate", "namespaces:\n  - {name: a, uri: u}\n  - {name: a, uri: v}\n"},
		{"UnknownNamespace", "types:\n  t: {element: e, namespace: nope}\n"},
		{"Syntax", "namespaces: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestProgram(t *testing.T) {
	p := NewProgram("zhello_world",
		WithPackage("$test"),
		WithDescription("Say hello!"),
		WithMasterSystem("NPL"),
		WithResponsible("FILAK"))

	got, err := marshal.Serialize(p)
	require.NoError(t, err)
	assert.Equal(t, lines(
		`<program:abapProgram xmlns:program="http://www.sap.com/adt/programs/programs" xmlns:abapsource="http://www.sap.com/adt/abapsource" xmlns:adtcore="http://www.sap.com/adt/core" adtcore:description="Say hello!" adtcore:language="EN" adtcore:name="ZHELLO_WORLD" adtcore:type="PROG/P" adtcore:masterLanguage="EN" adtcore:masterSystem="NPL" adtcore:responsible="FILAK">`,
		`<adtcore:packageRef adtcore:name="$TEST"/>`,
		`</program:abapProgram>`), got)

	assert.Equal(t, "/sap/bc/adt/programs/programs/zhello_world", p.URI())
	assert.Equal(t, "/sap/bc/adt/programs/programs", p.CollectionURI())
	assert.Equal(t, "PROG/P", p.Code())
	assert.Equal(t, "$TEST", p.Package().Name())

	e, ok := p.Editor()
	require.True(t, ok)
	assert.Equal(t, "/sap/bc/adt/programs/programs/zhello_world/source/main", e.URI)
	assert.Equal(t, SourceContentType, e.ContentType)
}

func TestProgramLanguageVersion(t *testing.T) {
	tests := []struct {
		version string
		want    string
		absent  string
	}{
		{"v1", `abapsource:languageVersion="5"`, "abapLanguageVersion"},
		{"v2", `abapsource:abapLanguageVersion="5"`, "abapsource:languageVersion"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			p := NewProgram("ZPROG", WithVersion(tt.version))
			p.SetLanguageVersion("5")

			got, err := marshal.Serialize(p)
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
			assert.NotContains(t, got, tt.absent)

			back := NewProgram("", WithVersion(tt.version))
			require.NoError(t, marshal.Deserialize([]byte(got), back))
			assert.Equal(t, "5", back.LanguageVersion())
			assert.Equal(t, "ZPROG", back.Name())
		})
	}

	t.Run("Unversioned", func(t *testing.T) {
		p := NewProgram("ZPROG")
		p.SetLanguageVersion("5")
		got, err := marshal.Serialize(p)
		require.NoError(t, err)
		assert.NotContains(t, got, "anguageVersion")

		in := `<program:abapProgram adtcore:name="ZPROG" abapsource:abapLanguageVersion="2"/>`
		back := NewProgram("")
		require.NoError(t, marshal.Deserialize([]byte(in), back))
		assert.Equal(t, "2", back.LanguageVersion())
	})
}

const classResponse = `<?xml version="1.0" encoding="utf-8"?>
<class:abapClass class:final="true" class:abstract="false" class:visibility="public" abapsource:sourceUri="source/main" abapsource:fixPointArithmetic="true" adtcore:responsible="DEVELOPER" adtcore:masterLanguage="EN" adtcore:masterSystem="NPL" adtcore:name="ZCL_HELLO" adtcore:type="CLAS/OC" adtcore:changedAt="2019-03-07T20:22:01Z" adtcore:version="active" adtcore:createdAt="2019-02-02T00:00:00Z" adtcore:changedBy="DEVELOPER" adtcore:createdBy="DEVELOPER" adtcore:description="Hello" adtcore:language="EN" xmlns:class="http://www.sap.com/adt/oo/classes" xmlns:abapsource="http://www.sap.com/adt/abapsource" xmlns:adtcore="http://www.sap.com/adt/core">
  <atom:link href="objectstructure" rel="http://www.sap.com/adt/relations/objectstructure" type="application/vnd.sap.adt.objectstructure+xml" xmlns:atom="http://www.w3.org/2005/Atom"/>
  <adtcore:packageRef adtcore:uri="/sap/bc/adt/packages/%24tmp" adtcore:type="DEVC/K" adtcore:name="$TMP"/>
  <class:include class:includeType="definitions" abapsource:sourceUri="includes/definitions" adtcore:name="CLAS/OC" adtcore:type="CLAS/I"/>
  <class:include class:includeType="main" abapsource:sourceUri="source/main" adtcore:name="CLAS/OC" adtcore:type="CLAS/I"/>
  <class:superClassRef adtcore:uri="/sap/bc/adt/oo/classes/object" adtcore:type="CLAS/OC" adtcore:name="OBJECT"/>
  <class:interfaces/>
</class:abapClass>`

func TestClass(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		c := NewClass("zcl_hello", WithPackage("$tmp"), WithDescription("Hello"))
		got, err := marshal.Serialize(c)
		require.NoError(t, err)
		assert.Equal(t, lines(
			`<class:abapClass xmlns:class="http://www.sap.com/adt/oo/classes" xmlns:abapoo="http://www.sap.com/adt/oo" xmlns:abapsource="http://www.sap.com/adt/abapsource" xmlns:adtcore="http://www.sap.com/adt/core" adtcore:description="Hello" adtcore:language="EN" adtcore:name="ZCL_HELLO" adtcore:type="CLAS/OC" adtcore:masterLanguage="EN" class:final="true" class:visibility="public">`,
			`<adtcore:packageRef adtcore:name="$TMP"/>`,
			`<class:superClassRef/>`,
			`</class:abapClass>`), got)
	})

	t.Run("Fetch", func(t *testing.T) {
		c := NewClass("ZCL_HELLO")
		require.NoError(t, marshal.Deserialize([]byte(classResponse), c))

		assert.Equal(t, "active", c.Version())
		assert.Equal(t, "DEVELOPER", c.ChangedBy())
		assert.Equal(t, "source/main", c.SourceURI())
		assert.Equal(t, "OBJECT", c.SuperClass())
		assert.Equal(t, "$TMP", c.Package().Name())
		assert.True(t, c.Final())

		incs := c.Includes()
		require.Len(t, incs, 2)
		assert.Equal(t, "definitions", incs[0].Text("IncludeType"))
		assert.Equal(t, "includes/definitions", incs[0].Text("SourceURI"))
	})

	t.Run("IncludeEditor", func(t *testing.T) {
		c := NewClass("ZCL_HELLO")
		e, err := c.IncludeEditor(IncludeTestClasses)
		require.NoError(t, err)
		assert.Equal(t, "/sap/bc/adt/oo/classes/zcl_hello/includes/testclasses", e.URI)

		e, err = c.IncludeEditor(IncludeMain)
		require.NoError(t, err)
		assert.Equal(t, "/sap/bc/adt/oo/classes/zcl_hello/source/main", e.URI)

		_, err = c.IncludeEditor("locals")
		assert.ErrorIs(t, err, schema.ErrFormatNotSupported)
	})

	t.Run("SuperClass", func(t *testing.T) {
		c := NewClass("ZCL_CHILD")
		c.SetSuperClass("zcl_parent")
		got, err := marshal.Serialize(c)
		require.NoError(t, err)
		assert.Contains(t, got, `<class:superClassRef adtcore:type="CLAS/OC" adtcore:name="ZCL_PARENT"/>`)
	})
}

func TestFunctionModule(t *testing.T) {
	fm, err := NewFunctionModule("z_fn_hello", "ZFG_HELLO", WithDescription("Hello"))
	require.NoError(t, err)

	assert.Equal(t, "/sap/bc/adt/functions/groups/zfg_hello/fmodules/z_fn_hello", fm.URI())
	assert.Equal(t, "functions/groups/{groupname}/fmodules", FunctionModuleType.Descriptor().Basepath)
	assert.Equal(t, "ZFG_HELLO", fm.Group())

	got, err := marshal.Serialize(fm)
	require.NoError(t, err)
	assert.Equal(t, lines(
		`<fmodule:abapFunctionModule xmlns:fmodule="http://www.sap.com/adt/functions/fmodules" xmlns:abapsource="http://www.sap.com/adt/abapsource" xmlns:adtcore="http://www.sap.com/adt/core" adtcore:description="Hello" adtcore:language="EN" adtcore:name="Z_FN_HELLO" adtcore:type="FUGR/FF" adtcore:masterLanguage="EN" fmodule:processingType="normal">`,
		`<adtcore:containerRef adtcore:uri="/sap/bc/adt/functions/groups/zfg_hello" adtcore:type="FUGR/F" adtcore:name="ZFG_HELLO"/>`,
		`</fmodule:abapFunctionModule>`), got)

	fm.SetRFC(true)
	assert.Equal(t, "rfc", fm.ProcessingType())
}

func TestInclude(t *testing.T) {
	i := NewInclude("zhello_inc", "zhello")
	got, err := marshal.Serialize(i)
	require.NoError(t, err)
	assert.Contains(t, got, `<include:contextRef adtcore:uri="/sap/bc/adt/programs/programs/zhello" adtcore:type="PROG/P" adtcore:name="ZHELLO"/>`)
	assert.Equal(t, "ZHELLO", i.Master().Name())
	assert.Nil(t, NewInclude("zorphan", "").Master())
}

func TestPackage(t *testing.T) {
	p := NewPackage("$test", WithPackage("$parent"), WithDescription("Test"))

	got, err := marshal.Serialize(p)
	require.NoError(t, err)
	assert.Equal(t, lines(
		`<pak:package xmlns:pak="http://www.sap.com/adt/packages" xmlns:adtcore="http://www.sap.com/adt/core" adtcore:description="Test" adtcore:language="EN" adtcore:name="$TEST" adtcore:type="DEVC/K" adtcore:masterLanguage="EN">`,
		`<adtcore:packageRef adtcore:name="$PARENT"/>`,
		`<pak:attributes pak:packageType="development"/>`,
		`<pak:superPackage adtcore:type="DEVC/K" adtcore:name="$PARENT"/>`,
		`<pak:applicationComponent/>`,
		`<pak:transport>`,
		`<pak:softwareComponent pak:name="LOCAL"/>`,
		`<pak:transportLayer pak:name=""/>`,
		`</pak:transport>`,
		`<pak:translation/>`,
		`<pak:useAccesses/>`,
		`<pak:packageInterfaces/>`,
		`<pak:subPackages/>`,
		`</pak:package>`), got)

	p.SetSoftwareComponent("HOME", "SAP")
	p.SetApplicationComponent("BC-DWB")
	assert.Equal(t, "HOME", p.SoftwareComponent())
	assert.Equal(t, "development", p.PackageType())
	assert.Equal(t, "$PARENT", p.SuperPackage())

	got, err = marshal.Serialize(p)
	require.NoError(t, err)
	assert.Contains(t, got, `<pak:applicationComponent pak:name="BC-DWB"/>`)
	assert.Contains(t, got, `<pak:transportLayer pak:name="SAP"/>`)
}

func TestObjectReferences(t *testing.T) {
	refs := NewObjectReferences(NewProgram("zhello").ObjectReference())

	got, err := marshal.Document(refs)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>`+"\n"+lines(
		`<adtcore:objectReferences xmlns:adtcore="http://www.sap.com/adt/core">`,
		`<adtcore:objectReference adtcore:uri="/sap/bc/adt/programs/programs/zhello" adtcore:type="PROG/P" adtcore:name="ZHELLO"/>`,
		`</adtcore:objectReferences>`), got)

	back := NewObjectReferences()
	require.NoError(t, marshal.Deserialize([]byte(got), back))
	require.Len(t, back.References(), 1)
	assert.Equal(t, "ZHELLO", back.References()[0].Name())
}

func TestActivationResult(t *testing.T) {
	in := `<?xml version="1.0" encoding="utf-8"?><chkl:messages xmlns:chkl="http://www.sap.com/abapxml/checklist">` +
		`<msg objDescr="Class ZCL_HELLO" type="W" line="1" href="/sap/bc/adt/oo/classes/zcl_hello/source/main#start=1,0" forceSupported="true">` +
		`<shortText><txt>Unused variable</txt><txt>LV_X</txt></shortText></msg>` +
		`<msg objDescr="Class ZCL_HELLO" type="E" line="12"><shortText><txt>Syntax error</txt></shortText></msg>` +
		`<chkl:properties checkExecuted="true" activationExecuted="false" generationExecuted="false"/>` +
		`</chkl:messages>`

	r := NewActivationResult()
	require.NoError(t, marshal.Deserialize([]byte(in), r))

	msgs := r.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Unused variable LV_X", msgs[0].Text())
	assert.Equal(t, 1, msgs[0].Line())
	assert.False(t, msgs[0].IsError())
	assert.Equal(t, 12, msgs[1].Line())
	assert.Len(t, r.Errors(), 1)
	assert.False(t, r.OK())

	ok := NewActivationResult()
	require.NoError(t, marshal.Deserialize([]byte(`<chkl:messages><chkl:properties activationExecuted="true"/></chkl:messages>`), ok))
	assert.True(t, ok.OK())
}

func TestRunConfiguration(t *testing.T) {
	rc := NewRunConfiguration(NewClass("zcl_hello").ObjectReference())
	rc.SetCoverage(true)
	rc.SetDurations(true, true, false)

	got, err := marshal.Serialize(rc)
	require.NoError(t, err)
	assert.Equal(t, lines(
		`<aunit:runConfiguration xmlns:aunit="http://www.sap.com/adt/aunit" xmlns:adtcore="http://www.sap.com/adt/core">`,
		`<external>`,
		`<coverage active="true"/>`,
		`</external>`,
		`<options>`,
		`<uriType value="semantic"/>`,
		`<testDeterminationStrategy sameProgram="true" assignedTests="false" appendAssignedTestsPreview="true"/>`,
		`<testRiskLevels harmless="true" dangerous="true" critical="true"/>`,
		`<testDurations short="true" medium="true" long="false"/>`,
		`<withNavigationUri enabled="false"/>`,
		`</options>`,
		`<adtcore:objectSets>`,
		`<objectSet kind="inclusive">`,
		`<adtcore:objectReferences>`,
		`<adtcore:objectReference adtcore:uri="/sap/bc/adt/oo/classes/zcl_hello" adtcore:type="CLAS/OC" adtcore:name="ZCL_HELLO"/>`,
		`</adtcore:objectReferences>`,
		`</objectSet>`,
		`</adtcore:objectSets>`,
		`</aunit:runConfiguration>`), got)

	assert.True(t, rc.Coverage())
	require.Len(t, rc.References(), 1)
	assert.Equal(t, "ZCL_HELLO", rc.References()[0].Name())
}

func TestChecks(t *testing.T) {
	t.Run("CoverageQuery", func(t *testing.T) {
		q := NewCoverageQuery("FOO", NewPackage("$test").ObjectReference())
		uri, err := q.URI()
		require.NoError(t, err)
		assert.Equal(t, "/sap/bc/adt/runtime/traces/coverage/measurements/FOO", uri)

		got, err := marshal.Serialize(q)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(got, `<cov:query xmlns:cov="http://www.sap.com/adt/cov" xmlns:adtcore="http://www.sap.com/adt/core">`))
		assert.Contains(t, got, `adtcore:uri="/sap/bc/adt/packages/%24test"`)
	})

	t.Run("ATCRun", func(t *testing.T) {
		r := NewATCRun("WL1", NewPackage("$test").ObjectReference())
		assert.Equal(t, "/sap/bc/adt/atc/runs?worklistId=WL1", r.URI())

		got, err := marshal.Serialize(r)
		require.NoError(t, err)
		assert.Equal(t, lines(
			`<atc:run xmlns:atc="http://www.sap.com/adt/atc" xmlns:adtcore="http://www.sap.com/adt/core" maximumVerdicts="100">`,
			`<objectSets>`,
			`<objectSet kind="inclusive">`,
			`<adtcore:objectReferences>`,
			`<adtcore:objectReference adtcore:uri="/sap/bc/adt/packages/%24test" adtcore:type="DEVC/K" adtcore:name="$TEST"/>`,
			`</adtcore:objectReferences>`,
			`</objectSet>`,
			`</objectSets>`,
			`</atc:run>`), got)

		back := NewATCRun("WL1")
		require.NoError(t, marshal.Deserialize([]byte(got), back))
		assert.Equal(t, 100, back.MaximumVerdicts())
		require.Len(t, back.References(), 1)
	})
}

func TestException(t *testing.T) {
	in := `<?xml version="1.0" encoding="utf-8"?>
<exc:exception xmlns:exc="http://www.sap.com/abapxml/types/communicationframework">
  <namespace id="com.sap.adt"/>
  <type id="ExceptionResourceNotFound"/>
  <message lang="EN">Resource ZHELLO does not exist.</message>
  <localizedMessage lang="EN">Resource ZHELLO does not exist.</localizedMessage>
  <properties><entry key="LINE">0</entry></properties>
</exc:exception>`

	e := NewException()
	require.NoError(t, marshal.Deserialize([]byte(in), e))
	assert.Equal(t, "com.sap.adt", e.Namespace())
	assert.Equal(t, "ExceptionResourceNotFound", e.Type())
	assert.Equal(t, "ExceptionResourceNotFound: Resource ZHELLO does not exist.", e.Error())
}

func TestLockResult(t *testing.T) {
	in := `<?xml version="1.0" encoding="utf-8"?><asx:abap xmlns:asx="http://www.sap.com/abapxml" version="1.0"><asx:values><DATA>` +
		`<LOCK_HANDLE>win</LOCK_HANDLE><CORRNR>C50K000167</CORRNR><CORRUSER>FILAK</CORRUSER><CORRTEXT>Text</CORRTEXT>` +
		`<IS_LOCAL>X</IS_LOCAL><IS_LINK_UP/><MODIFICATION_SUPPORT>NoModification</MODIFICATION_SUPPORT>` +
		`</DATA></asx:values></asx:abap>`

	l := NewLockResult()
	require.NoError(t, marshal.Deserialize([]byte(in), l))
	assert.Equal(t, "win", l.Handle())
	assert.Equal(t, "C50K000167", l.Transport())
	assert.True(t, l.IsLocal())
	assert.Equal(t, "", NewLockResult().Handle())
}
