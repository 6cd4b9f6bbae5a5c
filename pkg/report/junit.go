package report

import (
	"fmt"
	"strings"

	"github.com/adt-protocol/adt-go/pkg/marshal"
	"github.com/adt-protocol/adt-go/pkg/results"
	"github.com/adt-protocol/adt-go/pkg/schema"
)

// JUnit document types. JUnit has no namespace, so the descriptor has none.
var (
	problemType = schema.NewType("JUnitProblem", nil, nil,
		schema.Attribute("Message", "message"),
		schema.Attribute("Type", "type"))

	caseClass   = schema.Attribute("ClassName", "classname")
	caseName    = schema.Attribute("Name", "name")
	caseTime    = schema.Attribute("Time", "time")
	caseFailure = schema.List("Failures", "failure", schema.WithFactory(problemFactory))
	caseError   = schema.List("Errors", "error", schema.WithFactory(problemFactory))
	caseOut     = schema.Text("SystemOut", "system-out", schema.OmitEmpty())
	caseType    = schema.NewType("JUnitTestCase", nil, nil,
		caseClass, caseName, caseTime, caseFailure, caseError, caseOut)

	suiteName     = schema.Attribute("Name", "name")
	suiteTests    = schema.Attribute("Tests", "tests", schema.WithCodec(schema.IntCodec), schema.Always())
	suiteFailures = schema.Attribute("Failures", "failures", schema.WithCodec(schema.IntCodec), schema.Always())
	suiteErrors   = schema.Attribute("Errors", "errors", schema.WithCodec(schema.IntCodec), schema.Always())
	suiteCases    = schema.List("TestCases", "testcase", schema.WithFactory(caseFactory))
	suiteType     = schema.NewType("JUnitTestSuite", nil, nil,
		suiteName, suiteTests, suiteFailures, suiteErrors, suiteCases)

	suitesName = schema.Attribute("Name", "name")
	suitesList = schema.List("TestSuites", "testsuite", schema.WithFactory(suiteFactory))
	suitesType = schema.NewType("JUnitTestSuites", nil, &schema.Descriptor{Element: "testsuites"},
		suitesName, suiteTests, suiteFailures, suiteErrors, suitesList)
)

type junitElement struct {
	schema.Base
}

func newElement(t *schema.Type) *junitElement {
	return &junitElement{Base: schema.NewBase(t, "")}
}

func problemFactory(schema.Object) schema.Object { return newElement(problemType) }
func caseFactory(schema.Object) schema.Object    { return newElement(caseType) }
func suiteFactory(schema.Object) schema.Object   { return newElement(suiteType) }

// JUnit converts an AUnit run into a JUnit XML document with one suite per
// test class. Alerts raised on a class, such as a failing setup, become an
// error case named after the class.
func JUnit(root *results.Node, name string) (string, error) {
	doc := newElement(suitesType)
	suitesName.Set(doc, name)

	var tests, failures, errs int
	for _, class := range root.Find("testClass") {
		suite := junitClass(class)
		tests += schema.Value[int](suite, suiteTests)
		failures += schema.Value[int](suite, suiteFailures)
		errs += schema.Value[int](suite, suiteErrors)
		suitesList.Append(doc, suite)
	}
	suiteTests.Set(doc, tests)
	suiteFailures.Set(doc, failures)
	suiteErrors.Set(doc, errs)

	return marshal.Document(doc)
}

func className(class *results.Node) string {
	if p := class.Parent(); p != nil && p.Kind() == "program" {
		return p.Name() + "." + class.Name()
	}
	return class.Name()
}

func junitClass(class *results.Node) *junitElement {
	suite := newElement(suiteType)
	cls := className(class)
	suiteName.Set(suite, cls)

	var tests, failures, errs int
	if alerts := results.Alerts(class); len(alerts) > 0 {
		tc := newElement(caseType)
		caseClass.Set(tc, cls)
		caseName.Set(tc, class.Name())
		for _, a := range alerts {
			caseError.Append(tc, problem(a))
		}
		tests++
		errs++
		suiteCases.Append(suite, tc)
	}

	for _, m := range class.Find("testMethod") {
		tc := newElement(caseType)
		caseClass.Set(tc, cls)
		caseName.Set(tc, m.Name())
		if t := m.Attr("executionTime"); t != "" {
			caseTime.Set(tc, t)
		}

		var out []string
		for _, a := range results.Alerts(m) {
			if results.AlertStatus(a) == results.StatusFailed {
				caseFailure.Append(tc, problem(a))
			}
			out = append(out, alertText(a))
		}
		caseOut.Set(tc, strings.Join(out, "\n"))

		tests++
		if results.MethodStatus(m) == results.StatusFailed {
			failures++
		}
		suiteCases.Append(suite, tc)
	}

	suiteTests.Set(suite, tests)
	suiteFailures.Set(suite, failures)
	suiteErrors.Set(suite, errs)
	return suite
}

func problem(alert *results.Node) *junitElement {
	p := newElement(problemType)
	p.set("Message", results.AlertTitle(alert))
	p.set("Type", alert.Attr("kind"))
	return p
}

func (e *junitElement) set(field string, v any) {
	if b, ok := e.Schema().Binding(field, ""); ok {
		b.Set(e, v)
	}
}

// alertText renders an alert with its details and stack for system-out.
func alertText(alert *results.Node) string {
	lines := []string{fmt.Sprintf("[%s] %s", alert.Attr("severity"), results.AlertTitle(alert))}
	for _, d := range alert.ValuesOf("detail") {
		lines = append(lines, "  "+d.Attr("text"))
	}
	for _, s := range alert.ValuesOf("stackEntry") {
		lines = append(lines, "  at "+s.Attr("description"))
	}
	return strings.Join(lines, "\n")
}
