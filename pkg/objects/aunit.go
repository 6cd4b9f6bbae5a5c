package objects

import (
	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Object sets select the objects a test, coverage or check run covers.
var (
	setKind = schema.Attribute("Kind", "kind")
	setRefs = schema.Element("References", "adtcore:objectReferences", objectReferencesFactory)
	setType = schema.NewType("ObjectSet", nil, nil, setKind, setRefs)

	setsItems = schema.List("Sets", "objectSet", schema.WithFactory(flagsFactory(setType)))
	setsType  = schema.NewType("ObjectSets", nil, nil, setsItems)
)

// newObjectSets builds an inclusive object set of refs.
func newObjectSets(version string, refs []*Reference) *Flags {
	set := newFlags(setType, version).Set("Kind", "inclusive")
	set.Set("References", NewObjectReferences(refs...))

	sets := newFlags(setsType, version)
	setsItems.Append(sets, set)
	return sets
}

// objectSetReferences returns the references of every object set.
func objectSetReferences(sets *Flags) []*Reference {
	if sets == nil {
		return nil
	}
	var out []*Reference
	for _, s := range schema.Items[*Flags](setsItems.Container(sets)) {
		if refs, ok := s.Get("References").(*ObjectReferences); ok {
			out = append(out, refs.References()...)
		}
	}
	return out
}

// AUnit run configuration types.
var (
	flagActive   = schema.Attribute("Active", "active", schema.WithCodec(schema.BoolCodec), schema.Always())
	flagEnabled  = schema.Attribute("Enabled", "enabled", schema.WithCodec(schema.BoolCodec), schema.Always())
	flagValue    = schema.Attribute("Value", "value")
	activeType   = schema.NewType("ActiveFlag", nil, nil, flagActive)
	enabledType  = schema.NewType("EnabledFlag", nil, nil, flagEnabled)
	valueType    = schema.NewType("ValueFlag", nil, nil, flagValue)
	externalCov  = schema.Element("Coverage", "coverage", flagsFactory(activeType))
	externalType = schema.NewType("External", nil, nil, externalCov)

	strategyType = schema.NewType("TestDeterminationStrategy", nil, nil,
		schema.Attribute("SameProgram", "sameProgram", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("AssignedTests", "assignedTests", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("AppendAssignedTestsPreview", "appendAssignedTestsPreview", schema.WithCodec(schema.BoolCodec), schema.Always()))
	riskType = schema.NewType("TestRiskLevels", nil, nil,
		schema.Attribute("Harmless", "harmless", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("Dangerous", "dangerous", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("Critical", "critical", schema.WithCodec(schema.BoolCodec), schema.Always()))
	durationType = schema.NewType("TestDurations", nil, nil,
		schema.Attribute("Short", "short", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("Medium", "medium", schema.WithCodec(schema.BoolCodec), schema.Always()),
		schema.Attribute("Long", "long", schema.WithCodec(schema.BoolCodec), schema.Always()))

	optionsType = schema.NewType("Options", nil, nil,
		schema.Element("URIType", "uriType", flagsFactory(valueType)),
		schema.Element("Strategy", "testDeterminationStrategy", flagsFactory(strategyType)),
		schema.Element("RiskLevels", "testRiskLevels", flagsFactory(riskType)),
		schema.Element("Durations", "testDurations", flagsFactory(durationType)),
		schema.Element("NavigationURI", "withNavigationUri", flagsFactory(enabledType)))

	rcExternal = schema.Element("External", "external", flagsFactory(externalType))
	rcOptions  = schema.Element("Options", "options", flagsFactory(optionsType))
	rcSets     = schema.Element("ObjectSets", "adtcore:objectSets", flagsFactory(setsType))

	RunConfigurationType = schema.NewType("RunConfiguration", nil, mustDescriptor("runConfiguration"),
		rcExternal, rcOptions, rcSets)
)

// RunConfiguration is an aunit:runConfiguration request.
type RunConfiguration struct {
	schema.Base
}

// NewRunConfiguration creates a run of every risk level and duration for
// refs. Coverage measurement is off.
func NewRunConfiguration(refs ...*Reference) *RunConfiguration {
	rc := &RunConfiguration{Base: schema.NewBase(RunConfigurationType, "")}

	external := newFlags(externalType, "")
	external.Set("Coverage", newFlags(activeType, "").Set("Active", false))
	rcExternal.Set(rc, external)

	opts := newFlags(optionsType, "")
	opts.Set("URIType", newFlags(valueType, "").Set("Value", "semantic"))
	opts.Set("Strategy", newFlags(strategyType, "").
		Set("SameProgram", true).
		Set("AssignedTests", false).
		Set("AppendAssignedTestsPreview", true))
	opts.Set("RiskLevels", newFlags(riskType, "").
		Set("Harmless", true).
		Set("Dangerous", true).
		Set("Critical", true))
	opts.Set("Durations", newFlags(durationType, "").
		Set("Short", true).
		Set("Medium", true).
		Set("Long", true))
	opts.Set("NavigationURI", newFlags(enabledType, "").Set("Enabled", false))
	rcOptions.Set(rc, opts)

	rcSets.Set(rc, newObjectSets("", refs))
	return rc
}

// SetCoverage turns coverage measurement on or off.
func (rc *RunConfiguration) SetCoverage(active bool) {
	if ext, ok := rcExternal.Get(rc).(*Flags); ok {
		if cov := ext.Nested("Coverage"); cov != nil {
			cov.Set("Active", active)
		}
	}
}

// Coverage reports whether coverage is measured.
func (rc *RunConfiguration) Coverage() bool {
	if ext, ok := rcExternal.Get(rc).(*Flags); ok {
		if cov := ext.Nested("Coverage"); cov != nil {
			active, _ := cov.Get("Active").(bool)
			return active
		}
	}
	return false
}

// SetRiskLevels selects the risk levels to run.
func (rc *RunConfiguration) SetRiskLevels(harmless, dangerous, critical bool) {
	if o, ok := rcOptions.Get(rc).(*Flags); ok {
		if r := o.Nested("RiskLevels"); r != nil {
			r.Set("Harmless", harmless).Set("Dangerous", dangerous).Set("Critical", critical)
		}
	}
}

// SetDurations selects the test durations to run.
func (rc *RunConfiguration) SetDurations(short, medium, long bool) {
	if o, ok := rcOptions.Get(rc).(*Flags); ok {
		if d := o.Nested("Durations"); d != nil {
			d.Set("Short", short).Set("Medium", medium).Set("Long", long)
		}
	}
}

// References returns the objects under test.
func (rc *RunConfiguration) References() []*Reference {
	sets, _ := rcSets.Get(rc).(*Flags)
	return objectSetReferences(sets)
}
