package objects

import (
	"fmt"

	"github.com/adt-protocol/adt-go/pkg/schema"
)

// Coverage query types.
var (
	cqSets = schema.Element("ObjectSets", "adtcore:objectSets", flagsFactory(setsType))

	CoverageQueryType = schema.NewType("CoverageQuery", nil, mustDescriptor("coverageQuery"), cqSets)
)

// CoverageQuery asks for the coverage tree of a measurement.
type CoverageQuery struct {
	schema.Base

	identifier string
}

// NewCoverageQuery creates a query for the measurement identifier,
// restricted to refs.
func NewCoverageQuery(identifier string, refs ...*Reference) *CoverageQuery {
	q := &CoverageQuery{Base: schema.NewBase(CoverageQueryType, ""), identifier: identifier}
	cqSets.Set(q, newObjectSets("", refs))
	return q
}

// URI returns the measurement URI the query is posted to.
func (q *CoverageQuery) URI() (string, error) {
	path, err := q.Schema().Descriptor().Path(map[string]string{"identifier": q.identifier})
	if err != nil {
		return "", fmt.Errorf("coverage query: %w", err)
	}
	return ServicePath + path, nil
}

// ATC run types.
var (
	atcMaxVerdicts = schema.Attribute("MaximumVerdicts", "maximumVerdicts", schema.WithCodec(schema.IntCodec))
	atcSets        = schema.Element("ObjectSets", "objectSets", flagsFactory(setsType))

	ATCRunType = schema.NewType("ATCRun", nil, mustDescriptor("atcRun"), atcMaxVerdicts, atcSets)
)

// DefaultMaximumVerdicts bounds the findings of one ATC run.
const DefaultMaximumVerdicts = 100

// ATCRun is an atc:run request for a worklist.
type ATCRun struct {
	schema.Base

	worklist string
}

// NewATCRun creates a run of worklist over refs.
func NewATCRun(worklist string, refs ...*Reference) *ATCRun {
	r := &ATCRun{Base: schema.NewBase(ATCRunType, ""), worklist: worklist}
	atcMaxVerdicts.Set(r, DefaultMaximumVerdicts)
	atcSets.Set(r, newObjectSets("", refs))
	return r
}

// Worklist returns the worklist identifier.
func (r *ATCRun) Worklist() string { return r.worklist }

// SetMaximumVerdicts changes the findings limit.
func (r *ATCRun) SetMaximumVerdicts(n int) { atcMaxVerdicts.Set(r, n) }

// MaximumVerdicts returns the findings limit.
func (r *ATCRun) MaximumVerdicts() int { return schema.Value[int](r, atcMaxVerdicts) }

// URI returns the runs URI with the worklist query.
func (r *ATCRun) URI() string {
	return ServicePath + r.Schema().Descriptor().Basepath + "?worklistId=" + r.worklist
}

// References returns the checked objects.
func (r *ATCRun) References() []*Reference {
	sets, _ := atcSets.Get(r).(*Flags)
	return objectSetReferences(sets)
}

// Exception types. The properties element is left unbound and skipped.
var (
	excID  = schema.Attribute("ID", "id")
	idType = schema.NewType("ExceptionID", nil, nil, excID)

	excNamespace = schema.Element("Namespace", "namespace", flagsFactory(idType))
	excType      = schema.Element("Type", "type", flagsFactory(idType))
	excMessage   = schema.Text("Message", "message")
	excLocalized = schema.Text("LocalizedMessage", "localizedMessage")

	ExceptionType = schema.NewType("Exception", nil, mustDescriptor("exception"),
		excNamespace, excType, excMessage, excLocalized)
)

// Exception is the exc:exception body of a failed request.
type Exception struct {
	schema.Base
}

// NewException creates an empty exception to deserialize into.
func NewException() *Exception {
	return &Exception{Base: schema.NewBase(ExceptionType, "")}
}

// Namespace returns the exception namespace, such as "com.sap.adt".
func (e *Exception) Namespace() string {
	if f, ok := excNamespace.Get(e).(*Flags); ok {
		return f.Text("ID")
	}
	return ""
}

// Type returns the exception type, such as "ExceptionResourceNotFound".
func (e *Exception) Type() string {
	if f, ok := excType.Get(e).(*Flags); ok {
		return f.Text("ID")
	}
	return ""
}

// Message returns the message text.
func (e *Exception) Message() string {
	if m := schema.Value[string](e, excMessage); m != "" {
		return m
	}
	return schema.Value[string](e, excLocalized)
}

// Error implements error.
func (e *Exception) Error() string {
	if e.Type() == "" {
		return e.Message()
	}
	return e.Type() + ": " + e.Message()
}

// Lock response types.
var (
	lockHandle   = schema.Text("LockHandle", "LOCK_HANDLE")
	lockCorrNr   = schema.Text("CorrNr", "CORRNR")
	lockCorrUser = schema.Text("CorrUser", "CORRUSER")
	lockCorrText = schema.Text("CorrText", "CORRTEXT")
	lockIsLocal  = schema.Text("IsLocal", "IS_LOCAL", schema.WithCodec(schema.BoolCodec))
	lockDataType = schema.NewType("LockData", nil, nil, lockHandle, lockCorrNr, lockCorrUser, lockCorrText, lockIsLocal)

	lockData   = schema.Element("Data", "DATA", flagsFactory(lockDataType))
	lockValues = schema.NewType("LockValues", nil, nil, lockData)
	lockRoot   = schema.Element("Values", "asx:values", flagsFactory(lockValues))

	LockResultType = schema.NewType("LockResult", nil, mustDescriptor("lockResult"), lockRoot)
)

// LockResult is the answer to a LOCK request.
type LockResult struct {
	schema.Base
}

// NewLockResult creates an empty lock result to deserialize into.
func NewLockResult() *LockResult {
	return &LockResult{Base: schema.NewBase(LockResultType, "")}
}

func (l *LockResult) data() *Flags {
	v, ok := lockRoot.Get(l).(*Flags)
	if !ok {
		return nil
	}
	return v.Nested("Data")
}

// Handle returns the lock handle required to modify the object.
func (l *LockResult) Handle() string {
	if d := l.data(); d != nil {
		return d.Text("LockHandle")
	}
	return ""
}

// Transport returns the transport request the object is recorded in.
func (l *LockResult) Transport() string {
	if d := l.data(); d != nil {
		return d.Text("CorrNr")
	}
	return ""
}

// IsLocal reports whether the object needs no transport.
func (l *LockResult) IsLocal() bool {
	if d := l.data(); d != nil {
		local, _ := d.Get("IsLocal").(bool)
		return local
	}
	return false
}
