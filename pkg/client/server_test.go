package client

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const (
	testToken  = "tok-1"
	testHandle = "LH-42"
)

// fakeADT serves the parts of the ADT API the client uses.
type fakeADT struct {
	server *httptest.Server

	mu           sync.Mutex
	programs     map[string]string
	sources      map[string]string
	requests     []string
	bodies       map[string]string
	rejectToken  int
	tokenFetches int
	sessionTypes []string
}

func newFakeADT(t *testing.T) *fakeADT {
	t.Helper()
	f := &fakeADT{
		programs: map[string]string{},
		sources:  map[string]string{},
		bodies:   map[string]string{},
	}

	r := chi.NewRouter()
	r.Use(f.record)
	r.Route("/sap/bc/adt", func(r chi.Router) {
		r.Get("/discovery", f.discovery)

		r.Group(func(r chi.Router) {
			r.Use(f.requireToken)

			r.Post("/programs/programs", f.createProgram)
			r.Get("/programs/programs/{name}", f.getProgram)
			r.Post("/programs/programs/{name}", f.lockProgram)
			r.Delete("/programs/programs/{name}", f.deleteProgram)
			r.Get("/programs/programs/{name}/source/main", f.getSource)
			r.Put("/programs/programs/{name}/source/main", f.putSource)

			r.Post("/activation", f.activate)
			r.Post("/abapunit/testruns", f.aunit)
			r.Post("/runtime/traces/coverage/measurements/{id}", f.coverage)
			r.Post("/atc/worklists", f.createWorklist)
			r.Post("/atc/runs", f.atcRun)
			r.Get("/atc/worklists/{id}", f.worklist)
			r.Get("/cts/transportrequests", f.transports)
		})
	})

	f.server = httptest.NewServer(r)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeADT) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		key := r.Method + " " + r.URL.Path
		f.requests = append(f.requests, key)
		f.bodies[key] = string(body)
		f.sessionTypes = append(f.sessionTypes, r.Header.Get("X-Sap-Adt-Sessiontype"))
		f.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (f *fakeADT) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "DEVELOPER" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		f.mu.Lock()
		reject := f.rejectToken > 0
		if reject {
			f.rejectToken--
		}
		f.mu.Unlock()

		if reject || r.Header.Get("X-Csrf-Token") != testToken {
			w.Header().Set("X-Csrf-Token", "Required")
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, "CSRF token validation failed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeADT) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func (f *fakeADT) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r == key {
			n++
		}
	}
	return n
}

func (f *fakeADT) discovery(w http.ResponseWriter, r *http.Request) {
	if strings.EqualFold(r.Header.Get("X-Csrf-Token"), "fetch") {
		f.mu.Lock()
		f.tokenFetches++
		f.mu.Unlock()
		w.Header().Set("X-Csrf-Token", testToken)
	}
	w.Header().Set("Content-Type", "application/atomsvc+xml")
	_, _ = io.WriteString(w, `<app:service xmlns:app="http://www.w3.org/2007/app"/>`)
}

func writeXML(w http.ResponseWriter, status int, ct, body string) {
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func notFound(w http.ResponseWriter, name string) {
	writeXML(w, http.StatusNotFound, "application/xml", `<?xml version="1.0" encoding="utf-8"?>
<exc:exception xmlns:exc="http://www.sap.com/abapxml/types/communicationframework">
  <namespace id="com.sap.adt"/>
  <type id="ExceptionResourceNotFound"/>
  <message lang="EN">Resource `+name+` does not exist.</message>
</exc:exception>`)
}

func (f *fakeADT) createProgram(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	if !strings.Contains(string(body), "<program:abapProgram") {
		writeXML(w, http.StatusBadRequest, "text/plain", "not a program")
		return
	}
	name := "zhello"
	f.mu.Lock()
	if _, ok := f.programs[name]; ok {
		f.mu.Unlock()
		writeXML(w, http.StatusBadRequest, "application/xml", `<exc:exception xmlns:exc="http://www.sap.com/abapxml/types/communicationframework">
<namespace id="com.sap.adt"/><type id="ExceptionResourceAlreadyExists"/><message>Resource ZHELLO already exists</message></exc:exception>`)
		return
	}
	f.programs[name] = string(body)
	f.mu.Unlock()
	w.WriteHeader(http.StatusCreated)
}

const programXML = `<?xml version="1.0" encoding="utf-8"?>
<program:abapProgram program:lockedByEditor="false" program:programType="executableProgram" abapsource:sourceUri="source/main" abapsource:fixPointArithmetic="true" abapsource:activeUnicodeCheck="true" adtcore:responsible="DEVELOPER" adtcore:masterLanguage="EN" adtcore:masterSystem="NPL" adtcore:name="ZHELLO" adtcore:type="PROG/P" adtcore:changedAt="2026-01-10T10:00:00Z" adtcore:version="active" adtcore:createdAt="2026-01-10T00:00:00Z" adtcore:changedBy="DEVELOPER" adtcore:createdBy="DEVELOPER" adtcore:description="Hello world" adtcore:descriptionTextLimit="70" adtcore:language="EN" xmlns:program="http://www.sap.com/adt/programs/programs" xmlns:abapsource="http://www.sap.com/adt/abapsource" xmlns:adtcore="http://www.sap.com/adt/core">
  <atom:link href="source/main/versions" rel="http://www.sap.com/adt/relations/versions" xmlns:atom="http://www.w3.org/2005/Atom"/>
  <adtcore:packageRef adtcore:uri="/sap/bc/adt/packages/%24tmp" adtcore:type="DEVC/K" adtcore:name="$TMP"/>
</program:abapProgram>`

func (f *fakeADT) getProgram(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name != "zhello" {
		notFound(w, strings.ToUpper(name))
		return
	}
	writeXML(w, http.StatusOK, "application/vnd.sap.adt.programs.programs.v2+xml; charset=utf-8", programXML)
}

func (f *fakeADT) lockProgram(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("_action") {
	case "LOCK":
		if r.Header.Get("X-Sap-Adt-Sessiontype") != "stateful" {
			writeXML(w, http.StatusBadRequest, "text/plain", "lock needs a stateful session")
			return
		}
		writeXML(w, http.StatusOK, "application/vnd.sap.as+xml; charset=utf-8; dataname=com.sap.adt.lock.result",
			`<?xml version="1.0" encoding="utf-8"?><asx:abap xmlns:asx="http://www.sap.com/abapxml" version="1.0"><asx:values><DATA>`+
				`<LOCK_HANDLE>`+testHandle+`</LOCK_HANDLE><CORRNR/><CORRUSER/><CORRTEXT/><IS_LOCAL>X</IS_LOCAL>`+
				`</DATA></asx:values></asx:abap>`)
	case "UNLOCK":
		if q.Get("lockHandle") != testHandle {
			writeXML(w, http.StatusBadRequest, "text/plain", "bad handle")
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeADT) deleteProgram(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("lockHandle") != testHandle {
		writeXML(w, http.StatusLocked, "text/plain", "not locked")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeADT) getSource(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	src, ok := f.sources[chi.URLParam(r, "name")]
	f.mu.Unlock()
	if !ok {
		src = "REPORT zhello.\n"
	}
	writeXML(w, http.StatusOK, "text/plain; charset=utf-8", src)
}

func (f *fakeADT) putSource(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("lockHandle") != testHandle {
		writeXML(w, http.StatusForbidden, "application/xml", `<exc:exception xmlns:exc="http://www.sap.com/abapxml/types/communicationframework">
<namespace id="com.sap.adt"/><type id="ExceptionResourceInvalidLockHandle"/><message>Invalid lock handle</message></exc:exception>`)
		return
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.sources[chi.URLParam(r, "name")] = string(body)
	f.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (f *fakeADT) activate(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("method") != "activate" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	body, _ := io.ReadAll(r.Body)
	if strings.Contains(string(body), `adtcore:name="ZBROKEN"`) {
		writeXML(w, http.StatusOK, "application/xml", `<?xml version="1.0" encoding="utf-8"?><chkl:messages xmlns:chkl="http://www.sap.com/abapxml/checklist">`+
			`<msg objDescr="Program ZBROKEN" type="E" line="3" href="/sap/bc/adt/programs/programs/zbroken/source/main#start=3,0">`+
			`<shortText><txt>Statement is not defined</txt></shortText></msg></chkl:messages>`)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *fakeADT) aunit(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/vnd.sap.adt.abapunit.testruns.config.v4+xml" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	body, _ := io.ReadAll(r.Body)
	external := ""
	if strings.Contains(string(body), `<coverage active="true"/>`) {
		external = `<external><coverage adtcore:uri="/sap/bc/adt/runtime/traces/coverage/measurements/M1"/></external>`
	}
	writeXML(w, http.StatusOK, "application/vnd.sap.adt.abapunit.testruns.result.v1+xml",
		`<?xml version="1.0" encoding="utf-8"?><aunit:runResult xmlns:aunit="http://www.sap.com/adt/aunit" xmlns:adtcore="http://www.sap.com/adt/core">`+external+
			`<program adtcore:name="ZCL_DEMO"><testClasses><testClass adtcore:name="LTCL"><testMethods>`+
			`<testMethod adtcore:name="OK"/>`+
			`<testMethod adtcore:name="BAD"><alerts><alert kind="failedAssertion" severity="critical"><title>boom</title></alert></alerts></testMethod>`+
			`</testMethods></testClass></testClasses></program></aunit:runResult>`)
}

func (f *fakeADT) coverage(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "id") != "M1" {
		notFound(w, chi.URLParam(r, "id"))
		return
	}
	writeXML(w, http.StatusOK, "application/xml", `<?xml version="1.0" encoding="utf-8"?><cov:result xmlns:cov="http://www.sap.com/adt/cov" xmlns:adtcore="http://www.sap.com/adt/core">`+
		`<nodes><node><adtcore:objectReference adtcore:type="CLAS/OC" adtcore:name="ZCL_DEMO"/>`+
		`<coverages><coverage type="statement" total="4" executed="3"/></coverages></node></nodes></cov:result>`)
}

func (f *fakeADT) createWorklist(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("checkVariant") == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	writeXML(w, http.StatusOK, "text/plain", "WL1\n")
}

func (f *fakeADT) atcRun(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("worklistId") != "WL1" {
		notFound(w, "worklist")
		return
	}
	writeXML(w, http.StatusOK, "application/xml", `<atcworklist:worklistRun xmlns:atcworklist="http://www.sap.com/adt/atc/worklist"/>`)
}

func (f *fakeADT) worklist(w http.ResponseWriter, r *http.Request) {
	writeXML(w, http.StatusOK, "application/atc.worklist.v1+xml", `<?xml version="1.0" encoding="utf-8"?>
<atcworklist:worklist atcworklist:id="`+chi.URLParam(r, "id")+`" xmlns:atcworklist="http://www.sap.com/adt/atc/worklist">
  <atcworklist:objects>
    <atcobject:object adtcore:name="ZCL_DEMO" xmlns:atcobject="http://www.sap.com/adt/atc/object" xmlns:adtcore="http://www.sap.com/adt/core">
      <atcobject:findings>
        <atcfinding:finding atcfinding:priority="1" atcfinding:checkTitle="Syntax Check" xmlns:atcfinding="http://www.sap.com/adt/atc/finding"/>
      </atcobject:findings>
    </atcobject:object>
  </atcworklist:objects>
</atcworklist:worklist>`)
}

func (f *fakeADT) transports(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Accept") != transportsAccept {
		w.WriteHeader(http.StatusNotAcceptable)
		return
	}
	writeXML(w, http.StatusOK, transportsAccept, `<?xml version="1.0" encoding="utf-8"?>
<tm:root xmlns:tm="http://www.sap.com/cts/adt/tm"><tm:workbench><tm:target><tm:modifiable>
<tm:request tm:number="C50K000167" tm:owner="`+r.URL.Query().Get("user")+`" tm:desc="Demo"/>
</tm:modifiable></tm:target></tm:workbench></tm:root>`)
}
