// Package client talks to the ADT REST API of an ABAP system.
//
// A Client sends XML documents built with pkg/objects and pkg/marshal and
// reads answers back either into those objects or, for test, coverage,
// check and transport results, into pkg/results trees.
//
//	c, err := client.New("https://host:44300",
//		client.WithBasicAuth("DEVELOPER", secret),
//		client.WithSAPClient("001"),
//	)
//	prog := objects.NewProgram("ZHELLO", objects.WithPackage("$TMP"))
//	err = c.Create(ctx, prog, "")
//
// Every exchange is recorded to the protocol logger given with
// WithProtocolLogger and counted in the Metrics given with WithMetrics.
// Server errors are returned as *ServiceError, classified with the
// containerd errdefs predicates:
//
//	if errdefs.IsNotFound(err) { ... }
package client
