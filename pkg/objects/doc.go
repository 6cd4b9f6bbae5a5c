// Package objects declares the ADT repository objects and the request and
// response documents exchanged with the service.
//
// Every type is bound with package schema and can be written with
// marshal.Serialize and read with marshal.Deserialize. Namespaces and type
// descriptors come from an embedded manifest.
//
//	prog := objects.NewProgram("ZHELLO", objects.WithPackage("$TMP"),
//		objects.WithDescription("Say hello"))
//	body, err := marshal.Document(prog)
package objects
