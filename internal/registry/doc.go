// Package registry maps the type names used in document files to the Go
// factories that build objects of that type.
//
// Modules register their types at startup. Before a document is built the
// registry validates the loaded model, so unknown types are reported all at
// once instead of failing object by object.
package registry
