// Package app wires a document to its collaborators: it loads the document
// from disk, recomputes it with the engine, keeps the report history, and
// serves the HTTP control surface. It is decoupled from any specific
// entrypoint like a CLI.
package app
