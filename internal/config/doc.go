// Package config defines the format-agnostic model of a document file and
// the Loader interface that produces it.
//
// The model is what the builder turns into a live document. Concrete
// loaders, such as the HCL one, live in separate packages.
package config
