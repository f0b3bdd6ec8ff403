// Package object defines the document object model: properties, the
// objects that own them, and the capability interfaces (behaviors,
// extensions, expression bindings) that give an object its computation.
//
// An Object never knows about the dependency graph. It only reports changes
// to its Owner, which is how the document learns that something needs to be
// recomputed. Link-family properties hold plain pointers to other objects;
// the links package turns them into dependency edges.
package object
