/*
Package builder turns a loaded configuration model into a live document. It
is the bridge between the static model (the 'config' package) and the
recompute core (the 'document' and 'object' packages).

Building runs in two phases, both under the document's restore mode so that
no property assignment touches an object or notifies observers:

 1. Object Creation: every object block is handed to its registered type,
    which declares the properties and supplies the behavior. The registry
    fills in the name and label. A block whose type refuses it is left out
    of the document.

 2. Property Assignment: attributes are applied in source order. Declared
    link properties take link syntax (`object.Box`, `object.Box.Edge1`, or a
    list of those), declared value properties take a constant or an
    expression, and names the type does not declare become dynamic
    properties. Because creation finished first, a link may point at an
    object declared later in the file or in another file.

Assignment errors do not stop the build. The affected object is flagged
partial and all errors are reported together once every object has been
processed. When Build returns, restore mode has ended and every object is
touched, so the first recompute executes the whole document.
*/
package builder
