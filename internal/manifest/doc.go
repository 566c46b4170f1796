// Package manifest reads the package.json shipped inside a template archive,
// validates it against an embedded JSON Schema, and turns it into the
// package.json of the new project. Only main, scripts, dependencies,
// devDependencies and browserslist are carried over, byte-for-byte as the
// template declared them.
package manifest
