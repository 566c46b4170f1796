// Package platform provides the small set of filesystem operations whose
// behaviour differs between Unix and Windows: applying permission bits and
// normalizing the modes carried by archive entries.
package platform
