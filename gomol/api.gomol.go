// Package gomol holds the leaf types shared by every molgraph package:
// the opaque Atom payload, Bond and Configuration labels, sentinel errors and option structs.
package gomol

// Atom is the opaque per-vertex payload of a molecule graph.
//
// The graph engine never interprets an Atom; it stores and returns it by vertex index.
// Symbol() is only used when printing.
type Atom interface {
	Symbol() string
}

// CatalogOpts specifies params for opening a graph Catalog
type CatalogOpts struct {
	DbPathName string // omit for an in-memory db
	ReadOnly   bool   // open in read-only mode
}

// PrintOpts specifies what is printed when printing a graph
type PrintOpts struct {
	Label      string // Prefix label
	Atoms      bool   // If set, prints atom symbols by index
	Edges      bool   // If set, prints the edge list
	Topologies bool   // If set, prints stored stereo topologies
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Atoms:      true,
	Edges:      true,
	Topologies: true,
}
