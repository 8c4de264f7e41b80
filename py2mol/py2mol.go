// Package py2mol registers the "_molgraph" gpython module, exposing the graph engine to scripts.
package py2mol

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/2x3systems/molgraph/libmol/catalog"
	"github.com/2x3systems/molgraph/libmol/smiles"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pyGraphType       = py.NewType("Graph", "a chemical graph: atoms, bonds and stereo topologies")
	pyGraphStreamType = py.NewType("GraphStream", "libmol.GraphStream")
	pyCatalogType     = py.NewType("Catalog", "libmol.Catalog")
)

// pyErr maps an engine error onto the closest python exception.
func pyErr(err error) error {
	switch {
	case errors.Is(err, gomol.ErrInvalidVertex):
		return py.ExceptionNewf(py.IndexError, "%v", err)
	case errors.Is(err, gomol.ErrGraphNotFound):
		return py.ExceptionNewf(py.KeyError, "%v", err)
	case errors.Is(err, gomol.ErrBadCatalogParam):
		return py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.ExceptionNewf(py.ValueError, "%v", err)
}

type pyGraph struct {
	*libmol.Graph
}

func (X pyGraph) Type() *py.Type {
	return pyGraphType
}

func (X pyGraph) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	X.WriteAsString(&writer, gomol.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (X pyGraph) M__repr__() (py.Object, error) {
	return X.M__str__()
}

func getGraph(obj py.Object) (pyGraph, error) {
	X, ok := obj.(pyGraph)
	if !ok {
		return pyGraph{}, py.ExceptionNewf(py.TypeError, "expected Graph object (got %v)", obj.Type().Name)
	}
	return X, nil
}

func getInts(obj py.Object) ([]int, error) {
	var items []py.Object
	switch seq := obj.(type) {
	case py.Tuple:
		items = seq
	case *py.List:
		items = seq.Items
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected tuple or list (got %v)", obj.Type().Name)
	}

	ints := make([]int, len(items))
	for i, item := range items {
		val, err := py.GetInt(item)
		if err != nil {
			return nil, err
		}
		ints[i] = int(val)
	}
	return ints, nil
}

// Arg 1 (str): SMILES
func py_Parse(module py.Object, args py.Tuple) (py.Object, error) {
	var smi py.Object
	err := py.ParseTuple(args, "s", &smi)
	if err != nil {
		return nil, err
	}
	X, err := smiles.Parse(string(smi.(py.String)))
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyGraph{X}), nil
}

// Arg 1 (int, optional): capacity hint
func py_NewGraph(module py.Object, args py.Tuple) (py.Object, error) {
	var hint py.Object = py.Int(0)
	if err := py.ParseTuple(args, "|i", &hint); err != nil {
		return nil, err
	}
	capacityHint, err := py.GetInt(hint)
	if err != nil {
		return nil, err
	}
	X := libmol.NewGraph(int(capacityHint))
	return py.Object(pyGraph{X}), nil
}

func py_Graph_Order(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Object(py.Int(X.Order())), nil
}

func py_Graph_Size(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	return py.Object(py.Int(X.Size())), nil
}

func vertexArgs(args py.Tuple, n int) ([]int, error) {
	if len(args) != n {
		return nil, py.ExceptionNewf(py.TypeError, "expected %d int arguments (got %d)", n, len(args))
	}
	return getInts(args)
}

// Arg 1 (int): vertex
func py_Graph_Degree(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	vs, err := vertexArgs(args, 1)
	if err != nil {
		return nil, err
	}
	deg, err := X.Degree(vs[0])
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Int(deg), nil
}

// Arg 1 (int): vertex
func py_Graph_Neighbors(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	vs, err := vertexArgs(args, 1)
	if err != nil {
		return nil, err
	}
	nbrs, err := X.Neighbors(vs[0])
	if err != nil {
		return nil, pyErr(err)
	}
	tuple := make(py.Tuple, len(nbrs))
	for i, v := range nbrs {
		tuple[i] = py.Int(v)
	}
	return tuple, nil
}

// Arg 1, 2 (int): vertices u and v
func py_Graph_Adjacent(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	vs, err := vertexArgs(args, 2)
	if err != nil {
		return nil, err
	}
	adj, err := X.Adjacent(vs[0], vs[1])
	if err != nil {
		return nil, pyErr(err)
	}
	if adj {
		return py.True, nil
	}
	return py.False, nil
}

// Returns a tuple of (u, v, bond symbol) in insertion order.
func py_Graph_Edges(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	edges := X.Edges()
	tuple := make(py.Tuple, len(edges))
	for i, e := range edges {
		u := e.Either()
		tuple[i] = py.Tuple{py.Int(u), py.Int(e.Other(u)), py.String(e.Bond().Symbol())}
	}
	return tuple, nil
}

// Arg 1 (int): vertex; returns the stored configuration symbol ("" if none).
func py_Graph_Configuration(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	vs, err := vertexArgs(args, 1)
	if err != nil {
		return nil, err
	}
	return py.String(X.ConfigurationOf(vs[0]).Symbol()), nil
}

// Arg 1 (int): vertex; returns the configuration relative to ascending neighbor order.
func py_Graph_RelativeConfiguration(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	vs, err := vertexArgs(args, 1)
	if err != nil {
		return nil, err
	}
	return py.String(X.RelativeConfigurationOf(vs[0]).Symbol()), nil
}

func py_Graph_Sort(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	X.Sort()
	return py.None, nil
}

// Arg 1 (tuple or list of int): permutation, where new vertex perm[i] holds old vertex i
func py_Graph_Permute(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Permute takes a single tuple")
	}
	perm, err := getInts(args[0])
	if err != nil {
		return nil, err
	}
	Y, err := X.Permute(perm)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyGraph{Y}), nil
}

func py_Graph_Fingerprint(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	fp, err := X.Fingerprint()
	if err != nil {
		return nil, pyErr(err)
	}
	return py.String(fmt.Sprintf("%016x", fp)), nil
}

func py_Graph_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	X := self.(pyGraph)
	next := libmol.StreamGraph(X.Graph)
	return wrapGraphStream(next), nil
}

type pyCatalog struct {
	libmol.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

// Arg 1 (str): pathname ("" for an in-memory catalog)
// Arg 2 (int, optional): non-zero opens read-only
func py_OpenCatalog(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname, readOnly py.Object = py.String(""), py.Int(0)
	err := py.ParseTuple(args, "|si", &pathname, &readOnly)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.OpenCatalog(gomol.CatalogOpts{
		DbPathName: string(pathname.(py.String)),
		ReadOnly:   readOnly.(py.Int) != 0,
	})
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyCatalog{cat}), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if err := cat.Close(); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func py_Catalog_NumGraphs(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	return py.Int(cat.NumGraphs()), nil
}

// Arg 1 (str): name
// Arg 2 (Graph): graph to store
func py_Catalog_Put(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var name, graph py.Object
	err := py.ParseTuple(args, "sO", &name, &graph)
	if err != nil {
		return nil, err
	}
	X, err := getGraph(graph)
	if err != nil {
		return nil, err
	}
	if err = cat.Put(string(name.(py.String)), X.Graph); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

// Arg 1 (str): name
func py_Catalog_Get(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var name py.Object
	err := py.ParseTuple(args, "s", &name)
	if err != nil {
		return nil, err
	}
	X, err := cat.Get(string(name.(py.String)), smiles.DecodeAtom)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Object(pyGraph{X}), nil
}

func py_Catalog_Select(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	next := libmol.SelectFromCatalog(cat, smiles.DecodeAtom)
	return wrapGraphStream(next), nil
}

type graphStream struct {
	*libmol.GraphStream
}

func (stream graphStream) Type() *py.Type {
	return pyGraphStreamType
}

func wrapGraphStream(stream *libmol.GraphStream) py.Object {
	return py.Object(graphStream{stream})
}

func py_GraphStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(graphStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

func py_GraphStream_Sort(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(graphStream)
	return wrapGraphStream(stream.Sort()), nil
}

// Arg 1 (Catalog): catalog to add to; graphs already present are dropped from the stream
func py_GraphStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(graphStream)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AddTo takes a single Catalog")
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog object (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}

	next := stream.AddTo(cat, libmol.AddGraphOpts{})
	return wrapGraphStream(next), nil
}

func py_GraphStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(graphStream)
	return wrapGraphStream(stream.DropDupes()), nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Arg 1 (str, optional): label
// Arg 2 (str, optional): output pathname (stdout if omitted)
func py_GraphStream_Print(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(graphStream)
	var label, pathname py.Object = py.String(""), py.String("")
	err := py.ParseTuple(args, "|ss", &label, &pathname)
	if err != nil {
		return nil, err
	}

	opts := gomol.DefaultPrintOpts
	opts.Label = string(label.(py.String))

	var out io.WriteCloser = nopCloser{os.Stdout}
	if path := string(pathname.(py.String)); len(path) > 0 {
		os.MkdirAll(filepath.Dir(path), 0700)

		file, err := os.OpenFile(path, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		out = file
	}

	next := stream.Print(out, opts)
	return wrapGraphStream(next), nil
}

func init() {

	/////////////////////////////////
	// Graph
	{
		pyGraphType.Dict["Order"] = py.MustNewMethod("Order", py_Graph_Order, 0, "returns the number of atoms")
		pyGraphType.Dict["Size"] = py.MustNewMethod("Size", py_Graph_Size, 0, "returns the number of bonds")
		pyGraphType.Dict["Degree"] = py.MustNewMethod("Degree", py_Graph_Degree, 0, "")
		pyGraphType.Dict["Neighbors"] = py.MustNewMethod("Neighbors", py_Graph_Neighbors, 0, "")
		pyGraphType.Dict["Adjacent"] = py.MustNewMethod("Adjacent", py_Graph_Adjacent, 0, "")
		pyGraphType.Dict["Edges"] = py.MustNewMethod("Edges", py_Graph_Edges, 0, "returns every bond as (u, v, symbol)")
		pyGraphType.Dict["Configuration"] = py.MustNewMethod("Configuration", py_Graph_Configuration, 0, "")
		pyGraphType.Dict["RelativeConfiguration"] = py.MustNewMethod("RelativeConfiguration", py_Graph_RelativeConfiguration, 0, "")
		pyGraphType.Dict["Sort"] = py.MustNewMethod("Sort", py_Graph_Sort, 0, "orders each adjacency list by neighbor")
		pyGraphType.Dict["Permute"] = py.MustNewMethod("Permute", py_Graph_Permute, 0, "returns a relabeled copy of this Graph")
		pyGraphType.Dict["Fingerprint"] = py.MustNewMethod("Fingerprint", py_Graph_Fingerprint, 0, "")
		pyGraphType.Dict["Stream"] = py.MustNewMethod("Stream", py_Graph_Stream, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Put"] = py.MustNewMethod("Put", py_Catalog_Put, 0, "")
		pyCatalogType.Dict["Get"] = py.MustNewMethod("Get", py_Catalog_Get, 0, "")
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["NumGraphs"] = py.MustNewMethod("NumGraphs", py_Catalog_NumGraphs, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// GraphStream
	{
		pyGraphStreamType.Dict["Go"] = py.MustNewMethod("Go", py_GraphStream_Go, 0, "counts the number of graphs output from the GraphStream")
		pyGraphStreamType.Dict["Print"] = py.MustNewMethod("Print", py_GraphStream_Print, 0, "prints each graph from the GraphStream")
		pyGraphStreamType.Dict["Sort"] = py.MustNewMethod("Sort", py_GraphStream_Sort, 0, "")
		pyGraphStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_GraphStream_AddTo, 0, "")
		pyGraphStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", py_GraphStream_DropDupes, 0, "passes on only the first of each distinct graph")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Parse", py_Parse, 0, "reads a SMILES string into a Graph"),
			py.MustNewMethod("NewGraph", py_NewGraph, 0, ""),
			py.MustNewMethod("OpenCatalog", py_OpenCatalog, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_molgraph",
				Doc:  "chemical graph gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
