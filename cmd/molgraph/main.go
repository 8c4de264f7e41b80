package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"

	"github.com/2x3systems/molgraph/gomol"
	"github.com/2x3systems/molgraph/libmol"
	"github.com/2x3systems/molgraph/libmol/catalog"
	"github.com/2x3systems/molgraph/libmol/smiles"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func main() {
	var (
		configPath string
		perms      permList
		runREPL    bool
	)

	cfg := DefaultConfig()

	fset := flag.CommandLine
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	fset.StringVar(&configPath, "config", "", "YAML file of default settings")
	fset.BoolVar(&cfg.Sort, "sort", cfg.Sort, "sort each adjacency list by neighbor")
	fset.BoolVar(&cfg.Unique, "unique", cfg.Unique, "drop graphs identical to one already output")
	fset.Var(&perms, "perm", "comma separated permutation to apply (repeatable)")
	fset.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "catalog db path to add each graph to")
	fset.StringVar(&cfg.Script, "script", cfg.Script, "gpython script to run with _molgraph available")
	fset.IntVar(&cfg.Workers, "workers", cfg.Workers, "goroutines used to permute each graph")
	fset.BoolVar(&runREPL, "repl", false, "start an interactive gpython session")
	flag.Parse()

	if len(configPath) > 0 {
		fileCfg, err := LoadConfig(configPath)
		if err != nil {
			klog.Fatalf("%v", err)
		}
		cfg = mergeFlags(fset, fileCfg, cfg)
	}
	if cfg.Verbosity > 0 && !isFlagSet(fset, "v") {
		fset.Set("v", strconv.Itoa(cfg.Verbosity))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	exitCode := 0
	if flag.NArg() > 0 {
		if err := processSmiles(ctx, cfg, perms, flag.Args()); err != nil {
			klog.Errorf("%v", err)
			exitCode = 1
		}
	}

	if exitCode == 0 && (len(cfg.Script) > 0 || runREPL) {
		if err := go_gpython(cfg.Script); err != nil {
			exitCode = 1
		}
	}

	klog.Flush()
	os.Exit(exitCode)
}

func isFlagSet(fset *flag.FlagSet, name string) bool {
	set := false
	fset.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// mergeFlags returns fileCfg with every explicitly set flag from flagCfg applied over it.
func mergeFlags(fset *flag.FlagSet, fileCfg, flagCfg Config) Config {
	cfg := fileCfg
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sort":
			cfg.Sort = flagCfg.Sort
		case "unique":
			cfg.Unique = flagCfg.Unique
		case "catalog":
			cfg.Catalog = flagCfg.Catalog
		case "script":
			cfg.Script = flagCfg.Script
		case "workers":
			cfg.Workers = flagCfg.Workers
		}
	})
	return cfg
}

// processSmiles parses each SMILES string and runs the result through the requested stages.
func processSmiles(ctx context.Context, cfg Config, perms permList, args []string) error {
	graphs := make([]*libmol.Graph, 0, len(args))
	for _, smi := range args {
		X := libmol.NewGraph(cfg.CapacityHint)
		if err := smiles.ParseInto(X, smi); err != nil {
			return errors.Wrapf(err, "%q", smi)
		}
		graphs = append(graphs, X)
	}

	var cat libmol.Catalog
	if len(cfg.Catalog) > 0 {
		var err error
		cat, err = catalog.OpenCatalog(gomol.CatalogOpts{
			DbPathName: cfg.Catalog,
		})
		if err != nil {
			return err
		}
	}

	stream := libmol.NewGraphStream()
	go func() {
		defer stream.Close()
		for _, X := range graphs {
			if len(perms) == 0 {
				stream.PushGraph(X)
				continue
			}

			permIn := make(chan []int, len(perms))
			for _, perm := range perms {
				permIn <- perm
			}
			close(permIn)
			for Y := range libmol.PermuteStream(ctx, X, permIn, cfg.Workers).Outlet {
				stream.PushGraph(Y)
			}
		}
	}()

	if cfg.Sort {
		stream = stream.Sort()
	}
	if cfg.Unique {
		stream = stream.DropDupes()
	}

	if cat != nil {
		stream = stream.AddTo(cat, libmol.AddGraphOpts{
			AutoCloseCatalog: true,
		})
	}

	count := stream.Print(stdout{}, gomol.DefaultPrintOpts).PullAll()
	klog.V(1).Infof("%d graphs output", count)
	return nil
}

// stdout lets a stream stage write to os.Stdout without closing it.
type stdout struct{}

func (stdout) Write(buf []byte) (int, error) { return os.Stdout.Write(buf) }
func (stdout) Close() error                  { return nil }
