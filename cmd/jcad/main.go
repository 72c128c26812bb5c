// jcad is a host-side CLI for shared CAD documents: it opens or creates a
// .jcad file, applies edits through the shared-document protocol, and can
// keep the replica synced against a relay.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brichet/JupyterCAD/pkg/caddoc"
	"github.com/brichet/JupyterCAD/pkg/jcad"
	"github.com/brichet/JupyterCAD/pkg/transport"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	fileVar := flag.String("file", "model.jcad", "the document file to operate on")
	addrVar := flag.String("addr", "127.0.0.1:8080", "the relay address used by the sync verb")
	docVar := flag.String("doc", "default", "the relay-side document id used by the sync verb")
	flag.Parse()

	if flag.NArg() < 1 {
		return fmt.Errorf("expected a verb: list, dump, add-box, add-cylinder, cut, sync")
	}
	verb, args := flag.Arg(0), flag.Args()[1:]

	doc, err := loadDocument(*fileVar)
	if err != nil {
		return err
	}

	switch verb {
	case "list":
		for i, name := range doc.Objects() {
			obj, err := doc.GetObject(name)
			if err != nil {
				return err
			}
			visible := true
			if obj.Visible != nil {
				visible = *obj.Visible
			}
			fmt.Printf("%3d %-24s %-20s visible=%v\n", i, name, obj.Shape, visible)
		}
		return nil

	case "dump":
		data, err := doc.MarshalJCAD()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil

	case "add-box":
		fs := flag.NewFlagSet("add-box", flag.ExitOnError)
		name := fs.String("name", "", "object name, autogenerated when empty")
		length := fs.Float64("length", 1, "box length")
		width := fs.Float64("width", 1, "box width")
		height := fs.Float64("height", 1, "box height")
		x := fs.Float64("x", 0, "position x")
		y := fs.Float64("y", 0, "position y")
		z := fs.Float64("z", 0, "position z")
		_ = fs.Parse(args)
		placement := jcad.DefaultPlacement()
		placement.Position = [3]float64{*x, *y, *z}
		if err := doc.AddBox(*name, *length, *width, *height, placement); err != nil {
			return err
		}
		return doc.WriteFile(*fileVar)

	case "add-cylinder":
		fs := flag.NewFlagSet("add-cylinder", flag.ExitOnError)
		name := fs.String("name", "", "object name, autogenerated when empty")
		radius := fs.Float64("radius", 1, "cylinder radius")
		height := fs.Float64("height", 1, "cylinder height")
		angle := fs.Float64("angle", 360, "sweep angle in degrees")
		_ = fs.Parse(args)
		if err := doc.AddCylinder(*name, *radius, *height, *angle, jcad.DefaultPlacement()); err != nil {
			return err
		}
		return doc.WriteFile(*fileVar)

	case "cut":
		fs := flag.NewFlagSet("cut", flag.ExitOnError)
		name := fs.String("name", "", "object name, autogenerated when empty")
		base := fs.String("base", "", "base object, defaults to the second-to-last object")
		tool := fs.String("tool", "", "tool object, defaults to the last object")
		refine := fs.Bool("refine", false, "refine the result")
		_ = fs.Parse(args)
		var baseOp, toolOp caddoc.Operand
		if *base != "" {
			baseOp = caddoc.ByName(*base)
		}
		if *tool != "" {
			toolOp = caddoc.ByName(*tool)
		}
		if err := doc.Cut(*name, baseOp, toolOp, *refine); err != nil {
			return err
		}
		return doc.WriteFile(*fileVar)

	case "sync":
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			exit := make(chan os.Signal, 1) // buffer size 1 so the notifier is not blocked
			signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-exit
			slog.Info("Signal caught", "sig", sig)
			cancel()
		}()
		url := fmt.Sprintf("ws://%s/documents/%s/sync", *addrVar, *docVar)
		if err := transport.Dial(ctx, url, doc); err != nil {
			return err
		}
		slog.Info("sync ended", "objects", doc.Objects())
		return doc.WriteFile(*fileVar)

	default:
		return fmt.Errorf("unknown verb %q", verb)
	}
}

func loadDocument(path string) (*caddoc.Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("starting a new document", "path", path)
		return caddoc.Create(path, jcad.Default())
	}
	return caddoc.Open(path, jcad.Default(), nil)
}
