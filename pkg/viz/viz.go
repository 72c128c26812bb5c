// Package viz renders the change history of a shared CAD document as a
// graphviz DAG: one node per change, labelled with the object names present
// at that head.
package viz

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
)

// RenderHistoryToSvg writes the change DAG of the document to an SVG file.
func RenderHistoryToSvg(doc *automerge.Doc, outputPath string) error {
	g := graphviz.New()

	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("failed to setup graph: %w", err)
	}

	changes, err := doc.Changes()
	if err != nil {
		return fmt.Errorf("failed to generate changes: %w", err)
	}

	nodeMap := make(map[string]*cgraph.Node)
	var edgeCounter uint64
	for _, change := range changes {
		docAt, err := doc.Fork(change.Hash())
		if err != nil {
			return fmt.Errorf("failed to checkout %s: %w", change.Hash(), err)
		}

		n, err := graph.CreateNode(change.Hash().String())
		if err != nil {
			return fmt.Errorf("failed to create node: %w", err)
		}
		n.SetLabel(fmt.Sprintf(
			"%s %s@%d [%s]",
			change.Hash().String()[:8], change.ActorID(), change.ActorSeq(),
			strings.Join(objectNamesAt(docAt), ", "),
		))
		nodeMap[n.Name()] = n

		for _, hash := range change.Dependencies() {
			_, err := graph.CreateEdge(strconv.Itoa(int(atomic.AddUint64(&edgeCounter, 1))), nodeMap[hash.String()], n)
			if err != nil {
				return fmt.Errorf("failed to create edge: %w", err)
			}
		}
	}

	var buff bytes.Buffer
	if err := g.Render(graph, graphviz.SVG, &buff); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if err := os.WriteFile(outputPath, buff.Bytes(), os.ModePerm); err != nil {
		return fmt.Errorf("failed to write")
	}
	return nil
}

// RenderToTemp renders the history to a fresh file under the system temp
// directory and returns its path.
func RenderToTemp(doc *automerge.Doc) (string, error) {
	tf := filepath.Join(os.TempDir(), fmt.Sprintf("%d%d.svg", time.Now().UnixNano(), rand.Int()))
	if err := RenderHistoryToSvg(doc, tf); err != nil {
		return "", err
	}
	return tf, nil
}

func objectNamesAt(doc *automerge.Doc) []string {
	names := []string{}
	v, err := doc.Path("objects").Get()
	if err != nil || v.Kind() != automerge.KindList {
		return names
	}
	values, err := v.List().Values()
	if err != nil {
		return names
	}
	for _, e := range values {
		if e.Kind() != automerge.KindMap {
			continue
		}
		nv, err := e.Map().Get("name")
		if err == nil && nv.Kind() == automerge.KindStr {
			names = append(names, nv.Str())
		}
	}
	return names
}
