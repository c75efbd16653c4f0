package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/goccy/go-graphviz"
)

// RenderSVG lays out a DOT graph with the embedded Graphviz and returns a
// scalable SVG: the root element's size is given in pixels and its viewBox
// starts at the origin.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// normalizeViewBox rewrites the root <svg> element to carry xmlns, a
// "0 0 w h" viewBox and pixel width and height, in that order. Any other
// root attributes follow unchanged. Input it cannot make sense of is
// returned as is.
func normalizeViewBox(svg []byte) []byte {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(svg); err != nil {
		return svg
	}
	root := doc.Root()
	if root == nil || root.Tag != "svg" {
		return svg
	}
	vb := root.SelectAttrValue("viewBox", "")
	f := strings.Fields(vb)
	if len(f) != 4 {
		return svg
	}
	w, errW := strconv.ParseFloat(f[2], 64)
	h, errH := strconv.ParseFloat(f[3], 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return svg
	}

	rest := make([]etree.Attr, 0, len(root.Attr))
	for _, a := range root.Attr {
		switch a.FullKey() {
		case "xmlns", "viewBox", "width", "height":
		default:
			rest = append(rest, a)
		}
	}
	root.Attr = nil
	root.CreateAttr("xmlns", "http://www.w3.org/2000/svg")
	root.CreateAttr("viewBox", "0 0 "+f[2]+" "+f[3])
	root.CreateAttr("width", strconv.FormatFloat(math.Ceil(w), 'f', -1, 64))
	root.CreateAttr("height", strconv.FormatFloat(math.Ceil(h), 'f', -1, 64))
	for _, a := range rest {
		root.CreateAttr(a.FullKey(), a.Value)
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return svg
	}
	return out
}
