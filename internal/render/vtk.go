// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/frd-engine/internal/metrics"
	"github.com/pdiddy/frd-engine/pkg/types"
)

// vtkVertex is the VTK cell type of a single point.
const vtkVertex = 1

// WriteVTK writes the joined table as a point cloud for ParaView: each node
// becomes a vertex cell carrying the six stress components and von_mises as
// point data. The extension selects legacy ASCII (.vtk) or XML (.vtu).
func WriteVTK(rows []types.NodeResult, path, title string) error {
	if len(rows) == 0 {
		return metrics.ErrNoData
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".vtk" && ext != ".vtu" {
		return fmt.Errorf("unsupported mesh format %q", filepath.Ext(path))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := bufio.NewWriter(f)

	if ext == ".vtk" {
		err = writeLegacyVTK(w, rows, title)
	} else {
		err = writeVTU(w, rows)
	}
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func writeLegacyVTK(w io.Writer, rows []types.NodeResult, title string) error {
	n := len(rows)
	title = strings.ReplaceAll(title, "\n", " ")
	if title == "" {
		title = "frd-engine stress field"
	}

	fmt.Fprintf(w, "# vtk DataFile Version 3.0\n%s\nASCII\nDATASET UNSTRUCTURED_GRID\n", title)
	fmt.Fprintf(w, "POINTS %d double\n", n)
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s %s\n", num(r.X), num(r.Y), num(r.Z))
	}
	fmt.Fprintf(w, "CELLS %d %d\n", n, 2*n)
	for i := range rows {
		fmt.Fprintf(w, "1 %d\n", i)
	}
	fmt.Fprintf(w, "CELL_TYPES %d\n", n)
	for range rows {
		fmt.Fprintf(w, "%d\n", vtkVertex)
	}

	fmt.Fprintf(w, "POINT_DATA %d\n", n)
	fmt.Fprintf(w, "SCALARS node_id int 1\nLOOKUP_TABLE default\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\n", r.NodeID)
	}
	for _, f := range types.AllFields {
		fmt.Fprintf(w, "SCALARS %s double 1\nLOOKUP_TABLE default\n", f)
		for _, v := range metrics.Column(rows, f) {
			if _, err := fmt.Fprintln(w, num(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

type vtuFile struct {
	XMLName   xml.Name `xml:"VTKFile"`
	Type      string   `xml:"type,attr"`
	Version   string   `xml:"version,attr"`
	ByteOrder string   `xml:"byte_order,attr"`
	Grid      vtuGrid  `xml:"UnstructuredGrid"`
}

type vtuGrid struct {
	Piece vtuPiece `xml:"Piece"`
}

type vtuPiece struct {
	NumberOfPoints int           `xml:"NumberOfPoints,attr"`
	NumberOfCells  int           `xml:"NumberOfCells,attr"`
	PointData      vtuData       `xml:"PointData"`
	Points         vtuArrays     `xml:"Points"`
	Cells          vtuCellArrays `xml:"Cells"`
}

type vtuData struct {
	Scalars string         `xml:"Scalars,attr"`
	Arrays  []vtuDataArray `xml:"DataArray"`
}

type vtuArrays struct {
	Arrays []vtuDataArray `xml:"DataArray"`
}

type vtuCellArrays struct {
	Arrays []vtuDataArray `xml:"DataArray"`
}

type vtuDataArray struct {
	Type       string `xml:"type,attr"`
	Name       string `xml:"Name,attr,omitempty"`
	Components int    `xml:"NumberOfComponents,attr,omitempty"`
	Format     string `xml:"format,attr"`
	Values     string `xml:",chardata"`
}

func writeVTU(w io.Writer, rows []types.NodeResult) error {
	n := len(rows)
	points := make([]string, 0, 3*n)
	ids := make([]string, n)
	conn := make([]string, n)
	offsets := make([]string, n)
	cellTypes := make([]string, n)
	for i, r := range rows {
		points = append(points, num(r.X), num(r.Y), num(r.Z))
		ids[i] = strconv.Itoa(r.NodeID)
		conn[i] = strconv.Itoa(i)
		offsets[i] = strconv.Itoa(i + 1)
		cellTypes[i] = strconv.Itoa(vtkVertex)
	}

	data := vtuData{Scalars: string(types.FieldVonMises)}
	data.Arrays = append(data.Arrays, vtuDataArray{Type: "Int32", Name: "node_id", Format: "ascii", Values: strings.Join(ids, " ")})
	for _, f := range types.AllFields {
		col := metrics.Column(rows, f)
		vals := make([]string, len(col))
		for i, v := range col {
			vals[i] = num(v)
		}
		data.Arrays = append(data.Arrays, vtuDataArray{Type: "Float64", Name: string(f), Format: "ascii", Values: strings.Join(vals, " ")})
	}

	doc := vtuFile{
		Type:      "UnstructuredGrid",
		Version:   "0.1",
		ByteOrder: "LittleEndian",
		Grid: vtuGrid{Piece: vtuPiece{
			NumberOfPoints: n,
			NumberOfCells:  n,
			PointData:      data,
			Points: vtuArrays{Arrays: []vtuDataArray{
				{Type: "Float64", Components: 3, Format: "ascii", Values: strings.Join(points, " ")},
			}},
			Cells: vtuCellArrays{Arrays: []vtuDataArray{
				{Type: "Int32", Name: "connectivity", Format: "ascii", Values: strings.Join(conn, " ")},
				{Type: "Int32", Name: "offsets", Format: "ascii", Values: strings.Join(offsets, " ")},
				{Type: "UInt8", Name: "types", Format: "ascii", Values: strings.Join(cellTypes, " ")},
			}},
		}},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding vtu: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
