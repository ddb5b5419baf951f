package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// From here: https://su2code.github.io/docs_v7/Mesh-File/
type SU2ElementType uint8

const (
	SU2Line          SU2ElementType = 3
	SU2Triangle      SU2ElementType = 5
	SU2Quadrilateral SU2ElementType = 9
)

// ReadSU2 reads an SU2 native format file holding 1D or 2D linear elements.
// Marker (boundary) sections are skipped.
func ReadSU2(filename string) (m *Mesh, err error) {
	var (
		file *os.File
	)
	if file, err = os.Open(filename); err != nil {
		return nil, fmt.Errorf("unable to open file %s: %w", filename, err)
	}
	defer file.Close()
	return ParseSU2(file)
}

func ParseSU2(r io.Reader) (m *Mesh, err error) {
	var (
		scanner = bufio.NewScanner(r)
		ndime   int
		coords  [][3]float64
		etov    [][]int
		elTypes []ElementType
	)
	nextLine := func() (line string, ok bool) {
		for scanner.Scan() {
			line = strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "%") {
				continue
			}
			return line, true
		}
		return "", false
	}
	// Trailing fields after the count, as in "NPOIN= 9 9", are ignored
	readCount := func(line, key string) (n int, err error) {
		if _, err = fmt.Sscanf(line, key+"=%d", &n); err != nil {
			err = fmt.Errorf("unable to read number from token: [%s]", line)
		}
		return
	}
	for {
		line, ok := nextLine()
		if !ok {
			break
		}
		switch {
		case strings.HasPrefix(line, "NDIME="):
			if ndime, err = readCount(line, "NDIME"); err != nil {
				return
			}
			if ndime != 1 && ndime != 2 {
				return nil, fmt.Errorf("only 1D and 2D meshes are supported, got NDIME=%d", ndime)
			}
		case strings.HasPrefix(line, "NELEM="):
			var nelem int
			if nelem, err = readCount(line, "NELEM"); err != nil {
				return
			}
			etov = make([][]int, 0, nelem)
			elTypes = make([]ElementType, 0, nelem)
			for k := 0; k < nelem; k++ {
				if line, ok = nextLine(); !ok {
					return nil, fmt.Errorf("early end of file reading element %d", k)
				}
				var (
					et    ElementType
					verts []int
				)
				if et, verts, err = parseSU2Element(line); err != nil {
					return nil, fmt.Errorf("element %d: %w", k, err)
				}
				etov = append(etov, verts)
				elTypes = append(elTypes, et)
			}
		case strings.HasPrefix(line, "NPOIN="):
			var npoin int
			if npoin, err = readCount(line, "NPOIN"); err != nil {
				return
			}
			if ndime == 0 {
				return nil, fmt.Errorf("NPOIN before NDIME")
			}
			coords = make([][3]float64, npoin)
			for i := 0; i < npoin; i++ {
				if line, ok = nextLine(); !ok {
					return nil, fmt.Errorf("early end of file reading point %d", i)
				}
				fields := strings.Fields(line)
				if len(fields) < ndime {
					return nil, fmt.Errorf("unable to read coordinates of point %d: [%s]", i, line)
				}
				for d := 0; d < ndime; d++ {
					if coords[i][d], err = strconv.ParseFloat(fields[d], 64); err != nil {
						return nil, fmt.Errorf("point %d: %w", i, err)
					}
				}
			}
		case strings.HasPrefix(line, "NMARK="):
			// Boundary markers carry no information needed here
			return NewMesh(ndime, coords, etov, elTypes)
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}
	return NewMesh(ndime, coords, etov, elTypes)
}

func parseSU2Element(line string) (et ElementType, verts []int, err error) {
	var (
		fields = strings.Fields(line)
		code   int
	)
	if len(fields) < 2 {
		err = fmt.Errorf("badly formed element line [%s]", line)
		return
	}
	if code, err = strconv.Atoi(fields[0]); err != nil {
		return
	}
	switch SU2ElementType(code) {
	case SU2Line:
		et = Line2
	case SU2Triangle:
		et = Tri3
	case SU2Quadrilateral:
		et = Quad4
	default:
		err = fmt.Errorf("unsupported SU2 element type %d", code)
		return
	}
	nv := et.NumVertices()
	if len(fields) < nv+1 {
		err = fmt.Errorf("%s needs %d vertices: [%s]", et, nv, line)
		return
	}
	verts = make([]int, nv)
	for i := range verts {
		if verts[i], err = strconv.Atoi(fields[i+1]); err != nil {
			return
		}
	}
	return
}
