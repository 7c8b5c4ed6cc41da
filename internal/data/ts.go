package data

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/tsml-experiments/internal/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrMalformed      = errors.New("malformed data")
	ErrUnequalLength  = errors.New("unequal length series")
	ErrUnsupportedExt = errors.New("unsupported file type")
)

const missing = "?"

// header holds the @ tags of a ts file.
type header struct {
	problem     string
	univariate  bool
	dimensions  int
	equalLength bool
	length      int
	classLabel  bool
	targetLabel bool
	classes     []string
}

func (h header) labelled() bool {
	return h.classLabel || h.targetLabel
}

// ReadTS reads a dataset in the sktime / UEA .ts format from the given file.
func ReadTS(fileName string) (model.Dataset, error) {
	f, err := os.Open(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", fileName, ErrNotFound)
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", fileName, err)
	}
	defer f.Close()
	ds, err := ParseTS(f)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not parse '%s': %w", fileName, err)
	}
	return ds, nil
}

// ParseTS parses the .ts format from the given reader.
func ParseTS(r io.Reader) (model.Dataset, error) {
	h := header{equalLength: true}
	ds := model.Dataset{
		X: make([][]float64, 0),
		Y: make([]string, 0),
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	inData := false
	line := 0
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		if !inData {
			if !strings.HasPrefix(txt, "@") {
				return ds, fmt.Errorf("line %d: data before @data tag: %w", line, ErrMalformed)
			}
			done, err := h.parse(txt)
			if err != nil {
				return ds, fmt.Errorf("line %d: %w", line, err)
			}
			inData = done
			continue
		}
		x, y, dims, err := parseCase(txt, h.labelled())
		if err != nil {
			return ds, fmt.Errorf("line %d: %w", line, err)
		}
		if ds.Size() == 0 {
			ds.Dimensions = dims
			ds.Length = len(x) / dims
		} else if dims != ds.Dimensions {
			return ds, fmt.Errorf("line %d: %d dimensions instead of %d: %w", line, dims, ds.Dimensions, ErrMalformed)
		} else if len(x) != ds.Dimensions*ds.Length {
			return ds, fmt.Errorf("line %d: %w", line, ErrUnequalLength)
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}
	if err := scanner.Err(); err != nil {
		return ds, fmt.Errorf("could not scan: %w", err)
	}
	if !inData {
		return ds, fmt.Errorf("no @data tag: %w", ErrMalformed)
	}
	if !h.equalLength {
		return ds, ErrUnequalLength
	}
	if h.length > 0 && ds.Size() > 0 && h.length != ds.Length {
		return ds, fmt.Errorf("series length %d does not match header %d: %w", ds.Length, h.length, ErrMalformed)
	}
	if ds.Size() > 0 && h.dimensions > 0 && ds.Dimensions != h.dimensions {
		return ds, fmt.Errorf("%d dimensions do not match header %d: %w", ds.Dimensions, h.dimensions, ErrMalformed)
	}
	if len(h.classes) > 0 {
		valid := make(map[string]struct{}, len(h.classes))
		for _, c := range h.classes {
			valid[c] = struct{}{}
		}
		for i, y := range ds.Y {
			if _, ok := valid[y]; !ok {
				return ds, fmt.Errorf("case %d has undeclared class '%s': %w", i, y, ErrMalformed)
			}
		}
	}
	ds.Name = h.problem
	return ds, nil
}

// parse consumes a header line and reports whether the data section starts.
func (h *header) parse(txt string) (bool, error) {
	tokens := strings.Fields(txt)
	tag := strings.ToLower(tokens[0])
	args := tokens[1:]
	switch tag {
	case "@data":
		return true, nil
	case "@problemname":
		if len(args) > 0 {
			h.problem = args[0]
		}
	case "@timestamps":
		if flag(args) {
			return false, fmt.Errorf("timestamped series are not supported: %w", ErrMalformed)
		}
	case "@missing":
	case "@univariate":
		h.univariate = flag(args)
		if h.univariate {
			h.dimensions = 1
		}
	case "@dimensions", "@dimension":
		if len(args) != 1 {
			return false, fmt.Errorf("invalid %s tag: %w", tag, ErrMalformed)
		}
		d, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid dimensions '%s': %w", args[0], ErrMalformed)
		}
		h.dimensions = d
	case "@equallength":
		h.equalLength = flag(args)
	case "@serieslength":
		if len(args) != 1 {
			return false, fmt.Errorf("invalid %s tag: %w", tag, ErrMalformed)
		}
		l, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid series length '%s': %w", args[0], ErrMalformed)
		}
		h.length = l
	case "@classlabel":
		h.classLabel = flag(args)
		if h.classLabel {
			if len(args) < 2 {
				return false, fmt.Errorf("class label tag without classes: %w", ErrMalformed)
			}
			h.classes = args[1:]
		}
	case "@targetlabel":
		h.targetLabel = flag(args)
	default:
		return false, fmt.Errorf("unknown tag '%s': %w", tag, ErrMalformed)
	}
	return false, nil
}

func parseCase(txt string, labelled bool) ([]float64, string, int, error) {
	parts := strings.Split(txt, ":")
	label := ""
	if labelled {
		if len(parts) < 2 {
			return nil, "", 0, fmt.Errorf("missing label: %w", ErrMalformed)
		}
		label = strings.TrimSpace(parts[len(parts)-1])
		parts = parts[:len(parts)-1]
	}
	x := make([]float64, 0)
	length := -1
	for _, dim := range parts {
		values := strings.Split(dim, ",")
		if length < 0 {
			length = len(values)
		} else if len(values) != length {
			return nil, "", 0, ErrUnequalLength
		}
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == missing {
				x = append(x, math.NaN())
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, "", 0, fmt.Errorf("invalid value '%s': %w", v, ErrMalformed)
			}
			x = append(x, f)
		}
	}
	return x, label, len(parts), nil
}

func flag(args []string) bool {
	return len(args) > 0 && strings.ToLower(args[0]) == "true"
}
