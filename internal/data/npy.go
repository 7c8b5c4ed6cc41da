package data

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/drakos74/tsml-experiments/internal/model"
	"github.com/kshedden/gonpy"
)

// ReadNpy reads a 2-dimensional float64 numpy array, where the last column holds the label.
func ReadNpy(fileName string) (model.Dataset, error) {
	if _, err := os.Stat(fileName); errors.Is(err, fs.ErrNotExist) {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", fileName, ErrNotFound)
	} else if err != nil {
		return model.Dataset{}, fmt.Errorf("could not open '%s': %w", fileName, err)
	}
	r, err := gonpy.NewFileReader(fileName)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not open npy file '%s': %w", fileName, err)
	}
	if len(r.Shape) != 2 || r.Shape[1] < 2 {
		return model.Dataset{}, fmt.Errorf("invalid npy shape %v: %w", r.Shape, ErrMalformed)
	}
	data, err := r.GetFloat64()
	if err != nil {
		return model.Dataset{}, fmt.Errorf("could not read npy file '%s': %v: %w", fileName, err, ErrMalformed)
	}
	rows, cols := r.Shape[0], r.Shape[1]
	if r.ColumnMajor {
		data = rowMajor(data, rows, cols)
	}
	ds := model.Dataset{
		X:          make([][]float64, rows),
		Y:          make([]string, rows),
		Dimensions: 1,
		Length:     cols - 1,
	}
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		x := make([]float64, cols-1)
		copy(x, row[:cols-1])
		ds.X[i] = x
		ds.Y[i] = strconv.FormatFloat(row[cols-1], 'g', -1, 64)
	}
	return ds, nil
}

// WriteNpy writes the dataset as a 2-dimensional numpy array with the label as last column.
// Labels must be numeric.
func WriteNpy(fileName string, ds model.Dataset) error {
	if err := ds.Check(); err != nil {
		return err
	}
	if ds.Size() == 0 {
		return fmt.Errorf("nothing to write for '%s'", ds.Name)
	}
	targets, err := ds.Targets()
	if err != nil {
		return fmt.Errorf("npy export needs numeric labels: %w", err)
	}
	cols := len(ds.X[0]) + 1
	data := make([]float64, 0, ds.Size()*cols)
	for i, x := range ds.X {
		if len(x) != cols-1 {
			return fmt.Errorf("case %d has %d values instead of %d: %w", i, len(x), cols-1, ErrUnequalLength)
		}
		data = append(data, x...)
		data = append(data, targets[i])
	}
	w, err := gonpy.NewFileWriter(fileName)
	if err != nil {
		return fmt.Errorf("could not open npy file '%s': %w", fileName, err)
	}
	w.Shape = []int{ds.Size(), cols}
	w.Version = 2
	if err := w.WriteFloat64(data); err != nil {
		return fmt.Errorf("could not write npy file '%s': %w", fileName, err)
	}
	return nil
}

func rowMajor(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = data[j*rows+i]
		}
	}
	return out
}
