package results

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Comment creates the first line comment stamped with the given time.
func Comment(generator string, now time.Time) string {
	return fmt.Sprintf("Generated by %s on %s", generator, now.Format("01/02/2006, 15:04:05"))
}

// Present checks if the test results for the given experiment exist.
func Present(resultsDir, estimator, dataset string, resample int) bool {
	return exists(Path(resultsDir, estimator, dataset, Test, resample))
}

// PresentAll checks if all result files the experiment produces exist.
func PresentAll(resultsDir, estimator, dataset string, resample int, train bool) bool {
	if !Present(resultsDir, estimator, dataset, resample) {
		return false
	}
	return !train || exists(Path(resultsDir, estimator, dataset, Train, resample))
}

// Write writes the results file under the given results directory and returns its path.
// An existing file is only replaced if overwrite is set.
func Write(resultsDir string, f File, overwrite bool) (string, error) {
	p := Path(resultsDir, f.Estimator, f.Dataset, f.Split, f.Resample)
	if !overwrite && exists(p) {
		return p, fmt.Errorf("'%s': %w", p, ErrExists)
	}
	dir := filepath.Dir(p)
	// check if filepath exists
	info, err := os.Stat(dir)
	if err != nil {
		err := os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			return p, fmt.Errorf("could not make dir: %s: %w", dir, err)
		}
	} else if !info.IsDir() {
		return p, fmt.Errorf("path given is not a directory: %s", dir)
	}

	// a killed job must never leave a partial results file behind
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".*")
	if err != nil {
		return p, fmt.Errorf("could not create file in '%s': %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := Encode(w, f); err != nil {
		tmp.Close()
		return p, fmt.Errorf("could not write results '%s': %w", p, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return p, fmt.Errorf("could not flush results '%s': %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return p, fmt.Errorf("could not close results '%s': %w", p, err)
	}
	if overwrite {
		if err := os.Rename(tmp.Name(), p); err != nil {
			return p, fmt.Errorf("could not move results to '%s': %w", p, err)
		}
		return p, nil
	}
	// linking fails if another task created the file since the check above
	err = os.Link(tmp.Name(), p)
	if errors.Is(err, os.ErrExist) {
		return p, fmt.Errorf("'%s': %w", p, ErrExists)
	}
	if err != nil {
		// filesystems without hard links fall back to the checked rename
		if exists(p) {
			return p, fmt.Errorf("'%s': %w", p, ErrExists)
		}
		if err := os.Rename(tmp.Name(), p); err != nil {
			return p, fmt.Errorf("could not move results to '%s': %w", p, err)
		}
	}
	return p, nil
}

// Encode writes the results in the tsml format.
func Encode(w *bufio.Writer, f File) error {
	timing := f.TimingType
	if timing == "" {
		timing = Milliseconds
	}
	lines := []string{
		strings.Join([]string{
			f.Dataset,
			f.Estimator,
			string(f.Split),
			strconv.Itoa(f.Resample),
			timing,
			f.Comment,
		}, ","),
		singleLine(f.Parameters),
		f.Summary.String(),
	}
	for _, l := range lines {
		if _, err := w.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	for _, r := range f.Rows {
		if _, err := w.WriteString(r.String() + "\n"); err != nil {
			return err
		}
	}
	return nil
}

func singleLine(s string) string {
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

func exists(fileName string) bool {
	info, err := os.Stat(fileName)
	return err == nil && !info.IsDir()
}
