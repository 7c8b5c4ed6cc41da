package results

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read reads a results file.
func Read(fileName string) (File, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return File{}, fmt.Errorf("could not open results '%s': %w", fileName, err)
	}
	defer f.Close()
	file, err := Decode(f)
	if err != nil {
		return File{}, fmt.Errorf("could not read results '%s': %w", fileName, err)
	}
	return file, nil
}

// ReadExperiment reads the results file of the given experiment.
func ReadExperiment(resultsDir, estimator, dataset string, split Split, resample int) (File, error) {
	return Read(Path(resultsDir, estimator, dataset, split, resample))
}

// Decode parses results in the tsml format.
func Decode(r io.Reader) (File, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	header := make([]string, 0, 3)
	for len(header) < 3 && scanner.Scan() {
		header = append(header, scanner.Text())
	}
	if len(header) < 3 {
		if err := scanner.Err(); err != nil {
			return File{}, err
		}
		return File{}, fmt.Errorf("only %d header lines: %w", len(header), ErrMalformed)
	}

	f := File{Parameters: header[1], Rows: make([]Row, 0)}
	if err := f.parseFirst(header[0]); err != nil {
		return File{}, err
	}
	summary, err := parseSummary(header[2])
	if err != nil {
		return File{}, err
	}
	f.Summary = summary

	line := 3
	for scanner.Scan() {
		line++
		txt := strings.TrimSpace(scanner.Text())
		if txt == "" {
			continue
		}
		row, err := parseRow(txt)
		if err != nil {
			return File{}, fmt.Errorf("line %d: %w", line, err)
		}
		f.Rows = append(f.Rows, row)
	}
	if err := scanner.Err(); err != nil {
		return File{}, err
	}
	return f, nil
}

func (f *File) parseFirst(line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < 5 {
		return fmt.Errorf("first line has %d fields: %w", len(fields), ErrMalformed)
	}
	split, err := ParseSplit(fields[2])
	if err != nil {
		return err
	}
	resample, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return fmt.Errorf("invalid resample '%s': %w", fields[3], ErrMalformed)
	}
	f.Dataset = fields[0]
	f.Estimator = fields[1]
	f.Split = split
	f.Resample = resample
	f.TimingType = fields[4]
	// the comment may contain commas itself
	f.Comment = strings.Join(fields[5:], ",")
	return nil
}

func parseSummary(line string) (Summary, error) {
	fields := strings.Split(line, ",")
	s := NewSummary(0, missing, missing)
	switch len(fields) {
	case 8:
	case 9:
		s.HasClasses = true
	default:
		return s, fmt.Errorf("summary line has %d fields: %w", len(fields), ErrMalformed)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return s, fmt.Errorf("invalid score '%s': %w", fields[0], ErrMalformed)
	}
	s.Score = score
	ints := []*int64{&s.FitTime, &s.PredictTime, &s.BenchmarkTime, &s.Memory}
	for i, p := range ints {
		if *p, err = parseInt(fields[i+1]); err != nil {
			return s, err
		}
	}
	next := 5
	if s.HasClasses {
		c, err := parseInt(fields[next])
		if err != nil {
			return s, err
		}
		s.Classes = int(c)
		next++
	}
	s.TrainEstimateMethod = fields[next]
	if s.TrainEstimateTime, err = parseInt(fields[next+1]); err != nil {
		return s, err
	}
	if s.FitAndEstimateTime, err = parseInt(fields[next+2]); err != nil {
		return s, err
	}
	return s, nil
}

func parseRow(line string) (Row, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return Row{}, fmt.Errorf("prediction row '%s': %w", line, ErrMalformed)
	}
	row := Row{True: strings.TrimSpace(fields[0]), Predicted: strings.TrimSpace(fields[1])}
	if len(fields) == 2 {
		return row, nil
	}
	if strings.TrimSpace(fields[2]) != "" {
		return Row{}, fmt.Errorf("expected empty separator before probabilities in '%s': %w", line, ErrMalformed)
	}
	row.Probabilities = make([]float64, 0, len(fields)-3)
	for _, p := range fields[3:] {
		p = strings.TrimSpace(p)
		// an empty field starts the case description, which is not kept
		if p == "" {
			break
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Row{}, fmt.Errorf("invalid probability '%s': %w", p, ErrMalformed)
		}
		row.Probabilities = append(row.Probabilities, v)
	}
	return row, nil
}

func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s': %w", s, ErrMalformed)
	}
	return v, nil
}
