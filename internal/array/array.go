package array

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrNoTask = errors.New("not running in a job array")

// Variables are the environment variables schedulers expose the array task id with, in lookup order.
var Variables = []string{
	"SLURM_ARRAY_TASK_ID",
	"SGE_TASK_ID",
	"PBS_ARRAYID",
	"LSB_JOBINDEX",
}

// Lookup resolves an environment variable.
type Lookup func(key string) (string, bool)

// TaskID returns the array task id of the current job.
func TaskID() (int, error) {
	return TaskIDFrom(os.LookupEnv)
}

// TaskIDFrom returns the first task id set in the given environment.
func TaskIDFrom(lookup Lookup) (int, error) {
	for _, v := range Variables {
		s, ok := lookup(v)
		s = strings.TrimSpace(s)
		// sge sets undefined for non array jobs
		if !ok || s == "" || strings.EqualFold(s, "undefined") {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid task id '%s' in %s: %w", s, v, err)
		}
		return id, nil
	}
	return 0, ErrNoTask
}

// Resample maps a 1-based task or cli resample id to the 0-based resample of the experiment.
func Resample(id int) (int, error) {
	if id < 1 {
		return 0, fmt.Errorf("resample ids start at 1, got %d", id)
	}
	return id - 1, nil
}
