package array

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestTaskIDFrom(t *testing.T) {
	id, err := TaskIDFrom(env(map[string]string{"SLURM_ARRAY_TASK_ID": "7", "PBS_ARRAYID": "3"}))
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	id, err = TaskIDFrom(env(map[string]string{"SGE_TASK_ID": "undefined", "LSB_JOBINDEX": " 12 "}))
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	_, err = TaskIDFrom(env(map[string]string{}))
	assert.ErrorIs(t, err, ErrNoTask)

	_, err = TaskIDFrom(env(map[string]string{"PBS_ARRAYID": "x"}))
	assert.Error(t, err)
}

func TestTaskID(t *testing.T) {
	for _, v := range Variables {
		t.Setenv(v, "")
	}
	t.Setenv("SGE_TASK_ID", "4")
	id, err := TaskID()
	require.NoError(t, err)
	assert.Equal(t, 4, id)
}

func TestResample(t *testing.T) {
	r, err := Resample(1)
	require.NoError(t, err)
	assert.Equal(t, 0, r)

	_, err = Resample(0)
	assert.Error(t, err)
}
