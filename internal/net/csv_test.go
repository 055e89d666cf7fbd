package net

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FlavioCFOliveira/GoSnakeQ/internal/layer"
)

func writeCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "data.csv")
	file, err := os.Create(filename)
	require.NoError(t, err)
	defer file.Close()

	writer := csv.NewWriter(file)
	require.NoError(t, writer.WriteAll(rows))
	return filename
}

func TestCSVLoader(t *testing.T) {
	filename := writeCSV(t, [][]string{
		{"f1", "f2", "l1", "f3", "l2"},
		{"1.0", "2.0", "0.0", "3.0", "1.0"},
		{"4.0", "5.0", "1.0", "6.0", "0.0"},
	})

	dataset, err := LoadCSV(filename, []int{4, 2}, true)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 6}}, dataset.Samples)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, dataset.Labels)

	train, test := dataset.Split(0.5)
	assert.Len(t, train.Samples, 1)
	assert.Len(t, test.Samples, 1)
}

func TestCSVLoaderErrors(t *testing.T) {
	_, err := LoadCSV(writeCSV(t, [][]string{{"a", "b"}}), []int{1}, true)
	assert.Error(t, err, "header only")

	_, err = LoadCSV(writeCSV(t, [][]string{{"1", "x"}}), []int{1}, false)
	assert.Error(t, err, "non-numeric value")

	_, err = LoadCSV(writeCSV(t, [][]string{{"1", "2"}}), []int{5}, false)
	assert.Error(t, err, "label column out of range")
}

func TestCSVLogger(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "log.csv")

	n := New(layer.NewDense(1, 1))
	logger := NewCSVLogger(filename, false)
	n.SetCallbacks(logger)
	n.Train(3, 0.01, [][]float64{{1}}, [][]float64{{2}})
	require.NoError(t, logger.Err())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "episode,loss,time_seconds", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "0,"))
	assert.True(t, strings.HasPrefix(lines[3], "2,"))
}

func TestCSVLoggerAppendKeepsSingleHeader(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "log.csv")

	n := New(layer.NewDense(1, 1))
	logger := NewCSVLogger(filename, true)
	n.SetCallbacks(logger)
	n.Train(2, 0.01, [][]float64{{1}}, [][]float64{{2}})
	n.Train(2, 0.01, [][]float64{{1}}, [][]float64{{2}})
	require.NoError(t, logger.Err())

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, 1, strings.Count(string(data), "episode,loss"))
}

func TestCSVLoggerReportsOpenError(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "missing", "log.csv")

	n := New(layer.NewDense(1, 1))
	logger := NewCSVLogger(filename, false)
	n.SetCallbacks(logger)
	n.Train(2, 0.01, [][]float64{{1}}, [][]float64{{2}})

	assert.Error(t, logger.Err())
	assert.NoFileExists(t, filename)
}
