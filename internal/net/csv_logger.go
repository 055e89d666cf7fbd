package net

import (
	"encoding/csv"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

var csvHeader = []string{"episode", "loss", "time_seconds"}

// CSVLogger appends one "episode,loss,time_seconds" row per training episode.
// I/O failures are logged and kept in Err; they never stop training.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	start  time.Time
	err    error
}

func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{Filename: filename, Append: append}
}

// Err returns the first I/O error seen, if any.
func (c *CSVLogger) Err() error {
	return c.err
}

func (c *CSVLogger) fail(err error) {
	log.Printf("CSVLogger: %v", err)
	if c.err == nil {
		c.err = err
	}
}

func (c *CSVLogger) OnTrainBegin(n *Network) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	file, err := os.OpenFile(c.Filename, flags, 0644)
	if err != nil {
		c.fail(errors.Wrapf(err, "open %s", c.Filename))
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	info, err := file.Stat()
	if err != nil {
		c.fail(errors.Wrapf(err, "stat %s", c.Filename))
		return
	}
	if info.Size() == 0 {
		c.write(csvHeader)
	}
}

func (c *CSVLogger) OnEpochEnd(epoch int, loss float64, n *Network) {
	if c.writer == nil {
		return
	}
	c.write([]string{
		strconv.Itoa(epoch),
		strconv.FormatFloat(loss, 'f', 6, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	})
}

func (c *CSVLogger) OnTrainEnd(n *Network) {
	if c.file == nil {
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.fail(errors.Wrap(err, "flush"))
	}
	if err := c.file.Close(); err != nil {
		c.fail(errors.Wrapf(err, "close %s", c.Filename))
	}
	c.file, c.writer = nil, nil
}

// write emits one record and flushes it so the log survives a crash.
func (c *CSVLogger) write(record []string) {
	if err := c.writer.Write(record); err != nil {
		c.fail(errors.Wrap(err, "write record"))
		return
	}
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		c.fail(errors.Wrap(err, "flush"))
	}
}
