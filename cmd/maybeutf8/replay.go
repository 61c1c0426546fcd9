package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/epithet-ssh/maybeutf8/pkg/capture"
	"github.com/epithet-ssh/maybeutf8/pkg/netstr"
)

// ReplayCLI renders the records of a capture file.
type ReplayCLI struct {
	File         string `arg:"" optional:"" help:"Capture file; stdin when omitted or \"-\""`
	TemplateFile string `help:"Mustache template for each record" name:"template" type:"existingfile"`
	JSON         bool   `help:"Print each summary as JSON" short:"j"`
	Lenient      bool   `help:"Allow whitespace between frames"`

	stdin  io.Reader `kong:"-"`
	stdout io.Writer `kong:"-"`
}

func (c *ReplayCLI) Run(logger *slog.Logger) error {
	if c.stdin == nil {
		c.stdin = os.Stdin
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}

	var src string
	if c.TemplateFile != "" {
		data, err := os.ReadFile(c.TemplateFile)
		if err != nil {
			return fmt.Errorf("unable to read template: %w", err)
		}
		src = string(data)
	}
	tmpl, err := capture.ParseTemplate(src)
	if err != nil {
		return err
	}

	in := c.stdin
	if c.File != "" && c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return fmt.Errorf("unable to open capture file: %w", err)
		}
		defer f.Close()
		in = f
	}

	var opts []netstr.Option
	if c.Lenient {
		opts = append(opts, netstr.Lenient())
	}
	r := capture.NewReader(bufio.NewReader(in), opts...)

	count := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", count+1, err)
		}
		count++

		if c.JSON {
			err = json.NewEncoder(c.stdout).Encode(capture.Summarize(rec))
		} else {
			err = tmpl.Render(c.stdout, rec)
		}
		if err != nil {
			return fmt.Errorf("record %d: %w", count, err)
		}
	}

	logger.Info("replay complete", "records", count)
	return nil
}
