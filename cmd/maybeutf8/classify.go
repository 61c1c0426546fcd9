package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/epithet-ssh/maybeutf8/pkg/maybeutf8"
)

// ClassifyCLI reads whole inputs and reports how they classify.
type ClassifyCLI struct {
	Files []string `arg:"" optional:"" help:"Files to classify; stdin when none or \"-\""`
	Hex   bool     `help:"Also print the octets in hex" short:"x"`
	JSON  bool     `help:"Print one JSON object per input" short:"j"`

	stdin  io.Reader `kong:"-"`
	stdout io.Writer `kong:"-"`
}

type classification struct {
	Name  string            `json:"name"`
	Kind  string            `json:"kind"`
	Len   int               `json:"len"`
	Value *maybeutf8.Buffer `json:"value"`
}

func (c *ClassifyCLI) Run(logger *slog.Logger) error {
	if c.stdin == nil {
		c.stdin = os.Stdin
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}

	files := c.Files
	if len(files) == 0 {
		files = []string{"-"}
	}

	for _, name := range files {
		var b maybeutf8.Buffer
		if err := c.read(name, &b); err != nil {
			return err
		}
		logger.Debug("classified input", "name", name, "kind", b.Kind().String(), "len", b.Len())

		if err := c.print(name, &b); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClassifyCLI) read(name string, b *maybeutf8.Buffer) error {
	if name == "-" {
		if _, err := b.ReadFrom(c.stdin); err != nil {
			return fmt.Errorf("unable to read stdin: %w", err)
		}
		return nil
	}

	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("unable to open input: %w", err)
	}
	defer f.Close()

	if _, err := b.ReadFrom(f); err != nil {
		return fmt.Errorf("unable to read %s: %w", name, err)
	}
	return nil
}

func (c *ClassifyCLI) print(name string, b *maybeutf8.Buffer) error {
	if c.JSON {
		return json.NewEncoder(c.stdout).Encode(classification{
			Name:  name,
			Kind:  b.Kind().String(),
			Len:   b.Len(),
			Value: b,
		})
	}

	if _, err := fmt.Fprintf(c.stdout, "%s: %s, %d bytes: %q\n", name, b.Kind(), b.Len(), b.Lossy()); err != nil {
		return err
	}
	if c.Hex {
		_, err := fmt.Fprintf(c.stdout, "  hex: %s\n", hex.EncodeToString(b.Bytes()))
		return err
	}
	return nil
}
