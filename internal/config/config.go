// Package config reads the textfs configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/rjkroege/textcore/file"
	"github.com/rjkroege/textcore/text"
)

// Config holds the settings of the textfs command. Zero fields take the
// defaults.
type Config struct {
	Service   string `toml:"service"`    // 9P service name
	Load      string `toml:"load"`       // auto, read or mmap
	Save      string `toml:"save"`       // auto, atomic or inplace
	BlockSize int    `toml:"block_size"` // minimum size of heap blocks
	Limit     int    `toml:"limit"`      // bytes of heap blocks per document, 0 is unlimited
	Watch     bool   `toml:"watch"`      // flag documents changed on disk
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		Service: "textfs",
		Load:    "auto",
		Save:    "auto",
		Watch:   true,
	}
}

// ParseError is returned for a configuration file that is not valid.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads the file at path over the defaults. A missing file is not an
// error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes TOML data over the defaults. Unknown keys are errors.
func Parse(source string, data []byte) (Config, error) {
	c := Default()
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&c); err != nil {
		return Config{}, &ParseError{Path: source, Err: err}
	}
	if _, err := c.LoadMethod(); err != nil {
		return Config{}, &ParseError{Path: source, Err: err}
	}
	if _, err := c.SaveMethod(); err != nil {
		return Config{}, &ParseError{Path: source, Err: err}
	}
	if c.BlockSize < 0 || c.Limit < 0 {
		return Config{}, &ParseError{Path: source, Err: errors.New("negative size")}
	}
	return c, nil
}

// LoadMethod returns the file.LoadMethod named by Load.
func (c Config) LoadMethod() (file.LoadMethod, error) {
	switch c.Load {
	case "", "auto":
		return file.LoadAuto, nil
	case "read":
		return file.LoadRead, nil
	case "mmap":
		return file.LoadMmap, nil
	}
	return 0, fmt.Errorf("unknown load method %q", c.Load)
}

// SaveMethod returns the file.SaveMethod named by Save.
func (c Config) SaveMethod() (file.SaveMethod, error) {
	switch c.Save {
	case "", "auto":
		return file.SaveAuto, nil
	case "atomic":
		return file.SaveAtomic, nil
	case "inplace":
		return file.SaveInPlace, nil
	}
	return 0, fmt.Errorf("unknown save method %q", c.Save)
}

// TextOptions returns the options for documents.
func (c Config) TextOptions() []text.Option {
	var opts []text.Option
	if c.BlockSize > 0 {
		opts = append(opts, text.WithBlockSize(c.BlockSize))
	}
	if c.Limit > 0 {
		opts = append(opts, text.WithLimit(c.Limit))
	}
	return opts
}
