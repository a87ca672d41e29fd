package units

import (
	"bytes"
	_ "embed" // For embed functionality.
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/flynn/json5"
	"go.dimquant.dev/dimquant/go/jsonschema"
	"go.dimquant.dev/dimquant/go/skerr"
	"go.dimquant.dev/dimquant/go/sklog"
	"go.dimquant.dev/dimquant/go/util"
)

//go:embed schema.json
var schema []byte

// Config is a file of additional lookup tables, written in JSON5:
//
//	{
//	  units: {
//	    fanta: {factor: 0.0254, dimensions: {L: 1}},
//	  },
//	  prefixes: {q: 3.14},
//	}
type Config struct {
	// Units to register, keyed by symbol. Symbols are letters only.
	Units UnitTable `json:"units,omitempty"`

	// Prefixes to register, keyed by a symbol of at most one character.
	Prefixes PrefixTable `json:"prefixes,omitempty"`

	// OverrideUnits replaces the unit table instead of merging into it.
	OverrideUnits bool `json:"override_units,omitempty"`

	// OverridePrefixes replaces the prefix table instead of merging into it.
	OverridePrefixes bool `json:"override_prefixes,omitempty"`
}

// ParseConfig decodes a JSON5 document and validates it against schema.json.
func ParseConfig(b []byte) (*Config, error) {
	var raw interface{}
	if err := json5.NewDecoder(bytes.NewReader(b)).Decode(&raw); err != nil {
		return nil, skerr.Wrapf(err, "decoding JSON5")
	}
	// The schema validator and the Unit decoders only speak plain JSON.
	doc, err := json.Marshal(raw)
	if err != nil {
		return nil, skerr.Wrapf(err, "re-encoding as JSON")
	}
	violations, err := jsonschema.Validate(doc, schema)
	if err != nil {
		if errors.Is(err, jsonschema.ErrSchemaViolation) {
			return nil, skerr.Wrapf(err, "%s", strings.Join(violations, "; "))
		}
		return nil, skerr.Wrap(err)
	}
	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, skerr.Wrapf(err, "decoding config")
	}
	return &cfg, nil
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*Config, error) {
	var b []byte
	err := util.WithReadFile(path, func(r io.Reader) error {
		var err error
		b, err = io.ReadAll(r)
		return err
	})
	if err != nil {
		return nil, skerr.Wrapf(err, "reading unit config %s", path)
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return nil, skerr.Wrapf(err, "parsing unit config %s", path)
	}
	sklog.Infof("Loaded %d units and %d prefixes from %s", len(cfg.Units), len(cfg.Prefixes), path)
	return cfg, nil
}

// Apply registers the prefixes and then the units of c with t. Each table is
// registered atomically, but if the units fail the prefixes stay
// registered.
func (c *Config) Apply(t *Translator) error {
	if len(c.Prefixes) > 0 || c.OverridePrefixes {
		if err := t.RegisterPrefixes(c.Prefixes, c.OverridePrefixes); err != nil {
			return skerr.Wrap(err)
		}
	}
	if len(c.Units) > 0 || c.OverrideUnits {
		if err := t.RegisterUnits(c.Units, c.OverrideUnits); err != nil {
			return skerr.Wrap(err)
		}
	}
	return nil
}

// ConfigOf returns a Config holding copies of the tables of t. Applying it
// to any Translator replaces that Translator's tables with t's.
func ConfigOf(t *Translator) *Config {
	return &Config{
		Units:            t.Units(),
		Prefixes:         t.Prefixes(),
		OverrideUnits:    true,
		OverridePrefixes: true,
	}
}

// WriteFile writes c to path as indented JSON, which LoadConfig reads back.
func (c *Config) WriteFile(path string) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return skerr.Wrapf(err, "encoding unit config")
	}
	err = util.WithWriteFile(path, func(w io.Writer) error {
		_, err := w.Write(append(b, '\n'))
		return err
	})
	if err != nil {
		return skerr.Wrapf(err, "writing unit config %s", path)
	}
	sklog.Infof("Wrote %d units and %d prefixes to %s", len(c.Units), len(c.Prefixes), path)
	return nil
}
