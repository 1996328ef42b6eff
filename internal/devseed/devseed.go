// Package devseed loads seed documents for the mock transport and the
// sandbox server. Files may be YAML or JSON; the format is chosen by
// extension.
package devseed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrEmptySeed is returned when a seed document defines nothing.
var ErrEmptySeed = errors.New("devseed: seed defines no collections and no routes")

// Seed is the root of a seed document.
type Seed struct {
	// Collections maps a collection name to its initial items. Items are
	// addressed by their "id" field.
	Collections map[string][]map[string]any `yaml:"collections" json:"collections"`
	// Routes are canned responses served before any collection lookup.
	Routes []Route `yaml:"routes" json:"routes"`
}

// Route is a canned response.
type Route struct {
	Method      string            `yaml:"method" json:"method"`
	Path        string            `yaml:"path" json:"path"`
	Status      int               `yaml:"status" json:"status"`
	ContentType string            `yaml:"content_type" json:"content_type"`
	Headers     map[string]string `yaml:"headers" json:"headers"`
	Body        string            `yaml:"body" json:"body"`
	JSON        any               `yaml:"json" json:"json"`
	Delay       Duration          `yaml:"delay" json:"delay"`
}

// Duration parses Go duration strings such as "150ms".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("devseed: parse duration: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Load reads and parses a seed file.
func Load(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	return Parse(data, format)
}

// Parse decodes a seed document in the given format ("yaml" or "json").
func Parse(data []byte, format string) (*Seed, error) {
	var seed Seed
	switch strings.ToLower(format) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&seed); err != nil {
			return nil, fmt.Errorf("devseed: decode json: %w", err)
		}
	case "yaml", "yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&seed); err != nil {
			return nil, fmt.Errorf("devseed: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("devseed: unsupported format %q", format)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks routes and collection items.
func (s *Seed) Validate() error {
	if len(s.Collections) == 0 && len(s.Routes) == 0 {
		return ErrEmptySeed
	}
	for name, items := range s.Collections {
		if strings.TrimSpace(name) == "" {
			return errors.New("devseed: collection name is empty")
		}
		for i, item := range items {
			if _, ok := item["id"]; !ok {
				return fmt.Errorf("devseed: collection %s item %d has no id", name, i)
			}
		}
	}
	for i := range s.Routes {
		r := &s.Routes[i]
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("devseed: route %d path %q must start with /", i, r.Path)
		}
		if r.Method == "" {
			r.Method = http.MethodGet
		}
		r.Method = strings.ToUpper(r.Method)
		if r.Status == 0 {
			r.Status = http.StatusOK
		}
		if r.Body != "" && r.JSON != nil {
			return fmt.Errorf("devseed: route %s %s sets both body and json", r.Method, r.Path)
		}
	}
	return nil
}

// Payload returns the response body and its content type.
func (r Route) Payload() ([]byte, string, error) {
	if r.JSON != nil {
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("devseed: encode route %s %s: %w", r.Method, r.Path, err)
		}
		contentType := r.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		return data, contentType, nil
	}
	return []byte(r.Body), r.ContentType, nil
}

// ItemID returns the string form of an item's id.
func ItemID(item map[string]any) string {
	switch id := item["id"].(type) {
	case string:
		return id
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
