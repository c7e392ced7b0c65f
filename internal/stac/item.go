package stac

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ItemCollection is one page of /search results.
type ItemCollection struct {
	Type     string `json:"type"`
	Features []Item `json:"features"`
}

type Item struct {
	ID         json.RawMessage            `json:"id"`
	Geometry   json.RawMessage            `json:"geometry"`
	Properties map[string]json.RawMessage `json:"properties"`
	Collection json.RawMessage            `json:"collection"`
	Assets     Assets                     `json:"assets"`
}

type Asset struct {
	Href  string   `json:"href"`
	Type  string   `json:"type,omitempty"`
	Title string   `json:"title,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

type NamedAsset struct {
	Key   string
	Asset Asset
}

// Assets keeps the upstream document order of the assets object, which a Go map
// would lose.
type Assets []NamedAsset

// Get returns the asset stored under key.
func (a Assets) Get(key string) (Asset, bool) {
	for _, na := range a {
		if na.Key == key {
			return na.Asset, true
		}
	}
	return Asset{}, false
}

// UnmarshalJSON decodes an assets object in document order. A repeated key keeps its
// first position and its last value. Anything other than an object decodes to no
// assets, and an asset that is not an object is kept with an empty href.
func (a *Assets) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		*a = nil
		return nil
	}

	out := Assets{}
	pos := map[string]int{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("assets key: %w", err)
		}
		key, _ := kt.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("assets[%s]: %w", key, err)
		}
		var asset Asset
		_ = json.Unmarshal(raw, &asset)

		if i, dup := pos[key]; dup {
			out[i].Asset = asset
			continue
		}
		pos[key] = len(out)
		out = append(out, NamedAsset{Key: key, Asset: asset})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	*a = out
	return nil
}
