package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SearchWrapperKeys are the envelope properties the backend has been observed to nest results
// under, in probing order.
var SearchWrapperKeys = []string{"data", "pets", "results", "items"}

// Pet is a search hit. Attributes keeps the full object as returned by the backend.
type Pet struct {
	ID         int64
	Name       string
	Attributes map[string]any
}

// MarshalJSON emits the original backend object.
func (p Pet) MarshalJSON() ([]byte, error) {
	if p.Attributes != nil {
		return json.Marshal(p.Attributes)
	}
	return json.Marshal(map[string]any{"id": p.ID, "name": p.Name})
}

// UnmarshalJSON accepts any object carrying a usable id.
func (p *Pet) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := decodeJSON(data, &obj); err != nil {
		return err
	}
	pet, _ := petFromObject(obj)
	*p = pet
	return nil
}

// DecodeSearchResponse decodes a raw response body and normalizes it. Undecodable bodies yield
// an empty list.
func DecodeSearchResponse(body []byte) []Pet {
	var raw any
	if err := decodeJSON(body, &raw); err != nil {
		return []Pet{}
	}
	return NormalizeSearchResponse(raw)
}

// NormalizeSearchResponse flattens the inconsistent search envelopes into a list of pets.
// Malformed shapes produce an empty list rather than an error.
func NormalizeSearchResponse(raw any) []Pet {
	switch v := raw.(type) {
	case []any:
		out := make([]Pet, 0, len(v))
		for _, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				continue
			}
			if pet, ok := petFromObject(obj); ok {
				out = append(out, pet)
			}
		}
		return out
	case map[string]any:
		if pet, ok := petFromObject(v); ok {
			return []Pet{pet}
		}
		for _, key := range SearchWrapperKeys {
			nested, present := v[key]
			if !present {
				continue
			}
			if pets := NormalizeSearchResponse(nested); len(pets) > 0 {
				return pets
			}
		}
		return []Pet{}
	default:
		return []Pet{}
	}
}

// PetIDs extracts the ids of a pet list.
func PetIDs(pets []Pet) []int64 {
	ids := make([]int64, 0, len(pets))
	for _, p := range pets {
		ids = append(ids, p.ID)
	}
	return ids
}

func petFromObject(obj map[string]any) (Pet, bool) {
	rawID, ok := obj["id"]
	if !ok {
		return Pet{}, false
	}
	id, ok := coerceID(rawID)
	if !ok {
		return Pet{}, false
	}
	pet := Pet{ID: id, Attributes: obj}
	if name, ok := obj["name"].(string); ok {
		pet.Name = name
	}
	return pet, true
}

func coerceID(v any) (int64, bool) {
	switch id := v.(type) {
	case json.Number:
		n, err := id.Int64()
		return n, err == nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return 0, false
		}
		return int64(id), true
	case int:
		return int64(id), true
	case int64:
		return id, true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func decodeJSON(data []byte, dest any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dest)
}
