package v1

import (
	"bytes"
	"encoding/json"
)

// PickKind tags how a submission names its cards.
type PickKind int32

const (
	PickMissing PickKind = iota // absent, null or not an array
	PickIndices                 // every entry is a JSON number
	PickTypes                   // every entry is a JSON string
	PickMixed                   // any other array shape
)

func (k PickKind) String() string {
	switch k {
	case PickIndices:
		return "indices"
	case PickTypes:
		return "types"
	case PickMixed:
		return "mixed"
	default:
		return "missing"
	}
}

// Picks is the decoded play_cards selection. An empty array decodes as PickIndices.
type Picks struct {
	Kind    PickKind
	Indices []float64
	Types   []string
	size    int
}

func IndexPicks(indices ...float64) Picks {
	return Picks{Kind: PickIndices, Indices: indices, size: len(indices)}
}

func TypePicks(types ...string) Picks {
	return Picks{Kind: PickTypes, Types: types, size: len(types)}
}

// Len is the number of entries when the picks were an array, -1 otherwise.
func (p Picks) Len() int {
	if p.Kind == PickMissing {
		return -1
	}
	return p.size
}

func (p *Picks) UnmarshalJSON(data []byte) error {
	*p = Picks{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}

	p.size = len(items)
	numbers := make([]float64, 0, len(items))
	strs := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			strs = append(strs, s)
		case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			var f float64
			if err := json.Unmarshal(item, &f); err != nil {
				return err
			}
			numbers = append(numbers, f)
		}
	}

	switch {
	case len(numbers) == len(items):
		p.Kind, p.Indices = PickIndices, numbers
	case len(strs) == len(items):
		p.Kind, p.Types = PickTypes, strs
	default:
		p.Kind = PickMixed
	}
	return nil
}

func (p Picks) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case PickIndices:
		return json.Marshal(p.Indices)
	case PickTypes:
		return json.Marshal(p.Types)
	default:
		return []byte("null"), nil
	}
}
