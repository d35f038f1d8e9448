package catalog

import (
	"bytes"
	"encoding/json"
)

type member struct {
	key   string
	value interface{}
}

// marshalObject writes members as a JSON object preserving their order.
func marshalObject(members []member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Pairs is a string map that keeps insertion order in JSON.
type Pairs []Pair

type Pair struct {
	Key   string
	Value string
}

func (p Pairs) MarshalJSON() ([]byte, error) {
	members := make([]member, len(p))
	for i, pair := range p {
		members[i] = member{pair.Key, pair.Value}
	}
	return marshalObject(members)
}
