package dynval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Parse decodes a JSON document into a value tree. Object key order is
// preserved, which encoding/json's map decoding would lose, so decoding
// walks the token stream directly. Numbers without a fraction or exponent
// become integers when they fit in int64; all others become doubles.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseNext(dec)
	if err != nil {
		return nil, err
	}

	// Trailing garbage after the document is a malformed input.
	if dec.More() {
		return nil, fmt.Errorf("parse json: unexpected trailing data")
	}

	return v, nil
}

// ParseFile reads and parses a JSON file into a value tree.
func ParseFile(path string) (*Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return v, nil
}

func parseNext(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseMap(dec)
		case '[':
			return parseSequence(dec)
		default:
			return nil, fmt.Errorf("parse json: unexpected delimiter %q", t.String())
		}
	case string:
		return NewString(t), nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return parseNumber(t)
	case nil:
		// JSON null has no schema meaning; treat it as an empty string leaf.
		return NewString(""), nil
	default:
		return nil, fmt.Errorf("parse json: unexpected token %v", tok)
	}
}

func parseMap(dec *json.Decoder) (*Value, error) {
	m := NewMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse json: object key is not a string: %v", keyTok)
		}

		val, err := parseNext(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return m, nil
}

func parseSequence(dec *json.Decoder) (*Value, error) {
	s := NewSequence()
	for dec.More() {
		val, err := parseNext(dec)
		if err != nil {
			return nil, err
		}
		s.Append(val)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return s, nil
}

func parseNumber(n json.Number) (*Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return NewInt(i), nil
		}
	}

	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("parse json: bad number %q: %w", s, err)
	}

	return NewFloat(f), nil
}

// MarshalJSON renders the tree as JSON with map keys in insertion order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (v *Value) appendJSON(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}

	switch v.kind {
	case TypeInteger:
		buf.WriteString(strconv.FormatInt(v.intv, 10))
	case TypeDouble:
		data, err := json.Marshal(v.dblv)
		if err != nil {
			return err
		}
		buf.Write(data)
	case TypeString:
		data, err := json.Marshal(v.strv)
		if err != nil {
			return err
		}
		buf.Write(data)
	case TypeBool:
		buf.WriteString(strconv.FormatBool(v.boolv))
	case TypeMap:
		buf.WriteByte('{')
		for i := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(v.entries[i].key)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := v.entries[i].value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case TypeSequence:
		buf.WriteByte('[')
		for i := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.seq[i].appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("marshal json: invalid value")
	}

	return nil
}
