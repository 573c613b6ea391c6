package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"catalog-sync/internal/catalog"

	json "github.com/goccy/go-json"
)

// JSONParser reads catalogs through the token stream so object keys keep the
// order of the file.
type JSONParser struct {
	indent string
}

func NewJSONParser() *JSONParser { return &JSONParser{indent: "    "} }

func (p *JSONParser) CanParse(ext string) bool {
	return ext == ".json"
}

func (p *JSONParser) Ext() string { return ".json" }

// Decode reads a JSON object. Arrays become branches keyed by position and
// scalars other than strings are dropped.
func (p *JSONParser) Decode(data []byte) (*catalog.Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read root: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("catalog root must be an object")
	}

	root, err := decodeObject(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after catalog root")
	}
	return root, nil
}

func decodeValue(dec *json.Decoder, tok json.Token) (catalog.Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return catalog.Leaf(v), nil
	default:
		return nil, nil
	}
}

func decodeObject(dec *json.Decoder) (*catalog.Map, error) {
	m := catalog.NewMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read value of %q: %w", key, err)
		}
		n, err := decodeValue(dec, tok)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		if n != nil {
			m.Set(key, n)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("close object: %w", err)
	}
	return m, nil
}

func decodeArray(dec *json.Decoder) (*catalog.Map, error) {
	m := catalog.NewMap()
	for i := 0; dec.More(); i++ {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read element %d: %w", i, err)
		}
		n, err := decodeValue(dec, tok)
		if err != nil {
			return nil, fmt.Errorf("%d: %w", i, err)
		}
		if n != nil {
			m.Set(strconv.Itoa(i), n)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("close array: %w", err)
	}
	return m, nil
}

// Encode writes root indented, without HTML escaping. List gaps are null.
func (p *JSONParser) Encode(root catalog.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.encode(&buf, root, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (p *JSONParser) encode(buf *bytes.Buffer, n catalog.Node, depth int) error {
	switch v := n.(type) {
	case nil:
		buf.WriteString("null")
	case catalog.Leaf:
		return writeJSONString(buf, string(v))
	case *catalog.Map:
		if v.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, key := range v.Keys() {
			buf.WriteString(strings.Repeat(p.indent, depth+1))
			if err := writeJSONString(buf, key); err != nil {
				return err
			}
			buf.WriteString(": ")
			child, _ := v.Get(key)
			if err := p.encode(buf, child, depth+1); err != nil {
				return err
			}
			if i < v.Len()-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.Repeat(p.indent, depth))
		buf.WriteByte('}')
	case *catalog.List:
		if v.Len() == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, child := range v.Items() {
			buf.WriteString(strings.Repeat(p.indent, depth+1))
			if err := p.encode(buf, child, depth+1); err != nil {
				return err
			}
			if i < v.Len()-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(strings.Repeat(p.indent, depth))
		buf.WriteByte(']')
	default:
		return fmt.Errorf("encode: unexpected node %T", n)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode string: %w", err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
