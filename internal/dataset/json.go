package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/momingse/fzsearch/internal/record"
)

// decodeJSON walks the token stream so object fields keep their order.
func decodeJSON(r io.Reader) ([]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return []any{}, nil
	}
	if err != nil {
		return nil, invalidDataset("malformed JSON dataset", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, notAList(jsonKind(tok))
	}

	records := []any{}
	for dec.More() {
		v, err := jsonValue(dec)
		if err != nil {
			return nil, invalidDataset(fmt.Sprintf("malformed JSON dataset at record %d", len(records)), err)
		}
		records = append(records, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalidDataset("malformed JSON dataset", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalidDataset("unexpected data after the record list", err)
	}
	return records, nil
}

func jsonValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch d {
	case '[':
		list := []any{}
		for dec.More() {
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		_, err := dec.Token()
		return list, err
	case '{':
		obj := record.Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := keyTok.(string)
			v, err := jsonValue(dec)
			if err != nil {
				return nil, err
			}
			obj = append(obj, record.Field{Key: key, Value: v})
		}
		_, err := dec.Token()
		return obj, err
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", d)
	}
}

func jsonKind(tok json.Token) string {
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return "object"
		}
		return string(t)
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}
