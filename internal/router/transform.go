package router

import (
	"encoding/json"
	"errors"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned when a JSON endpoint's upstream body does not parse.
var ErrInvalidJSON = errors.New("upstream returned malformed JSON")

// Transform reshapes a valid upstream JSON document.
type Transform func(body []byte) ([]byte, error)

// itemsBody is the reshaped payload of the item-list endpoints.
type itemsBody struct {
	Items json.RawMessage `json:"items"`
}

var emptyItems = json.RawMessage("[]")

// ExtractItems returns a Transform that yields {"items": [...]} from the first
// path holding an array, or an empty list when none does.
func ExtractItems(paths ...string) Transform {
	return func(body []byte) ([]byte, error) {
		items := emptyItems
		for _, p := range paths {
			if r := gjson.GetBytes(body, p); r.IsArray() {
				items = json.RawMessage(r.Raw)
				break
			}
		}
		return json.Marshal(itemsBody{Items: items})
	}
}

// decodeJSON validates an upstream body and applies the endpoint transform.
// Untransformed documents are relayed byte for byte.
func decodeJSON(body []byte, t Transform) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidJSON
	}
	if t == nil {
		return body, nil
	}
	return t(body)
}
