package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EntityProduct  = "product"
	EntityCategory = "category"
)

// Update is a catalog change notice published by the backend on the catalog topic
type Update struct {
	Entity string `json:"entity"`
	Slug   string `json:"slug"`
}

var ErrInvalidUpdate = errors.New("invalid catalog update")

func DecodeUpdate(value []byte) (Update, error) {
	var u Update
	if err := json.Unmarshal(value, &u); err != nil {
		return Update{}, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if u.Slug == "" {
		return Update{}, fmt.Errorf("%w: slug is required", ErrInvalidUpdate)
	}
	switch u.Entity {
	case EntityProduct, EntityCategory:
		return u, nil
	default:
		return Update{}, fmt.Errorf("%w: unknown entity %q", ErrInvalidUpdate, u.Entity)
	}
}
