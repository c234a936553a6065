// Package catalog owns the shoe catalog: the Product model, the remote
// source, the loader with its local cache fallback, and the pure projection
// applied by the browsing view.
package catalog

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Product is a catalog item as served by the remote endpoint. Products are
// immutable from this service's perspective; favorites and cart entries hold
// frozen snapshots of them.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	ImageURL    string          `json:"shoeUrl"`
	Description string          `json:"description"`
	Available   bool            `json:"isAvailable"`
}

// Validation errors for individual catalog records.
var (
	errMissingID     = errors.New("missing id")
	errMissingName   = errors.New("missing name")
	errNegativePrice = errors.New("negative price")
)

// DecodeCatalog parses a JSON array of product records. Records that fail
// validation (missing id or name, negative price, wrong field types) are
// dropped rather than propagated; the count of dropped records is returned
// alongside the valid ones. A payload that is not a JSON array at all is a
// parse error.
func DecodeCatalog(data []byte) ([]Product, int, error) {
	d := jx.DecodeBytes(data)

	var (
		products []Product
		dropped  int
	)
	if err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		p, err := decodeProduct(raw)
		if err != nil {
			dropped++
			return nil
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, 0, errors.Wrap(err, "decode catalog")
	}
	return products, dropped, nil
}

func decodeProduct(raw jx.Raw) (Product, error) {
	var p Product
	d := jx.DecodeBytes(raw)

	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			// Upstream serves both numeric and string ids.
			id, err := decodeStringy(d)
			if err != nil {
				return errors.Wrap(err, "id")
			}
			p.ID = id
			return nil
		case "name":
			return decodeStr(d, &p.Name)
		case "brand":
			return decodeStr(d, &p.Brand)
		case "category":
			return decodeStr(d, &p.Category)
		case "price":
			num, err := d.Num()
			if err != nil {
				return errors.Wrap(err, "price")
			}
			price, err := decimal.NewFromString(trimQuotes(string(num)))
			if err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price = price
			return nil
		case "rating":
			if d.Next() == jx.Null {
				return d.Null()
			}
			rating, err := d.Float64()
			if err != nil {
				return errors.Wrap(err, "rating")
			}
			p.Rating = rating
			return nil
		case "shoeUrl":
			return decodeStr(d, &p.ImageURL)
		case "description":
			return decodeStr(d, &p.Description)
		case "isAvailable":
			available, err := d.Bool()
			if err != nil {
				return errors.Wrap(err, "isAvailable")
			}
			p.Available = available
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return Product{}, err
	}

	switch {
	case p.ID == "":
		return Product{}, errMissingID
	case p.Name == "":
		return Product{}, errMissingName
	case p.Price.IsNegative():
		return Product{}, errNegativePrice
	}
	return p, nil
}

func decodeStr(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return err
	}
	*dst = s
	return nil
}

func decodeStringy(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		num, err := d.Num()
		if err != nil {
			return "", err
		}
		return trimQuotes(string(num)), nil
	default:
		return "", errors.Errorf("unexpected type %v", d.Next())
	}
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// Categories returns the distinct category values of products in first-seen
// order, for the browsing view's filter chips.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	var categories []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories
}
