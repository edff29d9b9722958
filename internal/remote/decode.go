package remote

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/shopfront/internal/domain/catalog"
)

// Wire shape of a product record:
//
//	{ id, title, price, description, category, image, rating: { rate, count } }
//
// Unknown keys are skipped so the client tolerates additive upstream changes.

func decodeProducts(body []byte) ([]catalog.Product, error) {
	d := jx.DecodeBytes(body)

	var out []catalog.Product
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "product list")
	}
	return out, nil
}

func decodeOneProduct(body []byte) (*catalog.Product, error) {
	d := jx.DecodeBytes(body)

	p, err := decodeProduct(d)
	if err != nil {
		return nil, errors.Wrap(err, "product")
	}
	return &p, nil
}

func decodeProduct(d *jx.Decoder) (catalog.Product, error) {
	var p catalog.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "title":
			p.Title, err = d.Str()
		case "price":
			var n jx.Num
			if n, err = d.Num(); err != nil {
				return errors.Wrap(err, "price")
			}
			p.Price, err = decimal.NewFromString(string(n))
			if err != nil {
				return errors.Wrap(err, "price")
			}
			if p.Price.IsNegative() {
				return errors.Errorf("negative price %s", p.Price)
			}
		case "description":
			p.Description, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "rating":
			return d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "rate":
					p.Rating.Rate, err = d.Float64()
				case "count":
					p.Rating.Count, err = d.Int()
				default:
					return d.Skip()
				}
				if err != nil {
					return errors.Wrap(err, key)
				}
				return nil
			})
		default:
			return d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
	return p, err
}

func decodeCategories(body []byte) ([]string, error) {
	d := jx.DecodeBytes(body)

	var out []string
	if err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		if err != nil {
			return err
		}
		out = append(out, s)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "category list")
	}
	return out, nil
}
