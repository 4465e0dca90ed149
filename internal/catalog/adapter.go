package catalog

import (
	"encoding/binary"
	"errors"
	"math"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/utafrali/storefront/internal/domain"
)

// Synthesized discounts fall in [MinDiscount, MinDiscount+DiscountSpread).
const (
	MinDiscount    = 10
	DiscountSpread = 50
)

var errMissingID = errors.New("record has no id")

// rawProduct is a catalog record as received. Pointer fields distinguish an
// absent value from a zero one.
type rawProduct struct {
	ID                 *int           `json:"id"`
	Title              string         `json:"title"`
	Price              float64        `json:"price"`
	Description        string         `json:"description"`
	Category           string         `json:"category"`
	Image              string         `json:"image"`
	Rating             *domain.Rating `json:"rating"`
	DiscountPercentage *float64       `json:"discountPercentage"`
}

// Adapter normalizes raw catalog records into domain.Product.
type Adapter struct {
	seed []byte
}

// NewAdapter creates an adapter. seed perturbs synthesized discounts; the
// same seed and id always yield the same discount.
func NewAdapter(seed string) *Adapter {
	return &Adapter{seed: []byte(seed)}
}

// Discount derives a stable discount in [10,59] from the product id.
func (a *Adapter) Discount(id int) float64 {
	h := blake3.New()
	_, _ = h.Write(a.seed)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strconv.Itoa(id)))
	sum := h.Sum(nil)
	return float64(MinDiscount + binary.BigEndian.Uint64(sum[:8])%DiscountSpread)
}

// Normalize converts one raw record. An upstream discount is kept (clamped to
// [0,100)); otherwise one is synthesized from the id.
func (a *Adapter) Normalize(raw rawProduct) (domain.Product, error) {
	if raw.ID == nil {
		return domain.Product{}, errMissingID
	}

	p := domain.Product{
		ID:          *raw.ID,
		Title:       raw.Title,
		Price:       math.Max(raw.Price, 0),
		Description: raw.Description,
		Category:    raw.Category,
		Image:       raw.Image,
	}
	if raw.Rating != nil {
		p.Rating = domain.Rating{
			Rate:  math.Min(math.Max(raw.Rating.Rate, 0), 5),
			Count: max(raw.Rating.Count, 0),
		}
	}

	if raw.DiscountPercentage != nil && !math.IsNaN(*raw.DiscountPercentage) {
		p.DiscountPercentage = math.Min(math.Max(*raw.DiscountPercentage, 0), 99)
	} else {
		p.DiscountPercentage = a.Discount(p.ID)
	}
	return p, nil
}
