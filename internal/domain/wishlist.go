package domain

// Wishlist is an ordered set of product ids.
type Wishlist struct {
	ids []int
}

// NewWishlist builds a wishlist from stored ids, dropping repeats.
func NewWishlist(ids []int) *Wishlist {
	w := &Wishlist{ids: make([]int, 0, len(ids))}
	for _, id := range ids {
		w.Add(id)
	}
	return w
}

// Contains reports whether id is in the wishlist.
func (w *Wishlist) Contains(id int) bool {
	for _, v := range w.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id and reports false when it was already present.
func (w *Wishlist) Add(id int) bool {
	if w.Contains(id) {
		return false
	}
	w.ids = append(w.ids, id)
	return true
}

// Remove drops id and reports whether it was present.
func (w *Wishlist) Remove(id int) bool {
	for i, v := range w.ids {
		if v == id {
			w.ids = append(w.ids[:i], w.ids[i+1:]...)
			return true
		}
	}
	return false
}

// IDs returns a copy of the ids in insertion order.
func (w *Wishlist) IDs() []int {
	out := make([]int, len(w.ids))
	copy(out, w.ids)
	return out
}

// Len is the number of ids.
func (w *Wishlist) Len() int {
	return len(w.ids)
}

// Filter keeps the products whose ids are wishlisted, in catalog order.
func (w *Wishlist) Filter(products []Product) []Product {
	set := make(map[int]struct{}, len(w.ids))
	for _, id := range w.ids {
		set[id] = struct{}{}
	}
	out := make([]Product, 0, len(w.ids))
	for _, p := range products {
		if _, ok := set[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}
