package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "storefront:abc:cart", Key("storefront", "abc", "cart"))
	assert.Equal(t, "sf:c-1:wishlist", Key("sf", "c-1", "wishlist"))
}
