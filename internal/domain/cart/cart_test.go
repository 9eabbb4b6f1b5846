package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id string, price int64, qty int) LineItem {
	return LineItem{
		ProductID: id,
		Name:      "item " + id,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  qty,
		InStock:   true,
	}
}

func TestAddItem_MergesExistingProduct(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(newItem("p1", 100, 2)))
	require.NoError(t, s.AddItem(newItem("p1", 100, 3)))

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 5, snap[0].Quantity)
}

func TestAddItem_RejectsBadInput(t *testing.T) {
	s := NewStore()

	err := s.AddItem(newItem("p1", 100, 0))
	require.ErrorIs(t, err, ErrInvalidQuantity)

	bad := newItem("p2", 0, 1)
	bad.UnitPrice = decimal.NewFromInt(-5)
	require.ErrorIs(t, s.AddItem(bad), ErrInvalidPrice)

	assert.Zero(t, s.Len())
}

func TestSetQuantity_BelowOneIsRejectedNoOp(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(newItem("p1", 100, 2)))

	err := s.SetQuantity("p1", 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	snap := s.Snapshot()
	require.Len(t, snap, 1, "rejected mutation must not remove the line")
	assert.Equal(t, 2, snap[0].Quantity, "rejected mutation must not change quantity")
}

func TestSetQuantity_UnknownLine(t *testing.T) {
	s := NewStore()
	require.ErrorIs(t, s.SetQuantity("ghost", 3), ErrLineNotFound)
}

func TestRemoveItem(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(newItem("p1", 100, 1)))
	require.NoError(t, s.AddItem(newItem("p2", 50, 1)))

	require.NoError(t, s.RemoveItem("p1"))
	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "p2", snap[0].ProductID)

	require.ErrorIs(t, s.RemoveItem("p1"), ErrLineNotFound)
}

func TestClear(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddItem(newItem("p1", 100, 1)))
	s.Clear()
	assert.Empty(t, s.Snapshot())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore()
	orig := decimal.NewFromInt(120)
	item := newItem("p1", 100, 1)
	item.OriginalUnitPrice = &orig
	require.NoError(t, s.AddItem(item))

	snap := s.Snapshot()
	snap[0].Quantity = 99
	*snap[0].OriginalUnitPrice = decimal.NewFromInt(1)

	fresh := s.Snapshot()
	assert.Equal(t, 1, fresh[0].Quantity)
	assert.True(t, fresh[0].OriginalUnitPrice.Equal(orig))
}
